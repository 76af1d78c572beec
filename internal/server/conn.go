package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

const (
	writeTimeout    = 10 * time.Second
	maxMessageBytes = 1 << 20
	queueDepth      = 4
)

// conn is one browser tab. Asks and clears run one at a time on a worker so
// the read loop stays free to deliver confirmResponse while an ask waits.
type conn struct {
	id   string
	ws   *websocket.Conn
	ctx  context.Context
	conv *chat.Conversation

	mu      sync.Mutex
	pending map[string]chan string

	work chan func(context.Context)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn("websocket accept: %v", err)
		return
	}
	s.handlers.Add(1)
	defer s.handlers.Done()
	ws.SetReadLimit(maxMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c, err := s.newConn(ctx, ws)
	if err != nil {
		log.Error("connection setup: %v", err)
		_ = ws.Close(websocket.StatusInternalError, "setup failed")
		return
	}
	s.register(c)
	defer s.unregister(c)
	log.Info("connection %s opened", c.id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.runWorker()
	}()

	c.conv.LoadHistory(ctx)
	c.readLoop()

	cancel()
	<-done
	_ = ws.Close(websocket.StatusNormalClosure, "")
	log.Info("connection %s closed", c.id)
}

func (s *Server) newConn(ctx context.Context, ws *websocket.Conn) (*conn, error) {
	c := &conn{
		id:      uuid.NewString(),
		ws:      ws,
		ctx:     ctx,
		pending: make(map[string]chan string),
		work:    make(chan func(context.Context), queueDepth),
	}

	mode, _ := permissions.ParseMode(s.cfg.Workspace.Overwrite)
	m, err := workspace.New(workspace.Options{
		Roots:          s.cfg.Workspace.Roots,
		RestrictToRoot: s.cfg.Workspace.RestrictToRoot,
	}, permissions.NewPolicy(mode, c), s.opener(c))
	if err != nil {
		return nil, err
	}

	c.conv = chat.New(s.history, s.completer, nil, m, c, chat.Options{
		SuppressResponseOnAction: s.cfg.Chat.SuppressResponseOnAction,
	})
	return c, nil
}

func (s *Server) opener(c *conn) workspace.Opener {
	switch s.cfg.Workspace.OpenWith {
	case config.OpenEditor:
		return workspace.EditorOpener{Command: s.cfg.Workspace.Editor}
	case config.OpenNone:
		return workspace.NopOpener{}
	default:
		return workspace.OpenerFunc(func(_ context.Context, path, content string) error {
			c.Post(chat.OpenFile(path, content))
			return nil
		})
	}
}

// Post writes one message as a JSON text frame
func (c *conn) Post(msg chat.Message) {
	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		log.Debug("connection %s: post %s: %v", c.id, msg.Name(), err)
	}
}

// Prompt asks the page about an overwrite and waits for the matching
// confirmResponse. A closed page counts as a dismissal.
func (c *conn) Prompt(ctx context.Context, path, question string) (permissions.Decision, error) {
	id := uuid.NewString()
	ch := make(chan string, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.Post(chat.Confirm(id, question))

	select {
	case answer := <-ch:
		if strings.TrimSpace(answer) == "" {
			return permissions.DecisionDeny, workspace.ErrDismissed
		}
		decision, ok := permissions.ParseAnswer(answer)
		if !ok {
			log.Debug("connection %s: unrecognized answer %q for %s", c.id, answer, path)
		}
		return decision, nil
	case <-ctx.Done():
		return permissions.DecisionDeny, workspace.ErrDismissed
	}
}

func (c *conn) answer(id, answer string) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		log.Debug("connection %s: stale confirm %s", c.id, id)
		return
	}
	select {
	case ch <- answer:
	default:
	}
}

func (c *conn) runWorker() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case job := <-c.work:
			job(c.ctx)
		}
	}
}

func (c *conn) enqueue(job func(context.Context)) {
	select {
	case c.work <- job:
	default:
		c.Post(chat.AgenticInfo("Still working on the previous request."))
	}
}

func (c *conn) readLoop() {
	for {
		_, data, err := c.ws.Read(c.ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && c.ctx.Err() == nil {
				log.Debug("connection %s: read: %v", c.id, err)
			}
			return
		}

		in, err := chat.DecodeInbound(data)
		if err != nil {
			log.Warn("connection %s: %v", c.id, err)
			continue
		}

		switch in.Command {
		case chat.CommandAsk:
			req := in.AskRequest()
			if strings.TrimSpace(req.Text) == "" {
				continue
			}
			c.enqueue(func(ctx context.Context) { c.conv.Ask(ctx, req) })

		case chat.CommandConfirmResponse:
			c.answer(in.ID, in.Answer)

		case chat.CommandClearHistory:
			c.enqueue(func(ctx context.Context) {
				if err := c.conv.ClearHistory(ctx); err != nil {
					log.Error("clear history: %v", err)
				}
			})

		default:
			log.Debug("connection %s: ignoring %q", c.id, in.Command)
		}
	}
}
