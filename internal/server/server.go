// Package server exposes a Conversation to a browser over a WebSocket.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
)

var log = logger.WithPrefix("server")

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 10 * time.Second

// Server serves the chat page and one Conversation per WebSocket connection.
// All connections share the stored history.
type Server struct {
	cfg       *config.Config
	kv        secrets.Store
	history   *session.Store
	completer llm.Completer

	mu    sync.Mutex
	conns map[string]*conn

	handlers sync.WaitGroup
}

// New creates a server over the given store and completer
func New(cfg *config.Config, kv secrets.Store, completer llm.Completer) *Server {
	return &Server{
		cfg:       cfg,
		kv:        kv,
		history:   session.New(kv, config.KeyChatHistory),
		completer: completer,
		conns:     make(map[string]*conn),
	}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Get("/config", s.handleConfig)
	})
	r.Get("/ws", s.handleWS)
	return r
}

// Run listens on addr and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. When the store can report
// changes made by other processes, connected pages are sent the new history.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.Info("listening on http://%s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if w, ok := s.kv.(secrets.Watcher); ok {
		g.Go(func() error {
			return w.Watch(gctx, s.history.Key(), s.historyChanged)
		})
	}

	err := g.Wait()
	// websocket handlers are hijacked and not tracked by Shutdown
	s.handlers.Wait()
	log.Info("stopped")
	return err
}

func (s *Server) historyChanged(value string) {
	turns, err := session.Decode(value)
	if err != nil {
		log.Warn("history changed on disk but could not be read: %v", err)
		turns = nil
	}
	log.Debug("history changed on disk, %d turns", len(turns))
	s.broadcast(chat.LoadHistory(turns))
}

func (s *Server) broadcast(msg chat.Message) {
	s.mu.Lock()
	targets := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		c.Post(msg)
	}
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.id] = c
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c.id)
}

// Connections returns the number of open WebSocket connections
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns := s.history.Load(r.Context())
	if turns == nil {
		turns = []session.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

type pageConfig struct {
	Models       []string `json:"models"`
	DefaultModel string   `json:"defaultModel"`
	DefaultMode  string   `json:"defaultMode"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pageConfig{
		Models:       s.cfg.Models(),
		DefaultModel: s.cfg.DefaultModel,
		DefaultMode:  s.cfg.Chat.DefaultMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write response: %v", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}
