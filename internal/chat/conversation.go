// Package chat runs one prompt through completion, history and file actions,
// and reports the outcome to a UI through a Sink.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/pplxchat/internal/action"
	"github.com/abdul-hamid-achik/pplxchat/internal/debug"
	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

var log = logger.WithPrefix("chat")

// Materializer writes a resolved intent
type Materializer interface {
	Materialize(ctx context.Context, intent action.Intent) (workspace.Outcome, error)
}

// Options tune a Conversation
type Options struct {
	// SuppressResponseOnAction hides the model's reply when a file was written
	SuppressResponseOnAction bool
}

// Reply summarizes what Ask did
type Reply struct {
	Result       llm.Result
	Intent       *action.Intent
	Outcome      *workspace.Outcome
	ActionErr    error
	ResponseSent bool
	History      []session.ChatTurn
}

// Conversation owns everything one chat view needs. Asks are serialized.
type Conversation struct {
	mu sync.Mutex

	history      *session.Store
	completer    llm.Completer
	resolver     *action.Resolver
	materializer Materializer
	sink         Sink
	opts         Options
}

// New creates a conversation. A nil resolver uses the default rule tables.
func New(history *session.Store, completer llm.Completer, resolver *action.Resolver, materializer Materializer, sink Sink, opts Options) *Conversation {
	if resolver == nil {
		resolver = action.NewResolver(nil)
	}
	if sink == nil {
		sink = SinkFunc(func(Message) {})
	}
	return &Conversation{
		history:      history,
		completer:    completer,
		resolver:     resolver,
		materializer: materializer,
		sink:         sink,
		opts:         opts,
	}
}

// Ask sends one prompt and acts on the answer.
//
// The user turn is recorded before the call and the displayed answer after
// it, whatever the outcome. A failed completion is shown as-is and never
// scanned for file actions.
func (c *Conversation) Ask(ctx context.Context, req AskRequest) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sink.Post(Busy("Waiting for response..."))
	defer c.sink.Post(Busy(""))

	if err := c.history.Append(ctx, session.UserTurn(req.Text)); err != nil {
		log.Warn("recording prompt: %s", chaterr.GetUserMessage(err))
	}

	requestID := debug.Ask(req.Model, req.Mode, req.Text)
	start := time.Now()
	result := c.completer.Complete(ctx, req.Text, req.Model)
	display := result.Display()
	if result.OK() {
		debug.Completion(requestID, time.Since(start), result.Text, "")
	} else {
		debug.Completion(requestID, time.Since(start), display, string(result.Failure.Kind))
	}

	if err := c.history.Append(ctx, session.AssistantTurn(display)); err != nil {
		log.Warn("recording response: %s", chaterr.GetUserMessage(err))
	}
	reply := Reply{Result: result, History: c.history.Load(ctx)}

	if !result.OK() {
		log.Info("completion failed: %s", result.Failure.Kind)
		c.respond(&reply, display)
		return reply
	}

	intent, ok := c.resolver.Resolve(req.Text, result.Text, req.Agentic())
	if !ok || c.materializer == nil {
		c.respond(&reply, display)
		return reply
	}
	reply.Intent = &intent
	log.Info("file action %s -> %s", intent.Origin, intent.Filename)
	debug.Action(requestID, intent.Origin.String(), intent.Filename)

	outcome, err := c.materializer.Materialize(ctx, intent)
	reply.Outcome = &outcome
	switch {
	case err != nil:
		reply.ActionErr = err
		log.Error("materialize %s: %v", intent.Filename, err)
		debug.Error("materialize", err, map[string]any{"request_id": requestID, "filename": intent.Filename})
		c.sink.Post(AgenticInfo("Error performing action: " + chaterr.GetUserMessage(err)))
		c.respond(&reply, display)

	case outcome.Declined:
		debug.Materialized(requestID, outcome.Path, "declined")
		c.respond(&reply, display)
		c.sink.Post(AgenticInfo("Kept existing file: " + outcome.Path))

	default:
		verb := "Created"
		if outcome.Overwritten {
			verb = "Updated"
		}
		debug.Materialized(requestID, outcome.Path, strings.ToLower(verb))
		c.sink.Post(AgenticInfo(fmt.Sprintf("%s file: %s", verb, intent.Filename)))
		if !c.opts.SuppressResponseOnAction {
			c.respond(&reply, display)
		}
	}
	return reply
}

func (c *Conversation) respond(reply *Reply, text string) {
	c.sink.Post(Response(text))
	reply.ResponseSent = true
}

// LoadHistory posts the stored history and returns it
func (c *Conversation) LoadHistory(ctx context.Context) []session.ChatTurn {
	turns := c.history.Load(ctx)
	c.sink.Post(LoadHistory(turns))
	return turns
}

// ClearHistory empties the stored history and posts the empty list
func (c *Conversation) ClearHistory(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.history.Clear(ctx); err != nil {
		return err
	}
	c.sink.Post(LoadHistory(nil))
	return nil
}
