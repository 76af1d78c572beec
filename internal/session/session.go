// Package session keeps the ordered log of chat turns for a conversation.
package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
)

var log = logger.WithPrefix("session")

// Role identifies who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// roleLegacyAI is how older histories recorded assistant turns
	roleLegacyAI Role = "ai"
)

// ChatTurn is one message in the history
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn is a convenience constructor
func UserTurn(content string) ChatTurn {
	return ChatTurn{Role: RoleUser, Content: content}
}

// AssistantTurn is a convenience constructor
func AssistantTurn(content string) ChatTurn {
	return ChatTurn{Role: RoleAssistant, Content: content}
}

// Store reads and writes the history under one key of a secrets.Store.
// It does no locking across processes: a session has one writer.
type Store struct {
	kv  secrets.Store
	key string
}

// New creates a history store. An empty key uses config.KeyChatHistory.
func New(kv secrets.Store, key string) *Store {
	if key == "" {
		key = config.KeyChatHistory
	}
	return &Store{kv: kv, key: key}
}

// Key returns the storage key
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored history. Missing, unreadable or corrupt data is
// an empty history; the problem is logged, never returned.
func (s *Store) Load(ctx context.Context) []ChatTurn {
	turns, err := s.load(ctx)
	if err != nil {
		log.Warn("%s", chaterr.GetUserMessage(err))
		return []ChatTurn{}
	}
	return turns
}

// Append adds turn to the end of the history and persists the whole sequence.
// Corrupt history is replaced; a read failure of the backing store aborts
// the append so existing data is not clobbered.
func (s *Store) Append(ctx context.Context, turn ChatTurn) error {
	turns, err := s.load(ctx)
	if err != nil {
		if chaterr.GetCategory(err) != chaterr.CategorySession {
			return err
		}
		log.Warn("%s; starting a new history", chaterr.GetUserMessage(err))
		turns = nil
	}
	return s.save(ctx, append(turns, turn))
}

// Clear persists an empty history
func (s *Store) Clear(ctx context.Context) error {
	return s.save(ctx, []ChatTurn{})
}

func (s *Store) load(ctx context.Context) ([]ChatTurn, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []ChatTurn{}, nil
	}
	return Decode(raw)
}

func (s *Store) save(ctx context.Context, turns []ChatTurn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return chaterr.StoreWriteFailed(s.key, err)
	}
	return s.kv.Put(ctx, s.key, string(data))
}

// Decode parses a serialized history, mapping legacy roles. It returns a
// session-category error when raw is not a JSON array of turns.
func Decode(raw string) ([]ChatTurn, error) {
	var turns []ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, chaterr.SessionCorrupt(config.KeyChatHistory, err)
	}
	if turns == nil {
		return []ChatTurn{}, nil
	}
	for i := range turns {
		if turns[i].Role == roleLegacyAI {
			turns[i].Role = RoleAssistant
		}
	}
	return turns, nil
}

// Preview returns a single-line, length-limited rendering of content
func Preview(content string, maxLen int) string {
	s := strings.Join(strings.Fields(content), " ")
	if len(s) <= maxLen || maxLen < 4 {
		return s
	}
	return s[:maxLen-3] + "..."
}
