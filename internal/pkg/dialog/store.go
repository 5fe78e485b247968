package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "dialog:state:"
	stateTTL       = 30 * time.Minute
)

// Dialog steps for multi-message conversations with the bot.
const (
	StepAwaitProfileName  = "await_profile_name"
	StepAwaitProfileStyle = "await_profile_style"
	StepAwaitNewStyle     = "await_new_style"
)

// State holds the in-progress dialog position for one Telegram chat.
type State struct {
	Step        string `json:"step"`
	ProfileName string `json:"profile_name,omitempty"`
	ProfileID   int64  `json:"profile_id,omitempty"`
}

// Store keeps per-chat dialog state in Redis so a restart does not
// drop half-finished conversations
type Store struct {
	rdb *redis.Client
}

// NewStore creates a new Store
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func stateKey(chatID int64) string {
	return fmt.Sprintf("%s%d", stateKeyPrefix, chatID)
}

// Set stores the dialog state for a chat, refreshing the TTL
func (s *Store) Set(ctx context.Context, chatID int64, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKey(chatID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to store dialog state: %w", err)
	}
	return nil
}

// Get returns the dialog state for a chat, or nil if there is none
func (s *Store) Get(ctx context.Context, chatID int64) (*State, error) {
	val, err := s.rdb.Get(ctx, stateKey(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dialog state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		// A corrupt entry is unrecoverable, drop it
		s.rdb.Del(ctx, stateKey(chatID))
		return nil, nil
	}
	return &state, nil
}

// Clear removes the dialog state for a chat
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, stateKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to clear dialog state: %w", err)
	}
	return nil
}
