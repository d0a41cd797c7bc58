// Package session holds per-call dialogue state. At most one session exists
// per provider call SID; sessions live only for the duration of a phone
// call, so the default driver is a process-local map.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/farming"
	"github.com/kisanvaani/kisan-agent-service/internal/language"
)

// ErrNotFound marks an operation referencing an unknown call SID. Handlers
// surface it as a client error, never a crash.
var ErrNotFound = errors.New("session not found")

// Session is the dialogue state for one active call.
type Session struct {
	CallSID   string          `json:"callSid"`
	From      string          `json:"from"`
	Context   farming.Context `json:"context"`
	Language  language.Tag    `json:"language"`
	CreatedAt time.Time       `json:"createdAt"`
}

// New returns a fresh session with the default language.
func New(callSID, from string) *Session {
	return &Session{
		CallSID:   callSID,
		From:      from,
		Language:  language.Default,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the session storage abstraction.
type Store interface {
	// Create registers a session, overwriting any existing one for the
	// same call SID (provider retries simply reset state).
	Create(ctx context.Context, s *Session) error

	// Get returns the session for a call SID, or ErrNotFound.
	Get(ctx context.Context, callSID string) (*Session, error)

	// Update applies mutate to the stored session and persists the result.
	// Returns ErrNotFound for unknown call SIDs.
	Update(ctx context.Context, callSID string, mutate func(*Session)) error

	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, callSID string) error

	// Count returns the number of active sessions.
	Count(ctx context.Context) (int, error)

	Close() error
}

// NewStore builds the store selected by configuration.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.SessionDriver {
	case config.SessionDriverRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL, log)
	default:
		return NewMemoryStore(), nil
	}
}
