package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/internal/logging"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired conversation IDs.
var ErrNotFound = errors.New("conversation not found")

// Factory builds a new conversation for a user.
type Factory func(ctx context.Context, username string) (*broilr.Conversation, error)

type entry struct {
	conv     *broilr.Conversation
	lastUsed time.Time
}

// Manager tracks live conversations by ID. Safe for concurrent use.
type Manager struct {
	factory Factory

	mu      sync.Mutex
	entries map[string]*entry

	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithIdleTTL drops conversations unused for longer than ttl on the next sweep.
// Zero keeps them until deleted.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager that builds conversations with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a conversation for username and returns its ID.
func (m *Manager) Create(ctx context.Context, username string) (string, *broilr.Conversation, error) {
	conv, err := m.factory(ctx, username)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	m.mu.Lock()
	m.entries[id] = &entry{conv: conv, lastUsed: m.now()}
	m.mu.Unlock()

	m.logger.Info("conversation created", "conversation_id", id, "user", username)
	return id, conv, nil
}

// Get returns a live conversation and marks it used.
func (m *Manager) Get(id string) (*broilr.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = m.now()
	return e.conv, nil
}

// Delete forgets a conversation. Unknown IDs are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

// List returns the IDs of live conversations, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live conversations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops idle conversations and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.entries {
		if e.lastUsed.Before(cutoff) {
			delete(m.entries, id)
			removed++
			m.logger.Debug("conversation expired", "conversation_id", id)
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired idle conversations", "count", n)
			}
		}
	}
}
