package broilr

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/internal/runtime"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/utterance"
)

// Assistant utterances emitted by the conversation itself.
const (
	WelcomeMessage = runtime.MsgWelcome
	ResetMessage   = runtime.MsgAskDish
	// ClearCommand resets the conversation when said on its own.
	ClearCommand = "clear"
)

// Listener is notified of every assistant message, in order, after the
// transition that produced it has been committed.
type Listener func(msg domain.Message, stage domain.Stage)

// Conversation owns one session and its transcript.
// Transitions are serialized: a Submit issued while another is running
// waits for it to complete.
type Conversation struct {
	mu         sync.Mutex
	engine     *runtime.Engine
	session    *domain.Session
	transcript domain.Transcript

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option defines a functional option for configuring the Conversation.
type Option func(*Conversation)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Conversation) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// New starts a conversation for username against the given backend.
// The transcript opens with the welcome message.
func New(backend ports.RecipeBackend, username string, opts ...Option) (*Conversation, error) {
	if backend == nil {
		return nil, errors.New("recipe backend is required")
	}
	if username == "" {
		return nil, domain.ErrNotLoggedIn
	}

	c := &Conversation{
		session:   domain.NewSession(),
		listeners: make(map[int]Listener),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("user", username)
	c.engine = runtime.NewEngine(backend, username,
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
	)
	c.transcript = domain.Transcript(domain.Assistant(WelcomeMessage))
	return c, nil
}

// Username returns the user the conversation acts for.
func (c *Conversation) Username() string {
	return c.engine.Username()
}

// Submit feeds one user utterance into the conversation and returns the
// assistant messages it produced. Saying "clear" resets the conversation.
//
// A backend failure still yields the generic failure message, with the
// session left as it was, and an error wrapping domain.ErrBackend. Any other
// error leaves the transcript untouched.
func (c *Conversation) Submit(ctx context.Context, raw string) ([]domain.Message, error) {
	u := utterance.New(raw)
	if u.Empty() {
		return nil, nil
	}
	if u.Text == ClearCommand {
		return c.Reset(), nil
	}

	c.mu.Lock()
	res, err := c.engine.Step(ctx, c.session, u)
	if err != nil && !errors.Is(err, domain.ErrBackend) {
		// Nothing was answered, so the utterance is not recorded either.
		c.mu.Unlock()
		return nil, err
	}
	c.session = res.Session
	replies := domain.Assistant(res.Replies...)
	c.transcript = append(c.transcript, domain.Message{Role: domain.RoleUser, Text: u.Raw})
	c.transcript = append(c.transcript, replies...)
	stage := c.session.Stage
	c.mu.Unlock()

	c.notify(replies, stage)
	return replies, err
}

// Reset clears the transcript and starts over at the dish prompt.
func (c *Conversation) Reset() []domain.Message {
	c.mu.Lock()
	from := c.session.Stage
	c.session = domain.ResetSession()
	replies := domain.Assistant(ResetMessage)
	c.transcript = domain.Transcript(append([]domain.Message(nil), replies...))
	c.mu.Unlock()

	c.logger.Debug("conversation reset", "from", from)
	c.notify(replies, domain.StageDish)
	return replies
}

// Transcript returns a copy of the conversation so far.
func (c *Conversation) Transcript() domain.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(domain.Transcript(nil), c.transcript...)
}

// Stage returns the current stage.
func (c *Conversation) Stage() domain.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Stage
}

// Snapshot returns a copy of the current session.
func (c *Conversation) Snapshot() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Subscribe registers a listener and returns a function that removes it.
func (c *Conversation) Subscribe(l Listener) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Conversation) notify(msgs []domain.Message, stage domain.Stage) {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, msg := range msgs {
		for _, l := range c.listeners {
			l(msg, stage)
		}
	}
}
