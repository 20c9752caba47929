package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/utterance"
	"golang.org/x/sync/errgroup"
)

// DefaultRestartDelay is the pause between two captures while cooking.
const DefaultRestartDelay = time.Second

// ErrStopped is returned when the controller is not running.
var ErrStopped = errors.New("speech controller is not running")

// Sink receives transcripts as if they were typed.
type Sink interface {
	Submit(ctx context.Context, raw string) ([]domain.Message, error)
	Stage() domain.Stage
}

// Controller couples a Recognizer to a conversation.
type Controller struct {
	recognizer   ports.Recognizer
	sink         Sink
	restartDelay time.Duration
	queueSize    int
	logger       *slog.Logger
	observe      func(Transition)

	commands    chan command
	transcripts chan string
	running     chan struct{}
	done        chan struct{}

	state atomic.Int32
	armed atomic.Bool
}

// Option configures the Controller.
type Option func(*Controller)

// WithRestartDelay sets the cooldown between captures.
func WithRestartDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.restartDelay = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver is called on the machine goroutine for every state change.
func WithObserver(fn func(Transition)) Option {
	return func(c *Controller) {
		c.observe = fn
	}
}

// WithQueueSize bounds how many transcripts may wait for the conversation.
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		c.queueSize = n
	}
}

// New creates a controller. Call Run before Arm.
func New(recognizer ports.Recognizer, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		recognizer:   recognizer,
		sink:         sink,
		restartDelay: DefaultRestartDelay,
		queueSize:    8,
		logger:       logging.NewNop(),
		commands:     make(chan command, 16),
		running:      make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transcripts = make(chan string, c.queueSize)
	return c
}

// State returns the current machine state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Armed reports whether voice input is on.
func (c *Controller) Armed() bool {
	return c.armed.Load()
}

// Run owns the state machine and the dispatcher until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(c.transcripts)
		return c.loop(ctx)
	})
	g.Go(func() error {
		c.dispatch(ctx)
		return nil
	})
	close(c.running)
	err := g.Wait()
	close(c.done)
	return err
}

// Arm turns voice input on and starts a capture.
// It returns ErrUnsupported when the recognizer cannot capture.
func (c *Controller) Arm(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := c.send(ctx, command{kind: cmdArm, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// Disarm stops any capture and keeps voice input off.
func (c *Controller) Disarm() {
	_ = c.send(context.Background(), command{kind: cmdDisarm})
}

// OnAssistant re-arms a capture after an assistant message when voice is on.
// It matches the broilr.Listener signature.
func (c *Controller) OnAssistant(msg domain.Message, _ domain.Stage) {
	if msg.Role != domain.RoleAssistant || !c.Armed() {
		return
	}
	_ = c.send(context.Background(), command{kind: cmdAssistant})
}

func (c *Controller) send(ctx context.Context, cmd command) error {
	select {
	case <-c.running:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case c.commands <- cmd:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch feeds queued transcripts to the sink, one at a time.
func (c *Controller) dispatch(ctx context.Context) {
	for raw := range c.transcripts {
		if _, err := c.sink.Submit(ctx, raw); err != nil {
			c.logger.Warn("voice transcript failed", "err", err)
		}
	}
}

type commandKind int

const (
	cmdArm commandKind = iota
	cmdDisarm
	cmdAssistant
	cmdResult
	cmdEnded
	cmdCooldownDone
)

type command struct {
	kind  commandKind
	gen   uint64
	text  string
	reply chan error
}

// machine is the state owned by the loop goroutine.
type machine struct {
	gen      uint64
	capture  ports.Capture
	cancel   context.CancelFunc
	cooldown *time.Timer
	last     string
}

func (c *Controller) loop(ctx context.Context) error {
	m := &machine{}
	defer c.stop(m)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-c.commands:
			c.handle(ctx, m, cmd)
		}
	}
}

func (c *Controller) handle(ctx context.Context, m *machine, cmd command) {
	switch cmd.kind {
	case cmdArm:
		c.armed.Store(true)
		var err error
		if c.State() == StateIdle {
			err = c.startCapture(ctx, m)
		}
		if err != nil {
			c.armed.Store(false)
		}
		cmd.reply <- err

	case cmdDisarm:
		c.armed.Store(false)
		c.stop(m)
		c.moveTo(StateIdle, EventDisarmed)

	case cmdAssistant:
		if c.Armed() && c.State() == StateIdle {
			if err := c.startCapture(ctx, m); err != nil {
				c.logger.Warn("re-arming capture failed", "err", err)
			}
		}

	case cmdResult:
		if cmd.gen != m.gen || c.State() != StateCapturing {
			return
		}
		c.moveTo(StateCapturing, EventResult)
		c.deliver(m, cmd.text)

	case cmdEnded:
		if cmd.gen != m.gen || c.State() != StateCapturing {
			return
		}
		m.capture, m.cancel = nil, nil
		if c.Armed() && c.sink.Stage() == domain.StageCooking {
			c.moveTo(StateCooldown, EventEnded)
			gen := m.gen
			m.cooldown = time.AfterFunc(c.restartDelay, func() {
				select {
				case c.commands <- command{kind: cmdCooldownDone, gen: gen}:
				case <-ctx.Done():
				}
			})
			return
		}
		c.moveTo(StateIdle, EventEnded)

	case cmdCooldownDone:
		if cmd.gen != m.gen || c.State() != StateCooldown {
			return
		}
		m.cooldown = nil
		c.moveTo(StateIdle, EventEnded)
		if c.Armed() {
			if err := c.startCapture(ctx, m); err != nil {
				c.logger.Warn("restarting capture failed", "err", err)
			}
		}
	}
}

func (c *Controller) startCapture(ctx context.Context, m *machine) error {
	captureCtx, cancel := context.WithCancel(ctx)
	capture, err := c.recognizer.Start(captureCtx)
	if err != nil {
		cancel()
		if errors.Is(err, ErrUnsupported) {
			return err
		}
		c.logger.Warn("speech capture failed to start", "err", err)
		return err
	}

	m.gen++
	m.capture, m.cancel = capture, cancel
	c.moveTo(StateCapturing, EventStarted)

	gen := m.gen
	go func() {
		for text := range capture.Results() {
			select {
			case c.commands <- command{kind: cmdResult, gen: gen, text: text}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case c.commands <- command{kind: cmdEnded, gen: gen}:
		case <-ctx.Done():
		}
	}()
	return nil
}

// deliver queues a transcript unless it repeats the previous one.
func (c *Controller) deliver(m *machine, raw string) {
	raw = strings.TrimSpace(raw)
	norm := utterance.Normalize(raw)
	if norm == "" || norm == m.last {
		c.logger.Debug("dropping transcript", "text", raw)
		return
	}
	m.last = norm

	select {
	case c.transcripts <- raw:
	default:
		c.logger.Warn("voice queue full, dropping transcript", "text", raw)
	}
}

// stop ends the capture and the cooldown, invalidating their pending events.
func (c *Controller) stop(m *machine) {
	m.gen++
	if m.cooldown != nil {
		m.cooldown.Stop()
		m.cooldown = nil
	}
	if m.capture != nil {
		m.capture.Stop()
		m.capture = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (c *Controller) moveTo(to State, ev Event) {
	from := State(c.state.Swap(int32(to)))
	c.logger.Debug("speech transition", "from", from, "to", to, "event", ev)
	if c.observe != nil {
		c.observe(Transition{From: from, To: to, Event: ev})
	}
}
