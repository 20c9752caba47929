package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/speech"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Voice frame types. The browser runs the recognizer: the server asks it to
// start or stop capturing and it reports results and the end of a capture.
const (
	// Client to server.
	FrameArm    = "arm"
	FrameDisarm = "disarm"
	FrameResult = "result"
	FrameEnd    = "end"

	// Server to client.
	FrameStart = "start"
	FrameStop  = "stop"
	FrameState = "state"
	FrameReply = "reply"
	FrameError = "error"
)

const writeWait = 10 * time.Second

// VoiceFrame is one websocket message in either direction.
type VoiceFrame struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	State    string           `json:"state,omitempty"`
	Stage    domain.Stage     `json:"stage,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(f VoiceFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

// Recognizer is a ports.Recognizer whose captures happen in a remote client.
type Recognizer struct {
	conn   *wsConn
	logger *slog.Logger

	mu      sync.Mutex
	current *remoteCapture
}

var _ ports.Recognizer = (*Recognizer)(nil)

func newRecognizer(conn *wsConn, logger *slog.Logger) *Recognizer {
	return &Recognizer{conn: conn, logger: logger}
}

// Start asks the client to begin a capture.
func (r *Recognizer) Start(ctx context.Context) (ports.Capture, error) {
	c := &remoteCapture{
		recognizer: r,
		results:    make(chan string, 4),
	}
	r.mu.Lock()
	prev := r.current
	r.current = c
	r.mu.Unlock()
	if prev != nil {
		prev.finish()
	}

	if err := r.conn.send(VoiceFrame{Type: FrameStart}); err != nil {
		c.finish()
		return nil, err
	}
	return c, nil
}

// deliver routes a client frame to the active capture.
func (r *Recognizer) deliver(f VoiceFrame) {
	r.mu.Lock()
	c := r.current
	if f.Type == FrameEnd {
		r.current = nil
	}
	r.mu.Unlock()

	if c == nil {
		r.logger.Debug("voice frame without capture", "type", f.Type)
		return
	}
	switch f.Type {
	case FrameResult:
		c.push(f.Text)
	case FrameEnd:
		c.finish()
	}
}

// close ends any active capture, e.g. when the socket goes away.
func (r *Recognizer) close() {
	r.mu.Lock()
	c := r.current
	r.current = nil
	r.mu.Unlock()
	if c != nil {
		c.finish()
	}
}

type remoteCapture struct {
	recognizer *Recognizer
	results    chan string

	mu     sync.Mutex
	closed bool
}

func (c *remoteCapture) Results() <-chan string { return c.results }

func (c *remoteCapture) Stop() {
	r := c.recognizer
	r.mu.Lock()
	if r.current == c {
		r.current = nil
	}
	r.mu.Unlock()

	if c.finish() {
		_ = r.conn.send(VoiceFrame{Type: FrameStop})
	}
}

func (c *remoteCapture) push(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.results <- text:
	default:
		c.recognizer.logger.Warn("voice results full, dropping transcript", "text", text)
	}
}

// finish closes the results channel once and reports whether it did.
func (c *remoteCapture) finish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.results)
	return true
}

// voice handles GET /conversations/{id}/voice.
func (s *Server) voice(w http.ResponseWriter, r *http.Request) {
	id, conv, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("voice upgrade failed", "conversation_id", id, "err", err)
		return
	}
	defer ws.Close()

	logger := s.logger.With("conversation_id", id)
	conn := &wsConn{conn: ws}
	recognizer := newRecognizer(conn, logger)
	defer recognizer.close()

	ctrl := speech.New(recognizer, conv,
		speech.WithRestartDelay(s.restartDelay),
		speech.WithLogger(logger),
		speech.WithObserver(func(tr speech.Transition) {
			if s.observeVoice != nil {
				s.observeVoice(tr)
			}
			_ = conn.send(VoiceFrame{Type: FrameState, State: tr.To.String()})
		}),
	)

	unsubscribe := conv.Subscribe(func(msg domain.Message, stage domain.Stage) {
		_ = conn.send(VoiceFrame{Type: FrameReply, Stage: stage, Messages: []domain.Message{msg}})
		ctrl.OnAssistant(msg, stage)
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.readVoice(ctx, ws, conn, recognizer, ctrl)
	})
	g.Go(func() error {
		// Unblocks the reader when the request or server goes away.
		<-ctx.Done()
		return ws.Close()
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, net.ErrClosed) {
		logger.Debug("voice channel closed", "err", err)
	}
}

func (s *Server) readVoice(ctx context.Context, ws *websocket.Conn, conn *wsConn, recognizer *Recognizer, ctrl *speech.Controller) error {
	for {
		var f VoiceFrame
		if err := ws.ReadJSON(&f); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		switch f.Type {
		case FrameArm:
			if err := ctrl.Arm(ctx); err != nil {
				_ = conn.send(VoiceFrame{Type: FrameError, Text: err.Error()})
			}
		case FrameDisarm:
			ctrl.Disarm()
		case FrameResult, FrameEnd:
			recognizer.deliver(f)
		default:
			_ = conn.send(VoiceFrame{Type: FrameError, Text: "unknown frame type " + f.Type})
		}
	}
}
