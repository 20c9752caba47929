package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/pkg/domain"
)

// streamBuffer bounds how far a slow SSE client may fall behind.
const streamBuffer = 16

type stream struct {
	unsubscribe func()
	inbox       chan Reply
	done        chan struct{}
	subscribers map[chan Reply]struct{}
}

// StreamManager fans assistant messages of a conversation out to SSE clients.
// A conversation is only listened to while it has subscribers.
//
// The conversation listener only enqueues into the stream inbox; a
// forwarding goroutine takes the manager lock. The listener never holds it.
type StreamManager struct {
	mu      sync.Mutex
	streams map[string]*stream
	logger  *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		streams: make(map[string]*stream),
		logger:  logger,
	}
}

// Subscribe registers a client for conversation id.
// The returned cancel function must be called when the client leaves.
func (sm *StreamManager) Subscribe(id string, conv *broilr.Conversation) (<-chan Reply, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	st, ok := sm.streams[id]
	if !ok {
		st = &stream{
			inbox:       make(chan Reply, streamBuffer),
			done:        make(chan struct{}),
			subscribers: make(map[chan Reply]struct{}),
		}
		st.unsubscribe = conv.Subscribe(func(msg domain.Message, stage domain.Stage) {
			select {
			case st.inbox <- Reply{Stage: stage, Messages: []domain.Message{msg}}:
			default:
				sm.logger.Warn("SSE: stream inbox full, dropping message", "conversation_id", id)
			}
		})
		sm.streams[id] = st
		go sm.forward(id, st)
	}
	ch := make(chan Reply, streamBuffer)
	st.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if sm.streams[id] != st {
			return
		}
		if _, ok := st.subscribers[ch]; !ok {
			return
		}
		delete(st.subscribers, ch)
		close(ch)
		if len(st.subscribers) == 0 {
			sm.closeLocked(id, st)
		}
	}
}

// Close disconnects every client of conversation id.
func (sm *StreamManager) Close(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if st, ok := sm.streams[id]; ok {
		for ch := range st.subscribers {
			close(ch)
		}
		st.subscribers = nil
		sm.closeLocked(id, st)
	}
}

func (sm *StreamManager) closeLocked(id string, st *stream) {
	st.unsubscribe()
	close(st.done)
	delete(sm.streams, id)
}

func (sm *StreamManager) forward(id string, st *stream) {
	for {
		select {
		case <-st.done:
			return
		case reply := <-st.inbox:
			sm.mu.Lock()
			for ch := range st.subscribers {
				select {
				case ch <- reply:
				default:
					sm.logger.Warn("SSE: client buffer full, dropping message", "conversation_id", id)
				}
			}
			sm.mu.Unlock()
		}
	}
}

// subscribeEvents handles GET /conversations/{id}/events (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, conv, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch, cancel := s.streams.Subscribe(id, conv)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case reply, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(reply)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
