package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/runner"
	"github.com/aretw0/broilr/pkg/session"
	"github.com/aretw0/broilr/pkg/speech"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Server exposes conversations held by a session.Manager.
type Server struct {
	sessions *session.Manager
	streams  *StreamManager
	spec     *openapi3.T
	logger   *slog.Logger

	metrics      http.Handler
	maxInputSize int
	restartDelay time.Duration
	observeVoice func(speech.Transition)
	upgrader     websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize overrides the message size limit.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithVoiceRestartDelay sets the pause between voice captures while cooking.
func WithVoiceRestartDelay(d time.Duration) Option {
	return func(s *Server) {
		s.restartDelay = d
	}
}

// WithVoiceObserver receives every speech state change of every voice channel.
func WithVoiceObserver(fn func(speech.Transition)) Option {
	return func(s *Server) {
		s.observeVoice = fn
	}
}

// NewServer validates the embedded OpenAPI document and builds the server.
func NewServer(sessions *session.Manager, opts ...Option) (*Server, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		sessions:     sessions,
		spec:         spec,
		logger:       logging.NewNop(),
		restartDelay: speech.DefaultRestartDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", s.createConversation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getConversation)
			r.Delete("/", s.deleteConversation)
			r.Post("/messages", s.sendMessage)
			r.Post("/reset", s.resetConversation)
			r.Get("/events", s.subscribeEvents)
			r.Get("/voice", s.voice)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Broilr API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Wire types --

type createConversationRequest struct {
	Username string `json:"username"`
}

type messageRequest struct {
	Text string `json:"text"`
}

// Conversation is the JSON view of a conversation.
type Conversation struct {
	ID         string           `json:"id"`
	Username   string           `json:"username,omitempty"`
	Stage      domain.Stage     `json:"stage"`
	Transcript []domain.Message `json:"transcript"`
}

// Reply carries the assistant messages produced by one request.
type Reply struct {
	Stage    domain.Stage     `json:"stage"`
	Messages []domain.Message `json:"messages"`
	Error    string           `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// -- Handlers --

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "broilr-http",
		"version":     strings.TrimSpace(broilr.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	var body createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, conv, err := s.sessions.Create(r.Context(), strings.TrimSpace(body.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotLoggedIn) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("create conversation failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, view(id, conv))
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	id, conv, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(id, conv))
}

func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.sessions.Delete(id)
	s.streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id, conv, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text, err := runner.SanitizeInputLimit(body.Text, s.maxInputSize)
	if err != nil {
		s.logger.Warn("message rejected", "conversation_id", id, "size", len(body.Text), "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	replies, err := conv.Submit(r.Context(), text)
	resp := Reply{Stage: conv.Stage(), Messages: nonNil(replies)}
	if err != nil {
		if !errors.Is(err, domain.ErrBackend) {
			s.logger.Error("submit failed", "conversation_id", id, "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.logger.Warn("backend failure", "conversation_id", id, "err", err)
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resetConversation(w http.ResponseWriter, r *http.Request) {
	_, conv, ok := s.lookup(w, r)
	if !ok {
		return
	}
	replies := conv.Reset()
	writeJSON(w, http.StatusOK, Reply{Stage: conv.Stage(), Messages: replies})
}

// -- Helpers --

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *broilr.Conversation, bool) {
	id := chi.URLParam(r, "id")
	conv, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return id, nil, false
	}
	return id, conv, true
}

func view(id string, conv *broilr.Conversation) Conversation {
	return Conversation{
		ID:         id,
		Username:   conv.Username(),
		Stage:      conv.Stage(),
		Transcript: nonNil(conv.Transcript()),
	}
}

func nonNil(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return []domain.Message{}
	}
	return msgs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
