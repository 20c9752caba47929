package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/broilr"
	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/internal/presentation/graph"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Resource URIs.
const (
	TranscriptURI = "broilr://transcript"
	GraphURI      = "broilr://graph"
)

// Reply aligns with the HTTP adapter's reply schema.
type Reply struct {
	Stage    domain.Stage     `json:"stage" jsonschema_description:"The conversation stage after the message"`
	Messages []domain.Message `json:"messages" jsonschema_description:"Assistant messages produced by the message"`
	Error    string           `json:"error,omitempty" jsonschema_description:"Set when the recipe backend failed; the stage is unchanged"`
}

// TranscriptView is the full conversation so far.
type TranscriptView struct {
	Username   string           `json:"username" jsonschema_description:"The user the conversation acts for"`
	Stage      domain.Stage     `json:"stage" jsonschema_description:"The current conversation stage"`
	Transcript []domain.Message `json:"transcript" jsonschema_description:"Every message, oldest first"`
}

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	Text string `json:"text"`
}

// Server exposes one conversation as an MCP server.
type Server struct {
	conv         *broilr.Conversation
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	maxInputSize int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize overrides the message size limit.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(conv *broilr.Conversation, opts ...Option) *Server {
	s := &Server{
		conv:      conv,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("broilr-mcp", strings.TrimSpace(broilr.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: send_message
	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Say something to the cooking assistant, exactly as a user would type or speak it."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user utterance")),
		mcp.WithOutputSchema[Reply](),
	), mcp.NewStructuredToolHandler(s.handleSendMessage))

	// TOOL: get_transcript
	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the conversation so far and its current stage."),
		mcp.WithOutputSchema[TranscriptView](),
	), mcp.NewStructuredToolHandler(s.handleGetTranscript))

	// TOOL: reset_conversation
	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Clear the chat and start over at the dish prompt."),
		mcp.WithOutputSchema[Reply](),
	), mcp.NewStructuredToolHandler(s.handleReset))
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (Reply, error) {
	clean, err := runner.SanitizeInputLimit(args.Text, s.maxInputSize)
	if err != nil {
		s.logger.Warn("MCP send_message: input rejected", "err", err, "size", len(args.Text))
		return Reply{}, fmt.Errorf("input rejected: %w", err)
	}

	replies, err := s.conv.Submit(ctx, clean)
	reply := Reply{Stage: s.conv.Stage(), Messages: replies}
	if reply.Messages == nil {
		reply.Messages = []domain.Message{}
	}
	if err != nil {
		if !errors.Is(err, domain.ErrBackend) {
			return Reply{}, fmt.Errorf("send failed: %w", err)
		}
		s.logger.Warn("MCP send_message: backend failure", "err", err)
		reply.Error = err.Error()
	}
	return reply, nil
}

func (s *Server) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (TranscriptView, error) {
	return s.view(), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (Reply, error) {
	replies := s.conv.Reset()
	return Reply{Stage: s.conv.Stage(), Messages: replies}, nil
}

func (s *Server) view() TranscriptView {
	return TranscriptView{
		Username:   s.conv.Username(),
		Stage:      s.conv.Stage(),
		Transcript: s.conv.Transcript(),
	}
}

func (s *Server) registerResources() {
	// EXPOSE: broilr://transcript
	s.mcpServer.AddResource(mcp.NewResource(TranscriptURI, "Conversation Transcript",
		mcp.WithMIMEType("application/json"),
	), s.readTranscript)

	// EXPOSE: broilr://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Conversation Stage Graph",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), s.readGraph)
}

func (s *Server) readTranscript(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.view())
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TranscriptURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	overlay := &graph.GraphOverlay{CurrentStage: s.conv.Stage()}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/vnd.mermaid",
			Text:     graph.GenerateMermaid(domain.Stages, domain.StageTransitions, overlay),
		},
	}, nil
}
