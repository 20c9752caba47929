// Package rest implements ports.RecipeBackend against the recipe service's HTTP JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/broilr/internal/logging"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// StatusError reports a non-2xx answer from the service.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status=%d body=%s", e.Path, e.Code, e.Body)
}

// Unwrap makes every status error a backend failure.
func (e *StatusError) Unwrap() error {
	return domain.ErrBackend
}

// Retryable reports whether repeating the request could succeed.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client talks to the recipe service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

var _ ports.RecipeBackend = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
		userAgent:  "broilr",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends body as JSON to path and decodes the 2xx answer into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrBackend, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrBackend, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("backend request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", domain.ErrBackend, path, err)
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ackResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// Login verifies credentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp ackResponse
	if err := c.post(ctx, "/login", credentials{username, password}, &resp); err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, resp.Message)
	}
	return nil
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	var resp ackResponse
	if err := c.post(ctx, "/signup", credentials{username, password}, &resp); err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		if strings.Contains(strings.ToLower(resp.Message), "exists") {
			return fmt.Errorf("%w: %s", domain.ErrUserExists, resp.Message)
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, resp.Message)
	}
	return nil
}

// ListRecipes fetches the user's saved recipes.
func (c *Client) ListRecipes(ctx context.Context, username string) ([]domain.Recipe, error) {
	var resp struct {
		Recipes []domain.Recipe `json:"recipes"`
	}
	req := struct {
		Username string `json:"username"`
	}{username}
	if err := c.post(ctx, "/load_recipes", req, &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		return []domain.Recipe{}, nil
	}
	return resp.Recipes, nil
}

// Followups asks for clarifying questions about a dish.
func (c *Client) Followups(ctx context.Context, dish string) ([]string, error) {
	var resp struct {
		Questions []string `json:"questions"`
	}
	req := struct {
		Dish string `json:"dish"`
	}{dish}
	if err := c.post(ctx, "/followups", req, &resp); err != nil {
		return nil, err
	}
	questions := make([]string, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

type generateRequest struct {
	Dish     string            `json:"dish"`
	Answers  map[string]string `json:"answers"`
	Username string            `json:"username,omitempty"`
}

// GenerateRecipe asks the service to build a recipe.
func (c *Client) GenerateRecipe(ctx context.Context, dish string, answers []domain.Answer, username string) (*domain.Recipe, error) {
	var resp struct {
		Recipe *domain.Recipe `json:"recipe"`
	}
	req := generateRequest{Dish: dish, Answers: domain.AnswerMap(answers), Username: username}
	if err := c.post(ctx, "/generate_recipe", req, &resp); err != nil {
		return nil, err
	}
	if resp.Recipe == nil {
		return nil, fmt.Errorf("%w: /generate_recipe returned no recipe", domain.ErrEmptyResult)
	}
	return resp.Recipe, nil
}

// wireStep always carries the key items list, which the service indexes unconditionally.
type wireStep struct {
	Number      int            `json:"step_number"`
	Instruction string         `json:"instruction"`
	Minutes     domain.Minutes `json:"estimated_time"`
	KeyItems    []string       `json:"key_ingredients_or_tools"`
}

type askRequest struct {
	Question string            `json:"question"`
	Step     wireStep          `json:"step"`
	History  []domain.ChatTurn `json:"history"`
}

// AskStep asks a question about one step.
func (c *Client) AskStep(ctx context.Context, question string, step domain.Step, history []domain.ChatTurn) (ports.StepAnswer, error) {
	req := askRequest{
		Question: question,
		Step: wireStep{
			Number:      step.Number,
			Instruction: step.Instruction,
			Minutes:     step.Minutes,
			KeyItems:    append([]string{}, step.KeyItems...),
		},
		History: append([]domain.ChatTurn{}, history...),
	}
	var resp ports.StepAnswer
	if err := c.post(ctx, "/ask_step", req, &resp); err != nil {
		return ports.StepAnswer{}, err
	}
	resp.Answer = strings.TrimSpace(resp.Answer)
	return resp, nil
}

// SaveRecipe stores a recipe under the user's profile.
func (c *Client) SaveRecipe(ctx context.Context, recipe domain.Recipe, username string) error {
	req := struct {
		Recipe   domain.Recipe `json:"recipe"`
		Username string        `json:"username"`
	}{recipe, username}
	return c.post(ctx, "/save_recipe", req, nil)
}

// DeleteRecipe removes a saved recipe by name.
func (c *Client) DeleteRecipe(ctx context.Context, username, recipeName string) error {
	req := struct {
		Username   string `json:"username"`
		RecipeName string `json:"recipe_name"`
	}{username, recipeName}

	var resp ackResponse
	err := c.post(ctx, "/delete_recipe", req, &resp)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrNoMatch, err)
	}
	if err != nil {
		return err
	}
	if resp.Success != nil && !*resp.Success {
		return fmt.Errorf("%w: /delete_recipe: %s", domain.ErrBackend, resp.Message)
	}
	return nil
}
