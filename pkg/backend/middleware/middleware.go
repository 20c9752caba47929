// Package middleware decorates a ports.RecipeBackend with cross-cutting behavior:
// retries, timeouts, logging and metrics.
package middleware

import (
	"context"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
)

// Middleware allows wrapping a RecipeBackend to add behavior.
type Middleware func(ports.RecipeBackend) ports.RecipeBackend

// Interceptor runs around one backend operation. It must call call at most
// once per attempt and return its error (or its own).
type Interceptor func(ctx context.Context, op string, call func(context.Context) error) error

// Chain wraps b with mws. The first middleware is the outermost.
func Chain(b ports.RecipeBackend, mws ...Middleware) ports.RecipeBackend {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}

// Intercept turns an Interceptor into a Middleware applied to every operation.
func Intercept(i Interceptor) Middleware {
	return func(next ports.RecipeBackend) ports.RecipeBackend {
		return &intercepted{next: next, around: i}
	}
}

// Operation names, matching the service's endpoints.
const (
	OpLogin          = "login"
	OpSignup         = "signup"
	OpListRecipes    = "load_recipes"
	OpFollowups      = "followups"
	OpGenerateRecipe = "generate_recipe"
	OpAskStep        = "ask_step"
	OpSaveRecipe     = "save_recipe"
	OpDeleteRecipe   = "delete_recipe"
)

type intercepted struct {
	next   ports.RecipeBackend
	around Interceptor
}

func (m *intercepted) Login(ctx context.Context, username, password string) error {
	return m.around(ctx, OpLogin, func(ctx context.Context) error {
		return m.next.Login(ctx, username, password)
	})
}

func (m *intercepted) Signup(ctx context.Context, username, password string) error {
	return m.around(ctx, OpSignup, func(ctx context.Context) error {
		return m.next.Signup(ctx, username, password)
	})
}

func (m *intercepted) ListRecipes(ctx context.Context, username string) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := m.around(ctx, OpListRecipes, func(ctx context.Context) error {
		var err error
		out, err = m.next.ListRecipes(ctx, username)
		return err
	})
	return out, err
}

func (m *intercepted) Followups(ctx context.Context, dish string) ([]string, error) {
	var out []string
	err := m.around(ctx, OpFollowups, func(ctx context.Context) error {
		var err error
		out, err = m.next.Followups(ctx, dish)
		return err
	})
	return out, err
}

func (m *intercepted) GenerateRecipe(ctx context.Context, dish string, answers []domain.Answer, username string) (*domain.Recipe, error) {
	var out *domain.Recipe
	err := m.around(ctx, OpGenerateRecipe, func(ctx context.Context) error {
		var err error
		out, err = m.next.GenerateRecipe(ctx, dish, answers, username)
		return err
	})
	return out, err
}

func (m *intercepted) AskStep(ctx context.Context, question string, step domain.Step, history []domain.ChatTurn) (ports.StepAnswer, error) {
	var out ports.StepAnswer
	err := m.around(ctx, OpAskStep, func(ctx context.Context) error {
		var err error
		out, err = m.next.AskStep(ctx, question, step, history)
		return err
	})
	return out, err
}

func (m *intercepted) SaveRecipe(ctx context.Context, recipe domain.Recipe, username string) error {
	return m.around(ctx, OpSaveRecipe, func(ctx context.Context) error {
		return m.next.SaveRecipe(ctx, recipe, username)
	})
}

func (m *intercepted) DeleteRecipe(ctx context.Context, username, recipeName string) error {
	return m.around(ctx, OpDeleteRecipe, func(ctx context.Context) error {
		return m.next.DeleteRecipe(ctx, username, recipeName)
	})
}
