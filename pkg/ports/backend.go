package ports

import (
	"context"

	"github.com/aretw0/broilr/pkg/domain"
)

// StepAnswer is the backend reply to a question asked while cooking.
type StepAnswer struct {
	Answer  string            `json:"answer"`
	History []domain.ChatTurn `json:"history,omitempty"`
}

// RecipeBackend is the contract of the external recipe service.
// Every operation completes or fails as a unit. Transport and server failures
// wrap domain.ErrBackend.
type RecipeBackend interface {
	// Login verifies credentials. Returns domain.ErrInvalidCredentials on rejection.
	Login(ctx context.Context, username, password string) error

	// Signup registers a user. Returns domain.ErrUserExists if the name is taken.
	Signup(ctx context.Context, username, password string) error

	// ListRecipes returns the saved recipes of a user, possibly none.
	ListRecipes(ctx context.Context, username string) ([]domain.Recipe, error)

	// Followups returns clarifying questions for a dish. May be empty.
	Followups(ctx context.Context, dish string) ([]string, error)

	// GenerateRecipe produces a recipe from the dish and the collected answers.
	GenerateRecipe(ctx context.Context, dish string, answers []domain.Answer, username string) (*domain.Recipe, error)

	// AskStep answers a free-form question about the current step.
	AskStep(ctx context.Context, question string, step domain.Step, history []domain.ChatTurn) (StepAnswer, error)

	// SaveRecipe stores a recipe under the user's profile.
	SaveRecipe(ctx context.Context, recipe domain.Recipe, username string) error

	// DeleteRecipe removes a saved recipe by name.
	DeleteRecipe(ctx context.Context, username, recipeName string) error
}
