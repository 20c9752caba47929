package runtime_test

import (
	"context"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock
}

var _ ports.RecipeBackend = (*mockBackend)(nil)

func (m *mockBackend) Login(ctx context.Context, username, password string) error {
	return m.Called(ctx, username, password).Error(0)
}

func (m *mockBackend) Signup(ctx context.Context, username, password string) error {
	return m.Called(ctx, username, password).Error(0)
}

func (m *mockBackend) ListRecipes(ctx context.Context, username string) ([]domain.Recipe, error) {
	args := m.Called(ctx, username)
	recipes, _ := args.Get(0).([]domain.Recipe)
	return recipes, args.Error(1)
}

func (m *mockBackend) Followups(ctx context.Context, dish string) ([]string, error) {
	args := m.Called(ctx, dish)
	questions, _ := args.Get(0).([]string)
	return questions, args.Error(1)
}

func (m *mockBackend) GenerateRecipe(ctx context.Context, dish string, answers []domain.Answer, username string) (*domain.Recipe, error) {
	args := m.Called(ctx, dish, answers, username)
	recipe, _ := args.Get(0).(*domain.Recipe)
	return recipe, args.Error(1)
}

func (m *mockBackend) AskStep(ctx context.Context, question string, step domain.Step, history []domain.ChatTurn) (ports.StepAnswer, error) {
	args := m.Called(ctx, question, step, history)
	answer, _ := args.Get(0).(ports.StepAnswer)
	return answer, args.Error(1)
}

func (m *mockBackend) SaveRecipe(ctx context.Context, recipe domain.Recipe, username string) error {
	return m.Called(ctx, recipe, username).Error(0)
}

func (m *mockBackend) DeleteRecipe(ctx context.Context, username, recipeName string) error {
	return m.Called(ctx, username, recipeName).Error(0)
}

func pastaRecipe() *domain.Recipe {
	return &domain.Recipe{
		Name: "Pasta al Pomodoro",
		Ingredients: []domain.Ingredient{
			{Name: "spaghetti", Quantity: "200g"},
			{Name: "tomatoes", Quantity: "4"},
			{Name: "basil"},
		},
		Steps: []domain.Step{
			{Number: 1, Instruction: "Boil the pasta."},
			{Number: 2, Instruction: "Toss with the sauce."},
		},
	}
}

func savedRecipes() []domain.Recipe {
	return []domain.Recipe{
		{Name: "Tomato Soup", Steps: []domain.Step{{Number: 1, Instruction: "Simmer."}}},
		{Name: "Banana Bread", Steps: []domain.Step{{Number: 1, Instruction: "Mash."}, {Number: 2, Instruction: "Bake."}}},
	}
}
