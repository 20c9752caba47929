package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

// DefaultQuestions are asked for every dish unless overridden with WithQuestions.
var DefaultQuestions = []string{
	"How many servings do you need?",
	"Do you prefer spicy or mild?",
	"Any ingredients you want to avoid?",
}

type account struct {
	hash    []byte
	recipes []domain.Recipe
}

// Backend implements ports.RecipeBackend without any network.
// Recipes are assembled from a template, which is enough to drive the whole
// conversation offline and in tests. Safe for concurrent use.
type Backend struct {
	mu        sync.RWMutex
	accounts  map[string]*account
	questions []string
	cost      int
}

var _ ports.RecipeBackend = (*Backend)(nil)

// BackendOption configures the Backend.
type BackendOption func(*Backend)

// WithQuestions replaces the follow-up questions. An empty list makes every
// dish come back without questions.
func WithQuestions(questions ...string) BackendOption {
	return func(b *Backend) {
		b.questions = questions
	}
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) BackendOption {
	return func(b *Backend) {
		b.cost = cost
	}
}

// WithRecipes seeds saved recipes for a user that needs no password.
func WithRecipes(username string, recipes ...domain.Recipe) BackendOption {
	return func(b *Backend) {
		acc := b.accountFor(username)
		acc.recipes = append(acc.recipes, recipes...)
	}
}

// NewBackend creates an empty in-memory backend.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		accounts:  make(map[string]*account),
		questions: DefaultQuestions,
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) accountFor(username string) *account {
	acc, ok := b.accounts[username]
	if !ok {
		acc = &account{}
		b.accounts[username] = acc
	}
	return acc
}

// Signup registers a user with a bcrypt-hashed password.
func (b *Backend) Signup(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if acc, ok := b.accounts[username]; ok && acc.hash != nil {
		return domain.ErrUserExists
	}
	b.accountFor(username).hash = hash
	return nil
}

// Login checks the password against the stored hash.
func (b *Backend) Login(ctx context.Context, username, password string) error {
	var hash []byte
	b.mu.RLock()
	if acc, ok := b.accounts[username]; ok {
		hash = acc.hash
	}
	b.mu.RUnlock()
	if hash == nil {
		return fmt.Errorf("%w: user not found", domain.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("%w: incorrect password", domain.ErrInvalidCredentials)
		}
		return err
	}
	return nil
}

// ListRecipes returns a copy of the user's saved recipes.
func (b *Backend) ListRecipes(ctx context.Context, username string) ([]domain.Recipe, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, ok := b.accounts[username]
	if !ok {
		return []domain.Recipe{}, nil
	}
	return append([]domain.Recipe{}, acc.recipes...), nil
}

// Followups returns the configured questions.
func (b *Backend) Followups(ctx context.Context, dish string) ([]string, error) {
	if strings.TrimSpace(dish) == "" {
		return []string{}, nil
	}
	return append([]string{}, b.questions...), nil
}

// GenerateRecipe assembles a recipe from a fixed template.
func (b *Backend) GenerateRecipe(ctx context.Context, dish string, answers []domain.Answer, username string) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(dish)
	if name == "" {
		return nil, fmt.Errorf("%w: dish is required", domain.ErrEmptyResult)
	}
	base := strings.ToLower(name)

	notes := make([]string, 0, len(answers))
	for q, a := range domain.AnswerMap(answers) {
		notes = append(notes, fmt.Sprintf("%s %s", q, a))
	}

	recipe := &domain.Recipe{
		Name: name,
		Ingredients: []domain.Ingredient{
			{Name: base, Quantity: "500g"},
			{Name: "olive oil", Quantity: "2 tbsp"},
			{Name: "salt", Quantity: "to taste"},
		},
		Steps: []domain.Step{
			{Number: 1, Instruction: fmt.Sprintf("Gather and prepare everything for the %s.", base), Minutes: 5, KeyItems: []string{base, "knife", "cutting board"}},
			{Number: 2, Instruction: "Heat the olive oil in a pan over medium heat.", Minutes: 2, KeyItems: []string{"olive oil", "pan"}},
			{Number: 3, Instruction: fmt.Sprintf("Cook the %s until done, seasoning with salt.", base), Minutes: 15, KeyItems: []string{base, "salt"}},
			{Number: 4, Instruction: "Plate and serve warm.", Minutes: 1, KeyItems: []string{"plate"}},
		},
	}
	slices.Sort(notes)
	if len(notes) > 0 {
		recipe.Steps[0].Instruction += " Keep in mind: " + strings.Join(notes, "; ") + "."
	}
	return recipe, nil
}

// AskStep answers from the step's own data and records the exchange.
func (b *Backend) AskStep(ctx context.Context, question string, step domain.Step, history []domain.ChatTurn) (ports.StepAnswer, error) {
	var answer string
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "long") || strings.Contains(q, "time") || strings.Contains(q, "minute"):
		if step.Minutes > 0 {
			answer = fmt.Sprintf("This step takes about %g minutes.", float64(step.Minutes))
		} else {
			answer = "There is no time estimate for this step; go by look and smell."
		}
	case len(step.KeyItems) > 0:
		answer = fmt.Sprintf("For this step you need: %s.", strings.Join(step.KeyItems, ", "))
	default:
		answer = fmt.Sprintf("Just follow the instruction: %s", step.Instruction)
	}

	updated := append(append([]domain.ChatTurn{}, history...),
		domain.ChatTurn{Role: "user", Parts: []string{question}},
		domain.ChatTurn{Role: "model", Parts: []string{answer}},
	)
	return ports.StepAnswer{Answer: answer, History: updated}, nil
}

// SaveRecipe appends the recipe to the user's list.
func (b *Backend) SaveRecipe(ctx context.Context, recipe domain.Recipe, username string) error {
	if username == "" {
		return domain.ErrNotLoggedIn
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accountFor(username)
	acc.recipes = append(acc.recipes, recipe)
	return nil
}

// DeleteRecipe removes every saved recipe with that name.
func (b *Backend) DeleteRecipe(ctx context.Context, username, recipeName string) error {
	if username == "" || recipeName == "" {
		return errors.New("missing username or recipe name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[username]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoMatch, recipeName)
	}
	kept := acc.recipes[:0]
	for _, r := range acc.recipes {
		if r.Name != recipeName {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(acc.recipes) {
		return fmt.Errorf("%w: %s", domain.ErrNoMatch, recipeName)
	}
	acc.recipes = kept
	return nil
}
