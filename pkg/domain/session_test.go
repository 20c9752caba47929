package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_PendingIsTagged(t *testing.T) {
	s := domain.NewSession()
	s.Pending = &domain.CandidateList{Recipes: []domain.Recipe{{Name: "Soup"}}}

	_, ok := s.Followups()
	assert.False(t, ok, "a candidate list must never be read as a follow-up queue")

	c, ok := s.Candidates()
	require.True(t, ok)
	assert.Equal(t, "Soup", c.Recipes[0].Name)
}

func TestSession_CloneIsIsolated(t *testing.T) {
	s := domain.NewSession()
	s.Pending = &domain.FollowupQueue{Questions: []string{"a", "b"}}
	s.Answers = []domain.Answer{{Question: "a", Text: "1"}}

	c := s.Clone()
	q, _ := c.Followups()
	q.Index = 1
	q.Questions[0] = "changed"
	c.Answers[0].Text = "2"

	orig, _ := s.Followups()
	assert.Equal(t, 0, orig.Index)
	assert.Equal(t, "a", orig.Questions[0])
	assert.Equal(t, "1", s.Answers[0].Text)
}

func TestSession_Validate(t *testing.T) {
	recipe := &domain.Recipe{Name: "Toast", Steps: []domain.Step{{Number: 1, Instruction: "Toast bread"}}}

	tests := []struct {
		name    string
		session domain.Session
		wantErr bool
	}{
		{"choice", domain.Session{Stage: domain.StageChoice}, false},
		{"unknown stage", domain.Session{Stage: "oven"}, true},
		{"cooking in range", domain.Session{Stage: domain.StageCooking, ActiveRecipe: recipe}, false},
		{"cooking out of range", domain.Session{Stage: domain.StageCooking, ActiveRecipe: recipe, StepCursor: 1}, true},
		{"cooking without recipe", domain.Session{Stage: domain.StageCooking}, true},
		{"delete without candidates", domain.Session{Stage: domain.StageDelete}, true},
		{"followups with candidates", domain.Session{Stage: domain.StageFollowups, Pending: &domain.CandidateList{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidSession), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecipe_LenientDecoding(t *testing.T) {
	payload := `{
		"recipe_name": "Paneer",
		"ingredients": ["salt", {"name": "Paneer", "quantity": 200}],
		"steps": [
			{"step_number": 1, "instruction": "Heat butter", "estimated_time": "2 min", "key_ingredients_or_tools": ["butter"]},
			{"step_number": 2, "instruction": "Add paneer", "estimated_time": 5}
		]
	}`
	var r domain.Recipe
	require.NoError(t, json.Unmarshal([]byte(payload), &r))

	assert.Equal(t, "salt", r.Ingredients[0].Name)
	assert.Equal(t, "200", r.Ingredients[1].Quantity)
	assert.Equal(t, domain.Minutes(2), r.Steps[0].Minutes)
	assert.Equal(t, domain.Minutes(5), r.Steps[1].Minutes)
	assert.Equal(t, "Step 2: Add paneer", r.Steps[1].Label(1))
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnStageEnter: func(_ context.Context, _ *domain.StageEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnStageEnter: func(_ context.Context, _ *domain.StageEvent) { calls = append(calls, "b") }}

	merged := a.Merge(b)
	merged.OnStageEnter(context.Background(), &domain.StageEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, merged.OnBackendCall)
}

func TestAnswerMap_SuffixesDuplicates(t *testing.T) {
	m := domain.AnswerMap([]domain.Answer{
		{Question: "Spicy?", Text: "yes"},
		{Question: "Servings?", Text: "two"},
		{Question: "Spicy?", Text: "very"},
	})
	assert.Equal(t, map[string]string{
		"Spicy?":     "yes",
		"Servings?":  "two",
		"Spicy? (2)": "very",
	}, m)
}
