package runtime

import (
	"context"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/utterance"
)

// handleStartCooking waits for a yes or no before the first step.
// Affirmative phrases win when both sets match.
func (e *Engine) handleStartCooking(_ context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	switch {
	case utterance.Affirmative.Match(u.Text):
		if s.ActiveRecipe == nil || len(s.ActiveRecipe.Steps) == 0 {
			e.logger.Warn("active recipe has no steps", "err", domain.ErrEmptyResult)
			s.ActiveRecipe = nil
			s.Stage = domain.StageChoice
			return []string{MsgRecipeNoSteps, MsgBackToMenu}, nil
		}
		s.StepCursor = 0
		s.StepHistory = nil
		s.Stage = domain.StageCooking
		return []string{stepLine(s.ActiveRecipe, 0)}, nil
	case utterance.Negative.Match(u.Text):
		s.Stage = domain.StageDone
		return []string{MsgComeBack}, nil
	}
	return []string{MsgStartPrompt}, nil
}

// handleCooking narrates steps and answers questions about the current one.
func (e *Engine) handleCooking(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	step, _ := s.CurrentStep()

	if utterance.Repeat.Match(u.Text) {
		return []string{msgRepeatPrefix + step.Instruction}, nil
	}

	if utterance.Next.Match(u.Text) {
		s.StepHistory = nil
		next := s.StepCursor + 1
		if next < len(s.ActiveRecipe.Steps) {
			s.StepCursor = next
			return []string{stepLine(s.ActiveRecipe, next)}, nil
		}
		if s.FreshlyGenerated {
			s.Stage = domain.StageAskSave
		} else {
			s.Stage = domain.StageDone
		}
		return completion(s.FreshlyGenerated), nil
	}

	question := u.Raw
	var answer ports.StepAnswer
	err := e.call(ctx, s.Stage, "ask_step", func(ctx context.Context) error {
		var err error
		answer, err = e.backend.AskStep(ctx, question, step, s.StepHistory)
		return err
	})
	if err != nil {
		return nil, err
	}

	if answer.History != nil {
		s.StepHistory = answer.History
	} else {
		s.StepHistory = append(s.StepHistory,
			domain.ChatTurn{Role: "user", Parts: []string{question}},
			domain.ChatTurn{Role: "model", Parts: []string{answer.Answer}},
		)
	}
	if answer.Answer == "" {
		return []string{MsgNoAnswer}, nil
	}
	return []string{answer.Answer}, nil
}

// handleAskSave offers to store a freshly generated recipe.
func (e *Engine) handleAskSave(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	if !utterance.SaveAffirmative.Match(u.Text) {
		s.Stage = domain.StageDone
		return []string{MsgNoWorries, MsgNewRecipeHint}, nil
	}

	recipe := *s.ActiveRecipe
	err := e.call(ctx, s.Stage, "save_recipe", func(ctx context.Context) error {
		return e.backend.SaveRecipe(ctx, recipe, e.username)
	})
	if err != nil {
		return nil, err
	}

	s.FreshlyGenerated = false
	s.Stage = domain.StageDone
	return []string{MsgSaved, MsgThanks, MsgNewRecipeHint}, nil
}

// handleDone only points at the reset.
func (e *Engine) handleDone(_ context.Context, _ *domain.Session, _ utterance.Utterance) ([]string, error) {
	return []string{MsgNewRecipeHint}, nil
}
