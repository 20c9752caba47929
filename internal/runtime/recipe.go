package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/utterance"
)

// handleDish records the dish and fetches its clarifying questions.
func (e *Engine) handleDish(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	if utterance.Back.Equals(u.Text) {
		s.Stage = domain.StageChoice
		return []string{MsgBackToMenu}, nil
	}

	dish := u.Raw
	var questions []string
	err := e.call(ctx, s.Stage, "followups", func(ctx context.Context) error {
		var err error
		questions, err = e.backend.Followups(ctx, dish)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Dish = dish
	if len(questions) == 0 {
		e.logger.Warn("no follow-up questions", "dish", dish, "err", domain.ErrEmptyResult)
		return []string{MsgNoFollowups}, nil
	}

	s.Pending = &domain.FollowupQueue{Questions: questions}
	s.Answers = nil
	s.Stage = domain.StageFollowups
	return []string{questions[0]}, nil
}

// handleFollowups records an answer, asks the next question or generates the recipe.
func (e *Engine) handleFollowups(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	queue, _ := s.Followups()
	question, _ := queue.Current()
	s.Answers = append(s.Answers, domain.Answer{Question: question, Text: u.Raw})

	if queue.HasNext() {
		queue.Index++
		next, _ := queue.Current()
		return []string{next}, nil
	}

	var recipe *domain.Recipe
	err := e.call(ctx, s.Stage, "generate_recipe", func(ctx context.Context) error {
		var err error
		recipe, err = e.backend.GenerateRecipe(ctx, s.Dish, s.Answers, e.username)
		return err
	})
	if err != nil {
		return nil, err
	}
	if recipe == nil || len(recipe.Steps) == 0 {
		e.logger.Warn("generated recipe has no steps", "dish", s.Dish, "err", domain.ErrEmptyResult)
		// Leave the queue on the last question so the user can retry.
		s.Answers = s.Answers[:len(s.Answers)-1]
		return []string{MsgEmptyRecipe}, nil
	}

	s.Pending = nil
	s.ActiveRecipe = recipe
	s.FreshlyGenerated = true
	s.StepCursor = 0
	s.StepHistory = nil
	s.Stage = domain.StageStartCooking
	return []string{
		MsgRecipeGenerated,
		fmt.Sprintf(msgSummaryFormat, len(recipe.Ingredients), len(recipe.Steps)),
		MsgReadyToCook,
	}, nil
}
