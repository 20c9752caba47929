package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/utterance"
)

// handleChoice routes between saved recipes, deletion and a new dish.
func (e *Engine) handleChoice(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	switch {
	case utterance.Load.Match(u.Text):
		recipes, err := e.listRecipes(ctx, s.Stage)
		if err != nil {
			return nil, err
		}
		if len(recipes) == 0 {
			return []string{MsgNoSaved}, nil
		}
		s.Pending = &domain.CandidateList{Recipes: recipes}
		s.Stage = domain.StageLoadOrDelete
		return []string{framedList(msgSavedListHeader, recipes, msgSavedListFooter)}, nil

	case utterance.Delete.Match(u.Text):
		recipes, err := e.listRecipes(ctx, s.Stage)
		if err != nil {
			return nil, err
		}
		if len(recipes) == 0 {
			return []string{MsgNoSavedToDelete}, nil
		}
		s.Pending = &domain.CandidateList{Recipes: recipes}
		s.Stage = domain.StageDelete
		return []string{framedList(msgDeleteListHeader, recipes, msgDeleteSayFooter)}, nil

	case utterance.NewDish.Match(u.Text):
		s.Stage = domain.StageDish
		return []string{MsgAskDish}, nil
	}
	return []string{MsgChoicePrompt}, nil
}

// handleLoadOrDelete picks a saved recipe to cook, or switches to deletion.
func (e *Engine) handleLoadOrDelete(_ context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	candidates, _ := s.Candidates()

	if utterance.Delete.Match(u.Text) {
		s.Stage = domain.StageDelete
		return []string{framedList(msgDeleteListHeader, candidates.Recipes, msgDeleteSelFooter)}, nil
	}

	recipe, ok := resolveCandidate(candidates.Recipes, u)
	if !ok {
		return []string{MsgLoadNoMatch}, nil
	}
	if len(recipe.Steps) == 0 {
		e.logger.Warn("saved recipe has no steps", "recipe", recipe.Name, "err", domain.ErrEmptyResult)
		return []string{MsgRecipeNoSteps}, nil
	}

	s.Pending = nil
	s.ActiveRecipe = &recipe
	s.FreshlyGenerated = false
	s.StepCursor = 0
	s.StepHistory = nil
	s.Stage = domain.StageStartCooking
	return []string{fmt.Sprintf(msgLoadedFormat, recipe.Name), MsgReadyToCook}, nil
}

// handleDelete removes the selected saved recipe and returns to the menu.
func (e *Engine) handleDelete(ctx context.Context, s *domain.Session, u utterance.Utterance) ([]string, error) {
	candidates, _ := s.Candidates()

	recipe, ok := resolveCandidate(candidates.Recipes, u)
	if !ok {
		return []string{MsgDeleteNoMatch}, nil
	}

	err := e.call(ctx, s.Stage, "delete_recipe", func(ctx context.Context) error {
		return e.backend.DeleteRecipe(ctx, e.username, recipe.Name)
	})
	if err != nil {
		return nil, err
	}

	s.Pending = nil
	s.Stage = domain.StageChoice
	return []string{
		fmt.Sprintf(msgDeletedFormat, recipe.Name),
		MsgListUpdated,
		MsgLoadOrCookAgain,
	}, nil
}

func (e *Engine) listRecipes(ctx context.Context, stage domain.Stage) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	err := e.call(ctx, stage, "load_recipes", func(ctx context.Context) error {
		var err error
		recipes, err = e.backend.ListRecipes(ctx, e.username)
		return err
	})
	return recipes, err
}
