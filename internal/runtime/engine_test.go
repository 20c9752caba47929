package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/broilr/internal/runtime"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/ports"
	"github.com/aretw0/broilr/pkg/utterance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const user = "julia"

func step(t *testing.T, e *runtime.Engine, s *domain.Session, raw string) runtime.Result {
	t.Helper()
	res, err := e.Step(context.Background(), s, utterance.New(raw))
	require.NoError(t, err)
	return res
}

func cookingSession(fresh bool) *domain.Session {
	s := domain.NewSession()
	s.Stage = domain.StageCooking
	s.ActiveRecipe = pastaRecipe()
	s.FreshlyGenerated = fresh
	return s
}

func TestEngine_Scenario_NewRecipe(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Followups", mock.Anything, "pasta").Return([]string{"How many servings?"}, nil).Once()
	backend.On("GenerateRecipe", mock.Anything, "pasta",
		[]domain.Answer{{Question: "How many servings?", Text: "two"}}, user).
		Return(pastaRecipe(), nil).Once()

	e := runtime.NewEngine(backend, user)
	s := domain.NewSession()

	res := step(t, e, s, "new")
	assert.Equal(t, domain.StageDish, res.Session.Stage)
	assert.Equal(t, []string{"🍽️ What do you want to cook?"}, res.Replies)

	res = step(t, e, res.Session, "pasta")
	assert.Equal(t, domain.StageFollowups, res.Session.Stage)
	assert.Equal(t, []string{"How many servings?"}, res.Replies)

	res = step(t, e, res.Session, "two")
	assert.Equal(t, domain.StageStartCooking, res.Session.Stage)
	assert.Equal(t, []string{
		"✅ Recipe Generated!",
		"🥣 Your recipe has 3 ingredients and 2 steps.",
		"🍳 Ready to start cooking? (yes/no)",
	}, res.Replies)
	assert.True(t, res.Session.FreshlyGenerated)

	res = step(t, e, res.Session, "yes")
	assert.Equal(t, domain.StageCooking, res.Session.Stage)
	assert.Equal(t, 0, res.Session.StepCursor)
	assert.Equal(t, []string{"👣 Step 1: Boil the pasta."}, res.Replies)

	res = step(t, e, res.Session, "next")
	assert.Equal(t, 1, res.Session.StepCursor)
	assert.Equal(t, []string{"👣 Step 2: Toss with the sauce."}, res.Replies)

	res = step(t, e, res.Session, "next")
	assert.Equal(t, domain.StageAskSave, res.Session.Stage)
	assert.Equal(t, runtime.MsgCompleted, res.Replies[0])
	assert.Equal(t, runtime.MsgAskSave, res.Replies[len(res.Replies)-1])

	backend.AssertExpectations(t)
}

func TestEngine_UnrecognizedUtteranceReprompts(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)

	withCandidates := func(stage domain.Stage) *domain.Session {
		s := domain.NewSession()
		s.Stage = stage
		s.Pending = &domain.CandidateList{Recipes: savedRecipes()}
		return s
	}
	withRecipe := func(stage domain.Stage) *domain.Session {
		s := domain.NewSession()
		s.Stage = stage
		s.ActiveRecipe = pastaRecipe()
		return s
	}

	tests := []struct {
		name  string
		sess  *domain.Session
		reply string
	}{
		{"choice", domain.NewSession(), runtime.MsgChoicePrompt},
		{"load_or_delete", withCandidates(domain.StageLoadOrDelete), runtime.MsgLoadNoMatch},
		{"delete", withCandidates(domain.StageDelete), runtime.MsgDeleteNoMatch},
		{"start_cooking", withRecipe(domain.StageStartCooking), runtime.MsgStartPrompt},
		{"done", withRecipe(domain.StageDone), runtime.MsgNewRecipeHint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := step(t, e, tt.sess, "purple elephant")
			assert.Equal(t, tt.sess.Stage, res.Session.Stage)
			assert.Equal(t, []string{tt.reply}, res.Replies)
		})
	}
}

func TestEngine_SelectByIndexAndName(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageLoadOrDelete
	s.Pending = &domain.CandidateList{Recipes: savedRecipes()}

	for _, input := range []string{"2", "two", "banana", "BREAD"} {
		t.Run(input, func(t *testing.T) {
			res := step(t, e, s, input)
			require.Equal(t, domain.StageStartCooking, res.Session.Stage)
			assert.Equal(t, "Banana Bread", res.Session.ActiveRecipe.Name)
			assert.False(t, res.Session.FreshlyGenerated)
			assert.Equal(t, []string{"✅ Loaded recipe: Banana Bread", runtime.MsgReadyToCook}, res.Replies)
			_, pending := res.Session.Candidates()
			assert.False(t, pending)
		})
	}

	t.Run("out of range index", func(t *testing.T) {
		res := step(t, e, s, "7")
		assert.Equal(t, domain.StageLoadOrDelete, res.Session.Stage)
		assert.Equal(t, []string{runtime.MsgLoadNoMatch}, res.Replies)
	})
}

func TestEngine_LoadRejectsRecipeWithoutSteps(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageLoadOrDelete
	s.Pending = &domain.CandidateList{Recipes: []domain.Recipe{{Name: "Empty Soup"}}}

	res := step(t, e, s, "1")
	assert.Equal(t, domain.StageLoadOrDelete, res.Session.Stage)
	assert.Nil(t, res.Session.ActiveRecipe)
	assert.Equal(t, []string{runtime.MsgRecipeNoSteps}, res.Replies)
	_, pending := res.Session.Candidates()
	assert.True(t, pending, "the list stays available for another pick")
}

func TestEngine_StartCookingWithoutStepsReturnsToMenu(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageStartCooking
	s.ActiveRecipe = &domain.Recipe{Name: "Empty Soup"}

	res := step(t, e, s, "yes")
	assert.Equal(t, domain.StageChoice, res.Session.Stage)
	assert.Nil(t, res.Session.ActiveRecipe)
	assert.Equal(t, []string{runtime.MsgRecipeNoSteps, runtime.MsgBackToMenu}, res.Replies)
	require.NoError(t, res.Session.Validate())

	res = step(t, e, res.Session, "new")
	assert.Equal(t, domain.StageDish, res.Session.Stage)
}

func TestEngine_LoadOrDeleteSwitchesToDelete(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageLoadOrDelete
	s.Pending = &domain.CandidateList{Recipes: savedRecipes()}

	res := step(t, e, s, "actually, delete one")
	assert.Equal(t, domain.StageDelete, res.Session.Stage)
	require.Len(t, res.Replies, 1)
	assert.Contains(t, res.Replies[0], "🍽️ 1. Tomato Soup\n🍽️ 2. Banana Bread")
	assert.Contains(t, res.Replies[0], "Please select the number or name")
}

func TestEngine_ChoiceLoadsCandidates(t *testing.T) {
	backend := new(mockBackend)
	backend.On("ListRecipes", mock.Anything, user).Return(savedRecipes(), nil)
	e := runtime.NewEngine(backend, user)

	res := step(t, e, domain.NewSession(), "show my saved recipes")
	assert.Equal(t, domain.StageLoadOrDelete, res.Session.Stage)
	assert.Equal(t, []string{
		"📚 Here are your saved recipes:\n\n🍽️ 1. Tomato Soup\n🍽️ 2. Banana Bread\n\n👉 You can select the number or name to load a recipe.\n🗑️ Or delete a recipe.",
	}, res.Replies)
	c, ok := res.Session.Candidates()
	require.True(t, ok)
	assert.Len(t, c.Recipes, 2)
}

func TestEngine_DeleteWithNoSavedRecipes(t *testing.T) {
	backend := new(mockBackend)
	backend.On("ListRecipes", mock.Anything, user).Return([]domain.Recipe{}, nil)
	e := runtime.NewEngine(backend, user)

	res := step(t, e, domain.NewSession(), "delete")
	assert.Equal(t, domain.StageChoice, res.Session.Stage)
	assert.Equal(t, []string{"📭 No saved recipes found to delete."}, res.Replies)
	assert.Nil(t, res.Session.Pending)

	res = step(t, e, domain.NewSession(), "load")
	assert.Equal(t, domain.StageChoice, res.Session.Stage)
	assert.Equal(t, []string{"📭 No saved recipes found."}, res.Replies)
}

func TestEngine_DeleteSelected(t *testing.T) {
	backend := new(mockBackend)
	backend.On("DeleteRecipe", mock.Anything, user, "Tomato Soup").Return(nil).Once()
	e := runtime.NewEngine(backend, user)

	s := domain.NewSession()
	s.Stage = domain.StageDelete
	s.Pending = &domain.CandidateList{Recipes: savedRecipes()}

	res := step(t, e, s, "soup")
	assert.Equal(t, domain.StageChoice, res.Session.Stage)
	assert.Equal(t, []string{
		"✅ Deleted recipe: Tomato Soup",
		"🧹 Your recipe list is now updated.",
		"👋 Would you like to load another saved recipe or cook a new one?",
	}, res.Replies)
	backend.AssertExpectations(t)
}

func TestEngine_NextNTimesNeverOverruns(t *testing.T) {
	for _, fresh := range []bool{true, false} {
		e := runtime.NewEngine(new(mockBackend), user)
		s := cookingSession(fresh)
		n := len(s.ActiveRecipe.Steps)

		for i := 0; i < n; i++ {
			res := step(t, e, s, "next")
			s = res.Session
			if s.Stage == domain.StageCooking {
				assert.Less(t, s.StepCursor, n)
			}
		}

		if fresh {
			assert.Equal(t, domain.StageAskSave, s.Stage)
		} else {
			assert.Equal(t, domain.StageDone, s.Stage)
		}
		assert.Equal(t, n-1, s.StepCursor)
		assert.NoError(t, s.Validate())
	}
}

func TestEngine_RepeatWinsOverNext(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := cookingSession(false)

	res := step(t, e, s, "okay say again")
	assert.Equal(t, []string{"🔁 Boil the pasta."}, res.Replies)
	assert.Equal(t, 0, res.Session.StepCursor)
}

func TestEngine_StartCookingPrefersAffirmative(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageStartCooking
	s.ActiveRecipe = pastaRecipe()

	res := step(t, e, s, "yes, no time to waste")
	assert.Equal(t, domain.StageCooking, res.Session.Stage)

	res = step(t, e, s, "not now")
	assert.Equal(t, domain.StageDone, res.Session.Stage)
	assert.Equal(t, []string{runtime.MsgComeBack}, res.Replies)

	// "know" must not read as "no"
	res = step(t, e, s, "I know")
	assert.Equal(t, domain.StageStartCooking, res.Session.Stage)
}

func TestEngine_StepQuestionKeepsHistory(t *testing.T) {
	backend := new(mockBackend)
	history := []domain.ChatTurn{
		{Role: "user", Parts: []string{"How long?"}},
		{Role: "model", Parts: []string{"About 10 minutes."}},
	}
	backend.On("AskStep", mock.Anything, "How long?", pastaRecipe().Steps[0], []domain.ChatTurn(nil)).
		Return(ports.StepAnswer{Answer: "About 10 minutes.", History: history}, nil).Once()
	e := runtime.NewEngine(backend, user)

	res := step(t, e, cookingSession(true), "How long?")
	assert.Equal(t, domain.StageCooking, res.Session.Stage)
	assert.Equal(t, []string{"About 10 minutes."}, res.Replies)
	assert.Equal(t, history, res.Session.StepHistory)

	res = step(t, e, res.Session, "next")
	assert.Empty(t, res.Session.StepHistory)
	backend.AssertExpectations(t)
}

func TestEngine_BackendFailureLeavesSessionUntouched(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Followups", mock.Anything, "pasta").Return([]string{"Spicy?", "Servings?"}, nil)
	backend.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything, user).
		Return(nil, errors.New("connection refused"))
	e := runtime.NewEngine(backend, user)

	s := domain.ResetSession()
	s = step(t, e, s, "pasta").Session
	s = step(t, e, s, "mild").Session
	before := s.Clone()

	res, err := e.Step(context.Background(), s, utterance.New("four"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.Equal(t, []string{runtime.MsgBackendFailure}, res.Replies)
	assert.Same(t, s, res.Session)
	assert.Equal(t, before, s)
	assert.Nil(t, s.ActiveRecipe)
	assert.Len(t, s.Answers, 1)
}

func TestEngine_FollowupsCollectOneAnswerPerQuestion(t *testing.T) {
	questions := []string{"Spicy?", "Servings?", "Spicy?"}
	backend := new(mockBackend)
	backend.On("Followups", mock.Anything, "curry").Return(questions, nil)
	backend.On("GenerateRecipe", mock.Anything, "curry", mock.Anything, user).Return(pastaRecipe(), nil).Once()
	e := runtime.NewEngine(backend, user)

	s := step(t, e, domain.ResetSession(), "curry").Session
	for _, a := range []string{"mild", "4", "actually hot"} {
		s = step(t, e, s, a).Session
	}

	assert.Equal(t, domain.StageStartCooking, s.Stage)
	assert.Equal(t, []domain.Answer{
		{Question: "Spicy?", Text: "mild"},
		{Question: "Servings?", Text: "4"},
		{Question: "Spicy?", Text: "actually hot"},
	}, s.Answers)
	backend.AssertExpectations(t)
}

func TestEngine_EmptyFollowupsOffersWayBack(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Followups", mock.Anything, "air").Return([]string{}, nil)
	e := runtime.NewEngine(backend, user)

	res := step(t, e, domain.ResetSession(), "air")
	assert.Equal(t, domain.StageDish, res.Session.Stage)
	assert.Equal(t, []string{runtime.MsgNoFollowups}, res.Replies)

	res = step(t, e, res.Session, "menu")
	assert.Equal(t, domain.StageChoice, res.Session.Stage)
	backend.AssertNumberOfCalls(t, "Followups", 1)
}

func TestEngine_EmptyGenerationKeepsLastQuestion(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Followups", mock.Anything, "stew").Return([]string{"Servings?"}, nil)
	backend.On("GenerateRecipe", mock.Anything, "stew", mock.Anything, user).Return(&domain.Recipe{Name: "Stew"}, nil)
	e := runtime.NewEngine(backend, user)

	s := step(t, e, domain.ResetSession(), "stew").Session
	res := step(t, e, s, "two")
	assert.Equal(t, domain.StageFollowups, res.Session.Stage)
	assert.Equal(t, []string{runtime.MsgEmptyRecipe}, res.Replies)
	assert.Empty(t, res.Session.Answers)
}

func TestEngine_AskSave(t *testing.T) {
	backend := new(mockBackend)
	backend.On("SaveRecipe", mock.Anything, *pastaRecipe(), user).Return(nil).Once()
	e := runtime.NewEngine(backend, user)

	s := cookingSession(true)
	s.Stage = domain.StageAskSave

	res := step(t, e, s, "yes please")
	assert.Equal(t, domain.StageDone, res.Session.Stage)
	assert.Equal(t, runtime.MsgSaved, res.Replies[0])

	res = step(t, e, s, "nah")
	assert.Equal(t, domain.StageDone, res.Session.Stage)
	assert.Equal(t, runtime.MsgNoWorries, res.Replies[0])
	backend.AssertExpectations(t)
}

func TestEngine_RejectsInvalidSession(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()
	s.Stage = domain.StageCooking

	_, err := e.Step(context.Background(), s, utterance.New("next"))
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = e.Step(context.Background(), nil, utterance.New("next"))
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestEngine_IgnoresEmptyUtterance(t *testing.T) {
	e := runtime.NewEngine(new(mockBackend), user)
	s := domain.NewSession()

	res := step(t, e, s, "   ")
	assert.Same(t, s, res.Session)
	assert.Empty(t, res.Replies)
}
