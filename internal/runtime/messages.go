package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/broilr/pkg/domain"
)

// Assistant utterances.
const (
	MsgWelcome          = "👨‍🍳 Welcome to Broilr! Would you like to cook a new recipe or load a saved one?"
	MsgAskDish          = "🍽️ What do you want to cook?"
	MsgChoicePrompt     = "👋 Load saved recipes or cook something new!"
	MsgNoSaved          = "📭 No saved recipes found."
	MsgNoSavedToDelete  = "📭 No saved recipes found to delete."
	MsgLoadNoMatch      = "❌ Couldn't find that recipe. Please try again with a number or name. Or say 'delete' to remove one."
	MsgDeleteNoMatch    = "❌ Could not find that recipe. Please try again."
	MsgNoFollowups      = "❌ Couldn't come up with follow-up questions for that dish. Try another dish, or say 'menu' to go back."
	MsgBackToMenu       = "👋 Would you like to load a saved recipe or cook a new one?"
	MsgRecipeGenerated  = "✅ Recipe Generated!"
	MsgEmptyRecipe      = "❌ The recipe came back without any steps. Please answer the last question again."
	MsgRecipeNoSteps    = "❌ That recipe has no steps to cook. Please pick another one."
	MsgReadyToCook      = "🍳 Ready to start cooking? (yes/no)"
	MsgStartPrompt      = "❓ Please let me know if you're ready to start cooking (yes/no)."
	MsgComeBack         = "👋 Come back when you're ready to cook!"
	MsgCompleted        = "🎉 You've completed the recipe! Bon appétit!"
	MsgThanks           = "🧑‍🍳 Thank you for cooking with Broilr!"
	MsgNewRecipeHint    = "Say 'clear' to start a new recipe."
	MsgAskSave          = "💾 Would you like to save this recipe to your profile? (yes/no)"
	MsgSaved            = "✅ Recipe saved to your profile!"
	MsgNoWorries        = "🧑‍🍳 No worries! Thank you for cooking with Broilr!"
	MsgListUpdated      = "🧹 Your recipe list is now updated."
	MsgLoadOrCookAgain  = "👋 Would you like to load another saved recipe or cook a new one?"
	MsgNoAnswer         = "🤔 I don't have an answer for that one. Try asking another way."
	MsgBackendFailure   = "⚠️ Something went wrong talking to the kitchen. Please try again."
	msgLoadedFormat     = "✅ Loaded recipe: %s"
	msgDeletedFormat    = "✅ Deleted recipe: %s"
	msgSummaryFormat    = "🥣 Your recipe has %d ingredients and %d steps."
	msgStepPrefix       = "👣 "
	msgRepeatPrefix     = "🔁 "
	msgSavedListHeader  = "📚 Here are your saved recipes:"
	msgSavedListFooter  = "👉 You can select the number or name to load a recipe.\n🗑️ Or delete a recipe."
	msgDeleteListHeader = "🗑️ Which recipe would you like to delete?"
	msgDeleteSayFooter  = "👉 Please say the number or name of the recipe to delete:"
	msgDeleteSelFooter  = "👉 Please select the number or name of the recipe to delete:"
)

// recipeList renders candidates as a numbered list, one per line.
func recipeList(recipes []domain.Recipe) string {
	lines := make([]string, 0, len(recipes))
	for i, r := range recipes {
		lines = append(lines, fmt.Sprintf("🍽️ %d. %s", i+1, r.Name))
	}
	return strings.Join(lines, "\n")
}

func framedList(header string, recipes []domain.Recipe, footer string) string {
	return header + "\n\n" + recipeList(recipes) + "\n\n" + footer
}

// stepLine narrates the step at index i.
func stepLine(r *domain.Recipe, i int) string {
	step, _ := r.StepAt(i)
	return msgStepPrefix + step.Label(i)
}

// completion is the sequence emitted after the last step.
func completion(fresh bool) []string {
	replies := []string{MsgCompleted, MsgThanks, MsgNewRecipeHint}
	if fresh {
		replies = append(replies, MsgAskSave)
	}
	return replies
}
