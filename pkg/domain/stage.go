package domain

// Stage identifies how the next user utterance is interpreted.
type Stage string

const (
	StageChoice       Stage = "choice"         // Initial: new recipe or saved ones?
	StageDish         Stage = "dish"           // Waiting for the dish name
	StageFollowups    Stage = "followups"      // Answering clarifying questions
	StageLoadOrDelete Stage = "load_or_delete" // Picking a saved recipe (or switching to delete)
	StageDelete       Stage = "delete"         // Picking a saved recipe to delete
	StageStartCooking Stage = "start_cooking"  // Yes/no before the first step
	StageCooking      Stage = "cooking"        // Narrating steps
	StageAskSave      Stage = "ask_save"       // Offer to save a freshly generated recipe
	StageDone         Stage = "done"           // Terminal until reset
)

// Stages lists every stage in declaration order.
var Stages = []Stage{
	StageChoice,
	StageDish,
	StageFollowups,
	StageLoadOrDelete,
	StageDelete,
	StageStartCooking,
	StageCooking,
	StageAskSave,
	StageDone,
}

// StageTransitions is the static transition table of the conversation.
// Self-loops are implied for every stage that can re-prompt.
var StageTransitions = map[Stage][]Stage{
	StageChoice:       {StageDish, StageLoadOrDelete, StageDelete},
	StageDish:         {StageFollowups, StageChoice},
	StageFollowups:    {StageStartCooking},
	StageLoadOrDelete: {StageDelete, StageStartCooking},
	StageDelete:       {StageChoice},
	StageStartCooking: {StageCooking, StageDone},
	StageCooking:      {StageAskSave, StageDone},
	StageAskSave:      {StageDone},
}

// IsTerminal reports whether the stage only leaves through an explicit reset.
func (s Stage) IsTerminal() bool {
	return s == StageDone
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}
