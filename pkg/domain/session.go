package domain

import "fmt"

// Pending is the stage-scoped work slot of a Session.
// It holds either a *FollowupQueue (new-recipe path) or a *CandidateList
// (load/delete paths). The concrete type tells the two apart.
type Pending interface {
	pendingKind() string
}

// FollowupQueue is the ordered list of clarifying questions still being asked.
type FollowupQueue struct {
	Questions []string
	Index     int
}

func (*FollowupQueue) pendingKind() string { return "followups" }

// Current returns the question awaiting an answer.
func (q *FollowupQueue) Current() (string, bool) {
	if q == nil || q.Index < 0 || q.Index >= len(q.Questions) {
		return "", false
	}
	return q.Questions[q.Index], true
}

// HasNext reports whether another question follows the current one.
func (q *FollowupQueue) HasNext() bool {
	return q != nil && q.Index+1 < len(q.Questions)
}

// CandidateList is the set of saved recipes presented for load or delete.
type CandidateList struct {
	Recipes []Recipe
}

func (*CandidateList) pendingKind() string { return "candidates" }

// Answer is the user's reply to one follow-up question.
type Answer struct {
	Question string `json:"question"`
	Text     string `json:"answer"`
}

// Session is the mutable state of one conversation.
type Session struct {
	Stage            Stage
	Dish             string
	Pending          Pending
	Answers          []Answer
	ActiveRecipe     *Recipe
	StepCursor       int
	FreshlyGenerated bool

	// StepHistory is the Q&A exchange about the current step.
	StepHistory []ChatTurn
}

// NewSession creates a session at the initial choice stage.
func NewSession() *Session {
	return &Session{Stage: StageChoice}
}

// ResetSession creates a fresh session that skips the choice stage.
func ResetSession() *Session {
	return &Session{Stage: StageDish}
}

// Followups returns the pending follow-up queue, if that is what the slot holds.
func (s *Session) Followups() (*FollowupQueue, bool) {
	q, ok := s.Pending.(*FollowupQueue)
	return q, ok && q != nil
}

// Candidates returns the pending candidate list, if that is what the slot holds.
func (s *Session) Candidates() (*CandidateList, bool) {
	c, ok := s.Pending.(*CandidateList)
	return c, ok && c != nil
}

// CurrentStep returns the step under the cursor.
func (s *Session) CurrentStep() (Step, bool) {
	return s.ActiveRecipe.StepAt(s.StepCursor)
}

// Clone returns a copy that shares no mutable slices with s.
// Recipes are read-only and are shared.
func (s *Session) Clone() *Session {
	c := *s
	switch p := s.Pending.(type) {
	case *FollowupQueue:
		if p != nil {
			c.Pending = &FollowupQueue{
				Questions: append([]string(nil), p.Questions...),
				Index:     p.Index,
			}
		}
	case *CandidateList:
		if p != nil {
			c.Pending = &CandidateList{Recipes: append([]Recipe(nil), p.Recipes...)}
		}
	}
	c.Answers = append([]Answer(nil), s.Answers...)
	c.StepHistory = append([]ChatTurn(nil), s.StepHistory...)
	return &c
}

// Validate checks the stage-scoped invariants.
func (s *Session) Validate() error {
	if !s.Stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidSession, s.Stage)
	}
	switch s.Stage {
	case StageCooking:
		if _, ok := s.CurrentStep(); !ok {
			return fmt.Errorf("%w: step cursor %d out of range", ErrInvalidSession, s.StepCursor)
		}
	case StageFollowups:
		q, ok := s.Followups()
		if !ok {
			return fmt.Errorf("%w: followups stage without a question queue", ErrInvalidSession)
		}
		if _, ok := q.Current(); !ok {
			return fmt.Errorf("%w: question index %d out of range", ErrInvalidSession, q.Index)
		}
	case StageLoadOrDelete, StageDelete:
		c, ok := s.Candidates()
		if !ok || len(c.Recipes) == 0 {
			return fmt.Errorf("%w: %s stage without candidates", ErrInvalidSession, s.Stage)
		}
	case StageStartCooking, StageAskSave:
		if s.ActiveRecipe == nil {
			return fmt.Errorf("%w: %s stage without an active recipe", ErrInvalidSession, s.Stage)
		}
	}
	return nil
}

// AnswerMap keys answers by question text for the backend.
// A repeated question gets a " (2)", " (3)"... suffix so no answer is lost.
func AnswerMap(answers []Answer) map[string]string {
	m := make(map[string]string, len(answers))
	seen := make(map[string]int, len(answers))
	for _, a := range answers {
		seen[a.Question]++
		key := a.Question
		if n := seen[a.Question]; n > 1 {
			key = fmt.Sprintf("%s (%d)", a.Question, n)
		}
		m[key] = a.Text
	}
	return m
}
