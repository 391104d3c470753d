package models

// SessionPhase is the lifecycle phase of one candidate's timed attempt.
type SessionPhase string

const (
	PhaseNotStarted SessionPhase = "NotStarted"
	PhaseInProgress SessionPhase = "InProgress"
	PhaseSubmitting SessionPhase = "Submitting"
	PhaseSubmitted  SessionPhase = "Submitted"

	// PhaseExpiredPending marks a session whose time ran out and whose
	// forced submission failed. Answer edits stay rejected; only a
	// submission retry can leave this phase.
	PhaseExpiredPending SessionPhase = "ExpiredPending"
)

// AcceptsEdits reports whether answer mutation and navigation are allowed.
func (p SessionPhase) AcceptsEdits() bool {
	return p == PhaseInProgress
}

// Terminal reports whether the session aggregate is done and discardable.
func (p SessionPhase) Terminal() bool {
	return p == PhaseSubmitted
}

// SessionState is the orchestrator's externally visible snapshot of one
// session, built per request.
type SessionState struct {
	SessionID        string                `json:"session_id"`
	Phase            SessionPhase          `json:"phase"`
	Questions        []Question            `json:"questions,omitempty"`
	CurrentIndex     int                   `json:"current_index"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	AnsweredCount    int                   `json:"answered_count"`
	TotalQuestions   int                   `json:"total_questions"`
	Answers          map[uint]AnswerRecord `json:"answers,omitempty"`
}
