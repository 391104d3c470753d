package services

import (
	"context"

	"github.com/tsix-platform/session-service/internal/models"
)

// ScoringGateway is the transport collaborator that carries the one-shot
// submission to the scoring service. Timeouts and retries below a single
// call are its business, not the engine's.
type ScoringGateway interface {
	SubmitTest(ctx context.Context, req *models.SubmitTestRequest) (*models.SubmitTestResponse, error)
}

// SessionService is the public contract of the session orchestrator.
type SessionService interface {
	// Start begins a timed session from the bootstrap payload, attempting
	// answer recovery before accepting interaction. Fails if the session is
	// already in progress or submitting.
	Start(ctx context.Context, req *StartSessionRequest) (*models.SessionState, error)

	// State returns the current snapshot of the session.
	State(ctx context.Context, sessionID string) (*models.SessionState, error)

	// Navigate repoints the current-question cursor. Out-of-range indices
	// are ignored.
	Navigate(ctx context.Context, sessionID string, index int) (*models.SessionState, error)

	// SetAnswer captures or overwrites the answer for one question. Ignored
	// once the session is no longer in progress.
	SetAnswer(ctx context.Context, sessionID string, req *SetAnswerRequest) error

	// Submit runs the submission pipeline at most once; concurrent callers
	// await the first caller's outcome. Also used to retry after a failed
	// expiry submission.
	Submit(ctx context.Context, sessionID string) (*models.SubmitTestResponse, error)

	// Report renders the accepted submission outcome as an xlsx workbook.
	// Fails until the session has been successfully submitted.
	Report(ctx context.Context, sessionID string) ([]byte, error)

	// Reset tears the session down and clears its recovery snapshot.
	Reset(ctx context.Context, sessionID string) error

	// Close stops all countdowns and releases resources.
	Close()
}

// ===== REQUEST STRUCTURES =====

// StartSessionRequest carries the question bootstrap from the post-login
// collaborator.
type StartSessionRequest struct {
	SessionID       string                     `json:"sessionId" validate:"omitempty,max=64"`
	Questions       []models.CandidateQuestion `json:"questions" validate:"required,min=1,dive"`
	DurationMinutes int                        `json:"durationMinutes" validate:"required,min=1,max=300"`
}

// SetAnswerRequest carries the candidate's current selection or edit for a
// single question. Exactly one of the two answer fields should be set.
type SetAnswerRequest struct {
	QuestionID       uint    `json:"questionId" validate:"required"`
	SelectedChoiceID *uint   `json:"selectedAnswerId,omitempty"`
	FreeTextAnswer   *string `json:"openAnswerText,omitempty"`
}
