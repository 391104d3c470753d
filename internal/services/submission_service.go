package services

import (
	"context"
	"fmt"

	"github.com/tsix-platform/session-service/internal/events"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/recovery"
	"github.com/tsix-platform/session-service/internal/utils"
)

// SubmissionPipeline converts a session's answer mapping into the wire
// payload and performs the one-shot submit call. The session's in-flight
// guard makes every concurrent caller — double-clicked submit, expiring
// timer — share the first caller's outcome.
type SubmissionPipeline struct {
	gateway   ScoringGateway
	store     recovery.Store
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewSubmissionPipeline(gateway ScoringGateway, store recovery.Store, publisher events.EventPublisher, logger utils.Logger) *SubmissionPipeline {
	return &SubmissionPipeline{
		gateway:   gateway,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit runs the pipeline for the given session. Exactly one transport
// call is made per flight regardless of how many callers arrive.
func (p *SubmissionPipeline) Submit(ctx context.Context, sess *Session) (*models.SubmitTestResponse, error) {
	flight, leader, expiredPath, err := sess.beginSubmit()
	if err != nil {
		return nil, err
	}
	if !leader {
		<-flight.done
		return flight.result, flight.err
	}

	payload := sess.buildPayload()
	p.logger.Info("Submitting session",
		"session_id", sess.ID(),
		"answers_count", len(payload.Answers),
		"expired", expiredPath)

	result, submitErr := p.gateway.SubmitTest(ctx, payload)
	if submitErr != nil {
		wrapped := fmt.Errorf("%w: %v", ErrSubmissionFailed, submitErr)
		sess.finishSubmit(nil, wrapped, expiredPath)
		p.logger.LogError(submitErr, "Session submission failed",
			"session_id", sess.ID(),
			"expired", expiredPath)
		p.publishEvent(ctx, events.NewSubmitFailedEvent(sess.ID(), submitErr.Error(), expiredPath))
		return nil, wrapped
	}

	sess.finishSubmit(result, nil, expiredPath)

	// Exactly one clear per successful submission. A failure here only
	// leaves a stale snapshot behind; the session-scoped key keeps it from
	// leaking into the next session.
	if err := p.store.Clear(ctx, sess.ID()); err != nil {
		p.logger.LogError(err, "Failed to clear recovery snapshot", "session_id", sess.ID())
	}

	pct := result.ScorePercentage
	p.publishEvent(ctx, events.NewSessionSubmittedEvent(
		sess.ID(), result.AnsweredQuestions, result.TotalQuestions, &pct))

	p.logger.Info("Session submitted successfully",
		"session_id", sess.ID(),
		"score_percentage", result.ScorePercentage)
	return result, nil
}

func (p *SubmissionPipeline) publishEvent(ctx context.Context, event *events.SessionEvent) {
	if err := p.publisher.PublishSessionEvent(ctx, event); err != nil {
		p.logger.LogError(err, "Failed to publish session event", "event_type", event.Type)
	}
}
