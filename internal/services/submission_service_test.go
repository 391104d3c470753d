package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsix-platform/session-service/internal/events"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/recovery"
	"github.com/tsix-platform/session-service/internal/utils"
)

// stubGateway counts transport calls and serves a configurable outcome.
type stubGateway struct {
	mu       sync.Mutex
	calls    int
	delay    time.Duration
	err      error
	response *models.SubmitTestResponse
	lastReq  *models.SubmitTestRequest
}

func (g *stubGateway) SubmitTest(ctx context.Context, req *models.SubmitTestRequest) (*models.SubmitTestResponse, error) {
	g.mu.Lock()
	g.calls++
	g.lastReq = req
	delay, err, resp := g.delay, g.err, g.response
	g.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *stubGateway) setError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func scoredResponse() *models.SubmitTestResponse {
	return &models.SubmitTestResponse{
		TestSessionID:       42,
		TotalScore:          6,
		TotalPossiblePoints: 8,
		TotalScoreFraction:  "6/8",
		ScorePercentage:     75,
		TotalQuestions:      3,
		AnsweredQuestions:   2,
		Status:              "COMPLETED",
	}
}

func newTestPipeline(gateway *stubGateway, store recovery.Store, publisher events.EventPublisher) *SubmissionPipeline {
	return NewSubmissionPipeline(gateway, store, publisher, utils.NewDevelopmentLogger())
}

func TestPipelineSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{response: scoredResponse()}
	store := recovery.NewMemoryStore()
	publisher := events.NewMockEventPublisher()
	pipeline := newTestPipeline(gateway, store, publisher)

	sess := newTestSession(30)
	snapshot, saved := sess.SetAnswer(1, models.ChoiceAnswer(10))
	require.True(t, saved)
	require.NoError(t, store.Save(ctx, sess.ID(), snapshot))

	result, err := pipeline.Submit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, models.PhaseSubmitted, sess.Phase())
	assert.Equal(t, 1, gateway.callCount())

	// Recovery snapshot is cleared so it cannot leak into the next session.
	loaded, err := store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	submitted := publisher.EventsOfType(events.EventSessionSubmitted)
	require.Len(t, submitted, 1)
}

func TestPipelineConcurrentCallersShareOneFlight(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{response: scoredResponse(), delay: 50 * time.Millisecond}
	pipeline := newTestPipeline(gateway, recovery.NewMemoryStore(), events.NewMockEventPublisher())

	sess := newTestSession(30)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*models.SubmitTestResponse, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pipeline.Submit(ctx, sess)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, gateway.callCount())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, models.PhaseSubmitted, sess.Phase())
}

func TestPipelineManualFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{err: errors.New("scoring unreachable")}
	store := recovery.NewMemoryStore()
	publisher := events.NewMockEventPublisher()
	pipeline := newTestPipeline(gateway, store, publisher)

	sess := newTestSession(30)
	_, saved := sess.SetAnswer(1, models.ChoiceAnswer(10))
	require.True(t, saved)

	_, err := pipeline.Submit(ctx, sess)
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, models.PhaseInProgress, sess.Phase())
	require.Len(t, publisher.EventsOfType(events.EventSubmitFailed), 1)

	// Candidate can keep editing and try again.
	_, saved = sess.SetAnswer(2, models.ChoiceAnswer(21))
	require.True(t, saved)

	gateway.setError(nil)
	gateway.mu.Lock()
	gateway.response = scoredResponse()
	gateway.mu.Unlock()

	result, err := pipeline.Submit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, 2, gateway.callCount())
	require.Len(t, gateway.lastReq.Answers, 2)
}

func TestPipelineExpiredFailureParksSessionUntilRetry(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{err: errors.New("scoring unreachable")}
	pipeline := newTestPipeline(gateway, recovery.NewMemoryStore(), events.NewMockEventPublisher())

	sess := newTestSession(1)
	sess.mu.Lock()
	sess.remaining = 1
	sess.mu.Unlock()
	require.True(t, sess.Tick().Expired)

	_, err := pipeline.Submit(ctx, sess)
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, models.PhaseExpiredPending, sess.Phase())

	// Expired sessions stay frozen; only the retry is allowed.
	_, saved := sess.SetAnswer(1, models.ChoiceAnswer(10))
	assert.False(t, saved)

	gateway.setError(nil)
	gateway.mu.Lock()
	gateway.response = scoredResponse()
	gateway.mu.Unlock()

	result, err := pipeline.Submit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, models.PhaseSubmitted, sess.Phase())
}

func TestPipelineRejectsAlreadySubmitted(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{response: scoredResponse()}
	pipeline := newTestPipeline(gateway, recovery.NewMemoryStore(), events.NewMockEventPublisher())

	sess := newTestSession(30)
	_, err := pipeline.Submit(ctx, sess)
	require.NoError(t, err)

	_, err = pipeline.Submit(ctx, sess)
	assert.ErrorIs(t, err, ErrSessionAlreadySubmitted)
	assert.Equal(t, 1, gateway.callCount())
}
