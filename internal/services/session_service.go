package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tsix-platform/session-service/internal/events"
	"github.com/tsix-platform/session-service/internal/export"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/recovery"
	"github.com/tsix-platform/session-service/internal/utils"
)

// DefaultTimeWarningSeconds is the remaining-time threshold for the
// one-time warning signal.
const DefaultTimeWarningSeconds = 300

// SessionServiceConfig tunes the orchestrator. Zero values fall back to the
// defaults; tests shrink TickInterval to drive time quickly.
type SessionServiceConfig struct {
	TimeWarningSeconds int
	TickInterval       time.Duration
}

type managedSession struct {
	session   *Session
	countdown *Countdown

	// Single-writer state for recovery saves. Only the newest snapshot is
	// written, so a slow save can never land over a later one.
	saveMu  sync.Mutex
	pending map[uint]models.AnswerRecord
	saving  bool
}

type sessionService struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
	starting map[string]struct{}

	store     recovery.Store
	pipeline  *SubmissionPipeline
	publisher events.EventPublisher
	validator *utils.Validator
	exporter  *export.ResultExporter
	logger    utils.Logger

	warningSeconds int
	tickInterval   time.Duration
}

func NewSessionService(
	store recovery.Store,
	gateway ScoringGateway,
	publisher events.EventPublisher,
	validator *utils.Validator,
	logger utils.Logger,
	cfg SessionServiceConfig,
) SessionService {
	if cfg.TimeWarningSeconds <= 0 {
		cfg.TimeWarningSeconds = DefaultTimeWarningSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &sessionService{
		sessions:       make(map[string]*managedSession),
		starting:       make(map[string]struct{}),
		store:          store,
		pipeline:       NewSubmissionPipeline(gateway, store, publisher, logger),
		publisher:      publisher,
		validator:      validator,
		exporter:       export.NewResultExporter(),
		logger:         logger,
		warningSeconds: cfg.TimeWarningSeconds,
		tickInterval:   cfg.TickInterval,
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*models.SessionState, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	questions := make([]models.Question, len(req.Questions))
	for i := range req.Questions {
		q, err := req.Questions[i].ToQuestion()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		questions[i] = q
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// The session id is reserved for the whole of Start, so a concurrent
	// Start for the same id conflicts instead of racing the recovery load
	// and replacing a registered session.
	s.mu.Lock()
	if _, ok := s.starting[sessionID]; ok {
		s.mu.Unlock()
		return nil, ErrSessionAlreadyStarted
	}
	if existing, ok := s.sessions[sessionID]; ok {
		phase := existing.session.Phase()
		if phase == models.PhaseInProgress || phase == models.PhaseSubmitting {
			s.mu.Unlock()
			return nil, ErrSessionAlreadyStarted
		}
		existing.countdown.Stop()
		delete(s.sessions, sessionID)
	}
	s.starting[sessionID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.starting, sessionID)
		s.mu.Unlock()
	}()

	sess := newSession(sessionID, questions, req.DurationMinutes, s.warningSeconds)

	// Recovery runs before any interaction is accepted. Infrastructure or
	// corruption problems degrade to an empty mapping; they never fail Start.
	recovered, err := s.store.Load(ctx, sessionID)
	if err != nil {
		s.logger.LogError(err, "Answer recovery unavailable, starting empty", "session_id", sessionID)
		recovered = map[uint]models.AnswerRecord{}
	}
	sess.seedAnswers(recovered)

	if len(recovered) == 0 {
		if err := s.store.Save(ctx, sessionID, sess.SnapshotAnswers()); err != nil {
			s.logger.LogError(err, "Failed to seed recovery snapshot", "session_id", sessionID)
		}
	}

	countdown := NewCountdown(s.tickInterval)
	managed := &managedSession{session: sess, countdown: countdown}

	s.mu.Lock()
	s.sessions[sessionID] = managed
	s.mu.Unlock()

	go countdown.Run(func() { s.handleTick(managed) })

	s.publishEvent(ctx, events.NewSessionStartedEvent(sessionID, len(questions), req.DurationMinutes))
	s.logger.Info("Session started",
		"session_id", sessionID,
		"questions", len(questions),
		"duration_minutes", req.DurationMinutes,
		"recovered_answers", len(recovered))

	return sess.State(true), nil
}

// handleTick advances one session's clock and reacts to its signals. Expiry
// triggers the forced submission without further user action.
func (s *sessionService) handleTick(m *managedSession) {
	sig := m.session.Tick()

	if sig.Warning {
		s.publishEvent(context.Background(), events.NewTimeWarningEvent(m.session.ID(), sig.Remaining))
		s.logger.Info("Time warning raised",
			"session_id", m.session.ID(),
			"seconds_remaining", sig.Remaining)
	}

	if sig.Expired {
		m.countdown.Stop()
		s.publishEvent(context.Background(), events.NewSessionExpiredEvent(m.session.ID()))
		s.logger.Info("Session expired, forcing submission", "session_id", m.session.ID())

		go func() {
			if _, err := s.pipeline.Submit(context.Background(), m.session); err != nil {
				s.logger.LogError(err, "Forced submission after expiry failed",
					"session_id", m.session.ID())
			}
		}()
	}
}

// ===== INTERACTION =====

func (s *sessionService) State(ctx context.Context, sessionID string) (*models.SessionState, error) {
	m, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	return m.session.State(true), nil
}

func (s *sessionService) Navigate(ctx context.Context, sessionID string, index int) (*models.SessionState, error) {
	m, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	m.session.GoTo(index)
	return m.session.State(false), nil
}

func (s *sessionService) SetAnswer(ctx context.Context, sessionID string, req *SetAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	m, err := s.get(sessionID)
	if err != nil {
		return err
	}

	rec := models.AnswerRecord{
		SelectedChoiceID: req.SelectedChoiceID,
		FreeText:         req.FreeTextAnswer,
	}
	snapshot, saved := m.session.SetAnswer(req.QuestionID, rec)
	if !saved {
		// UI races after submission or stale question ids are expected;
		// absorbing them beats failing the candidate's request.
		s.logger.Debug("Ignoring answer write",
			"session_id", sessionID,
			"question_id", req.QuestionID,
			"phase", m.session.Phase())
		return nil
	}

	// The durable write is fire-and-forget relative to the in-memory
	// mutation; each save carries the full mapping, so a lost write costs
	// at most the latest answer.
	s.persistSnapshot(m, snapshot)
	return nil
}

// persistSnapshot hands the snapshot to the session's writer goroutine.
// Saves for one session are serialized and coalesced to the newest snapshot,
// so out-of-order completion cannot leave a stale mapping in the store.
func (s *sessionService) persistSnapshot(m *managedSession, snapshot map[uint]models.AnswerRecord) {
	m.saveMu.Lock()
	m.pending = snapshot
	if m.saving {
		m.saveMu.Unlock()
		return
	}
	m.saving = true
	m.saveMu.Unlock()

	go func() {
		for {
			m.saveMu.Lock()
			next := m.pending
			m.pending = nil
			if next == nil {
				m.saving = false
				m.saveMu.Unlock()
				return
			}
			m.saveMu.Unlock()

			if err := s.store.Save(context.Background(), m.session.ID(), next); err != nil {
				s.logger.LogError(err, "Failed to persist recovery snapshot", "session_id", m.session.ID())
			}
		}
	}()
}

func (s *sessionService) Submit(ctx context.Context, sessionID string) (*models.SubmitTestResponse, error) {
	m, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Submit(ctx, m.session)
	if err != nil {
		return nil, err
	}
	m.countdown.Stop()
	return result, nil
}

func (s *sessionService) Report(ctx context.Context, sessionID string) ([]byte, error) {
	m, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	result := m.session.Result()
	if result == nil {
		return nil, ErrResultUnavailable
	}

	report, err := s.exporter.Export(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return report, nil
}

func (s *sessionService) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	m, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.countdown.Stop()

	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.logger.LogError(err, "Failed to clear recovery snapshot on reset", "session_id", sessionID)
	}
	s.logger.Info("Session reset", "session_id", sessionID)
	return nil
}

func (s *sessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.sessions {
		m.countdown.Stop()
	}
}

// ===== HELPERS =====

func (s *sessionService) get(sessionID string) (*managedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m, nil
}

func (s *sessionService) publishEvent(ctx context.Context, event *events.SessionEvent) {
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish session event", "event_type", event.Type)
	}
}
