package services

import (
	"sync"

	"github.com/tsix-platform/session-service/internal/models"
)

// Session is the owned state container for one candidate's timed attempt:
// the immutable question sequence, the cursor, the answer mapping, the
// clock, and the lifecycle phase. All access goes through its methods; the
// single mutex serializes the timer's ticks against the candidate's
// interactive calls.
type Session struct {
	mu sync.Mutex

	id              string
	questions       []models.Question
	positions       map[uint]int // question id -> sequence position
	cursor          int
	answers         map[uint]models.AnswerRecord
	durationMinutes int

	remaining int // seconds, floored at zero
	warningAt int // seconds threshold for the one-time warning

	phase        models.SessionPhase
	warningFired bool
	expiryFired  bool
	expired      bool // set once the clock reached zero; never cleared

	flight *submissionFlight
	result *models.SubmitTestResponse
}

// submissionFlight memoizes the outcome of one in-flight submission so that
// every concurrent caller observes the same result.
type submissionFlight struct {
	done   chan struct{}
	result *models.SubmitTestResponse
	err    error
}

func newSession(id string, questions []models.Question, durationMinutes, warningAt int) *Session {
	positions := make(map[uint]int, len(questions))
	for i, q := range questions {
		positions[q.ID] = i
	}
	return &Session{
		id:              id,
		questions:       questions,
		positions:       positions,
		answers:         make(map[uint]models.AnswerRecord),
		durationMinutes: durationMinutes,
		remaining:       durationMinutes * 60,
		warningAt:       warningAt,
		phase:           models.PhaseInProgress,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Phase() models.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// seedAnswers installs a recovered answer mapping. Entries referencing
// unknown questions or carrying a shape the question type does not support
// are dropped, keeping the mapping a subset of the question set.
func (s *Session) seedAnswers(recovered map[uint]models.AnswerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range recovered {
		pos, ok := s.positions[id]
		if !ok {
			continue
		}
		if normalized, ok := normalizeRecord(&s.questions[pos], rec); ok {
			s.answers[id] = normalized
		}
	}
}

// TickSignals reports what a single clock tick produced.
type TickSignals struct {
	Warning   bool
	Expired   bool
	Remaining int
}

// Tick advances the countdown by one second. The warning signal fires at
// most once per session, even if remaining time were ever adjusted upward
// afterwards; the expiry signal fires exactly once and moves the phase to
// Submitting so no further edits are accepted while auto-submit runs.
func (s *Session) Tick() TickSignals {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != models.PhaseInProgress {
		return TickSignals{Remaining: s.remaining}
	}

	if s.remaining > 0 {
		s.remaining--
	}

	sig := TickSignals{Remaining: s.remaining}
	if !s.warningFired && s.remaining > 0 && s.remaining <= s.warningAt {
		s.warningFired = true
		sig.Warning = true
	}
	if !s.expiryFired && s.remaining == 0 {
		s.expiryFired = true
		s.expired = true
		s.phase = models.PhaseSubmitting
		sig.Expired = true
	}
	return sig
}

// GoTo repoints the cursor. Indices outside the question sequence are
// ignored rather than rejected; rapid double-invocation from the UI is
// expected. Returns the cursor after the call.
func (s *Session) GoTo(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == models.PhaseInProgress && index >= 0 && index < len(s.questions) {
		s.cursor = index
	}
	return s.cursor
}

// SetAnswer overwrites the record for one question, last write wins. It
// reports whether the write was accepted; rejected writes (unknown
// question, wrong shape for the type, session no longer in progress) leave
// the mapping untouched. On success the returned snapshot is a copy of the
// full mapping for the recovery store.
func (s *Session) SetAnswer(questionID uint, rec models.AnswerRecord) (map[uint]models.AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.AcceptsEdits() {
		return nil, false
	}
	pos, ok := s.positions[questionID]
	if !ok {
		return nil, false
	}
	normalized, ok := normalizeRecord(&s.questions[pos], rec)
	if !ok {
		return nil, false
	}

	s.answers[questionID] = normalized
	return s.snapshotAnswersLocked(), true
}

// normalizeRecord rebuilds the record through the shape the question type
// demands, so a stored record can never carry both fields.
func normalizeRecord(q *models.Question, rec models.AnswerRecord) (models.AnswerRecord, bool) {
	if q.Type.HasChoices() {
		if rec.SelectedChoiceID == nil || !q.HasChoice(*rec.SelectedChoiceID) {
			return models.AnswerRecord{}, false
		}
		return models.ChoiceAnswer(*rec.SelectedChoiceID), true
	}
	if rec.FreeText == nil {
		return models.AnswerRecord{}, false
	}
	return models.FreeTextAnswer(*rec.FreeText), true
}

// AnsweredCount counts the questions whose record satisfies the answered
// predicate. Pure; never exceeds the question count.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answeredCountLocked()
}

func (s *Session) answeredCountLocked() int {
	count := 0
	for _, rec := range s.answers {
		if rec.IsAnswered() {
			count++
		}
	}
	return count
}

// SnapshotAnswers returns a copy of the current answer mapping.
func (s *Session) SnapshotAnswers() map[uint]models.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotAnswersLocked()
}

func (s *Session) snapshotAnswersLocked() map[uint]models.AnswerRecord {
	snapshot := make(map[uint]models.AnswerRecord, len(s.answers))
	for id, rec := range s.answers {
		snapshot[id] = rec
	}
	return snapshot
}

// buildPayload transforms the answer mapping into the ordered wire payload.
// Questions without a record are omitted; the scoring service treats
// omissions as unanswered.
func (s *Session) buildPayload() *models.SubmitTestRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.WireAnswer, 0, len(s.answers))
	for _, q := range s.questions {
		rec, ok := s.answers[q.ID]
		if !ok {
			continue
		}
		entries = append(entries, models.WireAnswer{
			QuestionID:       q.ID,
			SelectedChoiceID: rec.SelectedChoiceID,
			FreeTextAnswer:   rec.FreeText,
		})
	}
	return &models.SubmitTestRequest{Answers: entries}
}

// beginSubmit acquires the submission-in-flight guard. The first caller
// becomes the leader and runs the pipeline; every later caller receives the
// same flight to await. Returns whether this session is on the expiry path,
// which decides the failure phase.
func (s *Session) beginSubmit() (flight *submissionFlight, leader bool, expiredPath bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case models.PhaseSubmitted:
		return nil, false, false, ErrSessionAlreadySubmitted
	case models.PhaseNotStarted:
		return nil, false, false, ErrSessionNotActive
	case models.PhaseSubmitting:
		if s.flight != nil {
			return s.flight, false, false, nil
		}
		// Expiry moved the phase here; the auto-submit leader attaches now.
	case models.PhaseInProgress, models.PhaseExpiredPending:
		s.phase = models.PhaseSubmitting
	}

	s.flight = &submissionFlight{done: make(chan struct{})}
	return s.flight, true, s.expired, nil
}

// finishSubmit records the terminal outcome of one submission run. Success
// ends the session; a manual-path failure returns the session to the
// candidate for a retry; an expiry-path failure parks it in ExpiredPending
// where edits stay rejected.
func (s *Session) finishSubmit(result *models.SubmitTestResponse, submitErr error, expiredPath bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case submitErr == nil:
		s.phase = models.PhaseSubmitted
		s.result = result
	case expiredPath:
		s.phase = models.PhaseExpiredPending
	default:
		s.phase = models.PhaseInProgress
	}

	flight := s.flight
	s.flight = nil
	flight.result = result
	flight.err = submitErr
	close(flight.done)
}

// Result returns the accepted submission outcome, or nil while the session
// has not been successfully submitted.
func (s *Session) Result() *models.SubmitTestResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State builds the externally visible snapshot.
func (s *Session) State(includeAnswers bool) *models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &models.SessionState{
		SessionID:        s.id,
		Phase:            s.phase,
		Questions:        s.questions,
		CurrentIndex:     s.cursor,
		RemainingSeconds: s.remaining,
		AnsweredCount:    s.answeredCountLocked(),
		TotalQuestions:   len(s.questions),
	}
	if includeAnswers {
		state.Answers = s.snapshotAnswersLocked()
	}
	return state
}
