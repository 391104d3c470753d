package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the session lifecycle signals published on the bus.
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventTimeWarning      EventType = "session.time_warning"
	EventSessionExpired   EventType = "session.expired"
	EventSessionSubmitted EventType = "session.submitted"
	EventSubmitFailed     EventType = "session.submit_failed"
)

// SessionEvent is the envelope for all session signals.
type SessionEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "session-service"
	eventVersion = "1.0"
)

// Event payloads

type SessionStartedEvent struct {
	SessionID       string    `json:"session_id"`
	QuestionCount   int       `json:"question_count"`
	DurationMinutes int       `json:"duration_minutes"`
	StartedAt       time.Time `json:"started_at"`
}

type TimeWarningEvent struct {
	SessionID        string    `json:"session_id"`
	SecondsRemaining int       `json:"seconds_remaining"`
	WarningAt        time.Time `json:"warning_at"`
}

type SessionExpiredEvent struct {
	SessionID string    `json:"session_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

type SessionSubmittedEvent struct {
	SessionID         string    `json:"session_id"`
	AnsweredQuestions int       `json:"answered_questions"`
	TotalQuestions    int       `json:"total_questions"`
	ScorePercentage   *float64  `json:"score_percentage,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

type SubmitFailedEvent struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	Expired   bool      `json:"expired"`
	FailedAt  time.Time `json:"failed_at"`
}

// Event factory functions

func NewSessionStartedEvent(sessionID string, questionCount, durationMinutes int) *SessionEvent {
	now := time.Now()
	return newEvent(EventSessionStarted, SessionStartedEvent{
		SessionID:       sessionID,
		QuestionCount:   questionCount,
		DurationMinutes: durationMinutes,
		StartedAt:       now,
	})
}

func NewTimeWarningEvent(sessionID string, secondsRemaining int) *SessionEvent {
	return newEvent(EventTimeWarning, TimeWarningEvent{
		SessionID:        sessionID,
		SecondsRemaining: secondsRemaining,
		WarningAt:        time.Now(),
	})
}

func NewSessionExpiredEvent(sessionID string) *SessionEvent {
	return newEvent(EventSessionExpired, SessionExpiredEvent{
		SessionID: sessionID,
		ExpiredAt: time.Now(),
	})
}

func NewSessionSubmittedEvent(sessionID string, answered, total int, scorePercentage *float64) *SessionEvent {
	return newEvent(EventSessionSubmitted, SessionSubmittedEvent{
		SessionID:         sessionID,
		AnsweredQuestions: answered,
		TotalQuestions:    total,
		ScorePercentage:   scorePercentage,
		SubmittedAt:       time.Now(),
	})
}

func NewSubmitFailedEvent(sessionID, reason string, expired bool) *SessionEvent {
	return newEvent(EventSubmitFailed, SubmitFailedEvent{
		SessionID: sessionID,
		Reason:    reason,
		Expired:   expired,
		FailedAt:  time.Now(),
	})
}

func newEvent(eventType EventType, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
