package models

import (
	"fmt"
	"strings"
)

type QuestionType string

const (
	SingleChoice QuestionType = "SingleChoice"
	TrueFalse    QuestionType = "TrueFalse"
	FreeText     QuestionType = "FreeText"
)

// HasChoices reports whether answers for this type reference a choice
// identity rather than free-text content.
func (t QuestionType) HasChoices() bool {
	return t == SingleChoice || t == TrueFalse
}

func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, TrueFalse, FreeText:
		return true
	}
	return false
}

// ParseQuestionType maps a bootstrap type label to the enumerated tag.
// The label is normalized once here, at the boundary; everything past this
// point switches on the tag instead of inspecting strings.
func ParseQuestionType(raw string) (QuestionType, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	switch normalized {
	case "MULTIPLE_CHOICE", "SINGLE_CHOICE", "SINGLECHOICE", "MULTIPLECHOICE":
		return SingleChoice, nil
	case "TRUE_FALSE", "TRUEFALSE", "BOOLEAN":
		return TrueFalse, nil
	case "OPEN_QUESTION", "OPEN", "FREE_TEXT", "FREETEXT", "ESSAY":
		return FreeText, nil
	}
	return "", fmt.Errorf("unknown question type %q", raw)
}

type Choice struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// Question is immutable for the lifetime of a session. The choice set is
// populated only for choice-based types.
type Question struct {
	ID      uint         `json:"id"`
	Label   string       `json:"label"`
	Hint    *string      `json:"hint,omitempty"`
	Type    QuestionType `json:"type"`
	Points  int          `json:"points"`
	Choices []Choice     `json:"choices,omitempty"`
}

// HasChoice reports whether choiceID belongs to this question's choice set.
func (q *Question) HasChoice(choiceID uint) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// CandidateQuestion is the bootstrap payload supplied by the post-login
// collaborator, one entry per question in display order.
type CandidateQuestion struct {
	ID           uint              `json:"id" validate:"required"`
	Label        string            `json:"label" validate:"required"`
	Hint         *string           `json:"hint,omitempty"`
	QuestionType string            `json:"questionType" validate:"required,question_type"`
	Points       int               `json:"points" validate:"min=0"`
	Answers      []CandidateChoice `json:"answers,omitempty" validate:"dive"`
}

type CandidateChoice struct {
	ID    uint   `json:"id" validate:"required"`
	Label string `json:"label"`
}

// ToQuestion converts the bootstrap shape into the tagged model.
func (cq *CandidateQuestion) ToQuestion() (Question, error) {
	qt, err := ParseQuestionType(cq.QuestionType)
	if err != nil {
		return Question{}, err
	}

	if qt.HasChoices() && len(cq.Answers) == 0 {
		return Question{}, fmt.Errorf("question %d: type %s requires a choice set", cq.ID, qt)
	}

	q := Question{
		ID:     cq.ID,
		Label:  cq.Label,
		Hint:   cq.Hint,
		Type:   qt,
		Points: cq.Points,
	}
	if qt.HasChoices() {
		q.Choices = make([]Choice, len(cq.Answers))
		for i, a := range cq.Answers {
			q.Choices[i] = Choice{ID: a.ID, Label: a.Label}
		}
	}
	return q, nil
}
