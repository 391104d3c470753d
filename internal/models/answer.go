package models

import "strings"

// AnswerRecord is the captured response for one question. Exactly one of
// the two fields is populated; the constructors below are the only
// sanctioned way to build one, so the exclusivity holds by construction.
type AnswerRecord struct {
	SelectedChoiceID *uint   `json:"selected_choice_id,omitempty"`
	FreeText         *string `json:"free_text,omitempty"`
}

// ChoiceAnswer builds a record for a choice-based question.
func ChoiceAnswer(choiceID uint) AnswerRecord {
	return AnswerRecord{SelectedChoiceID: &choiceID}
}

// FreeTextAnswer builds a record for a free-text question.
func FreeTextAnswer(text string) AnswerRecord {
	return AnswerRecord{FreeText: &text}
}

// IsAnswered implements the answered predicate: a choice identity is set, or
// the free-text content has non-whitespace length greater than zero.
func (r AnswerRecord) IsAnswered() bool {
	if r.SelectedChoiceID != nil {
		return true
	}
	return r.FreeText != nil && len(strings.TrimSpace(*r.FreeText)) > 0
}

// WireAnswer is one entry of the submission payload, mirroring the scoring
// service contract. Exactly one of the two optional fields is populated.
type WireAnswer struct {
	QuestionID       uint    `json:"questionId"`
	SelectedChoiceID *uint   `json:"selectedAnswerId,omitempty"`
	FreeTextAnswer   *string `json:"openAnswerText,omitempty"`
}

// SubmitTestRequest is the one-shot submission payload. Answers are ordered
// by the question sequence; questions without a record are omitted.
type SubmitTestRequest struct {
	Answers []WireAnswer `json:"answers"`
}
