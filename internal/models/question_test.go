package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		raw      string
		expected QuestionType
	}{
		{"MULTIPLE_CHOICE", SingleChoice},
		{"multiple_choice", SingleChoice},
		{"multiple-choice", SingleChoice},
		{"  SINGLE_CHOICE  ", SingleChoice},
		{"TRUE_FALSE", TrueFalse},
		{"boolean", TrueFalse},
		{"OPEN_QUESTION", FreeText},
		{"free_text", FreeText},
		{"essay", FreeText},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			qt, err := ParseQuestionType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, qt)
		})
	}

	_, err := ParseQuestionType("MATCHING")
	assert.Error(t, err)
	_, err = ParseQuestionType("")
	assert.Error(t, err)
}

func TestQuestionTypeHasChoices(t *testing.T) {
	assert.True(t, SingleChoice.HasChoices())
	assert.True(t, TrueFalse.HasChoices())
	assert.False(t, FreeText.HasChoices())
}

func TestCandidateQuestionToQuestion(t *testing.T) {
	cq := CandidateQuestion{
		ID:           7,
		Label:        "Pick one",
		QuestionType: "MULTIPLE_CHOICE",
		Points:       2,
		Answers: []CandidateChoice{
			{ID: 70, Label: "A"},
			{ID: 71, Label: "B"},
		},
	}

	q, err := cq.ToQuestion()
	require.NoError(t, err)
	assert.Equal(t, SingleChoice, q.Type)
	assert.Len(t, q.Choices, 2)
	assert.True(t, q.HasChoice(71))
	assert.False(t, q.HasChoice(99))
}

func TestCandidateQuestionToQuestionRequiresChoiceSet(t *testing.T) {
	cq := CandidateQuestion{ID: 1, Label: "Broken", QuestionType: "TRUE_FALSE"}
	_, err := cq.ToQuestion()
	assert.Error(t, err)
}

func TestAnswerRecordIsAnswered(t *testing.T) {
	assert.True(t, ChoiceAnswer(5).IsAnswered())
	assert.True(t, FreeTextAnswer("some text").IsAnswered())
	assert.False(t, FreeTextAnswer("").IsAnswered())
	assert.False(t, FreeTextAnswer("   \t\n").IsAnswered())
	assert.False(t, AnswerRecord{}.IsAnswered())
}
