package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsix-platform/session-service/internal/models"
)

func TestValidatorQuestionTypeRule(t *testing.T) {
	v := NewValidator()

	q := models.CandidateQuestion{ID: 1, Label: "Pick one", QuestionType: "MULTIPLE_CHOICE"}
	assert.NoError(t, v.Validate(&q))

	q.QuestionType = "MATCHING"
	err := v.Validate(&q)
	assert.Error(t, err)
	// Errors carry the json field name, not the Go field name.
	assert.Contains(t, err.Error(), "questionType")
}
