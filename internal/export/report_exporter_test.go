package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestExportRendersSummaryAndBreakdown(t *testing.T) {
	answer := "B"
	correct := true
	result := &models.SubmitTestResponse{
		TestSessionID:      42,
		TotalScoreFraction: "6/8",
		ScorePercentage:    75,
		TotalQuestions:     2,
		AnsweredQuestions:  2,
		Status:             "COMPLETED",
		QuestionResults: []models.QuestionResult{
			{
				QuestionID:      1,
				QuestionLabel:   "Pick one",
				QuestionType:    models.SingleChoice,
				CandidateAnswer: &answer,
				CorrectAnswer:   &answer,
				IsCorrect:       &correct,
				PointsEarned:    2,
				MaxPoints:       2,
			},
			{
				QuestionID:    2,
				QuestionLabel: "Explain",
				QuestionType:  models.FreeText,
				PointsEarned:  0,
				MaxPoints:     5,
			},
		},
	}

	data, err := NewResultExporter().Export(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Results", "B2")
	require.NoError(t, err)
	assert.Equal(t, "6/8", value)

	value, err = f.GetCellValue("Results", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Question", value)

	value, err = f.GetCellValue("Results", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Pick one", value)

	// Free-text question awaiting manual review.
	value, err = f.GetCellValue("Results", "E9")
	require.NoError(t, err)
	assert.Equal(t, "pending review", value)
}
