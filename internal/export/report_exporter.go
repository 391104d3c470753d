package export

import (
	"bytes"
	"fmt"

	"github.com/tsix-platform/session-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// ResultExporter renders a submission result into an xlsx report for the
// results-display collaborator.
type ResultExporter struct{}

func NewResultExporter() *ResultExporter {
	return &ResultExporter{}
}

const resultsSheet = "Results"

// Export writes the score summary and the per-question breakdown to a
// single-sheet workbook.
func (e *ResultExporter) Export(result *models.SubmitTestResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	summary := [][]interface{}{
		{"Session", result.TestSessionID},
		{"Score", result.TotalScoreFraction},
		{"Percentage", result.ScorePercentage},
		{"Answered", fmt.Sprintf("%d/%d", result.AnsweredQuestions, result.TotalQuestions)},
		{"Status", result.Status},
	}
	for i, row := range summary {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	headers := []string{"Question", "Type", "Candidate Answer", "Correct Answer", "Correct", "Points", "Max Points"}
	headerRow := len(summary) + 2
	for j, header := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, headerRow)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(resultsSheet, cell, header)
	}

	for i, qr := range result.QuestionResults {
		row := []interface{}{
			qr.QuestionLabel,
			string(qr.QuestionType),
			deref(qr.CandidateAnswer),
			deref(qr.CorrectAnswer),
			formatCorrect(qr.IsCorrect),
			qr.PointsEarned,
			qr.MaxPoints,
		}
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(resultsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatCorrect(b *bool) string {
	if b == nil {
		return "pending review"
	}
	if *b {
		return "yes"
	}
	return "no"
}
