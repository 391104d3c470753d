package models

// QuestionResult is the scoring service's per-question verdict. Correctness
// fields are absent for free-text questions awaiting manual review.
type QuestionResult struct {
	QuestionID      uint         `json:"questionId"`
	QuestionLabel   string       `json:"questionLabel"`
	QuestionType    QuestionType `json:"questionType"`
	CandidateAnswer *string      `json:"candidateAnswer,omitempty"`
	CorrectAnswer   *string      `json:"correctAnswer,omitempty"`
	IsCorrect       *bool        `json:"isCorrect,omitempty"`
	ScoreFraction   string       `json:"scoreFraction"`
	PointsEarned    float64      `json:"pointsEarned"`
	MaxPoints       int          `json:"maxPoints"`
}

// SubmitTestResponse is the scoring service's answer to a submission. The
// engine hands it to the results-display collaborator untouched.
type SubmitTestResponse struct {
	TestSessionID       uint             `json:"testSessionId"`
	TotalScore          float64          `json:"totalScore"`
	TotalPossiblePoints float64          `json:"totalPossiblePoints"`
	TotalScoreFraction  string           `json:"totalScoreFraction"`
	ScorePercentage     float64          `json:"scorePercentage"`
	TotalQuestions      int              `json:"totalQuestions"`
	AnsweredQuestions   int              `json:"answeredQuestions"`
	Status              string           `json:"status"`
	Message             *string          `json:"message,omitempty"`
	QuestionResults     []QuestionResult `json:"questionResults"`
}
