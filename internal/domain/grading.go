package domain

// ReviewEntry is one question's line in the post-grading review trail:
// what the user picked, what was right, and the client-safe option list.
type ReviewEntry struct {
	QuestionID      string       `json:"question_id"`
	QuestionText    string       `json:"question_text"`
	UserSelectedID  *string      `json:"user_selected_id"`
	CorrectOptionID *string      `json:"correct_option_id"`
	IsCorrect       bool         `json:"is_correct"`
	Options         []OptionView `json:"options"`
}

// GradingResult is the outcome of grading one submission against a quiz.
type GradingResult struct {
	Score      int
	Total      int
	Percentage float64
	Review     []ReviewEntry
}

// GradeSubmission grades a submitted answer map against the quiz's questions.
// It is a pure computation: persistence of the resulting attempt is the
// caller's concern.
//
// A question counts as correct iff an answer was supplied for it AND the
// selected option id equals the id of the question's correct option. The
// comparison is identity-based; there is no partial credit. A question with
// no correct option on record grades as incorrect regardless of the answer.
func GradeSubmission(questions []Question, answers map[string]string) GradingResult {
	result := GradingResult{
		Total:  len(questions),
		Review: make([]ReviewEntry, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]

		var selected *string
		if sel, ok := answers[q.ID]; ok && sel != "" {
			selected = &sel
		}

		var correctID *string
		if correct := q.CorrectOption(); correct != nil {
			correctID = &correct.ID
		}

		isCorrect := selected != nil && correctID != nil && *selected == *correctID
		if isCorrect {
			result.Score++
		}

		views := make([]OptionView, len(q.Options))
		for j := range q.Options {
			views[j] = q.Options[j].View()
		}

		result.Review = append(result.Review, ReviewEntry{
			QuestionID:      q.ID,
			QuestionText:    q.Text,
			UserSelectedID:  selected,
			CorrectOptionID: correctID,
			IsCorrect:       isCorrect,
			Options:         views,
		})
	}

	if result.Total > 0 {
		result.Percentage = float64(result.Score) / float64(result.Total) * 100
	}
	return result
}
