package grading

type ReviewItem struct {
	Index              int         `json:"index"`
	Type               Kind        `json:"type"`
	Answered           bool        `json:"answered"`
	Correct            bool        `json:"correct"`
	NeedsManualGrading bool        `json:"needs_manual_grading,omitempty"`
	MarksAwarded       *float64    `json:"marks_awarded,omitempty"`
	MaxMarks           *float64    `json:"max_marks,omitempty"`
	CorrectAnswer      interface{} `json:"correct_answer,omitempty"`
	Feedback           string      `json:"feedback,omitempty"`
}

// BuildReview projects res through quiz.Review. Fields the options hide are
// left out of the payload entirely.
func BuildReview(quiz Quiz, res Result) []ReviewItem {
	items := make([]ReviewItem, 0, len(res.Questions))
	for _, qr := range res.Questions {
		if qr.Index >= len(quiz.Questions) {
			continue
		}
		q := quiz.Questions[qr.Index]

		item := ReviewItem{
			Index:              qr.Index,
			Type:               qr.Kind,
			Answered:           qr.Answered,
			Correct:            qr.Correct,
			NeedsManualGrading: qr.Kind == Essay && qr.Answered,
		}
		if quiz.Review.ShowMarks {
			earned, possible := qr.Earned, qr.MaxMarks
			item.MarksAwarded = &earned
			item.MaxMarks = &possible
		}
		if quiz.Review.ShowCorrectAnswers {
			item.CorrectAnswer = q.correctAnswer()
		}
		if quiz.Review.ShowFeedback {
			item.Feedback = q.FeedbackText()
		}
		items = append(items, item)
	}
	return items
}
