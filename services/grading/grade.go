package grading

import "math"

// ReviewOptions controls how much of the grading is echoed to the student.
type ReviewOptions struct {
	ShowMarks          bool `json:"show_marks"`
	ShowCorrectAnswers bool `json:"show_correct_answers"`
	ShowFeedback       bool `json:"show_feedback"`
}

// Quiz is the gradable view of a quiz definition.
type Quiz struct {
	PassMarkPercent int
	Review          ReviewOptions
	Questions       []Question
}

type QuestionResult struct {
	Index    int
	Kind     Kind
	Answered bool
	Correct  bool
	Earned   float64
	MaxMarks float64
}

type Result struct {
	ScorePercent   int
	Passed         bool
	CorrectCount   int
	TotalQuestions int
	EarnedMarks    float64
	PossibleMarks  float64
	Questions      []QuestionResult
}

// Grade scores answers against quiz. answers may be shorter than the
// question list; the missing tail counts as unanswered.
func Grade(quiz Quiz, answers []Answer) Result {
	res := Result{
		TotalQuestions: len(quiz.Questions),
		Questions:      make([]QuestionResult, 0, len(quiz.Questions)),
	}

	for i, q := range quiz.Questions {
		var a Answer
		if i < len(answers) {
			a = answers[i]
		}

		qr := QuestionResult{
			Index:    i,
			Kind:     q.Kind(),
			Answered: !a.IsBlank(),
			MaxMarks: q.Marks(),
		}
		if qr.Answered && q.evaluate(a) {
			qr.Correct = true
			qr.Earned = q.Marks()
			res.CorrectCount++
		}

		res.EarnedMarks += qr.Earned
		res.PossibleMarks += qr.MaxMarks
		res.Questions = append(res.Questions, qr)
	}

	res.ScorePercent = ScorePercent(res.EarnedMarks, res.PossibleMarks)
	res.Passed = res.ScorePercent >= quiz.PassMarkPercent
	return res
}

// ScorePercent is round(earned/possible*100), 0 when nothing is possible.
func ScorePercent(earned, possible float64) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(earned / possible * 100))
}
