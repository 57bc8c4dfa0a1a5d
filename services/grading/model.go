package grading

import (
	"encoding/json"
	"fmt"
	"sort"

	"lms/models/course"
)

// FromModel turns a stored question into its variant and validates it.
func FromModel(m course.QuizQuestion) (Question, error) {
	meta := Meta{Points: m.Marks, Feedback: m.Feedback}

	var q Question
	switch Kind(m.Type) {
	case MultipleChoice, TrueFalse:
		var options []string
		if err := decode(m.Options, &options); err != nil {
			return nil, fmt.Errorf("%w: options: %v", ErrInvalidQuestion, err)
		}
		if m.CorrectIndex == nil {
			return nil, fmt.Errorf("%w: correct index is required", ErrInvalidQuestion)
		}
		q = Choice{
			Meta:         meta,
			TrueFalse:    Kind(m.Type) == TrueFalse,
			Options:      options,
			CorrectIndex: *m.CorrectIndex,
		}
	case ShortAnswer:
		var accepted []string
		if err := decode(m.AcceptedAnswers, &accepted); err != nil {
			return nil, fmt.Errorf("%w: accepted answers: %v", ErrInvalidQuestion, err)
		}
		q = Short{Meta: meta, Accepted: accepted}
	case Matching:
		var pairs []Pair
		if err := decode(m.Pairs, &pairs); err != nil {
			return nil, fmt.Errorf("%w: pairs: %v", ErrInvalidQuestion, err)
		}
		q = Match{Meta: meta, Pairs: pairs}
	case Essay:
		q = Open{Meta: meta}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, m.Type)
	}

	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// QuizFromModel orders the questions by order_index (then id) and converts them.
func QuizFromModel(m course.Quiz) (Quiz, error) {
	questions := make([]course.QuizQuestion, len(m.Questions))
	copy(questions, m.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].OrderIndex != questions[j].OrderIndex {
			return questions[i].OrderIndex < questions[j].OrderIndex
		}
		return questions[i].ID < questions[j].ID
	})

	quiz := Quiz{
		PassMarkPercent: m.PassMarkPercent,
		Review: ReviewOptions{
			ShowMarks:          m.ShowMarks,
			ShowCorrectAnswers: m.ShowCorrectAnswers,
			ShowFeedback:       m.ShowFeedback,
		},
		Questions: make([]Question, 0, len(questions)),
	}
	for i, qm := range questions {
		q, err := FromModel(qm)
		if err != nil {
			return Quiz{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

func decode(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
