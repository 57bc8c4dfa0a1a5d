package grading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lms/models/course"
)

func intPtr(i int) *int { return &i }

func TestQuizFromModelOrdersQuestions(t *testing.T) {
	m := course.Quiz{
		PassMarkPercent: 70,
		ShowMarks:       true,
		Questions: []course.QuizQuestion{
			{Model: gorm.Model{ID: 3}, OrderIndex: 2, Type: course.QuestionEssay, Marks: 5},
			{Model: gorm.Model{ID: 2}, OrderIndex: 1, Type: course.QuestionShortAnswer, Marks: 1,
				AcceptedAnswers: datatypes.JSON(`["go"]`)},
			{Model: gorm.Model{ID: 1}, OrderIndex: 1, Type: course.QuestionTrueFalse, Marks: 1,
				Options: datatypes.JSON(`["True","False"]`), CorrectIndex: intPtr(0)},
			{Model: gorm.Model{ID: 4}, OrderIndex: 0, Type: course.QuestionMatching, Marks: 2,
				Pairs: datatypes.JSON(`[{"left":"a","right":"b"}]`)},
		},
	}

	quiz, err := QuizFromModel(m)
	require.NoError(t, err)

	require.Len(t, quiz.Questions, 4)
	assert.Equal(t, Matching, quiz.Questions[0].Kind())
	assert.Equal(t, TrueFalse, quiz.Questions[1].Kind())
	assert.Equal(t, ShortAnswer, quiz.Questions[2].Kind())
	assert.Equal(t, Essay, quiz.Questions[3].Kind())
	assert.Equal(t, 70, quiz.PassMarkPercent)
	assert.True(t, quiz.Review.ShowMarks)
	assert.False(t, quiz.Review.ShowCorrectAnswers)
}

func TestFromModelRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		q    course.QuizQuestion
	}{
		{name: "unknown type", q: course.QuizQuestion{Type: "ranking", Marks: 1}},
		{name: "zero marks", q: course.QuizQuestion{Type: course.QuestionEssay}},
		{name: "missing correct index", q: course.QuizQuestion{Type: course.QuestionMultipleChoice, Marks: 1,
			Options: datatypes.JSON(`["a","b"]`)}},
		{name: "index out of range", q: course.QuizQuestion{Type: course.QuestionMultipleChoice, Marks: 1,
			Options: datatypes.JSON(`["a","b"]`), CorrectIndex: intPtr(2)}},
		{name: "true false with three options", q: course.QuizQuestion{Type: course.QuestionTrueFalse, Marks: 1,
			Options: datatypes.JSON(`["a","b","c"]`), CorrectIndex: intPtr(0)}},
		{name: "no accepted answers", q: course.QuizQuestion{Type: course.QuestionShortAnswer, Marks: 1,
			AcceptedAnswers: datatypes.JSON(`["  "]`)}},
		{name: "duplicate left", q: course.QuizQuestion{Type: course.QuestionMatching, Marks: 1,
			Pairs: datatypes.JSON(`[{"left":"A","right":"1"},{"left":"a ","right":"2"}]`)}},
		{name: "malformed options", q: course.QuizQuestion{Type: course.QuestionMultipleChoice, Marks: 1,
			Options: datatypes.JSON(`{"a":1}`), CorrectIndex: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromModel(tt.q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuestion))
		})
	}
}

func TestValidateReportsPosition(t *testing.T) {
	err := Validate([]Question{
		Open{Meta: Meta{Points: 1}},
		Short{Meta: Meta{Points: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 2")
	assert.ErrorIs(t, err, ErrInvalidQuestion)
}
