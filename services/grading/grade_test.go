package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcq(correct int, marks float64) Choice {
	return Choice{Meta: Meta{Points: marks}, Options: []string{"A", "B", "C"}, CorrectIndex: correct}
}

func TestGradeTwoMultipleChoice(t *testing.T) {
	quiz := Quiz{PassMarkPercent: 100, Questions: []Question{mcq(0, 1), mcq(1, 1)}}

	res := Grade(quiz, []Answer{IndexAnswer(0), IndexAnswer(1)})

	assert.Equal(t, 100, res.ScorePercent)
	assert.True(t, res.Passed)
	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 2, res.TotalQuestions)
}

func TestGradeShortAnswerNormalizes(t *testing.T) {
	q := Short{Meta: Meta{Points: 1}, Accepted: []string{"Paris", "paris "}}
	quiz := Quiz{PassMarkPercent: 50, Questions: []Question{q}}

	res := Grade(quiz, []Answer{TextAnswer(" PARIS ")})

	assert.True(t, res.Questions[0].Correct)
	assert.Equal(t, 100, res.ScorePercent)
}

func TestGradeMatchingIsAllOrNothing(t *testing.T) {
	q := Match{Meta: Meta{Points: 2}, Pairs: []Pair{{Left: "A", Right: "1"}, {Left: "B", Right: "2"}}}
	quiz := Quiz{Questions: []Question{q}}

	partial := Grade(quiz, []Answer{MatchAnswer(map[string]string{"A": "1", "B": "3"})})
	assert.False(t, partial.Questions[0].Correct)
	assert.Zero(t, partial.Questions[0].Earned)
	assert.Equal(t, 0, partial.ScorePercent)

	full := Grade(quiz, []Answer{MatchAnswer(map[string]string{"A": "1", "B": "2"})})
	assert.True(t, full.Questions[0].Correct)
	assert.Equal(t, 2.0, full.Questions[0].Earned)
}

func TestGradeMatchingAcceptsNumericValues(t *testing.T) {
	q := Match{Meta: Meta{Points: 1}, Pairs: []Pair{{Left: "A", Right: "1"}}}
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`{"A": 1}`), &a))

	res := Grade(Quiz{Questions: []Question{q}}, []Answer{a})
	assert.True(t, res.Questions[0].Correct)
}

func TestGradeEssayNeverScores(t *testing.T) {
	quiz := Quiz{PassMarkPercent: 50, Questions: []Question{
		mcq(0, 1),
		Open{Meta: Meta{Points: 3}},
	}}

	res := Grade(quiz, []Answer{IndexAnswer(0), TextAnswer("a long essay")})

	assert.True(t, res.Questions[1].Answered)
	assert.False(t, res.Questions[1].Correct)
	assert.Zero(t, res.Questions[1].Earned)
	assert.Equal(t, 4.0, res.PossibleMarks)
	assert.Equal(t, 25, res.ScorePercent)
	assert.False(t, res.Passed)
}

func TestGradeMissingAnswersAreUnanswered(t *testing.T) {
	quiz := Quiz{Questions: []Question{mcq(0, 1), mcq(0, 1), mcq(0, 1)}}

	res := Grade(quiz, []Answer{IndexAnswer(0)})

	require.Len(t, res.Questions, 3)
	assert.True(t, res.Questions[0].Answered)
	assert.False(t, res.Questions[1].Answered)
	assert.False(t, res.Questions[2].Correct)
	assert.Equal(t, 33, res.ScorePercent)
}

func TestGradeChoiceAnswerShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "number", raw: `1`, want: true},
		{name: "numeric string", raw: `" 1 "`, want: true},
		{name: "float with fraction", raw: `1.5`, want: false},
		{name: "wrong index", raw: `2`, want: false},
		{name: "text", raw: `"B"`, want: false},
		{name: "null", raw: `null`, want: false},
	}
	quiz := Quiz{Questions: []Question{mcq(1, 1)}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &a))
			res := Grade(quiz, []Answer{a})
			assert.Equal(t, tt.want, res.Questions[0].Correct)
		})
	}
}

func TestGradeInvariants(t *testing.T) {
	quizzes := []Quiz{
		{PassMarkPercent: 60, Questions: []Question{mcq(0, 1), mcq(2, 2.5), Open{Meta: Meta{Points: 4}}}},
		{PassMarkPercent: 0, Questions: []Question{}},
		{PassMarkPercent: 34, Questions: []Question{
			Short{Meta: Meta{Points: 1}, Accepted: []string{"go"}},
			Match{Meta: Meta{Points: 1}, Pairs: []Pair{{Left: "x", Right: "y"}}},
			Choice{Meta: Meta{Points: 1}, TrueFalse: true, Options: []string{"True", "False"}, CorrectIndex: 1},
		}},
	}
	answerSets := [][]Answer{
		nil,
		{IndexAnswer(0), IndexAnswer(2), TextAnswer("x")},
		{TextAnswer("GO"), MatchAnswer(map[string]string{"x": "y"}), IndexAnswer(0)},
	}

	for qi, quiz := range quizzes {
		var possible float64
		for _, q := range quiz.Questions {
			possible += q.Marks()
		}
		for _, answers := range answerSets {
			res := Grade(quiz, answers)

			var sumMax, sumEarned float64
			for _, qr := range res.Questions {
				sumMax += qr.MaxMarks
				sumEarned += qr.Earned
			}
			assert.Equal(t, possible, sumMax, "quiz %d", qi)
			assert.Equal(t, ScorePercent(sumEarned, possible), res.ScorePercent, "quiz %d", qi)
			assert.Equal(t, res.ScorePercent >= quiz.PassMarkPercent, res.Passed, "quiz %d", qi)
		}
	}
}

func TestScorePercent(t *testing.T) {
	assert.Equal(t, 0, ScorePercent(0, 0))
	assert.Equal(t, 67, ScorePercent(2, 3))
	assert.Equal(t, 50, ScorePercent(0.5, 1))
	assert.Equal(t, 100, ScorePercent(3, 3))
}
