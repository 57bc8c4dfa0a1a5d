// Package grading scores quiz submissions. Every question type is its own
// variant with its own evaluation, and Grade only sums what they report.
package grading

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	MultipleChoice Kind = "multiple_choice"
	TrueFalse      Kind = "true_false"
	ShortAnswer    Kind = "short_answer"
	Matching       Kind = "matching"
	Essay          Kind = "essay"
)

var ErrInvalidQuestion = errors.New("invalid question")

// Question is implemented by the question variants of this package only.
type Question interface {
	Kind() Kind
	Marks() float64
	FeedbackText() string
	evaluate(a Answer) bool
	correctAnswer() interface{}
	validate() error
}

// Meta carries what every variant shares.
type Meta struct {
	Points   float64
	Feedback string
}

func (m Meta) Marks() float64       { return m.Points }
func (m Meta) FeedbackText() string { return m.Feedback }

func (m Meta) validate() error {
	if m.Points <= 0 {
		return fmt.Errorf("%w: marks must be positive", ErrInvalidQuestion)
	}
	return nil
}

// Choice covers multiple choice and true/false questions.
type Choice struct {
	Meta
	TrueFalse    bool
	Options      []string
	CorrectIndex int
}

func (q Choice) Kind() Kind {
	if q.TrueFalse {
		return TrueFalse
	}
	return MultipleChoice
}

func (q Choice) evaluate(a Answer) bool {
	idx, ok := a.Index()
	return ok && idx == q.CorrectIndex
}

func (q Choice) correctAnswer() interface{} {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return nil
	}
	return q.Options[q.CorrectIndex]
}

func (q Choice) validate() error {
	if err := q.Meta.validate(); err != nil {
		return err
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: at least 2 options are required", ErrInvalidQuestion)
	}
	if q.TrueFalse && len(q.Options) != 2 {
		return fmt.Errorf("%w: true/false questions take exactly 2 options", ErrInvalidQuestion)
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: option text must not be empty", ErrInvalidQuestion)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, q.CorrectIndex)
	}
	return nil
}

// Short is graded by case and whitespace insensitive membership.
type Short struct {
	Meta
	Accepted []string
}

func (Short) Kind() Kind { return ShortAnswer }

func (q Short) evaluate(a Answer) bool {
	text, ok := a.Text()
	if !ok {
		return false
	}
	given := normalize(text)
	if given == "" {
		return false
	}
	for _, acc := range q.Accepted {
		if normalize(acc) == given {
			return true
		}
	}
	return false
}

func (q Short) correctAnswer() interface{} {
	out := make([]string, 0, len(q.Accepted))
	for _, acc := range q.Accepted {
		out = append(out, strings.TrimSpace(acc))
	}
	return out
}

func (q Short) validate() error {
	if err := q.Meta.validate(); err != nil {
		return err
	}
	for _, acc := range q.Accepted {
		if normalize(acc) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: at least one accepted answer is required", ErrInvalidQuestion)
}

type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Match is all-or-nothing: every pair has to be satisfied.
type Match struct {
	Meta
	Pairs []Pair
}

func (Match) Kind() Kind { return Matching }

func (q Match) evaluate(a Answer) bool {
	given, ok := a.Mapping()
	if !ok || len(q.Pairs) == 0 {
		return false
	}
	chosen := make(map[string]string, len(given))
	for k, v := range given {
		chosen[normalize(k)] = normalize(v)
	}
	for _, p := range q.Pairs {
		v, ok := chosen[normalize(p.Left)]
		if !ok || v != normalize(p.Right) {
			return false
		}
	}
	return true
}

func (q Match) correctAnswer() interface{} {
	out := make([]Pair, len(q.Pairs))
	copy(out, q.Pairs)
	return out
}

func (q Match) validate() error {
	if err := q.Meta.validate(); err != nil {
		return err
	}
	if len(q.Pairs) == 0 {
		return fmt.Errorf("%w: at least one pair is required", ErrInvalidQuestion)
	}
	seen := make(map[string]bool, len(q.Pairs))
	for _, p := range q.Pairs {
		l := normalize(p.Left)
		if l == "" || normalize(p.Right) == "" {
			return fmt.Errorf("%w: pair items must not be empty", ErrInvalidQuestion)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate left item %q", ErrInvalidQuestion, p.Left)
		}
		seen[l] = true
	}
	return nil
}

// Open needs manual grading and never earns marks here.
type Open struct {
	Meta
}

func (Open) Kind() Kind                 { return Essay }
func (Open) evaluate(Answer) bool       { return false }
func (Open) correctAnswer() interface{} { return nil }
func (q Open) validate() error          { return q.Meta.validate() }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks a question bank the way authoring endpoints need it.
func Validate(questions []Question) error {
	for i, q := range questions {
		if q == nil {
			return fmt.Errorf("question %d: %w: missing definition", i+1, ErrInvalidQuestion)
		}
		if err := q.validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
