package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Answer is one raw submitted value, index aligned with the questions. It
// stays undecoded until the question variant asks for the shape it expects.
type Answer struct {
	raw json.RawMessage
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	a.raw = append(a.raw[:0], b...)
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// IndexAnswer, TextAnswer and MatchAnswer build answers in code.
func IndexAnswer(i int) Answer { return Answer{raw: json.RawMessage(strconv.Itoa(i))} }

func TextAnswer(s string) Answer {
	b, _ := json.Marshal(s)
	return Answer{raw: b}
}

func MatchAnswer(m map[string]string) Answer {
	b, _ := json.Marshal(m)
	return Answer{raw: b}
}

// IsBlank is true for a missing, null or empty-string answer.
func (a Answer) IsBlank() bool {
	t := bytes.TrimSpace(a.raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return true
	}
	if s, ok := a.Text(); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// Index accepts a JSON integer or a numeric string.
func (a Answer) Index() (int, bool) {
	var n json.Number
	if err := json.Unmarshal(a.raw, &n); err == nil {
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Text accepts a JSON string, or a number rendered as text.
func (a Answer) Text() (string, bool) {
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(a.raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// Mapping accepts an object whose values are strings or numbers.
func (a Answer) Mapping() (map[string]string, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal(a.raw, &m); err != nil || m == nil {
		return nil, false
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			continue
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out, true
}
