// Package attempt decides whether a quiz submission may be graded. It never
// mutates state: the caller increments the attempt count after grading.
package attempt

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lms/models/course"
)

type Reason string

const (
	ReasonNotOpen           Reason = "not_open"
	ReasonClosed            Reason = "closed"
	ReasonNotEnrolled       Reason = "not_enrolled"
	ReasonNoAttemptsLeft    Reason = "no_attempts_remaining"
	ReasonStartTimeRequired Reason = "start_time_required"
	ReasonTimeLimitExceeded Reason = "time_limit_exceeded"
)

// Rejection is the tagged result of a failed guard.
type Rejection struct {
	Reason  Reason
	Message string
	Status  int
}

func (r *Rejection) Error() string { return r.Message }

func reject(reason Reason, status int, msg string) *Rejection {
	return &Rejection{Reason: reason, Message: msg, Status: status}
}

// Policy is the part of a quiz definition that gates submissions.
type Policy struct {
	OpenAt           *time.Time
	CloseAt          *time.Time
	AttemptsAllowed  int
	TimeLimitMinutes *int
}

func PolicyFromQuiz(q course.Quiz) Policy {
	return Policy{
		OpenAt:           q.OpenAt,
		CloseAt:          q.CloseAt,
		AttemptsAllowed:  q.AttemptsAllowed,
		TimeLimitMinutes: q.TimeLimitMinutes,
	}
}

// Allowed treats anything below one as the default single attempt.
func (p Policy) Allowed() int {
	if p.AttemptsAllowed < 1 {
		return 1
	}
	return p.AttemptsAllowed
}

// Submission is everything the guards look at.
type Submission struct {
	Policy     Policy
	Enrollment *course.Enrollment
	Now        time.Time
	StartedAt  string
}

type Guard func(s Submission) *Rejection

// Guards run in this order; the first rejection wins.
var Guards = []Guard{
	WindowOpen,
	WindowNotClosed,
	Enrolled,
	AttemptsRemaining,
	WithinTimeLimit,
}

// Check runs every guard and returns the first *Rejection, or nil.
func Check(s Submission) error {
	for _, g := range Guards {
		if r := g(s); r != nil {
			return r
		}
	}
	return nil
}

// AsRejection unwraps err into a *Rejection when it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func WindowOpen(s Submission) *Rejection {
	if s.Policy.OpenAt != nil && s.Now.Before(*s.Policy.OpenAt) {
		return reject(ReasonNotOpen, http.StatusBadRequest, "Quiz is not open yet!")
	}
	return nil
}

func WindowNotClosed(s Submission) *Rejection {
	if s.Policy.CloseAt != nil && s.Now.After(*s.Policy.CloseAt) {
		return reject(ReasonClosed, http.StatusBadRequest, "Quiz is closed!")
	}
	return nil
}

func Enrolled(s Submission) *Rejection {
	if s.Enrollment == nil {
		return reject(ReasonNotEnrolled, http.StatusForbidden, "You are not enrolled in this course!")
	}
	return nil
}

func AttemptsRemaining(s Submission) *Rejection {
	if s.Enrollment != nil && s.Enrollment.QuizAttempts >= s.Policy.Allowed() {
		return reject(ReasonNoAttemptsLeft, http.StatusBadRequest, "No attempts remaining!")
	}
	return nil
}

// ClockSkew is how far ahead of the server clock a client start time may be.
const ClockSkew = 2 * time.Minute

func WithinTimeLimit(s Submission) *Rejection {
	if s.Policy.TimeLimitMinutes == nil || *s.Policy.TimeLimitMinutes <= 0 {
		return nil
	}
	started, err := ParseStartedAt(s.StartedAt)
	if err != nil || started.After(s.Now.Add(ClockSkew)) {
		return reject(ReasonStartTimeRequired, http.StatusBadRequest, "A valid start time is required for timed quizzes!")
	}
	limit := time.Duration(*s.Policy.TimeLimitMinutes) * time.Minute
	if s.Now.Sub(started) > limit {
		return reject(ReasonTimeLimitExceeded, http.StatusBadRequest, "Time limit exceeded!")
	}
	return nil
}

var ErrNoStartTime = errors.New("start time is empty")

// ParseStartedAt accepts RFC 3339 timestamps or unix epoch milliseconds.
func ParseStartedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrNoStartTime
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", raw, err)
	}
	return t, nil
}
