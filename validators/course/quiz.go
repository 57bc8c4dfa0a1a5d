package courseValidator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"lms/middleware"
	"lms/models/course"
	"lms/services/grading"
)

const (
	defaultPassMark = 50
	defaultAttempts = 1
)

type QuestionRequest struct {
	Type            string         `json:"type" validate:"required,oneof=multiple_choice true_false short_answer matching essay"`
	Prompt          string         `json:"prompt" validate:"required,max=5000"`
	Marks           *float64       `json:"marks"`
	Options         []string       `json:"options"`
	CorrectIndex    *int           `json:"correct_index"`
	AcceptedAnswers []string       `json:"accepted_answers"`
	Pairs           []grading.Pair `json:"pairs"`
	Feedback        string         `json:"feedback" validate:"max=5000"`
}

type QuizRequest struct {
	Title              string            `json:"title" validate:"required,min=3,max=200"`
	Description        string            `json:"description" validate:"max=5000"`
	PassMarkPercent    *int              `json:"pass_mark_percent"`
	AttemptsAllowed    *int              `json:"attempts_allowed"`
	TimeLimitMinutes   *int              `json:"time_limit_minutes"`
	OpenAt             *time.Time        `json:"open_at"`
	CloseAt            *time.Time        `json:"close_at"`
	ShowMarks          *bool             `json:"show_marks"`
	ShowCorrectAnswers *bool             `json:"show_correct_answers"`
	ShowFeedback       *bool             `json:"show_feedback"`
	Questions          []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// Model builds the quiz row with the authoring defaults applied.
func (r *QuizRequest) Model(courseID uint) course.Quiz {
	q := course.Quiz{
		CourseID:         courseID,
		Title:            r.Title,
		Description:      r.Description,
		PassMarkPercent:  defaultPassMark,
		AttemptsAllowed:  defaultAttempts,
		TimeLimitMinutes: r.TimeLimitMinutes,
		OpenAt:           r.OpenAt,
		CloseAt:          r.CloseAt,
		ShowMarks:        true,
	}
	if r.PassMarkPercent != nil {
		q.PassMarkPercent = *r.PassMarkPercent
	}
	if r.AttemptsAllowed != nil {
		q.AttemptsAllowed = *r.AttemptsAllowed
	}
	if r.ShowMarks != nil {
		q.ShowMarks = *r.ShowMarks
	}
	if r.ShowCorrectAnswers != nil {
		q.ShowCorrectAnswers = *r.ShowCorrectAnswers
	}
	if r.ShowFeedback != nil {
		q.ShowFeedback = *r.ShowFeedback
	}
	for i, qr := range r.Questions {
		q.Questions = append(q.Questions, qr.Model(i))
	}
	return q
}

// Model converts the question into its stored form at position order.
func (r QuestionRequest) Model(order int) course.QuizQuestion {
	marks := 1.0
	if r.Marks != nil {
		marks = *r.Marks
	}
	q := course.QuizQuestion{
		OrderIndex: order,
		Type:       r.Type,
		Prompt:     r.Prompt,
		Marks:      marks,
		Feedback:   r.Feedback,
	}
	switch r.Type {
	case course.QuestionMultipleChoice, course.QuestionTrueFalse:
		q.Options = jsonColumn(r.Options)
		q.CorrectIndex = r.CorrectIndex
	case course.QuestionShortAnswer:
		q.AcceptedAnswers = jsonColumn(r.AcceptedAnswers)
	case course.QuestionMatching:
		q.Pairs = jsonColumn(r.Pairs)
	}
	return q
}

func jsonColumn(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// UpsertQuiz validates the quiz authoring request, including every question
// definition.
func UpsertQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(QuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		errors := fieldErrors(reqData)

		if p := reqData.PassMarkPercent; p != nil && (*p < 0 || *p > 100) {
			errors["pass_mark_percent"] = "Pass mark must be between 0 and 100!"
		}
		if a := reqData.AttemptsAllowed; a != nil && *a < 1 {
			errors["attempts_allowed"] = "Attempts allowed must be at least 1!"
		}
		if t := reqData.TimeLimitMinutes; t != nil && *t < 1 {
			errors["time_limit_minutes"] = "Time limit must be at least 1 minute!"
		}
		if reqData.OpenAt != nil && reqData.CloseAt != nil && !reqData.CloseAt.After(*reqData.OpenAt) {
			errors["close_at"] = "Close time must be after open time!"
		}

		for i, q := range reqData.Questions {
			if q.Marks != nil && *q.Marks <= 0 {
				errors[fmt.Sprintf("questions[%d].marks", i)] = "Marks must be positive!"
				continue
			}
			if _, err := grading.FromModel(q.Model(i)); err != nil {
				key := fmt.Sprintf("questions[%d]", i)
				if _, taken := errors[key+".type"]; !taken {
					errors[key] = err.Error()
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

type QuizSubmissionRequest struct {
	Answers   []grading.Answer `json:"answers" validate:"required"`
	StartedAt string           `json:"started_at"`
}

// SubmitQuiz validates a quiz submission. An empty answer list is allowed
// and grades as all unanswered; a missing one is not.
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		quizID, ok := paramID(c, "quiz_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Quiz ID!", nil)
		}

		reqData := new(QuizSubmissionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.StartedAt = strings.TrimSpace(reqData.StartedAt)

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("quizID", quizID)
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}
