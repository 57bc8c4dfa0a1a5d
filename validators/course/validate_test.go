package courseValidator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalKey(t *testing.T) {
	cases := map[string]string{
		"id":            "courseID",
		"user_id":       "targetUserID",
		"course_id":     "courseID",
		"quiz_id":       "quizID",
		"lesson_id":     "lessonID",
		"enrollment_id": "enrollmentID",
	}
	for param, want := range cases {
		assert.Equal(t, want, localKey(param), param)
	}
	assert.Equal(t, "Course ID", label("id"))
	assert.Equal(t, "Enrollment ID", label("enrollment_id"))
}

func TestFieldErrorsUseJSONPaths(t *testing.T) {
	req := &QuizRequest{
		Title: "Q",
		Questions: []QuestionRequest{
			{Type: "multiple_choice", Prompt: "ok"},
			{Type: "riddle"},
		},
	}

	errs := fieldErrors(req)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "questions[1].type")
	assert.Contains(t, errs, "questions[1].prompt")
	assert.NotContains(t, errs, "questions[0].type")

	assert.Contains(t, fieldErrors(&QuizSubmissionRequest{}), "answers")
}

func TestQuizRequestDefaults(t *testing.T) {
	req := &QuizRequest{
		Title:     "Final",
		Questions: []QuestionRequest{{Type: "short_answer", Prompt: "Capital?", AcceptedAnswers: []string{"Paris"}}},
	}

	q := req.Model(7)
	assert.Equal(t, uint(7), q.CourseID)
	assert.Equal(t, 50, q.PassMarkPercent)
	assert.Equal(t, 1, q.AttemptsAllowed)
	assert.True(t, q.ShowMarks)
	require.Len(t, q.Questions, 1)
	assert.Equal(t, 1.0, q.Questions[0].Marks)
	assert.JSONEq(t, `["Paris"]`, string(q.Questions[0].AcceptedAnswers))
}

func TestIDParamsAndList(t *testing.T) {
	app := fiber.New()
	app.Get("/c/:course_id/q/:quiz_id", IDParams("course_id", "quiz_id"), List(), func(c *fiber.Ctx) error {
		p := c.Locals("pagination").(*Pagination)
		return c.JSON(fiber.Map{
			"course": c.Locals("courseID"),
			"quiz":   c.Locals("quizID"),
			"page":   p.Page,
			"limit":  p.Limit,
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/c/3/q/9?page=2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/c/3/q/0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/c/3/q/9?limit=500", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
