package controllers

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/attempt"
	"lms/services/grading"
	"lms/services/progress"
	validators "lms/validators/course"
)

// AdminUpsertQuiz creates the course quiz or replaces it, questions included
func AdminUpsertQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedQuiz").(*validators.QuizRequest)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	quiz := reqData.Model(course.ID)
	questions := quiz.Questions
	quiz.Questions = nil

	created := false
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var existing courseModels.Quiz
		err := tx.Unscoped().Where("course_id = ?", course.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			if err := tx.Create(&quiz).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			quiz.ID = existing.ID
			quiz.CreatedAt = existing.CreatedAt
			if err := tx.Unscoped().Model(&existing).Updates(map[string]interface{}{
				"title":                quiz.Title,
				"description":          quiz.Description,
				"pass_mark_percent":    quiz.PassMarkPercent,
				"attempts_allowed":     quiz.AttemptsAllowed,
				"time_limit_minutes":   quiz.TimeLimitMinutes,
				"open_at":              quiz.OpenAt,
				"close_at":             quiz.CloseAt,
				"show_marks":           quiz.ShowMarks,
				"show_correct_answers": quiz.ShowCorrectAnswers,
				"show_feedback":        quiz.ShowFeedback,
				"is_deleted":           false,
				"deleted_at":           nil,
			}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("quiz_id = ?", existing.ID).Delete(&courseModels.QuizQuestion{}).Error; err != nil {
				return err
			}
		}

		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		return tx.Create(&questions).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz!", nil)
	}
	quiz.Questions = questions

	if created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

// AdminGetQuiz returns the course quiz with its answer key
func AdminGetQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	var quiz courseModels.Quiz
	if err := database.Database.Db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc, id asc")
	}).Where("course_id = ? AND is_deleted = ?", course.ID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}

// AdminDeleteQuiz removes the quiz requirement from a course. Enrollments
// that are already completed stay completed.
func AdminDeleteQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	res := database.Database.Db.Model(&courseModels.Quiz{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

type studentQuestion struct {
	Index   int      `json:"index"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Marks   float64  `json:"marks"`
	Options []string `json:"options,omitempty"`
	Left    []string `json:"left,omitempty"`
	Right   []string `json:"right,omitempty"`
}

type studentQuiz struct {
	ID               uint              `json:"id"`
	CourseID         uint              `json:"course_id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	PassMarkPercent  int               `json:"pass_mark_percent"`
	AttemptsAllowed  int               `json:"attempts_allowed"`
	AttemptsUsed     int               `json:"attempts_used"`
	TimeLimitMinutes *int              `json:"time_limit_minutes"`
	OpenAt           *time.Time        `json:"open_at"`
	CloseAt          *time.Time        `json:"close_at"`
	Questions        []studentQuestion `json:"questions"`
}

// answerFree strips the answer key from a quiz. Matching right-hand items
// are sorted so their order does not give the pairing away.
func answerFree(quiz courseModels.Quiz, gradable grading.Quiz, e *courseModels.Enrollment) studentQuiz {
	out := studentQuiz{
		ID:               quiz.ID,
		CourseID:         quiz.CourseID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		PassMarkPercent:  quiz.PassMarkPercent,
		AttemptsAllowed:  attempt.PolicyFromQuiz(quiz).Allowed(),
		AttemptsUsed:     e.QuizAttempts,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		OpenAt:           quiz.OpenAt,
		CloseAt:          quiz.CloseAt,
	}

	prompts := make([]courseModels.QuizQuestion, len(quiz.Questions))
	copy(prompts, quiz.Questions)
	sort.SliceStable(prompts, func(i, j int) bool {
		if prompts[i].OrderIndex != prompts[j].OrderIndex {
			return prompts[i].OrderIndex < prompts[j].OrderIndex
		}
		return prompts[i].ID < prompts[j].ID
	})

	for i, q := range gradable.Questions {
		sq := studentQuestion{Index: i, Type: string(q.Kind()), Prompt: prompts[i].Prompt, Marks: q.Marks()}
		switch v := q.(type) {
		case grading.Choice:
			sq.Options = v.Options
		case grading.Match:
			for _, p := range v.Pairs {
				sq.Left = append(sq.Left, p.Left)
				sq.Right = append(sq.Right, p.Right)
			}
			sort.Strings(sq.Right)
		}
		out.Questions = append(out.Questions, sq)
	}
	return out
}

// GetQuiz returns the course quiz to an enrolled student without answers
func GetQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)

	enrollment, err := progressService.Enrollment(c.UserContext(), userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	var quiz courseModels.Quiz
	if err := database.Database.Db.Preload("Questions").
		Where("course_id = ? AND is_deleted = ?", courseID, false).First(&quiz).Error; err != nil {
		return serviceError(c, progress.ErrQuizNotFound)
	}

	gradable, err := grading.QuizFromModel(quiz)
	if err != nil {
		return serviceError(c, progress.ErrQuizMisconfigured)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", answerFree(quiz, gradable, enrollment))
}

// SubmitQuizAttempt grades a quiz submission and records the attempt
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)
	reqData := c.Locals("validatedSubmission").(*validators.QuizSubmissionRequest)

	result, err := progressService.SubmitQuizAttempt(c.UserContext(), progress.QuizSubmission{
		StudentID: userID,
		CourseID:  uint(courseID),
		QuizID:    uint(quizID),
		Answers:   reqData.Answers,
		StartedAt: reqData.StartedAt,
	})
	if err != nil {
		return serviceError(c, err)
	}

	message := "Quiz submitted! You did not reach the pass mark."
	if result.Passed {
		message = "Quiz submitted! You passed."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// GetQuizAttempts lists the caller's graded attempts at a quiz
func GetQuizAttempts(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)

	if _, err := progressService.Enrollment(c.UserContext(), userID, uint(courseID)); err != nil {
		return serviceError(c, err)
	}

	attempts, err := progressService.ListAttempts(c.UserContext(), userID, uint(quizID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
