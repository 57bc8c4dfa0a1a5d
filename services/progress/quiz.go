package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lms/models/course"
	"lms/services/attempt"
	"lms/services/grading"
)

// QuizSubmission is one student's answers to a course quiz.
type QuizSubmission struct {
	StudentID uint
	CourseID  uint
	QuizID    uint
	Answers   []grading.Answer
	StartedAt string
}

type QuizResult struct {
	ScorePercent    int                   `json:"score_percent"`
	Passed          bool                  `json:"passed"`
	Correct         int                   `json:"correct"`
	Total           int                   `json:"total"`
	PassMarkPercent int                   `json:"pass_mark_percent"`
	Completed       bool                  `json:"completed"`
	AttemptsUsed    int                   `json:"attempts_used"`
	AttemptsAllowed int                   `json:"attempts_allowed"`
	ReviewOptions   grading.ReviewOptions `json:"review_options"`
	Questions       []grading.ReviewItem  `json:"per_question_results"`
}

// SubmitQuizAttempt gates, grades and records one quiz submission. A
// rejection from the attempt guards comes back as *attempt.Rejection.
func (s *Service) SubmitQuizAttempt(ctx context.Context, sub QuizSubmission) (*QuizResult, error) {
	db := s.DB.WithContext(ctx)

	var quiz course.Quiz
	err := db.Preload("Questions").
		Where("id = ? AND course_id = ? AND is_deleted = ?", sub.QuizID, sub.CourseID, false).
		First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	gradable, err := grading.QuizFromModel(quiz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuizMisconfigured, err)
	}

	policy := attempt.PolicyFromQuiz(quiz)
	now := s.Now()

	var startedAt *time.Time
	if t, err := attempt.ParseStartedAt(sub.StartedAt); err == nil {
		startedAt = &t
	}

	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, err
	}

	for try := 0; try < maxWriteAttempts; try++ {
		enrollment, err := findEnrollment(db, sub.StudentID, sub.CourseID)
		if err != nil {
			return nil, err
		}

		// guards are re-run on every fresh read so a concurrent attempt
		// cannot push the count past the limit
		if err := attempt.Check(attempt.Submission{
			Policy:     policy,
			Enrollment: enrollment,
			Now:        now,
			StartedAt:  sub.StartedAt,
		}); err != nil {
			return nil, err
		}

		graded := grading.Grade(gradable, sub.Answers)

		total, err := course.CountCourseLessons(db, sub.CourseID)
		if err != nil {
			return nil, err
		}

		e := *enrollment
		done, err := course.CountDoneLessons(db, sub.CourseID, e.LessonIDs())
		if err != nil {
			return nil, err
		}
		lessonsDone := done >= total
		completes := graded.Passed && lessonsDone && !e.Completed

		updates := map[string]interface{}{
			"quiz_score":    graded.ScorePercent,
			"quiz_passed":   graded.Passed,
			"quiz_attempts": e.QuizAttempts + 1,
		}
		if !e.Completed {
			updates["status"] = course.EnrollmentInProgress
		}
		if completes {
			updates["completed"] = true
			updates["completed_at"] = now
			updates["status"] = course.EnrollmentCompleted
		}

		history := course.QuizAttempt{
			UserID:        sub.StudentID,
			CourseID:      sub.CourseID,
			QuizID:        quiz.ID,
			EnrollmentID:  e.ID,
			AttemptNumber: e.QuizAttempts + 1,
			Answers:       answers,
			ScorePercent:  graded.ScorePercent,
			Passed:        graded.Passed,
			Correct:       graded.CorrectCount,
			Total:         graded.TotalQuestions,
			StartedAt:     startedAt,
			SubmittedAt:   now,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := writeEnrollment(tx, &e, updates); err != nil {
				return err
			}
			return tx.Create(&history).Error
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info().Uint("user_id", sub.StudentID).Uint("quiz_id", quiz.ID).Int("attempt", history.AttemptNumber).
			Int("score", graded.ScorePercent).Bool("passed", graded.Passed).Bool("completed", e.Completed || completes).
			Msg("quiz attempt graded")

		if completes {
			s.issue(ctx, e.ID)
		}

		return &QuizResult{
			ScorePercent:    graded.ScorePercent,
			Passed:          graded.Passed,
			Correct:         graded.CorrectCount,
			Total:           graded.TotalQuestions,
			PassMarkPercent: quiz.PassMarkPercent,
			Completed:       e.Completed || completes,
			AttemptsUsed:    e.QuizAttempts + 1,
			AttemptsAllowed: policy.Allowed(),
			ReviewOptions:   gradable.Review,
			Questions:       grading.BuildReview(gradable, graded),
		}, nil
	}

	return nil, ErrConcurrentUpdate
}

// ListAttempts returns the student's graded attempts at a quiz, newest first.
func (s *Service) ListAttempts(ctx context.Context, studentID, quizID uint) ([]course.QuizAttempt, error) {
	var attempts []course.QuizAttempt
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number desc").
		Find(&attempts).Error
	return attempts, err
}
