// Package progress records lesson completions and graded quiz attempts on an
// enrollment and flips it to completed once every requirement is met.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"lms/models/course"
)

var (
	ErrNotEnrolled       = errors.New("user is not enrolled in this course")
	ErrLessonNotFound    = errors.New("lesson not found in this course")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizMisconfigured = errors.New("quiz definition is invalid")
	ErrCourseNotFound    = errors.New("course not found")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrConcurrentUpdate  = errors.New("enrollment changed concurrently, try again")
)

// errStale makes a write lose against a newer enrollment version.
var errStale = errors.New("stale enrollment version")

const maxWriteAttempts = 3

// Issuer produces the certificate for a freshly completed enrollment.
type Issuer interface {
	Issue(ctx context.Context, enrollmentID uint) (*course.Certificate, error)
}

type Service struct {
	DB     *gorm.DB
	Issuer Issuer
	Now    func() time.Time
	log    zerolog.Logger
}

func NewService(db *gorm.DB, issuer Issuer) *Service {
	return &Service{
		DB:     db,
		Issuer: issuer,
		Now:    time.Now,
		log:    log.With().Str("component", "progress").Logger(),
	}
}

// LessonResult is the outcome of marking one lesson done.
type LessonResult struct {
	CompletedLessons []uint `json:"completed_lessons"`
	ProgressPercent  int    `json:"progress_percent"`
	TotalLessons     int    `json:"total_lessons"`
	Completed        bool   `json:"completed"`
}

// SubmitLessonProgress adds lessonID to the student's completed set and
// completes the enrollment when that was the last requirement.
func (s *Service) SubmitLessonProgress(ctx context.Context, studentID, courseID, lessonID uint) (*LessonResult, error) {
	db := s.DB.WithContext(ctx)

	enrollment, err := findEnrollment(db, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotEnrolled
	}

	var lesson course.Lesson
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	hasQuiz, err := courseHasQuiz(db, courseID)
	if err != nil {
		return nil, err
	}

	for try := 0; try < maxWriteAttempts; try++ {
		if try > 0 {
			if enrollment, err = findEnrollment(db, studentID, courseID); err != nil {
				return nil, err
			}
			if enrollment == nil {
				return nil, ErrNotEnrolled
			}
		}

		total, err := course.CountCourseLessons(db, courseID)
		if err != nil {
			return nil, err
		}

		e := *enrollment
		added := e.AddLesson(lessonID)
		done, err := course.CountDoneLessons(db, courseID, e.LessonIDs())
		if err != nil {
			return nil, err
		}
		percent := course.ProgressPercent(done, total)
		// percent is rounded for display; completion needs every lesson
		completes := total > 0 && done >= total && !e.Completed && (!hasQuiz || e.HasPassedQuiz())

		result := &LessonResult{
			CompletedLessons: e.LessonIDs(),
			ProgressPercent:  percent,
			TotalLessons:     total,
			Completed:        e.Completed || completes,
		}

		// re-marking a lesson only writes when the lesson count moved
		if !added && percent == e.Progress && !completes {
			return result, nil
		}

		updates := map[string]interface{}{
			"completed_lessons": e.CompletedLessons,
			"progress":          percent,
		}
		if !e.Completed {
			updates["status"] = course.EnrollmentInProgress
		}
		if completes {
			updates["completed"] = true
			updates["completed_at"] = s.Now()
			updates["status"] = course.EnrollmentCompleted
		}

		if err := writeEnrollment(db, &e, updates); err != nil {
			if errors.Is(err, errStale) {
				continue
			}
			return nil, err
		}

		s.log.Info().Uint("user_id", studentID).Uint("course_id", courseID).Uint("lesson_id", lessonID).
			Int("progress", percent).Bool("completed", result.Completed).Msg("lesson progress recorded")

		if completes {
			s.issue(ctx, e.ID)
		}
		return result, nil
	}

	return nil, ErrConcurrentUpdate
}

// writeEnrollment applies updates only if the row still carries e.Version.
func writeEnrollment(tx *gorm.DB, e *course.Enrollment, updates map[string]interface{}) error {
	updates["version"] = e.Version + 1
	res := tx.Model(&course.Enrollment{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStale
	}
	e.Version++
	return nil
}

// issue runs the certificate issuer; failures never undo the completion.
func (s *Service) issue(ctx context.Context, enrollmentID uint) {
	if s.Issuer == nil {
		return
	}
	if _, err := s.Issuer.Issue(ctx, enrollmentID); err != nil {
		s.log.Error().Err(err).Uint("enrollment_id", enrollmentID).Msg("certificate issuance failed, will retry later")
	}
}

func findEnrollment(db *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var e course.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func courseHasQuiz(db *gorm.DB, courseID uint) (bool, error) {
	var n int64
	err := db.Model(&course.Quiz{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&n).Error
	return n > 0, err
}
