package progress

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/models/course"
)

// Enroll creates the student's enrollment in a published course.
func (s *Service) Enroll(ctx context.Context, studentID, courseID uint) (*course.Enrollment, *course.Course, error) {
	db := s.DB.WithContext(ctx)

	var c course.Course
	err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	enrollment := course.Enrollment{
		UserID:           studentID,
		CourseID:         courseID,
		Status:           course.EnrollmentEnrolled,
		CompletedLessons: datatypes.JSON("[]"),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, ErrAlreadyEnrolled
	}

	s.log.Info().Uint("user_id", studentID).Uint("course_id", courseID).Msg("enrolled")
	return &enrollment, &c, nil
}

// Enrollment returns the student's enrollment or ErrNotEnrolled.
func (s *Service) Enrollment(ctx context.Context, studentID, courseID uint) (*course.Enrollment, error) {
	e, err := findEnrollment(s.DB.WithContext(ctx), studentID, courseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotEnrolled
	}
	return e, nil
}
