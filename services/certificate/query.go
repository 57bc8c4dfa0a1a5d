package certificate

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"lms/models"
	"lms/models/course"
)

type CertificateWithCourse struct {
	course.Certificate
	CourseName string `json:"course_name"`
}

// ListForUser returns the user's certificates, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]CertificateWithCourse, error) {
	var out []CertificateWithCourse
	err := s.DB.WithContext(ctx).
		Table("certificates").
		Select("certificates.*, courses.title AS course_name").
		Joins("LEFT JOIN courses ON courses.id = certificates.course_id").
		Where("certificates.user_id = ? AND certificates.deleted_at IS NULL", userID).
		Order("certificates.issued_at desc").
		Scan(&out).Error
	return out, err
}

// Verification is the public view of a certificate.
type Verification struct {
	CertificateNumber string    `json:"certificate_number"`
	StudentName       string    `json:"student_name"`
	CourseName        string    `json:"course_name"`
	IssuedAt          time.Time `json:"issued_at"`
	CompletedAt       time.Time `json:"completed_at"`
}

// Verify looks a certificate up by its public number.
func (s *Service) Verify(ctx context.Context, number string) (*Verification, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, ErrCertificateNotFound
	}
	db := s.DB.WithContext(ctx)

	var cert course.Certificate
	if err := db.Where("certificate_number = ?", number).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}

	var user models.User
	var c course.Course
	var e course.Enrollment
	if err := db.Unscoped().First(&user, cert.UserID).Error; err != nil {
		return nil, err
	}
	if err := db.Unscoped().First(&c, cert.CourseID).Error; err != nil {
		return nil, err
	}
	completedAt := cert.IssuedAt
	if err := db.Unscoped().First(&e, cert.EnrollmentID).Error; err == nil && e.CompletedAt != nil {
		completedAt = *e.CompletedAt
	}

	return &Verification{
		CertificateNumber: cert.CertificateNumber,
		StudentName:       user.Name,
		CourseName:        c.Title,
		IssuedAt:          cert.IssuedAt,
		CompletedAt:       completedAt,
	}, nil
}

// PendingEnrollments lists completed enrollments that still lack a certificate.
func (s *Service) PendingEnrollments(ctx context.Context, limit int) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).
		Model(&course.Enrollment{}).
		Joins("LEFT JOIN certificates ON certificates.user_id = enrollments.user_id AND certificates.course_id = enrollments.course_id AND certificates.deleted_at IS NULL").
		Where("enrollments.completed = ? AND enrollments.is_deleted = ? AND certificates.id IS NULL", true, false).
		Order("enrollments.completed_at asc").
		Limit(limit).
		Pluck("enrollments.id", &ids).Error
	return ids, err
}

// RetryPending issues certificates for up to limit pending enrollments and
// returns how many were issued.
func (s *Service) RetryPending(ctx context.Context, limit int) (int, error) {
	ids, err := s.PendingEnrollments(ctx, limit)
	if err != nil {
		return 0, err
	}
	issued := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return issued, err
		}
		if _, err := s.Issue(ctx, id); err != nil {
			s.log.Error().Err(err).Uint("enrollment_id", id).Msg("certificate retry failed")
			continue
		}
		issued++
	}
	return issued, nil
}
