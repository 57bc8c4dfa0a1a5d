// Package certificate issues one completion certificate per student and
// course. The unique (user_id, course_id) index is the duplicate guard; the
// lookup before rendering only saves work.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/models"
	"lms/models/course"
	"lms/renderer"
	"lms/storage"
)

const (
	StatusIssued      = "ISSUED"
	StatusPending     = "PENDING"
	StatusNotEligible = "NOT_ELIGIBLE"
)

const contentType = "application/pdf"

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrNotCompleted        = errors.New("course is not completed yet")
	ErrCertificateNotFound = errors.New("certificate not found")
)

// Notifier is told about every newly recorded certificate.
type Notifier func(user models.User, c course.Course, cert course.Certificate)

type Service struct {
	DB       *gorm.DB
	Renderer renderer.Renderer
	Storage  storage.Storage
	Notify   Notifier
	Now      func() time.Time
	log      zerolog.Logger
}

func NewService(db *gorm.DB, r renderer.Renderer, st storage.Storage, notify Notifier) *Service {
	return &Service{
		DB:       db,
		Renderer: r,
		Storage:  st,
		Notify:   notify,
		Now:      time.Now,
		log:      log.With().Str("component", "certificate").Logger(),
	}
}

// Key is where the certificate of userID for courseID is stored.
func Key(courseID, userID uint) string {
	return fmt.Sprintf("certificates/%d/%d.pdf", courseID, userID)
}

// NewNumber returns a public certificate number such as LMS-2026-1F0C3A9B42DE.
func NewNumber(issuedAt time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("LMS-%d-%s", issuedAt.Year(), id[:12])
}

// Issue returns the certificate of a completed enrollment, creating it on
// first use. A storage failure degrades to an inline data URI; a render
// failure is returned and nothing is recorded.
func (s *Service) Issue(ctx context.Context, enrollmentID uint) (*course.Certificate, error) {
	db := s.DB.WithContext(ctx)

	var e course.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if !e.Completed {
		return nil, ErrNotCompleted
	}

	if existing, err := s.find(db, e.UserID, e.CourseID); err != nil || existing != nil {
		return existing, err
	}

	var user models.User
	if err := db.First(&user, e.UserID).Error; err != nil {
		return nil, fmt.Errorf("load user %d: %w", e.UserID, err)
	}
	var c course.Course
	if err := db.Unscoped().First(&c, e.CourseID).Error; err != nil {
		return nil, fmt.Errorf("load course %d: %w", e.CourseID, err)
	}

	now := s.Now()
	completedOn := now
	if e.CompletedAt != nil {
		completedOn = *e.CompletedAt
	}
	number := NewNumber(now)

	doc, err := s.Renderer.Render(ctx, renderer.CertificateData{
		StudentName:       user.Name,
		CourseName:        c.Title,
		CompletionDate:    completedOn,
		CertificateNumber: number,
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	cert := course.Certificate{
		UserID:            e.UserID,
		CourseID:          e.CourseID,
		EnrollmentID:      e.ID,
		CertificateNumber: number,
		IssuedAt:          now,
	}
	url, err := s.Storage.Store(ctx, Key(e.CourseID, e.UserID), doc, contentType)
	if err != nil {
		s.log.Warn().Err(err).Uint("enrollment_id", e.ID).Msg("certificate storage failed, embedding inline")
		url = storage.DataURI(contentType, doc)
		cert.StoredInline = true
	}
	cert.CertificateURL = url

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// a concurrent request recorded it first
		winner, err := s.find(db, e.UserID, e.CourseID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("certificate for enrollment %d was neither created nor found", e.ID)
		}
		return winner, nil
	}

	s.log.Info().Uint("user_id", e.UserID).Uint("course_id", e.CourseID).Str("number", cert.CertificateNumber).
		Bool("inline", cert.StoredInline).Msg("certificate issued")

	if s.Notify != nil {
		s.Notify(user, c, cert)
	}
	return &cert, nil
}

func (s *Service) find(db *gorm.DB, userID, courseID uint) (*course.Certificate, error) {
	var cert course.Certificate
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// Status reports ISSUED, PENDING (completed but no certificate yet) or
// NOT_ELIGIBLE for an enrollment.
func (s *Service) Status(ctx context.Context, e *course.Enrollment) (string, *course.Certificate, error) {
	cert, err := s.find(s.DB.WithContext(ctx), e.UserID, e.CourseID)
	if err != nil {
		return "", nil, err
	}
	switch {
	case cert != nil:
		return StatusIssued, cert, nil
	case e.Completed:
		return StatusPending, nil, nil
	default:
		return StatusNotEligible, nil, nil
	}
}
