package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	CourseID          uint      `json:"course_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	EnrollmentID      uint      `json:"enrollment_id" gorm:"index;not null"`
	CertificateURL    string    `json:"certificate_url" gorm:"type:text"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	StoredInline      bool      `json:"stored_inline" gorm:"default:false"`
	IssuedAt          time.Time `json:"issued_at"`
}
