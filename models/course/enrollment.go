package course

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID           uint           `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID         uint           `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	Status           string         `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	CompletedLessons datatypes.JSON `json:"completed_lessons"`
	Progress         int            `json:"progress" gorm:"default:0"` // Completion percentage (0-100)
	Completed        bool           `json:"completed" gorm:"default:false"`
	CompletedAt      *time.Time     `json:"completed_at"`
	QuizScore        *int           `json:"quiz_score"`
	QuizPassed       *bool          `json:"quiz_passed"`
	QuizAttempts     int            `json:"quiz_attempts" gorm:"default:0"`
	Version          int            `json:"version" gorm:"default:0"`
	IsDeleted        bool           `json:"-" gorm:"default:false"`
}

// LessonIDs decodes the completed lesson set.
func (e *Enrollment) LessonIDs() []uint {
	var ids []uint
	if len(e.CompletedLessons) == 0 {
		return []uint{}
	}
	if err := json.Unmarshal(e.CompletedLessons, &ids); err != nil || ids == nil {
		return []uint{}
	}
	return ids
}

// HasLesson reports whether lessonID is already in the completed set.
func (e *Enrollment) HasLesson(lessonID uint) bool {
	for _, id := range e.LessonIDs() {
		if id == lessonID {
			return true
		}
	}
	return false
}

// AddLesson inserts lessonID into the completed set. It returns false when
// the lesson was already there.
func (e *Enrollment) AddLesson(lessonID uint) bool {
	if e.HasLesson(lessonID) {
		return false
	}
	ids := append(e.LessonIDs(), lessonID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	b, _ := json.Marshal(ids)
	e.CompletedLessons = datatypes.JSON(b)
	return true
}

// HasPassedQuiz is false until a graded attempt reached the pass mark.
func (e *Enrollment) HasPassedQuiz() bool {
	return e.QuizPassed != nil && *e.QuizPassed
}

// ProgressPercent is round(done/total*100), 0 for a course without lessons.
func ProgressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}
