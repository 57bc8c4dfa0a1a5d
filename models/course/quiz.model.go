package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
	QuestionMatching       = "matching"
	QuestionEssay          = "essay"
)

// Quiz is the single assessment attached to a course
type Quiz struct {
	gorm.Model
	CourseID           uint           `json:"course_id" gorm:"uniqueIndex;not null"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	PassMarkPercent    int            `json:"pass_mark_percent"`
	AttemptsAllowed    int            `json:"attempts_allowed" gorm:"default:1"`
	TimeLimitMinutes   *int           `json:"time_limit_minutes"`
	OpenAt             *time.Time     `json:"open_at"`
	CloseAt            *time.Time     `json:"close_at"`
	ShowMarks          bool           `json:"show_marks"`
	ShowCorrectAnswers bool           `json:"show_correct_answers"`
	ShowFeedback       bool           `json:"show_feedback"`
	Questions          []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	IsDeleted          bool           `json:"-" gorm:"default:false"`
}

// QuizQuestion stores one question; the JSON columns hold the type specific
// answer key (options, accepted answers or matching pairs).
type QuizQuestion struct {
	gorm.Model
	QuizID          uint           `json:"quiz_id" gorm:"index;not null"`
	OrderIndex      int            `json:"order_index" gorm:"default:0"`
	Type            string         `json:"type" gorm:"type:varchar(20);not null"`
	Prompt          string         `json:"prompt" gorm:"type:text"`
	Marks           float64        `json:"marks" gorm:"default:1"`
	Options         datatypes.JSON `json:"options,omitempty"`
	CorrectIndex    *int           `json:"correct_index,omitempty"`
	AcceptedAnswers datatypes.JSON `json:"accepted_answers,omitempty"`
	Pairs           datatypes.JSON `json:"pairs,omitempty"`
	Feedback        string         `json:"feedback,omitempty" gorm:"type:text"`
}

// QuizAttempt is the history row written for every graded submission
type QuizAttempt struct {
	gorm.Model
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	EnrollmentID  uint           `json:"enrollment_id" gorm:"index;not null"`
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
	Answers       datatypes.JSON `json:"answers"`
	ScorePercent  int            `json:"score_percent"`
	Passed        bool           `json:"passed" gorm:"default:false"`
	Correct       int            `json:"correct"`
	Total         int            `json:"total"`
	StartedAt     *time.Time     `json:"started_at"`
	SubmittedAt   time.Time      `json:"submitted_at"`
}
