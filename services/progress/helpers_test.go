package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lms/database"
	"lms/models"
	"lms/models/course"
)

type fakeIssuer struct {
	mu    sync.Mutex
	calls []uint
	err   error
}

func (f *fakeIssuer) Issue(_ context.Context, enrollmentID uint) (*course.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, enrollmentID)
	if f.err != nil {
		return nil, f.err
	}
	return &course.Certificate{EnrollmentID: enrollmentID}, nil
}

func (f *fakeIssuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var fixedNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeIssuer) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	issuer := &fakeIssuer{}
	svc := NewService(db, issuer)
	svc.Now = func() time.Time { return fixedNow }
	return svc, issuer
}

type fixture struct {
	user    models.User
	course  course.Course
	lessons []course.Lesson
	quiz    *course.Quiz
}

func seedCourse(t *testing.T, db *gorm.DB, lessons int) fixture {
	t.Helper()
	f := fixture{
		user:   models.User{Name: "Student", Email: uuid.NewString() + "@lms.test", Password: "x"},
		course: course.Course{Title: "Go Basics", IsPublished: true, Status: "ACTIVE"},
	}
	require.NoError(t, db.Create(&f.user).Error)
	require.NoError(t, db.Create(&f.course).Error)

	mod := course.Module{CourseID: f.course.ID, Title: "Module 1"}
	require.NoError(t, db.Create(&mod).Error)
	for i := 0; i < lessons; i++ {
		l := course.Lesson{CourseID: f.course.ID, ModuleID: mod.ID, Title: "Lesson", OrderIndex: i, IsPublished: true}
		require.NoError(t, db.Create(&l).Error)
		f.lessons = append(f.lessons, l)
	}
	return f
}

// addQuiz attaches a two question multiple choice quiz (answers 0 then 1).
func addQuiz(t *testing.T, db *gorm.DB, f *fixture, passMark, attempts int) {
	t.Helper()
	zero, one := 0, 1
	q := course.Quiz{
		CourseID:        f.course.ID,
		Title:           "Final quiz",
		PassMarkPercent: passMark,
		AttemptsAllowed: attempts,
		ShowMarks:       true,
		Questions: []course.QuizQuestion{
			{OrderIndex: 0, Type: course.QuestionMultipleChoice, Marks: 1, Options: datatypes.JSON(`["a","b"]`), CorrectIndex: &zero},
			{OrderIndex: 1, Type: course.QuestionMultipleChoice, Marks: 1, Options: datatypes.JSON(`["a","b"]`), CorrectIndex: &one},
		},
	}
	require.NoError(t, db.Create(&q).Error)
	f.quiz = &q
}

func enroll(t *testing.T, svc *Service, f fixture) *course.Enrollment {
	t.Helper()
	e, _, err := svc.Enroll(context.Background(), f.user.ID, f.course.ID)
	require.NoError(t, err)
	return e
}

func reload(t *testing.T, db *gorm.DB, id uint) course.Enrollment {
	t.Helper()
	var e course.Enrollment
	require.NoError(t, db.First(&e, id).Error)
	return e
}
