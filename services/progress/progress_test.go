package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models/course"
)

func TestSubmitLessonProgressIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	f := seedCourse(t, svc.DB, 3)
	e := enroll(t, svc, f)
	ctx := context.Background()

	first, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.lessons[1].ID}, first.CompletedLessons)
	assert.Equal(t, 33, first.ProgressPercent)
	assert.False(t, first.Completed)

	again, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	stored := reload(t, svc.DB, e.ID)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, course.EnrollmentInProgress, stored.Status)
	assert.Equal(t, []uint{f.lessons[1].ID}, stored.LessonIDs())
}

func TestLessonPathCompletesCourseWithoutQuiz(t *testing.T) {
	svc, issuer := newTestService(t)
	f := seedCourse(t, svc.DB, 3)
	e := enroll(t, svc, f)
	ctx := context.Background()

	var res *LessonResult
	var err error
	for _, l := range f.lessons {
		res, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, l.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 100, res.ProgressPercent)
	assert.True(t, res.Completed)
	assert.Equal(t, []uint{e.ID}, issuer.calls)

	stored := reload(t, svc.DB, e.ID)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(fixedNow))
	assert.Equal(t, course.EnrollmentCompleted, stored.Status)

	// re-marking after completion does not issue again
	_, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, issuer.count())
}

func TestLessonPathWaitsForQuiz(t *testing.T) {
	svc, issuer := newTestService(t)
	f := seedCourse(t, svc.DB, 3)
	addQuiz(t, svc.DB, &f, 50, 1)
	e := enroll(t, svc, f)

	for _, l := range f.lessons {
		res, err := svc.SubmitLessonProgress(context.Background(), f.user.ID, f.course.ID, l.ID)
		require.NoError(t, err)
		assert.False(t, res.Completed)
	}

	stored := reload(t, svc.DB, e.ID)
	assert.Equal(t, 100, stored.Progress)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)
	assert.Zero(t, issuer.count())
}

func TestLessonPathAfterQuizPassed(t *testing.T) {
	svc, issuer := newTestService(t)
	f := seedCourse(t, svc.DB, 2)
	addQuiz(t, svc.DB, &f, 50, 1)
	e := enroll(t, svc, f)
	ctx := context.Background()

	res, err := svc.SubmitQuizAttempt(ctx, QuizSubmission{
		StudentID: f.user.ID, CourseID: f.course.ID, QuizID: f.quiz.ID,
		Answers: answers(0, 1),
	})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.False(t, res.Completed)

	_, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)
	last, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[1].ID)
	require.NoError(t, err)

	assert.True(t, last.Completed)
	assert.Equal(t, []uint{e.ID}, issuer.calls)
}

func TestSubmitLessonProgressErrors(t *testing.T) {
	svc, _ := newTestService(t)
	f := seedCourse(t, svc.DB, 1)
	other := seedCourse(t, svc.DB, 1)
	ctx := context.Background()

	_, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[0].ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	enroll(t, svc, f)

	_, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, other.lessons[0].ID)
	assert.ErrorIs(t, err, ErrLessonNotFound)

	_, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, 9999)
	assert.ErrorIs(t, err, ErrLessonNotFound)

	draft := course.Lesson{CourseID: f.course.ID, ModuleID: f.lessons[0].ModuleID, Title: "draft"}
	require.NoError(t, svc.DB.Create(&draft).Error)
	_, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, draft.ID)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestIssuerFailureKeepsCompletion(t *testing.T) {
	svc, issuer := newTestService(t)
	issuer.err = errors.New("renderer down")
	f := seedCourse(t, svc.DB, 1)
	e := enroll(t, svc, f)

	res, err := svc.SubmitLessonProgress(context.Background(), f.user.ID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, reload(t, svc.DB, e.ID).Completed)
	assert.Equal(t, 1, issuer.count())
}

func TestConcurrentLessonUpdatesAreNotLost(t *testing.T) {
	svc, _ := newTestService(t)
	f := seedCourse(t, svc.DB, 4)
	e := enroll(t, svc, f)

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for _, l := range f.lessons[:3] {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.SubmitLessonProgress(context.Background(), f.user.ID, f.course.ID, id)
			errs <- err
		}(l.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored := reload(t, svc.DB, e.ID)
	assert.Len(t, stored.LessonIDs(), 3)
	assert.Equal(t, 75, stored.Progress)
	assert.Equal(t, 3, stored.Version)
}

func TestWriteEnrollmentDetectsStaleVersion(t *testing.T) {
	svc, _ := newTestService(t)
	f := seedCourse(t, svc.DB, 1)
	e := enroll(t, svc, f)

	fresh := *e
	require.NoError(t, writeEnrollment(svc.DB, &fresh, map[string]interface{}{"progress": 10}))
	assert.Equal(t, 1, fresh.Version)

	stale := *e
	err := writeEnrollment(svc.DB, &stale, map[string]interface{}{"progress": 20})
	assert.ErrorIs(t, err, errStale)
	assert.Equal(t, 10, reload(t, svc.DB, e.ID).Progress)
}

func TestEnroll(t *testing.T) {
	svc, _ := newTestService(t)
	f := seedCourse(t, svc.DB, 1)
	ctx := context.Background()

	e, c, err := svc.Enroll(ctx, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, f.course.ID, c.ID)
	assert.Equal(t, course.EnrollmentEnrolled, e.Status)
	assert.Empty(t, e.LessonIDs())

	_, _, err = svc.Enroll(ctx, f.user.ID, f.course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	hidden := course.Course{Title: "Draft"}
	require.NoError(t, svc.DB.Create(&hidden).Error)
	_, _, err = svc.Enroll(ctx, f.user.ID, hidden.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	got, err := svc.Enrollment(ctx, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = svc.Enrollment(ctx, f.user.ID, hidden.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestDeletedLessonsDoNotCountTowardsProgress(t *testing.T) {
	svc, issuer := newTestService(t)
	f := seedCourse(t, svc.DB, 3)
	e := enroll(t, svc, f)
	ctx := context.Background()

	for _, l := range f.lessons[:2] {
		_, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, l.ID)
		require.NoError(t, err)
	}

	require.NoError(t, svc.DB.Model(&f.lessons[1]).Update("is_deleted", true).Error)
	extra := course.Lesson{CourseID: f.course.ID, ModuleID: f.lessons[0].ModuleID, Title: "Added later", OrderIndex: 9, IsPublished: true}
	require.NoError(t, svc.DB.Create(&extra).Error)

	res, err := svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 67, res.ProgressPercent)
	assert.Equal(t, 3, res.TotalLessons)
	assert.False(t, res.Completed)
	assert.Len(t, res.CompletedLessons, 3)

	res, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.ProgressPercent)
	assert.True(t, res.Completed)
	assert.Equal(t, []uint{e.ID}, issuer.calls)
}

func TestRoundedProgressDoesNotComplete(t *testing.T) {
	svc, issuer := newTestService(t)
	f := seedCourse(t, svc.DB, 200)
	e := enroll(t, svc, f)
	ctx := context.Background()

	var res *LessonResult
	var err error
	for _, l := range f.lessons[:199] {
		res, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, l.ID)
		require.NoError(t, err)
	}

	// 199 of 200 rounds to 100 for display
	assert.Equal(t, 100, res.ProgressPercent)
	assert.False(t, res.Completed)
	assert.False(t, reload(t, svc.DB, e.ID).Completed)
	assert.Zero(t, issuer.count())

	res, err = svc.SubmitLessonProgress(ctx, f.user.ID, f.course.ID, f.lessons[199].ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, []uint{e.ID}, issuer.calls)
}
