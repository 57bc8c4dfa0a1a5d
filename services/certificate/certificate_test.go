package certificate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lms/database"
	"lms/models"
	"lms/models/course"
	"lms/renderer"
)

type fakeRenderer struct {
	mu  sync.Mutex
	got []renderer.CertificateData
	err error
}

func (f *fakeRenderer) Render(_ context.Context, data renderer.CertificateData) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, data)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + data.CertificateNumber), nil
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeStorage) Store(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://files.test/" + key, nil
}

var issuedAt = time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	render   *fakeRenderer
	store    *fakeStorage
	notified []course.Certificate
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	e := &testEnv{render: &fakeRenderer{}, store: &fakeStorage{}}
	e.svc = NewService(db, e.render, e.store, func(_ models.User, _ course.Course, cert course.Certificate) {
		e.notified = append(e.notified, cert)
	})
	e.svc.Now = func() time.Time { return issuedAt }
	return e
}

func seedEnrollment(t *testing.T, db *gorm.DB, completed bool) course.Enrollment {
	t.Helper()
	user := models.User{Name: "Grace Hopper", Email: uuid.NewString() + "@lms.test", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	c := course.Course{Title: "Compilers", IsPublished: true}
	require.NoError(t, db.Create(&c).Error)

	e := course.Enrollment{UserID: user.ID, CourseID: c.ID, Status: course.EnrollmentInProgress}
	if completed {
		at := issuedAt.Add(-time.Hour)
		e.Completed = true
		e.CompletedAt = &at
		e.Status = course.EnrollmentCompleted
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func countCertificates(t *testing.T, db *gorm.DB, e course.Enrollment) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&course.Certificate{}).Where("user_id = ? AND course_id = ?", e.UserID, e.CourseID).Count(&n).Error)
	return n
}

func TestIssueStoresCertificate(t *testing.T) {
	env := newEnv(t)
	e := seedEnrollment(t, env.svc.DB, true)

	cert, err := env.svc.Issue(context.Background(), e.ID)
	require.NoError(t, err)

	key := Key(e.CourseID, e.UserID)
	assert.Equal(t, "https://files.test/"+key, cert.CertificateURL)
	assert.False(t, cert.StoredInline)
	assert.Equal(t, e.ID, cert.EnrollmentID)
	assert.True(t, strings.HasPrefix(cert.CertificateNumber, "LMS-2026-"))
	assert.True(t, cert.IssuedAt.Equal(issuedAt))
	assert.Equal(t, []string{key}, env.store.keys)

	require.Len(t, env.render.got, 1)
	assert.Equal(t, "Grace Hopper", env.render.got[0].StudentName)
	assert.Equal(t, "Compilers", env.render.got[0].CourseName)
	assert.True(t, env.render.got[0].CompletionDate.Equal(*e.CompletedAt))
	assert.Len(t, env.notified, 1)
}

func TestIssueIsIdempotent(t *testing.T) {
	env := newEnv(t)
	e := seedEnrollment(t, env.svc.DB, true)
	ctx := context.Background()

	first, err := env.svc.Issue(ctx, e.ID)
	require.NoError(t, err)
	second, err := env.svc.Issue(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
	assert.Equal(t, int64(1), countCertificates(t, env.svc.DB, e))
	assert.Len(t, env.render.got, 1)
	assert.Len(t, env.notified, 1)
}

func TestIssueLosingInsertReturnsWinner(t *testing.T) {
	env := newEnv(t)
	e := seedEnrollment(t, env.svc.DB, true)

	// simulate a concurrent request that inserts between lookup and insert
	winner := course.Certificate{UserID: e.UserID, CourseID: e.CourseID, EnrollmentID: e.ID, CertificateNumber: "LMS-2026-WINNER", IssuedAt: issuedAt}
	env.svc.Renderer = rendererFunc(func(ctx context.Context, d renderer.CertificateData) ([]byte, error) {
		require.NoError(t, env.svc.DB.Create(&winner).Error)
		return []byte("%PDF"), nil
	})

	cert, err := env.svc.Issue(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "LMS-2026-WINNER", cert.CertificateNumber)
	assert.Equal(t, int64(1), countCertificates(t, env.svc.DB, e))
	assert.Empty(t, env.notified)
}

type rendererFunc func(ctx context.Context, d renderer.CertificateData) ([]byte, error)

func (f rendererFunc) Render(ctx context.Context, d renderer.CertificateData) ([]byte, error) {
	return f(ctx, d)
}

func TestIssueFallsBackToInlineDocument(t *testing.T) {
	env := newEnv(t)
	env.store.err = errors.New("bucket unavailable")
	e := seedEnrollment(t, env.svc.DB, true)

	cert, err := env.svc.Issue(context.Background(), e.ID)
	require.NoError(t, err)
	assert.True(t, cert.StoredInline)
	assert.True(t, strings.HasPrefix(cert.CertificateURL, "data:application/pdf;base64,"))
}

func TestIssueRenderFailureRecordsNothing(t *testing.T) {
	env := newEnv(t)
	env.render.err = errors.New("renderer down")
	e := seedEnrollment(t, env.svc.DB, true)

	_, err := env.svc.Issue(context.Background(), e.ID)
	require.Error(t, err)
	assert.Zero(t, countCertificates(t, env.svc.DB, e))

	status, cert, err := env.svc.Status(context.Background(), &e)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
	assert.Nil(t, cert)
}

func TestIssueRequiresCompletion(t *testing.T) {
	env := newEnv(t)
	e := seedEnrollment(t, env.svc.DB, false)

	_, err := env.svc.Issue(context.Background(), e.ID)
	assert.ErrorIs(t, err, ErrNotCompleted)

	_, err = env.svc.Issue(context.Background(), e.ID+99)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	status, _, err := env.svc.Status(context.Background(), &e)
	require.NoError(t, err)
	assert.Equal(t, StatusNotEligible, status)
}

func TestRetryPending(t *testing.T) {
	env := newEnv(t)
	env.render.err = errors.New("renderer down")
	done := seedEnrollment(t, env.svc.DB, true)
	seedEnrollment(t, env.svc.DB, false)
	ctx := context.Background()

	_, err := env.svc.Issue(ctx, done.ID)
	require.Error(t, err)

	pending, err := env.svc.PendingEnrollments(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{done.ID}, pending)

	env.render.err = nil
	n, err := env.svc.RetryPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status, cert, err := env.svc.Status(ctx, &done)
	require.NoError(t, err)
	assert.Equal(t, StatusIssued, status)
	require.NotNil(t, cert)

	pending, err = env.svc.PendingEnrollments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestVerifyAndList(t *testing.T) {
	env := newEnv(t)
	e := seedEnrollment(t, env.svc.DB, true)
	ctx := context.Background()

	cert, err := env.svc.Issue(ctx, e.ID)
	require.NoError(t, err)

	v, err := env.svc.Verify(ctx, " "+strings.ToLower(cert.CertificateNumber)+" ")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", v.StudentName)
	assert.Equal(t, "Compilers", v.CourseName)
	assert.True(t, v.CompletedAt.Equal(*e.CompletedAt))

	_, err = env.svc.Verify(ctx, "LMS-0000-NOPE")
	assert.ErrorIs(t, err, ErrCertificateNotFound)

	list, err := env.svc.ListForUser(ctx, e.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Compilers", list[0].CourseName)
	assert.Equal(t, cert.CertificateNumber, list[0].CertificateNumber)
}

func TestNewNumber(t *testing.T) {
	a := NewNumber(issuedAt)
	b := NewNumber(issuedAt)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("LMS-2026-")+12)
	assert.Equal(t, strings.ToUpper(a), a)
}
