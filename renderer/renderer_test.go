package renderer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/config"
)

func sample() CertificateData {
	return CertificateData{
		StudentName:       "Amina Njeri",
		CourseName:        "Introduction to Go",
		CompletionDate:    time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		CertificateNumber: "LMS-2026-ABC123",
	}
}

func TestPDFRendererProducesPDF(t *testing.T) {
	out, err := NewPDFRenderer().Render(context.Background(), sample())
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFRendererRequiresNames(t *testing.T) {
	d := sample()
	d.StudentName = " "
	_, err := NewPDFRenderer().Render(context.Background(), d)
	assert.Error(t, err)
}

func TestRemoteRenderer(t *testing.T) {
	var got CertificateData
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-remote"))
	}))
	defer srv.Close()

	out, err := NewRemoteRenderer(srv.URL, time.Second).Render(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-remote", string(out))
	assert.Equal(t, "Amina Njeri", got.StudentName)
	assert.Equal(t, "LMS-2026-ABC123", got.CertificateNumber)
}

func TestRemoteRendererFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRemoteRenderer(srv.URL, time.Second).Render(context.Background(), sample())
	assert.Error(t, err)
}

func TestNewPicksBackend(t *testing.T) {
	_, ok := New(&config.Config{}).(*PDFRenderer)
	assert.True(t, ok)

	_, ok = New(&config.Config{RendererURL: "http://renderer"}).(*RemoteRenderer)
	assert.True(t, ok)
}
