// Package renderer turns completion details into a certificate document.
package renderer

import (
	"context"
	"time"

	"lms/config"
)

type CertificateData struct {
	StudentName       string    `json:"student_name"`
	CourseName        string    `json:"course_name"`
	CompletionDate    time.Time `json:"completion_date"`
	CertificateNumber string    `json:"certificate_number"`
}

type Renderer interface {
	Render(ctx context.Context, data CertificateData) ([]byte, error)
}

// New returns the remote renderer when RENDERER_URL is set, the in-process
// PDF renderer otherwise.
func New(cfg *config.Config) Renderer {
	if cfg.RendererURL != "" {
		return NewRemoteRenderer(cfg.RendererURL, time.Duration(cfg.RendererTimeout)*time.Second)
	}
	return NewPDFRenderer()
}
