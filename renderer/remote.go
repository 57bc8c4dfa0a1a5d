package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteRenderer posts the certificate data to an HTTP rendering service and
// expects the document bytes back.
type RemoteRenderer struct {
	client *resty.Client
	url    string
}

func NewRemoteRenderer(url string, timeout time.Duration) *RemoteRenderer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(1).
		SetHeader("Accept", "application/pdf")
	return &RemoteRenderer{client: client, url: url}
}

func (r *RemoteRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Post(r.url)
	if err != nil {
		return nil, fmt.Errorf("renderer request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("renderer responded with status %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("renderer returned an empty document")
	}
	return resp.Body(), nil
}
