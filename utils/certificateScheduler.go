package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"lms/services/certificate"
)

const certificateRetryBatch = 50

// InitializeCertificateScheduler re-issues certificates for completed
// enrollments that have none, on the given cron schedule.
func InitializeCertificateScheduler(schedule string, svc *certificate.Service) (*cron.Cron, error) {
	log.Info().Str("schedule", schedule).Msg("[CERTIFICATE-SCHEDULER] Initializing certificate retry scheduler...")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		RetryPendingCertificates(svc)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info().Msg("[CERTIFICATE-SCHEDULER] Certificate retry scheduler started")
	return c, nil
}

// RetryPendingCertificates runs one retry sweep.
func RetryPendingCertificates(svc *certificate.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	issued, err := svc.RetryPending(ctx, certificateRetryBatch)
	if err != nil {
		log.Error().Err(err).Msg("[CERTIFICATE-SCHEDULER] Retry sweep failed")
		return
	}
	if issued > 0 {
		log.Info().Int("issued", issued).Msg("[CERTIFICATE-SCHEDULER] Issued pending certificates")
	}
}
