package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/emaillogs"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/mailer"
	"github.com/gatherly/backend/pkg/queue"
)

// EmailProcessor processes queued email jobs (reminders and resends) and
// records each delivery outcome in email_logs.
type EmailProcessor struct {
	mailer mailer.EmailClient
	logs   *emaillogs.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(mail mailer.EmailClient, logs *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: mail, logs: logs, queue: q, logger: logger}
}

// Process executes one email job. A send failure is returned so the run loop
// retries; a failed log row is written on the final attempt only, to keep the
// per-guest history free of transient noise.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	msg := mailer.Message{To: payload.RecipientEmail, Subject: payload.Subject, HTML: payload.BodyHTML}
	if err := p.mailer.Send(ctx, msg); err != nil {
		if job.Attempt >= queue.MaxRetries-1 {
			p.writeLog(ctx, payload, models.EmailLogStatusFailed, err.Error())
		}
		return fmt.Errorf("send: %w", err)
	}

	p.writeLog(ctx, payload, models.EmailLogStatusSent, "")
	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

func (p *EmailProcessor) writeLog(ctx context.Context, payload queue.EmailPayload, status, errMsg string) {
	log := &models.EmailLog{
		EventID:        &payload.EventID,
		GuestID:        &payload.GuestID,
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        payload.Subject,
		Status:         status,
		ErrorMessage:   errMsg,
	}
	if status == models.EmailLogStatusSent {
		now := time.Now()
		log.SentAt = &now
	}
	if err := p.logs.Create(ctx, log); err != nil {
		p.logger.Warn("email log write failed", zap.Error(err), zap.String("recipient", payload.RecipientEmail))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
