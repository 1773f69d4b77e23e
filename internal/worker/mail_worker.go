package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/service"
)

const (
	MailPollTimeout = 1 * time.Second
	MailMaxRetries  = 3
)

// MailWorker drains the Redis mail queue and delivers each job over SMTP.
// Failed jobs are requeued with a retry counter so a flaky SMTP server does
// not drop mail on the floor.
type MailWorker struct {
	rdb    *redis.Client
	mailer *service.MailerService
	log    zerolog.Logger
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(rdb *redis.Client, mailer *service.MailerService, log zerolog.Logger) *MailWorker {
	return &MailWorker{
		rdb:    rdb,
		mailer: mailer,
		log:    log.With().Str("component", "mail_worker").Logger(),
	}
}

type queuedMail struct {
	service.MailJob
	Attempts int `json:"attempts,omitempty"`
}

// Start runs the delivery loop until the context is cancelled.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("MailWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("MailWorker shutting down")
			return

		default:
			item, err := w.rdb.BLPop(ctx, MailPollTimeout, config.WorkerKey.MailQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job queuedMail
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.deliver(ctx, &job)
		}
	}
}

func (w *MailWorker) deliver(ctx context.Context, job *queuedMail) {
	if err := w.mailer.Send(job.MailJob); err != nil {
		job.Attempts++
		if job.Attempts >= MailMaxRetries {
			w.log.Error().Err(err).Strs("to", job.To).Str("subject", job.Subject).
				Int("attempts", job.Attempts).Msg("mail dropped after retries")
			return
		}

		w.log.Warn().Err(err).Strs("to", job.To).Int("attempts", job.Attempts).Msg("mail send failed — requeueing")
		raw, _ := json.Marshal(job)
		if err := w.rdb.RPush(ctx, config.WorkerKey.MailQueue, raw).Err(); err != nil {
			w.log.Error().Err(err).Msg("requeue failed")
		}
		return
	}

	w.log.Debug().Strs("to", job.To).Str("subject", job.Subject).Msg("mail delivered")
}
