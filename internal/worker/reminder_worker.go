package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/service"
)

// ReminderWorker runs the deadline reminder sweep on a cron schedule,
// targeting forms that close within the next 24 hours.
type ReminderWorker struct {
	reminders *service.ReminderService
	spec      string
	cron      *cron.Cron
	log       zerolog.Logger
}

// NewReminderWorker creates a new ReminderWorker with the given cron spec.
func NewReminderWorker(reminders *service.ReminderService, spec string, log zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		reminders: reminders,
		spec:      spec,
		cron:      cron.New(),
		log:       log.With().Str("component", "reminder_worker").Logger(),
	}
}

// Start schedules the sweep and runs until the context is cancelled.
func (w *ReminderWorker) Start(ctx context.Context) {
	_, err := w.cron.AddFunc(w.spec, func() {
		now := time.Now()
		sent, err := w.reminders.SweepDue(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			w.log.Error().Err(err).Msg("reminder sweep failed")
			return
		}
		w.log.Info().Int("reminders", sent).Msg("reminder sweep completed")
	})
	if err != nil {
		w.log.Error().Err(err).Str("spec", w.spec).Msg("invalid reminder cron spec")
		return
	}

	w.cron.Start()
	w.log.Info().Str("spec", w.spec).Msg("ReminderWorker started")

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.log.Info().Msg("ReminderWorker stopped")
}
