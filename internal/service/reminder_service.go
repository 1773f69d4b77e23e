package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
)

// ReminderService emails students who have not yet answered a form whose
// deadline is approaching. It backs both the daily cron sweep and the
// admin's manual "send reminders" action.
type ReminderService struct {
	forms     FormStore
	responses ResponseStore
	roster    RosterStore
	mailer    *MailerService
	log       zerolog.Logger
}

// NewReminderService creates a new ReminderService.
func NewReminderService(forms FormStore, responses ResponseStore, roster RosterStore, mailer *MailerService, log zerolog.Logger) *ReminderService {
	return &ReminderService{
		forms:     forms,
		responses: responses,
		roster:    roster,
		mailer:    mailer,
		log:       log.With().Str("component", "reminder_service").Logger(),
	}
}

// SweepDue finds active forms whose deadline falls inside [from, to) and
// queues a reminder for every student in the form's branch who has not
// submitted. Returns the number of reminders queued.
func (s *ReminderService) SweepDue(ctx context.Context, from, to time.Time) (int, error) {
	forms, err := s.forms.ListDueBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list due forms: %w", err)
	}

	total := 0
	for i := range forms {
		sent, err := s.RemindForm(ctx, &forms[i])
		if err != nil {
			s.log.Error().Err(err).Int("form_id", forms[i].ID).Msg("reminder sweep failed for form")
			continue
		}
		total += sent
	}
	return total, nil
}

// AnnounceForm queues a "new form available" mail for every student in the
// form's branch. Called once, right after the form is published.
func (s *ReminderService) AnnounceForm(ctx context.Context, form *model.Form) (int, error) {
	roster, err := s.roster.ListAllByBranch(ctx, form.Branch, model.UnsubmittedFilter{})
	if err != nil {
		return 0, err
	}

	deadline := "no deadline"
	if form.Deadline != nil {
		deadline = form.Deadline.Format("2 Jan 2006 15:04")
	}

	sent := 0
	for _, st := range roster {
		job := MailJob{
			To:      []string{st.Email},
			Subject: fmt.Sprintf("New form available: %s", form.Title),
			Body: fmt.Sprintf("Hello %s,\n\nYour department admin has published a new form: %q."+
				"\n\n%s\n\nDeadline: %s. Please log in to the SAT Portal to fill it out.",
				st.Name, form.Title, form.Description, deadline),
		}
		if err := s.mailer.Enqueue(ctx, job); err != nil {
			s.log.Warn().Err(err).Int("student_id", st.ID).Msg("failed to enqueue announcement")
			continue
		}
		sent++
	}

	s.log.Info().Int("form_id", form.ID).Int("announcements", sent).Msg("new form announced")
	return sent, nil
}

// RemindForm queues deadline reminders for one form's unsubmitted students.
func (s *ReminderService) RemindForm(ctx context.Context, form *model.Form) (int, error) {
	roster, err := s.roster.ListAllByBranch(ctx, form.Branch, model.UnsubmittedFilter{})
	if err != nil {
		return 0, err
	}
	responded, err := s.responses.RespondedStudentIDs(ctx, form.ID)
	if err != nil {
		return 0, err
	}

	deadline := "soon"
	if form.Deadline != nil {
		deadline = form.Deadline.Format("2 Jan 2006 15:04")
	}

	sent := 0
	for _, st := range roster {
		if _, ok := responded[st.ID]; ok {
			continue
		}

		job := MailJob{
			To:      []string{st.Email},
			Subject: fmt.Sprintf("Reminder: %q closes %s", form.Title, deadline),
			Body: fmt.Sprintf("Hello %s,\n\nYou have not yet submitted a response to %q."+
				"\nThe form closes on %s. Please log in to the SAT Portal and submit before the deadline.",
				st.Name, form.Title, deadline),
		}
		if err := s.mailer.Enqueue(ctx, job); err != nil {
			s.log.Warn().Err(err).Int("student_id", st.ID).Msg("failed to enqueue reminder")
			continue
		}
		sent++
	}

	s.log.Info().Int("form_id", form.ID).Int("reminders", sent).Msg("deadline reminders queued")
	return sent, nil
}
