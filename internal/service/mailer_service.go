package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sritlabs/sat-backend/internal/config"
	"gopkg.in/gomail.v2"
)

// MailJob is one queued outbound email. Jobs are pushed to the Redis mail
// queue and delivered asynchronously by the mail worker.
type MailJob struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    bool     `json:"html"`
}

// MailerService sends email over SMTP and enqueues jobs for async delivery.
type MailerService struct {
	cfg    *config.Config
	rdb    *redis.Client
	dialer *gomail.Dialer
}

// NewMailerService creates a new MailerService.
func NewMailerService(cfg *config.Config, rdb *redis.Client) *MailerService {
	return &MailerService{
		cfg:    cfg,
		rdb:    rdb,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}
}

// Send delivers a mail job synchronously. Used by the mail worker; request
// paths should prefer Enqueue.
func (s *MailerService) Send(job MailJob) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.MailFrom)
	m.SetHeader("To", job.To...)
	m.SetHeader("Subject", job.Subject)
	if job.HTML {
		m.SetBody("text/html", job.Body)
	} else {
		m.SetBody("text/plain", job.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %v: %w", job.To, err)
	}
	return nil
}

// Enqueue pushes a mail job onto the Redis queue for the mail worker.
func (s *MailerService) Enqueue(ctx context.Context, job MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.MailQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	return nil
}

// EnqueueOTP queues the OTP email for an auth flow.
func (s *MailerService) EnqueueOTP(ctx context.Context, email, otp string) error {
	return s.Enqueue(ctx, MailJob{
		To:      []string{email},
		Subject: "Your SAT Portal verification code",
		Body: fmt.Sprintf("Your one-time password is %s.\n\nIt expires in %d minutes. "+
			"If you did not request this, you can ignore this email.", otp, int(s.cfg.OTPTTL.Minutes())),
	})
}
