package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// Certificate errors.
var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrNotPending          = errors.New("certificate is no longer pending")
)

// CertificateService implements the certificate upload and review lifecycle.
type CertificateService struct {
	certs    *repository.CertificateRepository
	students *repository.StudentRepository
	storage  *StorageService
	mailer   *MailerService
	notifier BranchNotifier
	log      zerolog.Logger
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(certs *repository.CertificateRepository, students *repository.StudentRepository, storage *StorageService, mailer *MailerService, notifier BranchNotifier, log zerolog.Logger) *CertificateService {
	return &CertificateService{
		certs:    certs,
		students: students,
		storage:  storage,
		mailer:   mailer,
		notifier: notifier,
		log:      log.With().Str("component", "certificate_service").Logger(),
	}
}

// Upload stores the PDF and records a pending certificate, then notifies the
// student's branch admins.
func (s *CertificateService) Upload(ctx context.Context, studentID int, req *model.UploadCertificateRequest, file multipart.File, header *multipart.FileHeader) (*model.Certificate, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}

	path, err := s.storage.SaveCertificate(file, header, studentID)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		StudentID:   studentID,
		EventName:   req.EventName,
		EventType:   req.EventType,
		EventDate:   eventDate,
		Description: req.Description,
		FilePath:    path,
		Status:      model.CertificateStatusPending,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		if rmErr := s.storage.Remove(path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("failed to clean up orphaned upload")
		}
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	s.notifier.NotifyBranch(ctx, student.Branch, "certificate.uploaded", map[string]interface{}{
		"certificate_id": cert.ID,
		"student_id":     studentID,
		"student_name":   student.Name,
		"event_name":     cert.EventName,
	})

	s.log.Info().Int("certificate_id", cert.ID).Int("student_id", studentID).Msg("certificate uploaded")
	return cert, nil
}

// ListMine retrieves a student's own certificates.
func (s *CertificateService) ListMine(ctx context.Context, studentID int) ([]model.Certificate, error) {
	return s.certs.ListByStudent(ctx, studentID)
}

// ListForAdmin retrieves certificates for the admin's branch with filters and
// pagination.
func (s *CertificateService) ListForAdmin(ctx context.Context, filter model.CertificateFilter, limit, offset int) ([]model.CertificateWithStudent, int, error) {
	return s.certs.ListFiltered(ctx, filter, limit, offset)
}

// ListAllForExport retrieves every matching certificate for report exports.
func (s *CertificateService) ListAllForExport(ctx context.Context, filter model.CertificateFilter) ([]model.CertificateWithStudent, error) {
	return s.certs.ListAllFiltered(ctx, filter)
}

// OpenFile returns the stored PDF for a certificate after an ownership or
// branch check. Students may open their own uploads; admins anything in
// their branch.
func (s *CertificateService) OpenFile(ctx context.Context, certID int, claims *Claims) (*model.Certificate, string, error) {
	cert, err := s.certs.GetByID(ctx, certID)
	if err != nil {
		if errors.Is(err, repository.ErrCertificateNotFound) {
			return nil, "", ErrCertificateNotFound
		}
		return nil, "", err
	}

	owner, err := s.students.GetByID(ctx, cert.StudentID)
	if err != nil {
		return nil, "", err
	}

	switch claims.TokenType {
	case TokenTypeStudent:
		if cert.StudentID != claims.UserID {
			return nil, "", ErrCertificateNotFound
		}
	case TokenTypeAdmin:
		if owner.Branch != claims.Branch && !claims.SuperAdmin {
			return nil, "", ErrCertificateNotFound
		}
	}

	return cert, cert.FilePath, nil
}

// Review records an approve/reject decision and emails the student.
func (s *CertificateService) Review(ctx context.Context, certID int, branch string, reviewerID int, req *model.ReviewCertificateRequest) (*model.Certificate, error) {
	cert, err := s.certs.GetByID(ctx, certID)
	if err != nil {
		if errors.Is(err, repository.ErrCertificateNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}

	owner, err := s.students.GetByID(ctx, cert.StudentID)
	if err != nil {
		return nil, err
	}
	if owner.Branch != branch {
		return nil, ErrCertificateNotFound
	}

	if err := s.certs.UpdateStatus(ctx, certID, req.Status, req.Remarks, reviewerID); err != nil {
		return nil, err
	}
	cert.Status = req.Status
	cert.Remarks = req.Remarks

	s.sendDecisionMail(ctx, owner, cert)

	s.log.Info().Int("certificate_id", certID).Str("status", string(req.Status)).Int("reviewer_id", reviewerID).Msg("certificate reviewed")
	return cert, nil
}

// ReviewBulk applies one decision to several certificates in the admin's
// branch. Returns how many rows were updated.
func (s *CertificateService) ReviewBulk(ctx context.Context, branch string, reviewerID int, req *model.BulkReviewCertificatesRequest) (int, error) {
	updated, err := s.certs.UpdateStatusBulk(ctx, req.IDs, branch, req.Status, req.Remarks, reviewerID)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("updated", updated).Str("status", string(req.Status)).Msg("certificates bulk reviewed")
	return updated, nil
}

// DeleteOwn lets a student remove one of their own still-pending uploads,
// file included.
func (s *CertificateService) DeleteOwn(ctx context.Context, certID, studentID int) error {
	cert, err := s.certs.GetByID(ctx, certID)
	if err != nil {
		if errors.Is(err, repository.ErrCertificateNotFound) {
			return ErrCertificateNotFound
		}
		return err
	}
	if cert.StudentID != studentID {
		return ErrCertificateNotFound
	}
	if cert.Status != model.CertificateStatusPending {
		return ErrNotPending
	}

	if err := s.certs.Delete(ctx, certID); err != nil {
		return err
	}
	if err := s.storage.Remove(cert.FilePath); err != nil {
		s.log.Warn().Err(err).Str("path", cert.FilePath).Msg("failed to remove certificate file")
	}
	return nil
}

func (s *CertificateService) sendDecisionMail(ctx context.Context, student *model.Student, cert *model.Certificate) {
	subject := fmt.Sprintf("Certificate %s: %s", cert.Status, cert.EventName)
	body := fmt.Sprintf("Hello %s,\n\nYour certificate for %q has been %s.",
		student.Name, cert.EventName, cert.Status)
	if cert.Remarks != "" {
		body += "\n\nRemarks: " + cert.Remarks
	}

	if err := s.mailer.Enqueue(ctx, MailJob{To: []string{student.Email}, Subject: subject, Body: body}); err != nil {
		s.log.Warn().Err(err).Int("certificate_id", cert.ID).Msg("failed to enqueue decision mail")
	}
}
