package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// Admin management errors.
var (
	ErrAdminNotFound    = errors.New("admin not found")
	ErrSuperAdminLocked = errors.New("the super admin account cannot be modified here")
)

// AdminService handles admin account business logic, including the super
// admin's management of department admins.
type AdminService struct {
	adminRepo *repository.AdminRepository
	auth      *AuthService
	mailer    *MailerService
	log       zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, auth *AuthService, mailer *MailerService, log zerolog.Logger) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		auth:      auth,
		mailer:    mailer,
		log:       log.With().Str("component", "admin_service").Logger(),
	}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// List retrieves all admin accounts.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, nil
}

// Create registers a new department admin and mails them their credentials.
func (s *AdminService) Create(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error) {
	if err := ValidatePasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		EmployeeID:   req.EmployeeID,
		Name:         req.Name,
		Email:        req.Email,
		Branch:       req.Branch,
		PasswordHash: hash,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	job := MailJob{
		To:      []string{admin.Email},
		Subject: "Your SAT Portal admin account",
		Body: "Hello " + admin.Name + ",\n\nAn admin account has been created for you on the SAT Portal" +
			" for the " + admin.Branch + " department. Sign in with this email address and the password" +
			" you were given, then change it.",
	}
	if err := s.mailer.Enqueue(ctx, job); err != nil {
		s.log.Warn().Err(err).Int("admin_id", admin.ID).Msg("failed to enqueue welcome mail")
	}

	s.log.Info().Int("admin_id", admin.ID).Str("branch", admin.Branch).Msg("admin created")
	return admin, nil
}

// Update edits a department admin's details. The super admin account itself
// is immutable through this path.
func (s *AdminService) Update(ctx context.Context, id int, req *model.UpdateAdminRequest) (*model.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if admin.SuperAdmin {
		return nil, ErrSuperAdminLocked
	}

	admin.Name = req.Name
	admin.Email = req.Email
	admin.Branch = req.Branch
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword resets a department admin's password.
func (s *AdminService) ChangePassword(ctx context.Context, id int, newPassword string) error {
	if err := ValidatePasswordPolicy(newPassword); err != nil {
		return err
	}

	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	if admin.SuperAdmin {
		return ErrSuperAdminLocked
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.adminRepo.UpdatePassword(ctx, id, hash)
}

// Delete removes a department admin account.
func (s *AdminService) Delete(ctx context.Context, id int) error {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	if admin.SuperAdmin {
		return ErrSuperAdminLocked
	}
	return s.adminRepo.Delete(ctx, id)
}
