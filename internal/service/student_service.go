package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
	"github.com/sritlabs/sat-backend/internal/response"
)

// StudentService handles student account business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	auth        *AuthService
	mailer      *MailerService
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, auth *AuthService, mailer *MailerService, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		auth:        auth,
		mailer:      mailer,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetByIdentifier retrieves a student by email or roll number.
func (s *StudentService) GetByIdentifier(ctx context.Context, identifier string) (*model.Student, error) {
	return s.studentRepo.GetByIdentifier(ctx, identifier)
}

// SendRegistrationOTP issues an OTP for a new account, rejecting emails that
// are already registered.
func (s *StudentService) SendRegistrationOTP(ctx context.Context, email string) error {
	_, err := s.studentRepo.GetByEmail(ctx, email)
	if err == nil {
		return repository.ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrStudentNotFound) {
		return err
	}

	otp, err := s.auth.IssueOTP(ctx, OTPPurposeRegistration, email)
	if err != nil {
		return err
	}
	return s.mailer.EnqueueOTP(ctx, email, otp)
}

// Register verifies the OTP and creates the student account.
func (s *StudentService) Register(ctx context.Context, req *model.RegisterStudentRequest) (*model.Student, error) {
	if err := ValidatePasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	if err := s.auth.VerifyOTP(ctx, OTPPurposeRegistration, req.Email, req.OTP); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		RollNumber:   req.RollNumber,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Branch:       req.Branch,
		Section:      req.Section,
		Year:         req.Year,
		PasswordHash: hash,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Int("student_id", student.ID).Str("branch", student.Branch).Msg("student registered")
	return student, nil
}

// SendResetOTP issues a password reset OTP for an existing account. Unknown
// emails are not revealed to the caller.
func (s *StudentService) SendResetOTP(ctx context.Context, email string) error {
	if _, err := s.studentRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil
		}
		return err
	}

	otp, err := s.auth.IssueOTP(ctx, OTPPurposeResetPassword, email)
	if err != nil {
		return err
	}
	return s.mailer.EnqueueOTP(ctx, email, otp)
}

// ResetPassword verifies the OTP and replaces the student's password.
func (s *StudentService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := ValidatePasswordPolicy(req.NewPassword); err != nil {
		return err
	}

	student, err := s.studentRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if err := s.auth.VerifyOTP(ctx, OTPPurposeResetPassword, req.Email, req.OTP); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.studentRepo.UpdatePassword(ctx, student.ID, hash)
}

// UpdateProfile applies a student's own profile edits.
func (s *StudentService) UpdateProfile(ctx context.Context, studentID int, req *model.UpdateStudentProfileRequest) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.Name = req.Name
	student.Phone = req.Phone
	student.Section = req.Section
	student.Year = req.Year

	if err := s.studentRepo.UpdateProfile(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// ListForAdmin retrieves students of a branch with pagination and filters.
func (s *StudentService) ListForAdmin(ctx context.Context, branch string, filter model.UnsubmittedFilter, page, perPage int) ([]model.Student, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	students, total, err := s.studentRepo.ListByBranch(ctx, branch, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if students == nil {
		students = []model.Student{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return students, pagination, nil
}

// ListAllForExport retrieves every matching student of a branch.
func (s *StudentService) ListAllForExport(ctx context.Context, branch string, filter model.UnsubmittedFilter) ([]model.Student, error) {
	return s.studentRepo.ListAllByBranch(ctx, branch, filter)
}

// GetFromBranch retrieves a student only if they belong to the branch.
func (s *StudentService) GetFromBranch(ctx context.Context, id int, branch string) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.Branch != branch {
		return nil, repository.ErrStudentNotFound
	}
	return student, nil
}

// DeleteFromBranch removes a student account if it belongs to the branch.
func (s *StudentService) DeleteFromBranch(ctx context.Context, id int, branch string) error {
	if _, err := s.GetFromBranch(ctx, id, branch); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}
