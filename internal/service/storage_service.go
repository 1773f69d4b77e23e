package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sritlabs/sat-backend/internal/config"
)

// Sentinel errors for file uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNotFound        = errors.New("file not found")
)

// Only PDF uploads are accepted, for certificates and form file fields alike.
var allowedMIMETypes = map[string]string{
	"application/pdf": ".pdf",
}

// StorageService handles file storage for certificate PDFs and form field
// attachments on the local filesystem under UploadDir.
//
// Form attachments are written to a per-form temp area first and promoted to
// a per-response directory once the submission is accepted, so a failed or
// duplicate submission leaves no orphaned files in the response tree.
type StorageService struct {
	cfg *config.Config
}

// NewStorageService creates a new StorageService.
func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{cfg: cfg}
}

// SaveCertificate stores an uploaded certificate PDF for a student.
// Returns the path relative to UploadDir.
func (s *StorageService) SaveCertificate(file multipart.File, header *multipart.FileHeader, studentID int) (string, error) {
	ext, err := s.validate(header)
	if err != nil {
		return "", err
	}

	dir := filepath.Join("certificates", strconv.Itoa(studentID))
	name := uuid.New().String() + ext
	if err := s.write(file, dir, name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SaveFormTemp stores a form field attachment in the form's temp area before
// the response is submitted. Returns the path relative to UploadDir.
func (s *StorageService) SaveFormTemp(file multipart.File, header *multipart.FileHeader, formID, studentID, fieldID int) (string, error) {
	ext, err := s.validate(header)
	if err != nil {
		return "", err
	}

	dir := filepath.Join("forms", strconv.Itoa(formID), "temp")
	name := fmt.Sprintf("%d_%d_%s%s", studentID, fieldID, uuid.New().String(), ext)
	if err := s.write(file, dir, name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// PromoteFormFiles moves a submission's temp files into the per-response
// directory. Returns the new relative path for each input path.
func (s *StorageService) PromoteFormFiles(formID, responseID int, tempPaths []string) (map[string]string, error) {
	destDir := filepath.Join("forms", strconv.Itoa(formID), strconv.Itoa(responseID))
	if err := os.MkdirAll(filepath.Join(s.cfg.UploadDir, destDir), 0o755); err != nil {
		return nil, fmt.Errorf("create response dir: %w", err)
	}

	moved := make(map[string]string, len(tempPaths))
	for _, rel := range tempPaths {
		newRel := filepath.Join(destDir, filepath.Base(rel))
		if err := os.Rename(filepath.Join(s.cfg.UploadDir, rel), filepath.Join(s.cfg.UploadDir, newRel)); err != nil {
			return nil, fmt.Errorf("promote %s: %w", rel, err)
		}
		moved[rel] = newRel
	}
	return moved, nil
}

// Open returns a reader for a stored file, resolved against UploadDir.
// Paths escaping the upload root are rejected.
func (s *StorageService) Open(relPath string) (*os.File, error) {
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.cfg.UploadDir, clean))
	if os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	return f, err
}

// Remove deletes a stored file. Missing files are not an error.
func (s *StorageService) Remove(relPath string) error {
	err := os.Remove(filepath.Join(s.cfg.UploadDir, filepath.Clean(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveFormDir deletes a form's entire upload tree, responses and temp area
// included. Called when an admin deletes the form.
func (s *StorageService) RemoveFormDir(formID int) error {
	return os.RemoveAll(filepath.Join(s.cfg.UploadDir, "forms", strconv.Itoa(formID)))
}

func (s *StorageService) validate(header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}
	return ext, nil
}

func (s *StorageService) write(file multipart.File, dir, name string) error {
	absDir := filepath.Join(s.cfg.UploadDir, dir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(absDir, name))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
