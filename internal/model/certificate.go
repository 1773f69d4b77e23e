package model

import "time"

// CertificateStatus enumerates the review states of an uploaded certificate.
type CertificateStatus string

const (
	CertificateStatusPending  CertificateStatus = "Pending"
	CertificateStatusApproved CertificateStatus = "Approved"
	CertificateStatusRejected CertificateStatus = "Rejected"
)

// Certificate represents an achievement certificate uploaded by a student.
type Certificate struct {
	ID          int               `json:"id"`
	StudentID   int               `json:"student_id"`
	EventName   string            `json:"event_name"`
	EventType   string            `json:"event_type"`
	EventDate   time.Time         `json:"event_date"`
	Description string            `json:"description,omitempty"`
	FilePath    string            `json:"-"`
	Status      CertificateStatus `json:"status"`
	Remarks     string            `json:"remarks,omitempty"`
	ReviewedBy  *int              `json:"reviewed_by,omitempty"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
}

// CertificateWithStudent joins certificate rows with the owning student,
// used for admin review listings and reports.
type CertificateWithStudent struct {
	Certificate
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	Branch      string `json:"branch"`
	Section     string `json:"section"`
	Year        int    `json:"year"`
}

// UploadCertificateRequest carries the multipart form fields alongside the PDF.
type UploadCertificateRequest struct {
	EventName   string `form:"event_name" binding:"required,min=2,max=255"`
	EventType   string `form:"event_type" binding:"required,min=2,max=100"`
	EventDate   string `form:"event_date" binding:"required,datetime=2006-01-02"`
	Description string `form:"description" binding:"omitempty,max=1000"`
}

// ReviewCertificateRequest approves or rejects a pending certificate.
type ReviewCertificateRequest struct {
	Status  CertificateStatus `json:"status" binding:"required,oneof=Approved Rejected"`
	Remarks string            `json:"remarks" binding:"omitempty,max=500"`
}

// BulkReviewCertificatesRequest reviews several certificates in one call.
type BulkReviewCertificatesRequest struct {
	IDs     []int             `json:"ids" binding:"required,min=1,dive,min=1"`
	Status  CertificateStatus `json:"status" binding:"required,oneof=Approved Rejected"`
	Remarks string            `json:"remarks" binding:"omitempty,max=500"`
}

// CertificateFilter narrows admin certificate listings and report exports.
type CertificateFilter struct {
	Branch    string
	Status    CertificateStatus
	EventType string
	Year      int
	Section   string
	DateFrom  *time.Time
	DateTo    *time.Time
}
