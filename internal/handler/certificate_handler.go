package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
	"github.com/sritlabs/sat-backend/internal/validator"
)

// CertificateHandler handles certificate upload, listing, download and review.
type CertificateHandler struct {
	certService *service.CertificateService
	storage     *service.StorageService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certService *service.CertificateService, storage *service.StorageService) *CertificateHandler {
	return &CertificateHandler{certService: certService, storage: storage}
}

// UploadCertificate godoc
// POST /api/v1/student/certificates
// Uploads a certificate PDF with its event metadata.
func (h *CertificateHandler) UploadCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.UploadCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	cert, err := h.certService.Upload(c.Request.Context(), claims.UserID, &req, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"certificate": cert})
}

// ListMyCertificates godoc
// GET /api/v1/student/certificates
// Lists the authenticated student's certificates, newest first.
func (h *CertificateHandler) ListMyCertificates(c *gin.Context) {
	claims := middleware.GetClaims(c)

	certs, err := h.certService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}

// DownloadCertificate godoc
// GET /api/v1/student/certificates/:id/file
// GET /api/v1/admin/certificates/:id/file
// Streams the stored PDF. Students see their own uploads, admins their branch.
func (h *CertificateHandler) DownloadCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	cert, path, err := h.certService.OpenFile(c.Request.Context(), id, claims)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	f, err := h.storage.Open(path)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", cert.EventName+".pdf"))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", f, nil)
}

// DeleteMyCertificate godoc
// DELETE /api/v1/student/certificates/:id
// Removes one of the student's own certificates while it is still pending.
func (h *CertificateHandler) DeleteMyCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.certService.DeleteOwn(c.Request.Context(), id, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrCertificateNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotPending):
			response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListCertificates godoc
// GET /api/v1/admin/certificates
// Lists certificates in the admin's branch with filters and pagination.
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	filter := certificateFilterFromQuery(c, claims.Branch)

	certs, total, err := h.certService.ListForAdmin(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"certificates": certs}, pagination)
}

// ReviewCertificate godoc
// PUT /api/v1/admin/certificates/:id/review
// Approves or rejects a certificate and notifies the student by email.
func (h *CertificateHandler) ReviewCertificate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewCertificateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cert, err := h.certService.Review(c.Request.Context(), id, claims.Branch, claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"certificate": cert})
}

// ReviewCertificatesBulk godoc
// PUT /api/v1/admin/certificates/review
// Applies one decision to a batch of certificate IDs in the admin's branch.
func (h *CertificateHandler) ReviewCertificatesBulk(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.BulkReviewCertificatesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.certService.ReviewBulk(c.Request.Context(), claims.Branch, claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// certificateFilterFromQuery builds a branch-scoped filter from query params.
func certificateFilterFromQuery(c *gin.Context, branch string) model.CertificateFilter {
	filter := model.CertificateFilter{
		Branch:    branch,
		Status:    model.CertificateStatus(c.Query("status")),
		EventType: c.Query("event_type"),
		Section:   c.Query("section"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.Year = year
		}
	}
	if from, err := time.Parse("2006-01-02", c.Query("date_from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("date_to")); err == nil {
		filter.DateTo = &to
	}
	return filter
}
