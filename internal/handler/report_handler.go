package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves Excel and PDF exports for admins.
type ReportHandler struct {
	reportService  *service.ReportService
	certService    *service.CertificateService
	studentService *service.StudentService
	formService    *service.FormService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	reportService *service.ReportService,
	certService *service.CertificateService,
	studentService *service.StudentService,
	formService *service.FormService,
) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		certService:    certService,
		studentService: studentService,
		formService:    formService,
	}
}

// ExportCertificatesExcel godoc
// GET /api/v1/admin/reports/certificates/excel
// Downloads the filtered certificate list as a spreadsheet.
func (h *ReportHandler) ExportCertificatesExcel(c *gin.Context) {
	claims := middleware.GetClaims(c)

	filter := certificateFilterFromQuery(c, claims.Branch)
	if !certificateFilterNarrowed(filter) {
		response.Fail(c, http.StatusBadRequest, response.ErrReportFilterRequired)
		return
	}

	certs, err := h.certService.ListAllForExport(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	buf, filename, err := h.reportService.CertificatesExcel(claims.Branch, certs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	serveAttachment(c, buf, filename, excelContentType)
}

// ExportCertificatesPDF godoc
// GET /api/v1/admin/reports/certificates/pdf
// Downloads the filtered certificate list as a watermarked PDF.
func (h *ReportHandler) ExportCertificatesPDF(c *gin.Context) {
	claims := middleware.GetClaims(c)

	filter := certificateFilterFromQuery(c, claims.Branch)
	if !certificateFilterNarrowed(filter) {
		response.Fail(c, http.StatusBadRequest, response.ErrReportFilterRequired)
		return
	}

	certs, err := h.certService.ListAllForExport(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	buf, filename, err := h.reportService.CertificatesPDF(claims.Branch, certs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	serveAttachment(c, buf, filename, "application/pdf")
}

// ExportStudentsExcel godoc
// GET /api/v1/admin/reports/students/excel
// Downloads the branch student roster as a spreadsheet.
func (h *ReportHandler) ExportStudentsExcel(c *gin.Context) {
	claims := middleware.GetClaims(c)

	students, err := h.studentService.ListAllForExport(c.Request.Context(), claims.Branch, unsubmittedFilterFromQuery(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	buf, filename, err := h.reportService.StudentsExcel(claims.Branch, students)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	serveAttachment(c, buf, filename, excelContentType)
}

// ExportFormResponsesExcel godoc
// GET /api/v1/admin/forms/:id/responses/excel
// Downloads all responses to a form, one column per field.
func (h *ReportHandler) ExportFormResponsesExcel(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, responses, err := h.formService.ListResponses(c.Request.Context(), id, claims.Branch)
	if err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	buf, filename, err := h.reportService.ResponsesExcel(form, responses)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	serveAttachment(c, buf, filename, excelContentType)
}

// ExportUnsubmittedExcel godoc
// GET /api/v1/admin/forms/:id/unsubmitted/excel
// Downloads the students who have not responded to a form.
func (h *ReportHandler) ExportUnsubmittedExcel(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, students, err := h.formService.Unsubmitted(c.Request.Context(), id, claims.Branch, unsubmittedFilterFromQuery(c))
	if err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	buf, filename, err := h.reportService.UnsubmittedExcel(form, students)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	serveAttachment(c, buf, filename, excelContentType)
}

// certificateFilterNarrowed reports whether the report asks for anything more
// specific than the admin's whole branch. Unfiltered dumps are rejected.
func certificateFilterNarrowed(f model.CertificateFilter) bool {
	return f.Status != "" || f.EventType != "" || f.Section != "" || f.Year != 0 ||
		f.DateFrom != nil || f.DateTo != nil
}

// serveAttachment streams an in-memory export as a download.
func serveAttachment(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
