package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
	"github.com/sritlabs/sat-backend/internal/validator"
)

// FormHandler handles the admin form builder and student submissions.
type FormHandler struct {
	formService     *service.FormService
	reminderService *service.ReminderService
	storage         *service.StorageService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(
	formService *service.FormService,
	reminderService *service.ReminderService,
	storage *service.StorageService,
) *FormHandler {
	return &FormHandler{
		formService:     formService,
		reminderService: reminderService,
		storage:         storage,
	}
}

// CreateForm godoc
// POST /api/v1/admin/forms
// Publishes a new form with its field definitions for the admin's branch.
func (h *FormHandler) CreateForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateFormRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	form, err := h.formService.Create(c.Request.Context(), &req, claims.Branch, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFieldType),
			errors.Is(err, service.ErrOptionsRequired),
			errors.Is(err, service.ErrOptionsNotAllowed),
			errors.Is(err, service.ErrDuplicateOption),
			errors.Is(err, service.ErrEmptyLabel),
			errors.Is(err, service.ErrEmptyTitle),
			errors.Is(err, service.ErrNoFields),
			errors.Is(err, service.ErrDeadlineRequired),
			errors.Is(err, service.ErrDeadlineInPast):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidFieldDef,
				map[string]string{"detail": err.Error()})
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	// Students in the branch hear about the new form by mail. The enqueue
	// failures are logged inside the service; the form itself is already
	// committed either way.
	announced, _ := h.reminderService.AnnounceForm(c.Request.Context(), form)

	response.Success(c, http.StatusCreated, gin.H{"form": form, "notifications_queued": announced})
}

// ListForms godoc
// GET /api/v1/admin/forms
// Lists all forms in the admin's branch with response counts.
func (h *FormHandler) ListForms(c *gin.Context) {
	claims := middleware.GetClaims(c)

	forms, err := h.formService.ListForAdmin(c.Request.Context(), claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"forms": forms})
}

// GetForm godoc
// GET /api/v1/admin/forms/:id
// Returns a single form with its field definitions.
func (h *FormHandler) GetForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, err := h.formService.Get(c.Request.Context(), id, claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"form": form})
}

// UpdateForm godoc
// PUT /api/v1/admin/forms/:id
// Edits form metadata. Field definitions cannot change after creation.
func (h *FormHandler) UpdateForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateFormRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	form, err := h.formService.UpdateMeta(c.Request.Context(), id, claims.Branch, &req)
	if err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"form": form})
}

// DeleteForm godoc
// DELETE /api/v1/admin/forms/:id
// Removes a form together with its responses and uploaded files.
func (h *FormHandler) DeleteForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.formService.Delete(c.Request.Context(), id, claims.Branch); err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListFormResponses godoc
// GET /api/v1/admin/forms/:id/responses
// Lists every submitted response for a form, with student identity.
func (h *FormHandler) ListFormResponses(c *gin.Context) {
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

	response.Success(c, http.StatusOK, gin.H{"form": form, "responses": responses})
}

// DownloadFormResponseFile godoc
// GET /api/v1/admin/forms/:id/responses/:rid/files/*file
// Streams an attachment a student uploaded for a file field.
func (h *FormHandler) DownloadFormResponseFile(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	responseID, err := strconv.Atoi(c.Param("rid"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	filename := strings.TrimPrefix(c.Param("file"), "/")
	if filename == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	path, err := h.formService.ResponseFilePath(c.Request.Context(), id, responseID, claims.Branch, filename)
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

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", f, nil)
}

// ListUnsubmitted godoc
// GET /api/v1/admin/forms/:id/unsubmitted
// Lists branch students who have not yet responded to the form.
func (h *FormHandler) ListUnsubmitted(c *gin.Context) {
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

	response.Success(c, http.StatusOK, gin.H{"form": form, "students": students})
}

// SendFormReminders godoc
// POST /api/v1/admin/forms/:id/reminders
// Queues a reminder email to every student who has not submitted yet.
func (h *FormHandler) SendFormReminders(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, err := h.formService.Get(c.Request.Context(), id, claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	queued, err := h.reminderService.RemindForm(c.Request.Context(), form)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reminders_queued": queued})
}

// ListStudentForms godoc
// GET /api/v1/student/forms
// Lists active forms for the student's branch, with submitted/closed flags.
func (h *FormHandler) ListStudentForms(c *gin.Context) {
	claims := middleware.GetClaims(c)

	forms, err := h.formService.ListForStudent(c.Request.Context(), claims.Branch, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"forms": forms})
}

// GetStudentForm godoc
// GET /api/v1/student/forms/:id
// Returns one form with the student's own response, if submitted.
func (h *FormHandler) GetStudentForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, err := h.formService.Get(c.Request.Context(), id, claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	payload := gin.H{"form": form}
	if resp, err := h.formService.GetResponse(c.Request.Context(), id, claims.UserID, claims.Branch); err == nil {
		payload["response"] = resp
	}

	response.Success(c, http.StatusOK, payload)
}

// SubmitForm godoc
// POST /api/v1/student/forms/:id/responses
// Submits the student's answers. Each student submits at most once.
func (h *FormHandler) SubmitForm(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitFormResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answers, err := req.FieldAnswers()
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"answers": err.Error()})
		return
	}

	resp, err := h.formService.Submit(c.Request.Context(), id, claims.UserID, claims.Branch, answers)
	if err != nil {
		var missing *service.MissingFieldsError
		switch {
		case errors.Is(err, service.ErrFormNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrFormClosed):
			response.Fail(c, http.StatusConflict, response.ErrFormClosed)
		case errors.Is(err, service.ErrDuplicateSubmission):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateSubmission)
		case errors.As(err, &missing):
			fields := make(map[string]string, len(missing.Labels))
			for _, label := range missing.Labels {
				fields[label] = "this field is required"
			}
			response.FailWithFields(c, http.StatusBadRequest, response.ErrMissingRequiredFields, fields)
		case errors.Is(err, service.ErrUnknownField),
			errors.Is(err, service.ErrInvalidOption),
			errors.Is(err, service.ErrAnswerShape):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"answers": err.Error()})
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"response": resp})
}

// GetMyResponse godoc
// GET /api/v1/student/forms/:id/response
// Returns the student's submitted response for the form.
func (h *FormHandler) GetMyResponse(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	resp, err := h.formService.GetResponse(c.Request.Context(), id, claims.UserID, claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}

// UploadFormFile godoc
// POST /api/v1/student/forms/:id/files
// Stages a PDF for a file field before the response is submitted. The
// returned path goes into the answer for that field.
func (h *FormHandler) UploadFormFile(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	fieldID, err := strconv.Atoi(c.PostForm("field_id"))
	if err != nil || fieldID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	form, err := h.formService.Get(c.Request.Context(), id, claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	field := form.FieldByID(fieldID)
	if field == nil || field.Type != model.FieldTypeFile {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.storage.SaveFormTemp(file, header, form.ID, claims.UserID, fieldID)
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

	response.Success(c, http.StatusOK, gin.H{"path": path})
}

// unsubmittedFilterFromQuery reads the optional year/section narrowing params.
func unsubmittedFilterFromQuery(c *gin.Context) model.UnsubmittedFilter {
	filter := model.UnsubmittedFilter{Section: c.Query("section")}
	if yearStr := c.Query("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.Year = year
		}
	}
	return filter
}
