package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
	"github.com/sritlabs/sat-backend/internal/validator"
)

// SuperAdminHandler handles admin account management, restricted to the
// super admin.
type SuperAdminHandler struct {
	adminService *service.AdminService
}

// NewSuperAdminHandler creates a new SuperAdminHandler.
func NewSuperAdminHandler(adminService *service.AdminService) *SuperAdminHandler {
	return &SuperAdminHandler{adminService: adminService}
}

// ListAdmins godoc
// GET /api/v1/superadmin/admins
// Lists every admin account across branches.
func (h *SuperAdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admins": admins})
}

// CreateAdmin godoc
// POST /api/v1/superadmin/admins
// Creates a branch admin account and emails the credentials.
func (h *SuperAdminHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			response.Fail(c, http.StatusBadRequest, response.ErrWeakPassword)
		case errors.Is(err, repository.ErrDuplicateAdmin):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// UpdateAdmin godoc
// PUT /api/v1/superadmin/admins/:id
// Edits an admin's name, email or branch.
func (h *SuperAdminHandler) UpdateAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAdminNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSuperAdminLocked):
			response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		case errors.Is(err, repository.ErrDuplicateAdmin):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// ChangeAdminPassword godoc
// PUT /api/v1/superadmin/admins/:id/password
// Resets an admin's password.
func (h *SuperAdminHandler) ChangeAdminPassword(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ChangeAdminPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.adminService.ChangePassword(c.Request.Context(), id, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, repository.ErrAdminNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSuperAdminLocked):
			response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		case errors.Is(err, service.ErrWeakPassword):
			response.Fail(c, http.StatusBadRequest, response.ErrWeakPassword)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"changed": true})
}

// DeleteAdmin godoc
// DELETE /api/v1/superadmin/admins/:id
// Removes an admin account. The super admin account itself cannot be removed.
func (h *SuperAdminHandler) DeleteAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims != nil && claims.UserID == id {
		response.Fail(c, http.StatusConflict, response.ErrActionForbidden)
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
