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

// MessageHandler handles the super admin to admin mailbox.
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage godoc
// POST /api/v1/superadmin/messages
// Sends a note to one admin's mailbox.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// ListMessages godoc
// GET /api/v1/admin/messages
// Lists the caller's mailbox, newest first, with the unread count.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	claims := middleware.GetClaims(c)

	messages, unread, err := h.messageService.Inbox(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"messages":     messages,
		"unread_count": unread,
	})
}

// MarkMessageRead godoc
// PUT /api/v1/admin/messages/:id/read
// Flags one of the caller's messages as read.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), id, claims.UserID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}
