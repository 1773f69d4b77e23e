package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
)

// StudentPortalHandler handles the student home screen.
type StudentPortalHandler struct {
	certService *service.CertificateService
	formService *service.FormService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	certService *service.CertificateService,
	formService *service.FormService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		certService: certService,
		formService: formService,
	}
}

// studentHome summarises the student's certificate and form state.
type studentHome struct {
	CertificatesTotal    int `json:"certificates_total"`
	CertificatesPending  int `json:"certificates_pending"`
	CertificatesApproved int `json:"certificates_approved"`
	CertificatesRejected int `json:"certificates_rejected"`
	FormsOpen            int `json:"forms_open"`
	FormsSubmitted       int `json:"forms_submitted"`
}

// GetHome godoc
// GET /api/v1/student/home
// Returns certificate status counts and open-form counts for the home screen.
func (h *StudentPortalHandler) GetHome(c *gin.Context) {
	claims := middleware.GetClaims(c)

	certs, err := h.certService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	forms, err := h.formService.ListForStudent(c.Request.Context(), claims.Branch, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	home := studentHome{CertificatesTotal: len(certs)}
	for _, cert := range certs {
		switch cert.Status {
		case model.CertificateStatusPending:
			home.CertificatesPending++
		case model.CertificateStatusApproved:
			home.CertificatesApproved++
		case model.CertificateStatusRejected:
			home.CertificatesRejected++
		}
	}
	for _, form := range forms {
		if form.Submitted {
			home.FormsSubmitted++
		} else if !form.Closed {
			home.FormsOpen++
		}
	}

	response.Success(c, http.StatusOK, gin.H{"home": home})
}
