package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/handler"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Certificate   *handler.CertificateHandler
	Form          *handler.FormHandler
	Report        *handler.ReportHandler
	Message       *handler.MessageHandler
	Dashboard     *handler.DashboardHandler
	SuperAdmin    *handler.SuperAdminHandler
	System        *handler.SystemHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP). OTP and
	// login endpoints are the abuse surface.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/send-otp", handlers.Auth.SendRegistrationOTP)
		auth.POST("/student/register", handlers.Auth.RegisterStudent)
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/student/forgot-password", handlers.Auth.ForgotPassword)
		auth.POST("/student/reset-password", handlers.Auth.ResetPassword)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.PUT("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.UpdateStudentProfile)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/home", handlers.StudentPortal.GetHome)

		studentAPI.POST("/certificates", handlers.Certificate.UploadCertificate)
		studentAPI.GET("/certificates", handlers.Certificate.ListMyCertificates)
		studentAPI.GET("/certificates/:id/file", handlers.Certificate.DownloadCertificate)
		studentAPI.DELETE("/certificates/:id", handlers.Certificate.DeleteMyCertificate)

		studentAPI.GET("/forms", handlers.Form.ListStudentForms)
		studentAPI.GET("/forms/:id", handlers.Form.GetStudentForm)
		studentAPI.POST("/forms/:id/responses", handlers.Form.SubmitForm)
		studentAPI.GET("/forms/:id/response", handlers.Form.GetMyResponse)
		studentAPI.POST("/forms/:id/files", handlers.Form.UploadFormFile)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/notifications", handlers.WS.AdminNotificationStream)
	}

	// ─── 4. Admin Group (JWT, branch scoped) ───────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Student roster
		adminAPI.GET("/students", handlers.StudentMgmt.ListStudents)
		adminAPI.GET("/students/:id", handlers.StudentMgmt.GetStudent)
		adminAPI.DELETE("/students/:id", handlers.StudentMgmt.DeleteStudent)

		// Certificate review
		adminAPI.GET("/certificates", handlers.Certificate.ListCertificates)
		adminAPI.GET("/certificates/:id/file", handlers.Certificate.DownloadCertificate)
		adminAPI.PUT("/certificates/:id/review", handlers.Certificate.ReviewCertificate)
		adminAPI.PUT("/certificates/review", handlers.Certificate.ReviewCertificatesBulk)

		// Form builder
		adminAPI.POST("/forms", handlers.Form.CreateForm)
		adminAPI.GET("/forms", handlers.Form.ListForms)
		adminAPI.GET("/forms/:id", handlers.Form.GetForm)
		adminAPI.PUT("/forms/:id", handlers.Form.UpdateForm)
		adminAPI.DELETE("/forms/:id", handlers.Form.DeleteForm)
		adminAPI.GET("/forms/:id/responses", handlers.Form.ListFormResponses)
		adminAPI.GET("/forms/:id/responses/:rid/files/*file", handlers.Form.DownloadFormResponseFile)
		adminAPI.GET("/forms/:id/unsubmitted", handlers.Form.ListUnsubmitted)
		adminAPI.POST("/forms/:id/reminders", handlers.Form.SendFormReminders)

		// Exports
		adminAPI.GET("/forms/:id/responses/excel", handlers.Report.ExportFormResponsesExcel)
		adminAPI.GET("/forms/:id/unsubmitted/excel", handlers.Report.ExportUnsubmittedExcel)
		adminAPI.GET("/reports/certificates/excel", handlers.Report.ExportCertificatesExcel)
		adminAPI.GET("/reports/certificates/pdf", handlers.Report.ExportCertificatesPDF)
		adminAPI.GET("/reports/students/excel", handlers.Report.ExportStudentsExcel)

		// Mailbox
		adminAPI.GET("/messages", handlers.Message.ListMessages)
		adminAPI.PUT("/messages/:id/read", handlers.Message.MarkMessageRead)

		// Dashboard
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)
	}

	// ─── 5. Super Admin Group ──────────────────────────────────────────
	superAPI := router.Group("/api/v1/superadmin")
	superAPI.Use(middleware.RequireAdminJWT(authService), middleware.RequireSuperAdmin())
	{
		superAPI.GET("/admins", handlers.SuperAdmin.ListAdmins)
		superAPI.POST("/admins", handlers.SuperAdmin.CreateAdmin)
		superAPI.PUT("/admins/:id", handlers.SuperAdmin.UpdateAdmin)
		superAPI.PUT("/admins/:id/password", handlers.SuperAdmin.ChangeAdminPassword)
		superAPI.DELETE("/admins/:id", handlers.SuperAdmin.DeleteAdmin)

		superAPI.POST("/messages", handlers.Message.SendMessage)

		// System monitoring
		superAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
