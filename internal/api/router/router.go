package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/api/handler"
	"github.com/smaraba1/payroll-processing/internal/api/middleware"
	"github.com/smaraba1/payroll-processing/pkg/jwt"
	"github.com/smaraba1/payroll-processing/pkg/redis"
)

// Setup builds the gin engine. rdb and db may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", cfg.Metrics.Path))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, middleware.MetricsHandler())
	}

	r.GET("/health", healthCheck(db))

	// A nil *redis.Client must not become a non-nil interface.
	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	jsonLimit := middleware.BodyLimit(cfg.Server.BodyLimit)
	need := middleware.RequireCapability

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login",
			jsonLimit,
			middleware.RateLimit(limiter, cfg.Server.RateLimit.LoginLimit, cfg.Server.RateLimit.LoginWindow, logger),
			h.Auth.Login,
		)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// uploads get their own, larger limit
			authorized.POST("/users/import",
				middleware.BodyLimit(cfg.Server.UploadLimit),
				need(access.ManageUsers),
				h.User.ImportUsers,
			)

			api := authorized.Group("")
			api.Use(jsonLimit)

			users := api.Group("/users")
			{
				users.GET("/me", h.Auth.Me)
				users.GET("", need(access.ViewUsers), h.User.ListUsers)
				users.GET("/:id", need(access.ViewUsers), h.User.GetUser)
				users.GET("/:id/direct-reports", need(access.ViewUsers), h.User.DirectReports)
				users.POST("", need(access.ManageUsers), h.User.CreateUser)
				users.PUT("/:id", need(access.ManageUsers), h.User.UpdateUser)
				users.DELETE("/:id", need(access.ManageUsers), h.User.DeleteUser)
				users.PATCH("/:id/deactivate", need(access.ManageUsers), h.User.DeactivateUser)
			}

			clients := api.Group("/clients")
			{
				clients.GET("", h.Client.ListClients)
				clients.GET("/search", h.Client.SearchClients)
				clients.GET("/:id", h.Client.GetClient)
				clients.POST("", need(access.ManageClients), h.Client.CreateClient)
				clients.PUT("/:id", need(access.ManageClients), h.Client.UpdateClient)
				clients.DELETE("/:id", need(access.ManageClients), h.Client.DeleteClient)
			}

			projects := api.Group("/projects")
			{
				projects.GET("", h.Project.ListProjects)
				projects.GET("/:id", h.Project.GetProject)
				projects.GET("/client/:clientId", h.Project.ListByClient)
				projects.GET("/user/:userId", h.Project.ActiveForUser)
				projects.POST("", need(access.ManageProjects), h.Project.CreateProject)
				projects.PUT("/:id", need(access.ManageProjects), h.Project.UpdateProject)
				projects.DELETE("/:id", need(access.ManageProjects), h.Project.DeleteProject)
				projects.POST("/assignments", need(access.ManageProjects), h.Project.Assign)
				projects.DELETE("/assignments", need(access.ManageProjects), h.Project.Unassign)
			}

			// ownership is checked in the service
			timesheets := api.Group("/timesheets", need(access.EditOwnTimesheets))
			{
				timesheets.GET("/user/:userId", h.Timesheet.ListByUser)
				timesheets.POST("/user/:userId", h.Timesheet.SaveTimesheet)
				timesheets.GET("/:id", h.Timesheet.GetTimesheet)
				timesheets.POST("/:id/submit", h.Timesheet.SubmitTimesheet)
				timesheets.DELETE("/:id", h.Timesheet.DeleteTimesheet)
				timesheets.POST("/:id/approval", need(access.ApproveTimesheets), h.Timesheet.ReviewTimesheet)
				timesheets.GET("/pending/manager/:managerId", need(access.ApproveTimesheets), h.Timesheet.PendingForManager)
			}

			invoices := api.Group("/invoices", need(access.ManageInvoices))
			{
				invoices.GET("", h.Invoice.SearchInvoices)
				invoices.GET("/search", h.Invoice.SearchInvoices)
				invoices.GET("/client/:clientId", h.Invoice.ListByClient)
				invoices.GET("/:id", h.Invoice.GetInvoice)
				invoices.POST("/generate", h.Invoice.GenerateInvoice)
				invoices.PATCH("/:id/status", h.Invoice.UpdateStatus)
				invoices.POST("/:id/payments", h.Invoice.RecordPayment)
				invoices.DELETE("/:id", h.Invoice.DeleteInvoice)
			}

			export := api.Group("/export")
			{
				export.GET("/timesheets/:id", need(access.EditOwnTimesheets), h.Export.ExportTimesheet)
				export.GET("/invoices/:id", need(access.ManageInvoices), h.Export.ExportInvoice)
			}
		}
	}

	return r
}

// healthCheck reports the database as down without failing the probe when
// it is unreachable, so the process is not restarted for a Postgres outage.
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status["database"] = "down"
			} else {
				status["database"] = "up"
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
