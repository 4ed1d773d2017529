package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Version,
		HealthCheck{Name: "database", Probe: cfg.Database},
		HealthCheck{Name: "signin_log", Probe: cfg.SignInLog},
	)
	books := NewBooksController(cfg.Books)
	members := NewMembersController(cfg.Members)
	staff := NewStaffController(cfg.Staff)
	signins := NewSignInsController(cfg.SignIns)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Catalog
	api.POST("/books", books.AddBook)
	api.GET("/books", books.ListBooks)
	api.DELETE("/books", books.DeleteByTitle)
	api.GET("/books/status", books.InventoryStatus)
	api.POST("/books/borrow", books.BorrowByTitle)
	api.POST("/books/return", books.ReturnByTitle)
	api.GET("/books/:id", books.GetBook)
	api.POST("/books/:id/borrow", books.Borrow)
	api.POST("/books/:id/return", books.Return)
	api.DELETE("/books/:id", books.Delete)

	// Members and memberships
	api.POST("/members", members.AddMember)
	api.PUT("/members/:id", members.EnsureMember)
	api.GET("/members", members.ListMembers)
	api.POST("/memberships", members.CreateMembership)
	api.GET("/memberships/:memberId", members.GetMembership)
	api.POST("/memberships/:memberId/cancel", members.CancelMembership)
	api.POST("/memberships/:memberId/renew", members.RenewMembership)

	// Staff
	api.POST("/staff", staff.AddStaff)
	api.GET("/staff", staff.ListStaff)

	// Sign-ins
	api.POST("/signins", signins.RecordSignIn)
	api.GET("/signins", signins.ListSignIns)
	api.GET("/signins/report", signins.Report)

	if cfg.Audit != nil {
		audit := NewAuditController(cfg.Audit)
		api.GET("/audit", audit.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}
	if cfg.Schedule != nil {
		schedule := NewScheduleController(cfg.Schedule)
		api.GET("/schedule", schedule.ListJobs)
		api.POST("/schedule/:name/run", schedule.RunJob)
	}

	return router
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	logger := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
