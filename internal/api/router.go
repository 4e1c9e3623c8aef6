// Package api assembles the gin engine: middleware chain and route table.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/api/handler"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/metrics"
	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/ratelimit"
)

type Options struct {
	Handler     *handler.Handler
	Logger      *slog.Logger
	CORSOrigins []string
	// Limiter is applied to /api when set.
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// NewRouter builds the engine. gin's mode must be set by the caller.
func NewRouter(o Options) *gin.Engine {
	h := o.Handler
	r := gin.New()
	r.Use(h.Recovery(), logging.Middleware(o.Logger))
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(o.Metrics.Handler()))
	}
	r.Use(cors.New(corsConfig(o.CORSOrigins)))

	api := r.Group("/api")
	if o.Limiter != nil {
		api.Use(o.Limiter.Middleware())
	}

	api.GET("/health", h.Health)
	api.GET("/uploads/:filename", h.ServeUpload)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/create-demo", h.CreateDemo)

		authed := authGroup.Group("", h.Authenticate(false))
		authed.GET("/me", h.Me)
		authed.POST("/photo", h.UpdatePhoto)
		authed.GET("/users", h.RequireRole(models.RoleAdmin), h.ListUsers)
	}

	complaints := api.Group("/complaints")
	{
		complaints.GET("/events", h.Authenticate(true), h.RequireRole(models.RoleAdmin), h.ComplaintEvents)

		student := complaints.Group("", h.Authenticate(false), h.RequireRole(models.RoleStudent))
		student.POST("/create", h.CreateComplaint)
		student.GET("/my", h.MyComplaints)

		admin := complaints.Group("", h.Authenticate(false), h.RequireRole(models.RoleAdmin))
		admin.GET("/all", h.AllComplaints)
		admin.PUT("/update/:id", h.UpdateComplaintStatus)
		admin.DELETE("/:id", h.DeleteComplaint)
	}

	r.NoRoute(h.NoRoute)
	return r
}
