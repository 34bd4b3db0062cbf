package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"robolab-portal/config"
	"robolab-portal/internal/api/handler"
	"robolab-portal/internal/api/middleware"
	"robolab-portal/internal/model"
	"robolab-portal/pkg/jwt"
	"robolab-portal/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup builds the gin engine with every route. rdb may be nil, which
// disables token revocation and the submission rate limit.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", h.System.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public
		v1.POST("/registrations",
			middleware.RateLimit(rdb, cfg.Server.RegistrationRateLimit, time.Minute),
			h.Registration.Submit)
		v1.POST("/auth/login",
			middleware.RateLimit(rdb, cfg.Server.RegistrationRateLimit, time.Minute),
			h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/auth/role", h.Auth.CheckRole)

			admin := authorized.Group("")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))

			registrations := admin.Group("/registrations")
			{
				registrations.GET("", h.Registration.List)
				registrations.GET("/stats", h.Registration.Stats)
				registrations.GET("/export", h.Registration.Export)
				registrations.POST("/sync", h.Registration.Sync)
				registrations.GET("/:id", h.Registration.Get)
				registrations.DELETE("/:id", h.Registration.Delete)
			}

			timeSlots := admin.Group("/time-slots")
			{
				timeSlots.GET("", h.TimeSlot.ListTimeSlots)
				timeSlots.POST("", h.TimeSlot.CreateTimeSlot)
				timeSlots.GET("/:id", h.TimeSlot.GetTimeSlot)
				timeSlots.PUT("/:id", h.TimeSlot.UpdateTimeSlot)
				timeSlots.DELETE("/:id", h.TimeSlot.DeleteTimeSlot)
			}

			schedules := admin.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.POST("", h.Schedule.Assign)
				schedules.DELETE("/:id", h.Schedule.Remove)
			}

			payments := admin.Group("/payments")
			{
				payments.GET("", h.Payment.List)
				payments.POST("", h.Payment.Create)
				payments.GET("/summary", h.Payment.Summary)
				payments.POST("/generate", h.Payment.Generate)
				payments.PUT("/:id/status", h.Payment.UpdateStatus)
				payments.GET("/:id/receipt", h.Payment.Receipt)
				payments.DELETE("/:id", h.Payment.Delete)
			}

			admin.GET("/system/schema", h.System.Schema)
		}
	}

	return r
}
