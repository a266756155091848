package handlers

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/middleware"
)

// NewRouter wires every route under /api/v1 plus /metrics and /swagger
func NewRouter(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// Public
		v1.GET("/health", h.Health.Index)
		v1.POST("/contact/send-email", h.Contact.SendEmail)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/recover-password", h.Auth.RecoverPassword)
			auth.POST("/verify-recovery-code", h.Auth.VerifyRecoveryCode)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)
			protected.GET("/auth/profile", h.Auth.Profile)
			protected.PATCH("/auth/change-password", h.Auth.ChangePassword)

			tenants := protected.Group("/tenants")
			{
				tenants.GET("", h.Tenant.List)
				tenants.GET("/search", h.Tenant.Search)
				tenants.GET("/cedula/:cedula", h.Tenant.ByCedula)
				tenants.GET("/email/:correo", h.Tenant.ByCorreo)
				tenants.POST("", h.Tenant.Create)
				tenants.GET("/:id", h.Tenant.Show)
				tenants.PATCH("/:id", h.Tenant.Update)
				tenants.PATCH("/:id/activate", h.Tenant.Activate)
				tenants.DELETE("/:id", h.Tenant.Delete)
			}

			properties := protected.Group("/properties")
			{
				properties.GET("", h.Property.List)
				properties.GET("/search", h.Property.Search)
				properties.GET("/address/:direccion", h.Property.ByAddress)
				properties.POST("", h.Property.Create)
				properties.GET("/:id", h.Property.Show)
				properties.PATCH("/:id", h.Property.Update)
				properties.PATCH("/:id/activate", h.Property.Activate)
				properties.DELETE("/:id", h.Property.Delete)
			}

			contracts := protected.Group("/contratos")
			{
				contracts.GET("", h.Contract.List)
				contracts.GET("/activos", h.Contract.Active)
				contracts.GET("/proximos-vencer/:days", h.Contract.Expiring)
				contracts.POST("", h.Contract.Create)
				contracts.GET("/:id", h.Contract.Show)
				contracts.PATCH("/:id", h.Contract.Update)
				contracts.DELETE("/:id", h.Contract.Delete)
				contracts.POST("/:id/pagos/generar", h.Contract.GeneratePayments)
			}

			payments := protected.Group("/pagos")
			{
				payments.GET("", h.Payment.Index)
				payments.GET("/estadisticas", h.Payment.Stats)
				payments.GET("/contrato/:contratoId", h.Payment.ByContract)
				payments.POST("", h.Payment.Create)
				payments.GET("/:id", h.Payment.Show)
				payments.PATCH("/:id", h.Payment.Update)
				payments.PATCH("/:id/abono", h.Payment.Abono)
				payments.DELETE("/:id", h.Payment.Delete)
			}

			income := protected.Group("/reports/income")
			{
				income.GET("/monthly", h.Report.Monthly)
				income.GET("/annual", h.Report.Annual)
				income.GET("/annual/export", h.Report.ExportAnnual)
				income.GET("/comparison", h.Report.Comparison)
				income.GET("/comparison/export", h.Report.ExportComparison)
			}

			protected.GET("/dashboard/stats", h.Dashboard.Stats)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/read-all", h.Notification.MarkAllAsRead)
				notifications.PATCH("/:id/read", h.Notification.MarkAsRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}

			// Admin only
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/auth/register", h.Auth.Register)

				users := admin.Group("/auth/users")
				{
					users.GET("", h.User.List)
					users.GET("/search", h.User.Search)
					users.POST("", h.User.Create)
					users.GET("/:id", h.User.Show)
					users.PATCH("/:id", h.User.Update)
					users.PATCH("/:id/activate", h.User.Activate)
					users.DELETE("/:id", h.User.Delete)
				}

				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/:name/run", h.Job.Run)
			}
		}
	}

	return router
}
