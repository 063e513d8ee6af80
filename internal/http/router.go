package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	requireAdmin := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAdmin = cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter, cfg.AuthAuditor).RegisterRoutes(router)
		auth.NewAPITokenController(cfg.AuthService).RegisterRoutes(router)

		profile := NewProfileController(cfg.AuthService)
		router.POST("/api/profile/password", profile.ChangePassword)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Static contact routes are registered before /contacts/:id.
	if cfg.Importer != nil {
		importer := NewImportController(cfg.Importer, cfg.Auditor, cfg.MaxImportBytes)
		router.POST("/contacts/import", importer.Import)
	}
	if cfg.Exporter != nil {
		exporter := NewExportController(cfg.Exporter, cfg.Auditor)
		router.GET("/contacts/export", exporter.Export)
	}
	if cfg.Contacts != nil {
		contacts := NewContactsController(cfg.Contacts, cfg.Limits, cfg.Locker, cfg.Auditor)
		router.GET("/contacts", contacts.List)
		router.POST("/contacts", contacts.Create)
		router.GET("/contacts/:id", contacts.Get)
		router.PUT("/contacts/:id", contacts.Update)
		router.DELETE("/contacts/:id", contacts.Delete)
	}

	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	if cfg.UserCounter != nil && cfg.ContactStats != nil && cfg.ImportCounter != nil {
		admin := NewAdminController(cfg.UserCounter, cfg.ContactStats, cfg.ImportCounter, cfg.ExcludedUserIDs)
		router.GET("/admin/stats", requireAdmin, admin.Stats)
	}

	return router
}
