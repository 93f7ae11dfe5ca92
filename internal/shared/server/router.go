package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/aiops"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/credits"
	"resume-builder/internal/imports"
	"resume-builder/internal/payments"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/uploads"
	"resume-builder/internal/users"
)

const (
	rateGroupAI      = "AI"
	rateGroupExport  = "EXPORT"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config     config.Config
	Verifier   middleware.TokenVerifier
	Limiter    *middleware.RateLimiter
	Health     *health.Service
	GoogleAuth *googleauth.GoogleService
	Users      *users.Handler
	Credits    *credits.Handler
	AIOps      *aiops.Handler
	Resumes    *resumes.Handler
	Uploads    *uploads.Handler
	Imports    *imports.Handler
	Payments   *payments.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        RateLimitRules(deps.Config),
			DefaultGroup: rateGroupDefault,
			GroupFor:     RateGroup,
			Limiter:      deps.Limiter,
		}),
	)

	r.GET("/healthz", healthHandler(deps.Health))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/healthz", healthHandler(deps.Health))
	api.GET("/metrics", metrics.Handler())

	// Public routes.
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Payments != nil {
		deps.Payments.RegisterPublicRoutes(api)
	}
	// Owners and anonymous readers of public résumés.
	if deps.Resumes != nil {
		deps.Resumes.RegisterReadRoutes(api)
	}

	authed := api.Group("", middleware.RequireUser())
	if deps.Users != nil {
		deps.Users.RegisterRoutes(authed)
	}
	if deps.Credits != nil {
		deps.Credits.RegisterRoutes(authed)
	}
	if deps.AIOps != nil {
		deps.AIOps.RegisterRoutes(authed)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(authed)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(authed)
	}
	if deps.Imports != nil {
		deps.Imports.RegisterRoutes(authed)
	}
	if deps.Payments != nil {
		deps.Payments.RegisterRoutes(authed)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// RateLimitRules builds the per-class token bucket rules.
func RateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitAI > 0 {
		rules[rateGroupAI] = middleware.RateLimitRule{Rate: cfg.RateLimitAI, Burst: max(1, cfg.RateLimitAIBurst)}
	}
	if cfg.RateLimitExport > 0 {
		rules[rateGroupExport] = middleware.RateLimitRule{Rate: cfg.RateLimitExport, Burst: max(1, cfg.RateLimitExportBurst)}
	}
	if cfg.RateLimitDefault > 0 {
		rules[rateGroupDefault] = middleware.RateLimitRule{Rate: cfg.RateLimitDefault, Burst: max(1, cfg.RateLimitBurst)}
	}
	return rules
}

// RateGroup classifies a request by its matched route. Health, metrics and the
// payment webhook are not limited.
func RateGroup(c *gin.Context) string {
	path := strings.TrimPrefix(c.FullPath(), "/api/v1")
	switch {
	case path == "/healthz" || path == "/metrics" || path == "/payments/webhook":
		return "NONE"
	case strings.HasPrefix(path, "/ai/"):
		return rateGroupAI
	case strings.Contains(path, "/export/"),
		strings.HasSuffix(path, "/preview"),
		strings.HasSuffix(path, "/qr.png"),
		strings.HasPrefix(path, "/render/"),
		path == "/imports/extract":
		return rateGroupExport
	default:
		return rateGroupDefault
	}
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		ok, checks := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
