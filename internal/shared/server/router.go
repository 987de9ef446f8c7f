package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/assessment"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

const (
	apiPrefix       = "/api/v1"
	submitPath      = apiPrefix + "/assessment/submit"
	submitRateGroup = "SUBMIT"
)

// RouterDeps carries handlers built during bootstrap.
type RouterDeps struct {
	Config            config.Config
	Verifier          middleware.TokenVerifier
	Signer            identity.TokenSigner
	AssessmentHandler *assessment.Handler
	GoogleAuth        *identity.GoogleService
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	publicPrefixes := []string{
		apiPrefix + "/health",
		apiPrefix + "/auth/",
		"/metrics",
	}
	if cfg.Env == "dev" {
		publicPrefixes = append(publicPrefixes, apiPrefix+"/dev/")
	}

	rules := map[string]middleware.RateLimitRule{}
	if cfg.SubmitRatePerMinute > 0 {
		rules[submitRateGroup] = middleware.PerMinute(cfg.SubmitRatePerMinute)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, publicPrefixes...),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: rateGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterRoutes(api)
	}
	if cfg.Env == "dev" && deps.Signer != nil {
		identity.RegisterDevRoutes(api.Group("/dev"), deps.Signer)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == submitPath {
		return submitRateGroup
	}
	return ""
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
