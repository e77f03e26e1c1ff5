package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/auth/keycloak"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
	"github.com/turtacn/molsmarts/internal/interfaces/http/middleware"
)

// jobBodySlack leaves room for multipart framing around an SD file of the
// maximum job size.
const jobBodySlack = 1 << 20

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	EncodeHandler  *handlers.EncodeHandler
	JobHandler     *handlers.JobHandler
	PatternHandler *handlers.PatternHandler
	HealthHandler  *handlers.HealthHandler

	Server      config.ServerConfig
	MaxJobBytes int64
	MetricsPath string

	// Auth guards /api/v1 when set.  RBAC then decides per route and
	// defaults to keycloak.DefaultRolePermissions.
	Auth keycloak.TokenVerifier
	RBAC *keycloak.RBAC

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.EncoderMetrics
}

// guard returns the permission check for perm, or a no-op without auth.
type guard func(perm keycloak.Permission) gin.HandlerFunc

// NewRouter constructs the complete route tree.  Nil handlers leave their
// routes unregistered.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(handlers.NotFound())
	r.NoMethod(handlers.MethodNotAllowed())

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(cfg.Logger, middleware.DefaultLoggingConfig(), cfg.Metrics))
	r.Use(middleware.Recovery(cfg.Logger))
	if len(cfg.Server.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORS.AllowedOrigins)))
	}

	// --- Probes and metrics, never rate limited ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.Server.RateLimit.Enabled {
		rl := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}
		limiter, err := middleware.NewClientLimiter(rl)
		if err != nil {
			return nil, err
		}
		api.Use(middleware.RateLimit(limiter, rl))
	}
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	allow := guard(func(keycloak.Permission) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } })
	if cfg.Auth != nil {
		rbac := cfg.RBAC
		if rbac == nil {
			rbac = keycloak.NewRBAC(nil)
		}
		api.Use(middleware.Auth(cfg.Auth, cfg.Logger))
		allow = func(perm keycloak.Permission) gin.HandlerFunc { return middleware.RequirePermission(rbac, perm) }
	}

	registerEncodeRoutes(api, cfg.EncodeHandler, cfg.Server.MaxBodySize, allow)
	registerJobRoutes(api, cfg.JobHandler, cfg.MaxJobBytes, allow)
	registerPatternRoutes(api, cfg.PatternHandler, allow)

	return r, nil
}

func bodyLimit(n int64) gin.HandlerFunc {
	if n <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.BodyLimit(n)
}

// registerEncodeRoutes mounts the synchronous encode endpoints.
func registerEncodeRoutes(r *gin.RouterGroup, h *handlers.EncodeHandler, maxBody int64, allow guard) {
	if h == nil {
		return
	}
	g := r.Group("/encode", allow(keycloak.PermSmartsEncode), bodyLimit(maxBody))
	g.POST("", h.Encode)
	g.POST("/batch", h.EncodeBatch)
}

// registerJobRoutes mounts the SD file job endpoints under /jobs.
func registerJobRoutes(r *gin.RouterGroup, h *handlers.JobHandler, maxJobBytes int64, allow guard) {
	if h == nil {
		return
	}
	limit := int64(0)
	if maxJobBytes > 0 {
		limit = maxJobBytes + jobBodySlack
	}
	g := r.Group("/jobs")
	g.POST("", allow(keycloak.PermJobsSubmit), bodyLimit(limit), h.Submit)
	g.GET("/:id", allow(keycloak.PermJobsRead), h.Get)
	g.GET("/:id/result", allow(keycloak.PermJobsRead), h.Result)
}

// registerPatternRoutes mounts the stored pattern endpoints under /patterns.
func registerPatternRoutes(r *gin.RouterGroup, h *handlers.PatternHandler, allow guard) {
	if h == nil {
		return
	}
	g := r.Group("/patterns", allow(keycloak.PermPatternsRead))
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
}

//Personal.AI order the ending
