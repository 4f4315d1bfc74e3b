package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/candidates"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/services/health"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/config"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/metrics"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/middleware"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/respond"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	CandidateHandler *candidates.Handler
	Health           *health.Service
	RateLimiter      *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = uploads.MaxFileBytes

	handlers := []gin.HandlerFunc{
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	}
	if deps.Config.RateLimitEnabled {
		handlers = append(handlers, middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.CandidateRateGroup,
			Limiter:  deps.RateLimiter,
		}))
	}
	r.Use(handlers...)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Route not found")
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		var st health.Status
		if deps.Health != nil {
			st = deps.Health.Status(c.Request.Context())
		} else {
			st = health.Status{OK: true}
		}
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	if deps.CandidateHandler != nil {
		deps.CandidateHandler.RegisterRoutes(api)
	}

	return r
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
