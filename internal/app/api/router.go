package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-supply-api/internal/domains/catalog"
	"github.com/Apurer/go-gin-supply-api/internal/domains/logistics"
	"github.com/Apurer/go-gin-supply-api/internal/domains/ordering"
	"github.com/Apurer/go-gin-supply-api/internal/domains/organization"
	"github.com/Apurer/go-gin-supply-api/internal/platform/database"
	"github.com/Apurer/go-gin-supply-api/internal/platform/health"
	"github.com/Apurer/go-gin-supply-api/internal/platform/metrics"
	"github.com/Apurer/go-gin-supply-api/internal/platform/observability"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

const instrumentationName = "internal.shared.crud"

// RouterOptions are the process-wide dependencies the HTTP surface needs.
type RouterOptions struct {
	DB          *gorm.DB
	Logger      *slog.Logger
	Instruments *observability.Instruments
	// Registry receives the HTTP metrics and backs /metrics. Nil disables both.
	Registry    *prometheus.Registry
	ServiceName string
	Version     string
}

// NewRouter mounts every bounded context under /api plus the operational
// endpoints.
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.ServiceName != "" {
		var otelOpts []otelgin.Option
		if opts.Instruments != nil && opts.Instruments.TracerProvider != nil {
			otelOpts = append(otelOpts, otelgin.WithTracerProvider(opts.Instruments.TracerProvider))
		}
		router.Use(otelgin.Middleware(opts.ServiceName, otelOpts...))
	}
	if opts.Registry != nil {
		router.Use(metrics.NewHTTPMetrics(opts.Registry).Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler(opts.Registry)))
	}
	router.Use(apperrors.DefaultResponder.ErrorHandler(logger))
	router.NoRoute(func(c *gin.Context) {
		apperrors.DefaultResponder.Respond(c, apperrors.ErrNotFound.WithDetail("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})

	checks := health.NewHandler(opts.Version)
	checks.Register("database", func(ctx context.Context) error {
		return database.Ping(ctx, opts.DB)
	})
	router.GET("/healthz", checks.Health)
	router.GET("/livez", health.Live)

	repoOpts := []crud.Option{
		crud.WithLogger(logger),
		crud.WithTracer(opts.Instruments.Tracer(instrumentationName)),
		crud.WithMeter(opts.Instruments.Meter(instrumentationName)),
	}
	api := router.Group("/api")
	catalog.New(opts.DB, repoOpts...).Register(api)
	logistics.New(opts.DB, repoOpts...).Register(api)
	organization.New(opts.DB, repoOpts...).Register(api)
	ordering.New(opts.DB, repoOpts...).Register(api)

	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": opts.ServiceName, "version": opts.Version})
	})
	return router
}
