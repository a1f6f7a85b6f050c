package api

import (
	"net/http"
	"sales_explorer/internal/sales"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// basePaths are the prefixes the sales routes are mounted under. The web
// client calls /api/sales.
var basePaths = []string{"/sales", "/api/sales"}

// Options tune the middleware installed by InitRoutes. The zero value
// disables rate limiting, allows any origin and uses a fresh metrics registry.
type Options struct {
	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables limiting.
	RateLimit float64
	Burst     int
	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string
	Registry      *prometheus.Registry
	// Now is the clock used for export file names.
	Now func() time.Time
}

// InitRoutes registers the sales endpoints, /ping and /metrics on the given
// Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, opts Options) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	e.Use(accessLog(logger), newHTTPMetrics(reg).middleware(), cors(origin))

	salesHandler := NewSalesHandler(salesService, logger)
	if opts.Now != nil {
		salesHandler.now = opts.Now
	}

	var limit []gin.HandlerFunc
	if opts.RateLimit > 0 {
		limit = append(limit, newIPRateLimiter(rate.Limit(opts.RateLimit), opts.Burst).middleware())
	}

	for _, base := range basePaths {
		g := e.Group(base, limit...)
		g.GET("", salesHandler.handleListSales)
		g.GET("/stats", salesHandler.handleStats)
		g.GET("/export", salesHandler.handleExport)
		g.DELETE("/bulk-delete", salesHandler.handleBulkDelete)
		g.GET("/:id", salesHandler.handleGetSale)
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}
