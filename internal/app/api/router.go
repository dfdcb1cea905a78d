package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderhandler "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/http/handler"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	"github.com/potgreen/nursery-backend/internal/platform/httpmw"
)

// RouterOptions configures the cross-cutting middleware of the HTTP API.
type RouterOptions struct {
	ServiceName    string
	Registry       *prometheus.Registry
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// NewRouter mounts health, metrics and the admin order routes.
func NewRouter(orders ports.Service, opts RouterOptions) *gin.Engine {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestID())
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(httpmw.Metrics(opts.Registry))
	router.Use(httpmw.CORS(opts.CORSOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	admin := router.Group("/", httpmw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	orderhandler.NewOrderAPI(orders).Register(admin)
	return router
}
