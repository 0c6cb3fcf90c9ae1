package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/http/middlewares"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Prom, Gatherer and
// Limiter are optional.
type Deps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger

	Events        handlers.EventsService
	Registrations handlers.RegistrationService
	Checks        map[string]handlers.Check

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Limiter  ratelimit.Limiter

	CORSOrigins  []string
	MaxBodyBytes int64
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	writes := []gin.HandlerFunc{
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(d.MaxBodyBytes),
	}

	eventsHandler := handlers.NewEventsHandler(d.Events)
	r.GET("/events", eventsHandler.ListEvents)
	r.GET("/events/:id", eventsHandler.GetEventByID)
	r.POST("/events", chain(writes, eventsHandler.CreateEvent)...)

	// registration routes are rate limited per client IP
	register := writes
	if d.Limiter != nil {
		register = chain(writes, middlewares.RateLimit(d.Limiter, middlewares.KeyByIP, d.Prom.RecordRateLimited))
	}

	attendeesHandler := handlers.NewAttendeesHandler(d.Registrations)
	r.POST("/events/:id/attendees", chain(register, attendeesHandler.RegisterForEvent)...)
	r.POST("/attendees", chain(register, attendeesHandler.Register)...)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

func chain(base []gin.HandlerFunc, next ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(base)+len(next))
	out = append(out, base...)
	return append(out, next...)
}
