package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"space-booking/internal/handler/api"
	"space-booking/internal/handler/middleware"
	"space-booking/internal/pkg/config"
	"space-booking/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *slog.Logger,
	locationHandler *api.LocationHandler,
	reservationHandler *api.ReservationHandler,
	limiter *middleware.RateLimiter,
	m *metrics.Metrics,
) {
	setupMiddleware(engine, cfg, logger, m)
	setupRoutes(engine, cfg, locationHandler, reservationHandler, limiter, m)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	if cfg.Metrics.Enabled && m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	locationHandler *api.LocationHandler,
	reservationHandler *api.ReservationHandler,
	limiter *middleware.RateLimiter,
	m *metrics.Metrics,
) {
	engine.GET("/health", healthCheck)

	if cfg.Metrics.Enabled && m != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limited := []gin.HandlerFunc{limiter.Middleware()}
	requireUser := middleware.RequireUser()

	apiGroup := engine.Group("/api")
	{
		locations := apiGroup.Group("/locations")
		locations.Use(middleware.OptionalUser())
		{
			addRoutes(locations, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: locationHandler.Get},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: locationHandler.Availability},
				{Method: http.MethodGet, Path: "/:id/availability/check", Handler: locationHandler.CheckWindow},
				{Method: http.MethodGet, Path: "/:id/activities", Handler: locationHandler.Activities},
				{Method: http.MethodPost, Path: "/:id/quotes", Handler: locationHandler.Quote, Mw: limited},
			})

			hostOnly := locations.Group("")
			hostOnly.Use(requireUser)
			addRoutes(hostOnly, []route{
				{Method: http.MethodPost, Path: "", Handler: locationHandler.Create, Mw: limited},
				{Method: http.MethodPut, Path: "/:id/rates", Handler: locationHandler.UpdateRates, Mw: limited},
				{Method: http.MethodPut, Path: "/:id/blackouts", Handler: locationHandler.UpdateBlackout, Mw: limited},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(requireUser)
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.Create, Mw: limited},
				{Method: http.MethodGet, Path: "", Handler: reservationHandler.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.Get},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: reservationHandler.Confirm, Mw: limited},
				{Method: http.MethodPost, Path: "/:id/decline", Handler: reservationHandler.Decline, Mw: limited},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: reservationHandler.Cancel, Mw: limited},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
