package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"mobirent/internal/handler/api"
	"mobirent/internal/handler/middleware"
	"mobirent/internal/pkg/config"
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
	rdb *redis.Client,
	authHandler *api.AuthHandler,
	reservationHandler *api.ReservationHandler,
	fleetHandler *api.FleetHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, rdb, authHandler, reservationHandler, fleetHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	rdb *redis.Client,
	authHandler *api.AuthHandler,
	reservationHandler *api.ReservationHandler,
	fleetHandler *api.FleetHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})
		}

		// Catalog endpoints are public and change rarely, so responses are
		// served through the cache.
		catalog := apiGroup.Group("")
		catalog.Use(middleware.ResponseCache(rdb, cfg.Redis.CacheTTL))
		{
			addRoutes(catalog, []route{
				{Method: http.MethodGet, Path: "/vehicles", Handler: fleetHandler.ListVehicles},
				{Method: http.MethodGet, Path: "/branches", Handler: fleetHandler.ListBranches},
				{Method: http.MethodGet, Path: "/add-ons", Handler: fleetHandler.ListAddOns},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			staffOnly := []gin.HandlerFunc{authMiddleware.RequireStaff()}

			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.CreateReservation},
				{Method: http.MethodGet, Path: "/me", Handler: reservationHandler.GetMyReservations},
				{Method: http.MethodGet, Path: "/by-number/:number", Handler: reservationHandler.GetReservationByNumber},
				{Method: http.MethodGet, Path: "/report", Handler: reservationHandler.GetReport, Mw: staffOnly},
				{Method: http.MethodGet, Path: "/total-revenue", Handler: reservationHandler.GetTotalRevenue, Mw: staffOnly},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.GetReservation},
				{Method: http.MethodPost, Path: "/:id/pay", Handler: reservationHandler.PayReservation},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: reservationHandler.CancelReservation},
				{Method: http.MethodPost, Path: "/:id/pickup", Handler: reservationHandler.PickupReservation, Mw: staffOnly},
				{Method: http.MethodPatch, Path: "/:id/status", Handler: reservationHandler.UpdateStatus, Mw: staffOnly},
				{Method: http.MethodPut, Path: "/:id/addons", Handler: reservationHandler.UpdateAddOns},
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
