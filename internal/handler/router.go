package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"condo-booking/internal/domain/user"
	"condo-booking/internal/handler/api"
	"condo-booking/internal/handler/middleware"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine             *gin.Engine
	Config             config.Config
	Logger             *middleware.Logger
	Metrics            *metrics.Metrics
	AuthMiddleware     *middleware.AuthMiddleware
	ReservationHandler *api.ReservationHandler
	AreaHandler        *api.AreaHandler
	InterestHandler    *api.InterestHandler
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config, p.Logger, p.Metrics)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics) {
	slogger := logger.GetSlogLogger()
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(slogger))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, slogger))
	engine.Use(logger.LoggingMiddleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.MetricsMiddleware(m))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	engine := p.Engine
	engine.GET("/health", healthCheck)

	if p.Config.Metrics.Enabled {
		engine.GET(p.Config.Metrics.Path, gin.WrapH(p.Metrics.Handler()))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := p.AuthMiddleware
	staffOnly := []gin.HandlerFunc{auth.RequireRoleAtLeast(user.RoleStaff)}

	apiGroup := engine.Group("/api")
	apiGroup.Use(auth.RequireAuth())
	{
		rh := p.ReservationHandler
		addRoutes(apiGroup.Group("/reservations"), []route{
			{Method: http.MethodPost, Path: "", Handler: rh.Admit},
			{Method: http.MethodGet, Path: "", Handler: rh.ListMine},
			{Method: http.MethodGet, Path: "/protocol/:protocol", Handler: rh.GetByProtocol},
			{Method: http.MethodGet, Path: "/:id", Handler: rh.Get},
			{Method: http.MethodGet, Path: "/:id/timeline", Handler: rh.Timeline},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: rh.Cancel},
			{Method: http.MethodPost, Path: "/:id/confirm", Handler: rh.Confirm, Mw: staffOnly},
			{Method: http.MethodPost, Path: "/:id/use", Handler: rh.MarkUsed, Mw: staffOnly},
		})

		addRoutes(apiGroup.Group("/areas"), []route{
			{Method: http.MethodGet, Path: "/:id/availability", Handler: p.AreaHandler.Availability},
			{Method: http.MethodPost, Path: "/:id/interests", Handler: p.InterestHandler.Register},
		})

		addRoutes(apiGroup.Group("/interests"), []route{
			{Method: http.MethodDelete, Path: "/:id", Handler: p.InterestHandler.Withdraw},
		})
	}

	slog.Debug("routes registered", "count", len(engine.Routes()))
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
