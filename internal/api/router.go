package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/reviewdash/internal/api/handler"
	"github.com/timmy/reviewdash/internal/api/middleware"
	"github.com/timmy/reviewdash/internal/config"
	"github.com/timmy/reviewdash/internal/dashboard"
	"github.com/timmy/reviewdash/internal/logger"
	"github.com/timmy/reviewdash/internal/notifier"
)

// Deps are the collaborators the console routes are built from.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Notifier  *notifier.Notifier
	Observer  handler.PollStats
	Probe     handler.ServiceProbe
	Logger    *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Deps, cfg *config.ServerConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	var streams handler.StreamCounter
	if deps.Notifier != nil {
		streams = deps.Notifier
	}
	healthHandler := handler.NewHealthHandler(deps.Observer, deps.Probe, streams)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard, deps.Notifier)

	r.GET("/", dashboardHandler.Page)
	r.GET("/health", healthHandler.Health)

	d := r.Group("/dashboard")
	{
		d.GET("/state", dashboardHandler.State)
		d.GET("/events", dashboardHandler.Events)
		d.PUT("/settings", dashboardHandler.UpdateSettings)

		actions := d.Group("/actions")
		actions.POST("/start", dashboardHandler.Start)
		actions.POST("/sample", dashboardHandler.Sample)
		actions.POST("/aspects", dashboardHandler.Aspects)
		actions.POST("/test-batch", dashboardHandler.TestBatch)
	}

	return r
}
