package server

import (
	"context"
	"net/http"
	"time"

	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	"github.com/campuswatt/gridline/internal/config"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/observability"
	"github.com/campuswatt/gridline/internal/observability/logger"
	"github.com/campuswatt/gridline/internal/observability/metrics"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	"github.com/campuswatt/gridline/internal/ratelimit"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	ObsConfig observability.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter

	Auth        authdomain.Service
	Blocks      blockdomain.Service
	Lines       linedomain.Service
	Telemetry   telemetrydomain.Service
	Alerts      alertdomain.Service
	Control     controldomain.Service
	Topups      topupdomain.Service
	Predictions predictiondomain.Service
	Devices     devicedomain.Service
}

type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	limiter ratelimit.Limiter

	auth        authdomain.Service
	blocks      blockdomain.Service
	lines       linedomain.Service
	telemetry   telemetrydomain.Service
	alerts      alertdomain.Service
	control     controldomain.Service
	topups      topupdomain.Service
	predictions predictiondomain.Service
	devices     devicedomain.Service
}

func New(p Params) *Server {
	if !p.ObsConfig.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{Debug: p.ObsConfig.Debug()}))

	s := &Server{
		engine:      engine,
		cfg:         p.Config,
		log:         p.Log.Named("server"),
		metrics:     p.Metrics,
		limiter:     p.Limiter,
		auth:        p.Auth,
		blocks:      p.Blocks,
		lines:       p.Lines,
		telemetry:   p.Telemetry,
		alerts:      p.Alerts,
		control:     p.Control,
		topups:      p.Topups,
		predictions: p.Predictions,
		devices:     p.Devices,
	}
	s.registerRoutes()

	httpServer := &http.Server{
		Addr:              p.Config.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server starting", zap.String("addr", p.Config.HTTPAddr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")

	// Device-facing surface, authenticated by device token.
	deviceAPI := api.Group("", s.DeviceAuthRequired())
	deviceAPI.POST("/telemetry", s.RateLimited("telemetry"), s.handleIngestTelemetry)
	deviceAPI.GET("/control", s.handlePollControl)
	deviceAPI.POST("/heartbeat", s.handleHeartbeat)

	// Session endpoints.
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)

	authed := api.Group("", s.AuthRequired())
	authed.GET("/auth/me", s.handleMe)

	// Student dashboard surface. Line scoping is enforced per handler:
	// a student only sees the line they are assigned to.
	authed.GET("/lines/:id", s.handleGetLine)
	authed.GET("/energy-logs", s.handleListEnergyLogs)
	authed.GET("/alerts", s.handleListAlerts)
	authed.GET("/prediction", s.handleEstimate)
	authed.GET("/prediction/history", s.handlePredictionHistory)
	authed.POST("/topup", s.handleInitializeTopup)
	authed.POST("/topup/verify", s.handleVerifyTopup)
	authed.GET("/topup/history", s.handleTopupHistory)

	admin := authed.Group("/admin", s.RequireRole(authdomain.RoleAdmin))
	admin.POST("/blocks", s.handleCreateBlock)
	admin.GET("/blocks", s.handleListBlocks)
	admin.GET("/blocks/:id", s.handleGetBlock)
	admin.PATCH("/blocks/:id", s.handleUpdateBlock)
	admin.DELETE("/blocks/:id", s.handleDeleteBlock)

	admin.POST("/lines", s.handleCreateLine)
	admin.GET("/lines", s.handleListLines)
	admin.PATCH("/lines/:id", s.handleUpdateLine)
	admin.DELETE("/lines/:id", s.handleDeleteLine)

	admin.GET("/users", s.handleListUsers)
	admin.POST("/users/:id/assign", s.handleAssignUser)

	admin.POST("/commands", s.handleEnqueueCommand)
	admin.GET("/commands", s.handleListCommands)

	admin.POST("/devices", s.handleRegisterDevice)
	admin.GET("/devices", s.handleListDevices)
	admin.DELETE("/devices/:id", s.handleRevokeDevice)

	admin.GET("/analytics/usage", s.handleUsageAnalytics)
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(func(*Server) {}),
)
