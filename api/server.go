package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostwatch/hostwatch/api/handlers"
	"github.com/hostwatch/hostwatch/api/middleware"
	"github.com/hostwatch/hostwatch/api/websocket"
	"github.com/hostwatch/hostwatch/internal/auth"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBody = 1 << 20 // 1 MiB

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	engine      *engine.Engine
	pipeline    *engine.Pipeline
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg *config.Config, eng *engine.Engine, pipeline *engine.Pipeline, bus *events.EventBus) *Server {
	if cfg.API.JWTSecret == "" || cfg.API.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTDuration)
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		engine:      eng,
		pipeline:    pipeline,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.API.CORS)))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.pipeline)
	authHandler := handlers.NewAuthHandler(s.config.API, s.authService)
	rulesHandler := handlers.NewRulesHandler(s.engine)
	incidentsHandler := handlers.NewIncidentsHandler(s.engine, s.config.API)
	analyticsHandler := handlers.NewAnalyticsHandler(s.engine)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	if s.config.Prometheus.Enabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Alert rules
		protected.GET("/rules", rulesHandler.List)
		protected.POST("/rules", rulesHandler.Create)
		protected.GET("/rules/:id", rulesHandler.Get)
		protected.PUT("/rules/:id", rulesHandler.Update)
		protected.DELETE("/rules/:id", rulesHandler.Delete)
		protected.POST("/rules/:id/toggle", rulesHandler.Toggle)

		// Incidents
		protected.GET("/incidents", incidentsHandler.List)
		protected.GET("/incidents/summary", incidentsHandler.Summary)
		protected.GET("/incidents/:id", incidentsHandler.Get)
		protected.POST("/incidents/:id/acknowledge", incidentsHandler.Acknowledge)
		protected.POST("/incidents/:id/resolve", incidentsHandler.Resolve)
		protected.POST("/incidents/:id/suppress", incidentsHandler.Suppress)

		// Analytics
		protected.GET("/analytics/historical", analyticsHandler.Historical)
		protected.GET("/analytics/trends", analyticsHandler.Trends)
		protected.GET("/analytics/baselines", analyticsHandler.Baselines)
		protected.GET("/analytics/anomalies", analyticsHandler.Anomalies)
		protected.GET("/analytics/capacity-forecast", analyticsHandler.CapacityForecast)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
