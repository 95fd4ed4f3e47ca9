package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"query-chat/config"
	"query-chat/web/handlers"
	"query-chat/web/middleware"
	"query-chat/web/services"
	"query-chat/widget"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	router   *gin.Engine
	backend  widget.Backend
	sessions *services.SessionService
	limiter  *middleware.SessionRateLimiter
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(backend widget.Backend, logger *zap.Logger, config *config.Config) (*Server, error) {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Add logger to context
		c.Set("logger", logger)
		c.Next()
	})
	if len(config.CORSAllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = config.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	limiter, err := middleware.NewSessionRateLimiter(middleware.RateLimiterConfig{
		QueriesPerMinute: config.RateLimitQueriesPerMin,
		UploadsPerHour:   config.RateLimitUploadsPerHour,
		BurstSize:        config.RateLimitBurstSize,
		MaxSessions:      config.RateLimitMaxSessions,
	}, logger)
	if err != nil {
		return nil, err
	}

	server := &Server{
		router:   router,
		backend:  backend,
		sessions: services.NewSessionService(config, logger),
		limiter:  limiter,
		logger:   logger,
		config:   config,
	}

	if err := server.setupRoutes(); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *Server) setupRoutes() error {
	// Serve embedded static files
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", http.FS(assets))

	widgetHandler := handlers.NewWidgetHandler(s.sessions, services.NewUploadService(s.logger), s.backend, s.config, s.logger)

	s.router.GET("/", widgetHandler.Index)

	group := s.router.Group("/widget", middleware.SessionMiddleware(s.sessions))
	group.POST("/upload", middleware.RateLimitMiddleware(s.limiter, middleware.LimitUpload), widgetHandler.Upload)
	group.POST("/query", middleware.RateLimitMiddleware(s.limiter, middleware.LimitQuery), widgetHandler.Query)
	group.POST("/theme", widgetHandler.Theme)
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
