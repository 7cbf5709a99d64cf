package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/janhq/support-chat-api/docs/swagger"
	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/routes"
)

const readyzTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Realtime is the websocket endpoint mounted at /ws. CloseAll is invoked on shutdown
// because http.Server does not track hijacked connections.
type Realtime interface {
	http.Handler
	CloseAll()
}

// HTTPServer serves the chat API, the realtime endpoint and operational routes.
type HTTPServer struct {
	cfg      *config.Config
	engine   *gin.Engine
	log      zerolog.Logger
	realtime Realtime
}

// New creates a new HTTP server.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	routeProvider *routes.Provider,
	store Pinger,
	realtime Realtime,
) *HTTPServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := middlewares.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins

	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Tracing(cfg.ServiceName))
	engine.Use(middlewares.Metrics())
	engine.Use(middlewares.CORSWithConfig(corsCfg))
	engine.Use(middlewares.RequestLoggerWithLogger(log))

	registerCoreRoutes(engine, cfg, store)
	if realtime != nil {
		engine.GET("/ws", gin.WrapH(realtime))
	}
	routeProvider.Register(engine)

	return &HTTPServer{
		cfg:      cfg,
		engine:   engine,
		log:      log,
		realtime: realtime,
	}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.realtime != nil {
		server.RegisterOnShutdown(s.realtime.CloseAll)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, store Pinger) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     cfg.ServiceName,
			"status":      "ok",
			"environment": cfg.Environment,
			"endpoints": gin.H{
				"health":          "/healthz",
				"ready":           "/readyz",
				"realtime":        "GET /ws",
				"createMessage":   "POST /api/chat/message",
				"getConversation": "GET /api/chat/conversation/:id",
			},
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyzTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			body := gin.H{"status": "not_ready", "database": "connection failed"}
			if cfg.IsDevelopment() {
				body["error"] = err.Error()
			}
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "connected"})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
