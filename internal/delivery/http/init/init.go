package http_init

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

const shutdownTimeout = 5 * time.Second

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	root   []Controller
	rg     *gin.RouterGroup
	engine *gin.Engine

	logger *slog.Logger
}

func NewControllerPool() *ControllerPool {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(slog.Default()))
	rg := engine.Group(apiPrefix)
	return &ControllerPool{
		pool:   make([]Controller, 0, 10),
		rg:     rg,
		engine: engine,
		logger: slog.Default(),
	}
}

// Add mounts the controller under the API prefix.
func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

// AddRoot mounts the controller at the server root (e.g. /metrics).
func (pool *ControllerPool) AddRoot(c Controller) {
	pool.root = append(pool.root, c)
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
	for _, c := range pool.root {
		c.RegisterRoutes(&pool.engine.RouterGroup)
	}
}

func (pool *ControllerPool) Handler() http.Handler {
	return pool.engine
}

// RunAll serves until ctx is done, then drains in-flight requests.
func (pool *ControllerPool) RunAll(ctx context.Context, host, port string) error {
	srv := &http.Server{
		Addr:    net.JoinHostPort(host, port),
		Handler: pool.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		pool.logger.Info("http server started", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	pool.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Debug("request",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			slog.Int("status", ctx.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
