package web

import (
	"OCRVisionPro/internal/app/sessions"
	"OCRVisionPro/internal/config"
	"OCRVisionPro/internal/service/vision"
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server — HTTP-интерфейс приложения: встроенная страница и JSON API.
type Server struct {
	cfg      config.ServerConfig
	svc      *vision.Service
	sessions *sessions.Manager
	logger   *zap.SugaredLogger

	router  *gin.Engine
	srv     *http.Server
	running atomic.Bool
}

func NewServer(cfg config.ServerConfig, svc *vision.Service, sm *sessions.Manager, logger *zap.SugaredLogger) *Server {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:8501"
	}
	s := &Server{cfg: cfg, svc: svc, sessions: sm, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	registerAssetRoutes(router)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.registerAPI(router.Group("/api", s.session()))
	s.router = router

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler — роутер без сетевого слушателя (для тестов).
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string { return s.cfg.BindAddr }

func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("HTTP server stopped with error", "error", err)
		} else {
			s.logger.Infow("HTTP server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("http server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debugw("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"duration", time.Since(start).String(),
		)
	}
}
