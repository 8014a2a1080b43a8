// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/analyzer"
	"github.com/civicaudit/civicgate/internal/audit"
	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/oracle"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int
	ConfigPath   string
	AuditLogPath string
	GeminiAPIKey string
}

// Server hosts the analyzer behind a gin router. The analyzer is an
// immutable snapshot swapped whole on hot reload.
type Server struct {
	mu       sync.RWMutex
	analyzer *analyzer.Analyzer

	auditLog   *audit.Log
	cfg        Config
	port       int
	log        *zap.Logger
	httpServer *http.Server
}

// New loads configuration, wires the oracles and judge, and builds the
// router. The context bounds judge client construction only.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		var err error
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	s := &Server{auditLog: auditLog, cfg: cfg, log: log}
	if err := s.Reload(ctx); err != nil {
		return s, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleHealth)
	router.GET("/health", s.handleHealth)
	router.POST("/analyze", s.handleAnalyze)
	router.POST("/api/analyze", s.handleAnalyze)
	router.POST("/analyze/text", s.handleAnalyzeText)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes the audit log.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.auditLog != nil {
		if cerr := s.auditLog.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Reload rebuilds the analyzer from the config file and swaps it in
// atomically. Called at startup and by the hot-reloader.
func (s *Server) Reload(ctx context.Context) error {
	cfg, hash, err := config.LoadWithHash(s.cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	vision := oracle.NewVisionClient(cfg.Oracles)
	oracles := oracle.NewFailsafe(vision, vision, vision, s.log)

	var j judge.Judge
	if cfg.Judge.Mode == "generative" {
		if s.cfg.GeminiAPIKey == "" {
			return fmt.Errorf("judge mode %q requires an API key", cfg.Judge.Mode)
		}
		j, err = judge.NewGeminiJudge(ctx, s.cfg.GeminiAPIKey, cfg.Judge.Model)
		if err != nil {
			return fmt.Errorf("build judge: %w", err)
		}
	}

	a := analyzer.New(cfg, hash, oracles, j, s.auditLog, s.log)

	s.mu.Lock()
	s.analyzer = a
	s.port = s.cfg.Port
	if s.port == 0 {
		s.port = cfg.Server.Port
	}
	s.mu.Unlock()

	s.log.Info("config loaded",
		zap.String("config_hash", hash),
		zap.String("mode", cfg.Judge.Mode),
		zap.String("policy", a.Policy()))
	return nil
}

func (s *Server) current() *analyzer.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzer
}
