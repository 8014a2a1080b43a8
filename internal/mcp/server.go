// Package mcp exposes the analyzer as Model Context Protocol tools over
// stdio, so agent frontends can validate and triage reports directly.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/analyzer"
	"github.com/civicaudit/civicgate/internal/audit"
	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/oracle"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath   string
	AuditLogPath string
	GeminiAPIKey string
}

// Server wraps the MCP SDK server around one analyzer snapshot.
type Server struct {
	mcpServer *mcpsdk.Server
	analyzer  *analyzer.Analyzer
	auditLog  *audit.Log
	log       *zap.Logger
}

// New loads configuration and registers the civicgate tools.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	appCfg, hash, err := config.LoadWithHash(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	vision := oracle.NewVisionClient(appCfg.Oracles)
	oracles := oracle.NewFailsafe(vision, vision, vision, log)

	var j judge.Judge
	if appCfg.Judge.Mode == "generative" && cfg.GeminiAPIKey != "" {
		j, err = judge.NewGeminiJudge(ctx, cfg.GeminiAPIKey, appCfg.Judge.Model)
		if err != nil {
			return nil, fmt.Errorf("build judge: %w", err)
		}
	}

	s := &Server{
		analyzer: analyzer.New(appCfg, hash, oracles, j, auditLog, log),
		auditLog: auditLog,
		log:      log,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "civicgate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "civicgate_analyze",
		Description: "Validate a civic issue report (base64 image + description) and return its triage analysis. Rejected reports return the rejection reason and debug scores.",
	}, s.handleAnalyze)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "civicgate_triage",
		Description: "Triage a civic issue description without an image: priority, urgency and category signals from text alone.",
	}, s.handleTriage)
}
