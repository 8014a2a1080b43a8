// Command civicgated validates and triages civic issue reports: an HTTP
// service, an MCP stdio server, and one-shot CLI analysis over the same
// decision engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/analyzer"
	"github.com/civicaudit/civicgate/internal/audit"
	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/logging"
	"github.com/civicaudit/civicgate/internal/mcp"
	"github.com/civicaudit/civicgate/internal/model"
	"github.com/civicaudit/civicgate/internal/oracle"
	"github.com/civicaudit/civicgate/internal/server"
)

var version = "0.1.0"

func main() {
	var (
		flagConfig   string
		flagAuditLog string
		flagLogLevel string
		flagDev      bool
	)

	rootCmd := &cobra.Command{
		Use:   "civicgated",
		Short: "civic report validation and triage gateway",
		Long: `civicgated decides whether a citizen-submitted image and description
form a genuine civic issue report, then triages accepted reports into
priority levels with hazard flags and a verification confidence score.`,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.civicgate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAuditLog, "audit-log", "", "audit log path (JSONL, hash-chained)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().BoolVar(&flagDev, "dev", false, "development logging")

	var servePort int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP analysis service",
		Long: `Starts the HTTP service with config hot-reload.

Examples:
  civicgated serve
  civicgated serve --port 8090 --audit-log /var/log/civicgate/audit.jsonl
  GEMINI_API_KEY=xxx civicgated serve --config civicgate.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			log, err := logging.New(flagLogLevel, flagDev)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, server.Config{
				Port:         servePort,
				ConfigPath:   flagConfig,
				AuditLogPath: flagAuditLog,
				GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			}, log)
			if err != nil {
				return err
			}

			if flagConfig != "" {
				reloader, err := server.NewReloader(srv, flagConfig, log)
				if err != nil {
					return err
				}
				go func() {
					if err := reloader.Run(ctx); err != nil {
						log.Error("reloader stopped", zap.Error(err))
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")

	var (
		analyzeImage string
		analyzeText  string
	)
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyze one report from the command line",
		Long: `Runs the full validation pipeline and triage on a single report and
prints the result as JSON.

Examples:
  civicgated analyze --image pothole.jpg --text "large pothole on main street"
  civicgated analyze --text "overflowing garbage bin near the park"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			a, err := buildAnalyzer(cmd.Context(), flagConfig, flagAuditLog)
			if err != nil {
				return err
			}

			if analyzeImage == "" {
				rep, err := a.AnalyzeText(cmd.Context(), analyzeText)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{
					"triage":   rep.Triage,
					"trace_id": rep.TraceID,
				})
			}

			image, err := os.ReadFile(analyzeImage)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			sub := model.NewSubmission(image, mimeFromPath(analyzeImage), analyzeText)
			rep, err := a.Analyze(cmd.Context(), sub)
			if err != nil {
				return err
			}

			out := map[string]any{
				"accepted": rep.Verdict.Accepted,
				"reason":   rep.Verdict.Reason,
				"trace_id": rep.TraceID,
			}
			if rep.Verdict.Accepted {
				out["analysis"] = rep.Analysis
			} else {
				out["debug"] = rep.Verdict.Debug
				out["priority_hint"] = rep.Triage.Priority
			}
			if err := printJSON(out); err != nil {
				return err
			}
			if !rep.Verdict.Accepted {
				os.Exit(2)
			}
			return nil
		},
	}
	analyzeCmd.Flags().StringVar(&analyzeImage, "image", "", "image file path (omit for text-only triage)")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "report description")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "run the MCP stdio server",
		Long: `Exposes civicgate_analyze and civicgate_triage as MCP tools on stdio.

Example Claude Desktop config:
  {"mcpServers": {"civicgate": {"command": "civicgated", "args": ["mcp"]}}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			log, err := logging.New(flagLogLevel, flagDev)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := mcp.New(ctx, mcp.Config{
				ConfigPath:   flagConfig,
				AuditLogPath: flagAuditLog,
				GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			}, log)
			if err != nil {
				return err
			}
			defer s.Close()

			return s.Run(ctx)
		},
	}

	var initOutput string
	initConfigCmd := &cobra.Command{
		Use:   "init-config",
		Short: "write the default configuration as commented YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.DefaultYAML()
			if initOutput == "" {
				fmt.Print(content)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(initOutput), 0750); err != nil {
				return err
			}
			if err := os.WriteFile(initOutput, []byte(content), 0644); err != nil {
				return err
			}
			fmt.Printf("Config written: %s\n", initOutput)
			return nil
		},
	}
	initConfigCmd.Flags().StringVar(&initOutput, "output", "", "write to file (default: stdout)")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "inspect the audit log",
	}

	auditVerifyCmd := &cobra.Command{
		Use:   "verify <log>",
		Short: "verify the audit log hash chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := audit.Verify(args[0])
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Valid {
				os.Exit(1)
			}
			return nil
		},
	}

	auditSummaryCmd := &cobra.Command{
		Use:   "summary <log>",
		Short: "summarize decisions in the audit log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := audit.Summarize(args[0])
			if err != nil {
				return err
			}
			fmt.Print(s.FormatText())
			return nil
		},
	}
	auditCmd.AddCommand(auditVerifyCmd, auditSummaryCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print civicgated version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("civicgated %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, analyzeCmd, mcpCmd, initConfigCmd, auditCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildAnalyzer wires a standalone analyzer for one-shot CLI use.
func buildAnalyzer(ctx context.Context, configPath, auditPath string) (*analyzer.Analyzer, error) {
	cfg, hash, err := config.LoadWithHash(configPath)
	if err != nil {
		return nil, err
	}

	var auditLog *audit.Log
	if auditPath != "" {
		auditLog, err = audit.Open(auditPath)
		if err != nil {
			return nil, err
		}
	}

	vision := oracle.NewVisionClient(cfg.Oracles)
	oracles := oracle.NewFailsafe(vision, vision, vision, nil)

	var j judge.Judge
	if cfg.Judge.Mode == "generative" {
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("judge mode %q requires GEMINI_API_KEY", cfg.Judge.Mode)
		}
		j, err = judge.NewGeminiJudge(ctx, key, cfg.Judge.Model)
		if err != nil {
			return nil, err
		}
	}

	return analyzer.New(cfg, hash, oracles, j, auditLog, nil), nil
}

func mimeFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
