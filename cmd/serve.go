package cmd

import (
	"fmt"
	"os"
	"time"

	"convoy/internal/api"
	"convoy/internal/config"
	"convoy/internal/coordinator"
	"convoy/internal/executor"
	"convoy/internal/mcpserver"
	"convoy/internal/notes"
	"convoy/internal/registry"
	"convoy/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

var (
	serveTransport string
	serveHost      string
	servePort      int
	serveManifest  string
	serveProject   string
	serveDebug     bool
	serveDryRun    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve release coordination over MCP",
	Long: `Starts an MCP (Model Context Protocol) server exposing release
coordination as tools: coordinate_release, validate_services,
plan_release, get_release, list_releases and get_release_statistics.

Transports:
  stdio  serve over stdin/stdout (default; for MCP clients spawning convoy)
  sse    serve over HTTP with SSE on --host/--port

When run under systemd, readiness is signaled via sd_notify.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if serveDebug {
		level = logging.LevelDebug
	}
	// Stdio transport owns stdout for the protocol; logs go to stderr.
	logging.Init(level, os.Stderr)

	cfg, err := config.LoadConfig(serveProject)
	if err != nil {
		return err
	}

	manifestPath := serveManifest
	if manifestPath == "" {
		manifestPath = config.DefaultManifestPath(serveProject)
	}

	reg := registry.New(serveProject)
	if err := reg.Initialize(); err != nil {
		return err
	}

	var exec api.DeploymentExecutor
	if serveDryRun {
		exec = executor.NewSimulatedExecutor()
	} else {
		exec = executor.NewCommandExecutor(executor.CommandConfig{
			DeployCommand:   cfg.Executor.DeployCommand,
			RollbackCommand: cfg.Executor.RollbackCommand,
		})
	}

	generator, err := notes.New(serveProject, cfg.Notes.Template)
	if err != nil {
		return err
	}

	coord, err := coordinator.New(coordinator.Config{
		Registry:       reg,
		Executor:       exec,
		Notes:          generator,
		MaxConcurrent:  cfg.MaxConcurrent,
		ServiceTimeout: time.Duration(cfg.ServiceTimeout),
	})
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(mcpserver.Config{
		Coordinator:  coord,
		Registry:     reg,
		ManifestPath: manifestPath,
		Version:      GetVersion(),
	})
	if err != nil {
		return err
	}

	// Best effort: outside systemd this is a no-op.
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("Serve", "sd_notify failed: %v", err)
	}

	switch serveTransport {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(serveHost, servePort)
	default:
		return fmt.Errorf("unsupported transport %q (valid: stdio, sse)", serveTransport)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "MCP transport: stdio or sse")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind for the sse transport")
	serveCmd.Flags().IntVar(&servePort, "port", 8090, "Port to bind for the sse transport")
	serveCmd.Flags().StringVar(&serveManifest, "manifest", "", "Services manifest used when tool calls omit services")
	serveCmd.Flags().StringVar(&serveProject, "project", ".", "Project directory holding the .convoy state")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "Simulate deployments instead of running deploy commands")
}
