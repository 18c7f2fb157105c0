package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anstrom/scangate/internal/api"
	"github.com/anstrom/scangate/internal/api/handlers"
	"github.com/anstrom/scangate/internal/config"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/metrics"
	"github.com/anstrom/scangate/internal/scanner"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the scangate HTTP API in the foreground.

The server exposes POST /api/v1/scans and report downloads under
/api/v1/scans/download, together with health checks, Prometheus metrics
at /metrics and interactive documentation at /swagger/. It stops
gracefully on SIGINT or SIGTERM.`,
	Example: `  scangate serve
  scangate serve --host 0.0.0.0 --port 8080
  SCANGATE_API_AUTH_ENABLED=true scangate serve --config /etc/scangate/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Override server host")
	serveCmd.Flags().Int("port", 0, "Override server port")
	serveCmd.Flags().Int("max-concurrent", 0, "Override the number of concurrent nmap processes")

	bindFlag("api.host", serveCmd.Flags().Lookup("host"))
	bindFlag("api.port", serveCmd.Flags().Lookup("port"))
	bindFlag("scanning.max_concurrent", serveCmd.Flags().Lookup("max-concurrent"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.Default()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if !cfg.IsAPIEnabled() {
		return fmt.Errorf("API server is disabled in configuration\n" +
			"Enable it by setting 'api.enabled: true' in config")
	}

	server, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting scangate API server %s\n", getVersion())
	fmt.Printf("Listening on http://%s\n", cfg.GetAPIAddress())
	fmt.Printf("API documentation: http://%s/swagger/\n", cfg.GetAPIAddress())

	if err := server.Start(ctx); err != nil {
		logger.Error("API server error", "error", err)
		return err
	}
	fmt.Println("Server stopped successfully")
	return nil
}

// newServer wires the scan service, metrics and API server from cfg.
func newServer(cfg *config.Config, logger *logging.Logger) (*api.Server, error) {
	pm := metrics.NewPrometheusMetrics()
	svc := scanner.New(scanner.Config{
		Program:       cfg.Scanning.NmapPath,
		Timeout:       cfg.Scanning.Timeout,
		MaxConcurrent: cfg.Scanning.MaxConcurrent,
	}, newRunner(), pm)

	if err := svc.CheckScanner(); err != nil {
		logger.Warn("Scanner binary not available; scans will fail until it is installed", "error", err)
	}

	logger.Info("Starting scangate API server",
		"version", version,
		"commit", commit,
		"build_time", buildTime,
		"address", cfg.GetAPIAddress(),
		"scan_timeout", cfg.Scanning.Timeout,
		"max_concurrent", cfg.Scanning.MaxConcurrent)

	server, err := api.New(cfg, svc, pm, handlers.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}
	return server, nil
}
