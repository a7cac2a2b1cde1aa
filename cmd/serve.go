package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/killallgit/podcast-analyzer/api"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Podcast Analyzer API server with the configured settings.

The server runs the job worker pool, the periodic feed refresh and the
temp file cleanup alongside the HTTP API. Only one server may run against
a database at a time.

Example:
  podcast-analyzer serve
  podcast-analyzer serve --port 9090
  podcast-analyzer serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer app.pool.Stop()

	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.scheduler.Stop()

	app.cleanup.Start(ctx)
	defer app.cleanup.Stop()

	server := api.NewServer(api.Options{
		Address:        fmt.Sprintf("%s:%d", serverHost, serverPort),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		CORSOrigins:    cfg.Security.CORSOrigins,
		RateLimit: api.RateLimit{
			Enabled: cfg.RateLimiting.Enabled,
			RPS:     cfg.RateLimiting.RPS,
			Burst:   cfg.RateLimiting.Burst,
		},
	})
	server.SetDependencies(app.dependencies())
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Printf("[INFO] Podcast Analyzer API listening on %s:%d (%d workers)", serverHost, serverPort, cfg.Processing.Workers)

	select {
	case <-ctx.Done():
		log.Printf("[INFO] Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			log.Printf("[ERROR] Server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first; the deferred stops then run in
	// reverse start order: cleanup, scheduler, pool, database and lock.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] Server forced to shutdown: %v", err)
		return err
	}

	log.Printf("[INFO] Server gracefully stopped")
	return nil
}
