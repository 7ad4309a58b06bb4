package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sift/internal/api"
	"github.com/wonny/sift/internal/api/handlers"
	"github.com/wonny/sift/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                 - Health check
  GET  /api/v1/strategies      - Registered strategy profiles
  GET  /api/v1/screen/latest   - Most recent screening report
  POST /api/v1/screen          - Run a screening pass

When SCHEDULE_ENABLED is set, the cron scheduler runs alongside the
server so unattended screening passes keep landing in the results
directory.

Example:
  go run ./cmd/sift api
  go run ./cmd/sift api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Sift API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Wire screening dependencies
	deps, err := initDeps(cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	// 4. Build one runner per registered strategy
	runners := make(map[string]handlers.Runner, len(deps.registry.Names()))
	for _, name := range deps.registry.Names() {
		profile, err := deps.registry.Get(name)
		if err != nil {
			return err
		}
		scr, err := deps.newScreener(profile)
		if err != nil {
			return err
		}
		runners[name] = scr
	}

	// 5. Create handler and router
	screenHandler := handlers.NewScreenHandler(deps.registry, runners, deps.store, cfg.Screen.Strategy, log)
	router := api.NewRouter(screenHandler, log)

	// 6. Create server
	server := api.New(cfg, log, router)

	// 7. Scheduler for unattended runs, when enabled
	if cfg.Schedule.Enabled {
		sched, err := buildScheduler(deps)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		log.WithField("spec", cfg.Schedule.Spec).Info("Scheduler running alongside API server")
	}

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/v1/strategies")
	fmt.Println("  GET  /api/v1/screen/latest")
	fmt.Println("  POST /api/v1/screen")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
