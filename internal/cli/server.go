package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"trivia-visualizer/internal/app"
	"trivia-visualizer/internal/config"
	transport "trivia-visualizer/internal/transport/http"
)

const (
	sweepInterval = 5 * time.Minute
	maxIdle       = 30 * time.Minute
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	mux := http.NewServeMux()
	transport.Routes(mux, d.service)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.Logging(mux),
		ReadTimeout: 15 * time.Second,
		// Refresh waits on the trivia API, which has its own timeout.
		WriteTimeout: 45 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepIdleDashboards(sweepCtx, d.service)

	go func() {
		log.Printf("starting trivia dashboard on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sweepIdleDashboards periodically drops dashboards nobody has used recently.
func sweepIdleDashboards(ctx context.Context, service *app.DashboardService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := service.Sweep(maxIdle); removed > 0 {
				log.Printf("swept %d idle dashboards", removed)
			}
		}
	}
}
