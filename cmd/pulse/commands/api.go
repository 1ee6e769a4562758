package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphapulse/pulse/internal/api"
	"github.com/alphapulse/pulse/internal/api/handlers"
	"github.com/alphapulse/pulse/internal/scheduler"
	"github.com/alphapulse/pulse/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server together with the scoring scheduler
and the websocket result stream.

Endpoints:
  GET  /health                 - Health check
  GET  /metrics                - Prometheus metrics
  GET  /api/assets             - Tracked assets
  GET  /api/scores             - Latest score for every asset
  GET  /api/score/{ticker}     - Score one ticker on demand
  GET  /api/history/{ticker}   - Score history (?days=30)
  POST /api/score/refresh      - Trigger a full scoring cycle
  GET  /api/stream             - Websocket stream of fresh results

Example:
  go run ./cmd/pulse api
  go run ./cmd/pulse api --port 8090 --no-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	noScheduler  bool
	scoreOnStart bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "override API server port")
	apiCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve the API without the scoring scheduler")
	apiCmd.Flags().BoolVar(&scoreOnStart, "score-on-start", true, "run one scoring cycle immediately on startup")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	// Attach the websocket hub so every fresh result streams out.
	hub := api.NewHub(rt.log)
	rt.runner.SetPublisher(hub)

	scoreHandler := handlers.NewScoreHandler(rt.assetRepo, rt.scoreRepo, rt.runner, rt.cache, rt.log)
	router := api.NewRouter(scoreHandler, hub, rt.cfg.MetricsEnabled, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	var sched *scheduler.Scheduler
	if !noScheduler {
		sched = scheduler.New(rt.log)
		job := jobs.NewScoringJob(rt.runner, rt.cfg.Scoring.CycleInterval, rt.log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start()

		if scoreOnStart {
			if err := sched.RunJob(job.Name()); err != nil {
				rt.log.WithError(err).Warn("Failed to trigger startup scoring cycle")
			}
		}
	}

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	rt.log.Info("Shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	rt.log.Info("Server stopped")
	return nil
}
