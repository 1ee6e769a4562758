package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alphapulse/pulse/internal/scheduler"
	"github.com/alphapulse/pulse/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scoring scheduler without the API server",
	Long: `Starts the headless scoring daemon: every cycle interval the
tracked universe is fetched, scored and persisted. Useful when the API
is served by a separate process.

Example:
  go run ./cmd/pulse scheduler`,
	RunE: runSchedulerDaemon,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	sched := scheduler.New(rt.log)
	job := jobs.NewScoringJob(rt.runner, rt.cfg.Scoring.CycleInterval, rt.log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	if err := sched.RunJob(job.Name()); err != nil {
		rt.log.WithError(err).Warn("Failed to trigger startup scoring cycle")
	}

	fmt.Printf("Scheduler running, cycle interval %s\n", rt.cfg.Scoring.CycleInterval)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
