package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/scheduler"
	"github.com/quantlab-io/scorecast/internal/scheduler/jobs"
	"github.com/quantlab-io/scorecast/internal/training"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler",
	Long: `Starts the long-running scheduler with two jobs:

  training  weekly retraining and promotion (Sundays 02:00)
  refresh   score refresh every 30 minutes under the daily quota

Runs until interrupted.

Example:
  scorecast scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	repo, err := app.repository()
	if err != nil {
		return err
	}
	refresher, err := app.refresher()
	if err != nil {
		return err
	}

	zlog := app.log.Zerolog()
	pipeline := training.NewPipeline(app.cfg.Training.Seed, zlog)
	manager := artifact.NewManager(app.store, zlog)
	pacer := ratelimit.NewTokenBucket(app.cfg.Refresh.RatePerSec)

	sched := scheduler.New(zlog)
	trainingJob := jobs.NewTrainingJob(repo, app.bars, pipeline, manager, app.scorer, pacer,
		app.cfg.Training.LookbackYears, zlog)
	if err := sched.AddJob(trainingJob); err != nil {
		return err
	}
	if err := sched.AddJob(jobs.NewRefreshJob(refresher, zlog)); err != nil {
		return err
	}

	sched.Start()
	fmt.Println("scheduler running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	sched.Stop()
	return nil
}
