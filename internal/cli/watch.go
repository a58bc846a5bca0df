package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/cardcheck/internal/cardcheck"
	"github.com/ibeckermayer/cardcheck/internal/scheduler"
)

var watchNow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the smoke test on a cron schedule",
	Long: `Run the smoke test repeatedly on the schedule from [watch] in the config
(five-field cron syntax or descriptors such as "@every 10m") until
interrupted. A run still in progress when the next tick arrives causes that
tick to be skipped.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "also run once immediately")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.New(cfg.Watch.Timezone, cfg.Timeouts.Run.Duration+cfg.Timeouts.Action.Duration)
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		res := cardcheck.New(cfg, cmd.OutOrStdout()).Run(ctx)
		return res.Err
	}

	if err := sched.AddJob("cardcheck", cfg.Watch.Schedule, job); err != nil {
		return err
	}

	if watchNow {
		if err := sched.RunNow(ctx, "cardcheck", job); err != nil {
			log.Printf("[watch] Initial run failed: %v", err)
		}
	}

	sched.Start(ctx)
	for _, j := range sched.ListJobs() {
		log.Printf("[watch] %s next run at %s", j.Name, j.NextRun.In(sched.Location()).Format("2006-01-02 15:04:05 MST"))
	}

	<-ctx.Done()
	<-sched.Stop().Done()
	log.Println("[watch] Stopped")
	return nil
}
