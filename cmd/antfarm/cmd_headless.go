package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/status"
)

func newHeadlessCmd(a *app) *cobra.Command {
	var ticks uint64

	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run without a view until the colony is done",
		Long: `Ticks the simulation as fast as possible at the configured timestep until
the driver pauses itself (the last source empties with run.pause_when_depleted,
every unit of food is home with run.pause_when_delivered), all food is home, or
the tick limit is reached, then prints a one-line summary. Interrupting the run
prints the summary so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ticks") {
				ticks = a.cfg.Run.MaxTicks
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			driver, err := a.newDriver(a.configBounds(), status.NewRegistry())
			if err != nil {
				return err
			}

			sum, err := driver.RunFor(ctx, ticks)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			a.logger.Info("run summary",
				zap.String("run_id", sum.RunID),
				zap.Uint64("ticks", sum.Ticks),
				zap.Int("collected", sum.Collected),
				zap.Int("remaining", sum.Remaining),
				zap.Int("total", sum.Total),
				zap.Int("home_deposits", sum.HomeDeposits),
				zap.Int("food_deposits", sum.FoodDeposits),
				zap.Bool("depleted", sum.Depleted),
				zap.Bool("finished", sum.Finished))

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d ticks, collected %d/%d, remaining %d, depleted=%t, finished=%t\n",
				sum.RunID, sum.Ticks, sum.Collected, sum.Total, sum.Remaining, sum.Depleted, sum.Finished)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "Tick limit, overrides run.max_ticks (0 runs until done)")
	return cmd
}
