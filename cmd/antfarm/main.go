// Command antfarm runs the ant colony foraging simulation
//
// Hosts:
//
//	antfarm run       terminal view with keyboard control
//	antfarm headless  bounded run without pacing, prints a summary
//	antfarm serve     paced run streaming snapshots over websocket
//	antfarm config    dump the effective configuration
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/config"
	"github.com/lixenwraith/antfarm/engine"
	"github.com/lixenwraith/antfarm/logging"
	"github.com/lixenwraith/antfarm/status"
)

// app carries state resolved by the root command for its subcommands
type app struct {
	configPath string
	debug      bool
	seed       uint64

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "antfarm",
		Short: "Ant colony foraging simulation",
		Long: `Agents leave the nest, random-walk until they find food, and lay two
pheromone trails: one leading home and one leading to food. Trails evaporate,
so only routes that keep being used survive. A run ends when every unit of
food has been carried back to the nest.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Write debug logs to the logging directory")
	root.PersistentFlags().Uint64Var(&a.seed, "seed", 0, "Random seed, overrides run.seed (0 derives one from the clock)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newHeadlessCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// setup loads configuration and builds the logger
// The terminal host logs only in debug mode so output never lands on the screen
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = a.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	var out io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "run" {
		out = nil
	}
	logger, closeLog, err := logging.New(cfg.Logging, logging.Options{Debug: a.debug, Output: out})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

// newDriver builds a driver over bounds from the loaded configuration
func (a *app) newDriver(bounds colony.Bounds, reg *status.Registry) (*engine.Driver, error) {
	opts := engine.Options{
		Bounds:             bounds,
		Simulation:         a.cfg.Simulation,
		Seed:               a.cfg.ResolveSeed(time.Now()),
		TickInterval:       a.cfg.Run.TickInterval,
		PauseWhenDepleted:  a.cfg.Run.PauseWhenDepleted,
		PauseWhenDelivered: a.cfg.Run.PauseWhenDelivered,
		SnapshotDeposits:   a.cfg.Server.SnapshotDeposits,
		SnapshotTrail:      a.cfg.Server.SnapshotTrail,
	}
	return engine.NewDriver(opts, reg, a.logger)
}

// configBounds returns the world size configured for non-terminal hosts
func (a *app) configBounds() colony.Bounds {
	return colony.Bounds{Width: a.cfg.Run.Width, Height: a.cfg.Run.Height}
}
