package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/audio"
	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/core"
	"github.com/lixenwraith/antfarm/engine"
	"github.com/lixenwraith/antfarm/render"
	"github.com/lixenwraith/antfarm/status"
)

func newRunCmd(a *app) *cobra.Command {
	var noAudio bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the colony in the terminal",
		Long: `Opens a full-screen terminal view sized to the window.

Keys: space pauses or resumes, r resets with a new layout, p toggles
pheromone trails, q or Esc quits. Resizing the window resizes the world.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noAudio {
				a.cfg.Audio.Enabled = false
			}
			return a.runTerminal()
		},
	}
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Disable sound cues")
	return cmd
}

func (a *app) runTerminal() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	// Normal exit terminal cleanup
	defer screen.Fini()

	// Engine goroutines restore the terminal before the crash report is printed
	core.SetCrashHandler(func(any) {
		screen.Fini()
		_ = a.logger.Sync()
	})
	defer core.SetCrashHandler(nil)

	screen.HideCursor()
	screen.Clear()

	reg := status.NewRegistry()
	rc := a.cfg.Render
	cols, rows := screen.Size()
	w, h := render.WorldSize(cols, rows, rc.CellWidth, rc.CellHeight)

	driver, err := a.newDriver(colony.Bounds{Width: w, Height: h}, reg)
	if err != nil {
		return err
	}

	if a.cfg.Audio.Enabled {
		sm := audio.NewSoundManager(a.cfg.Audio.Volume)
		sm.CountInto(reg.Ints.Get(status.AudioCuesPlayed))
		if err := sm.Initialize(); err != nil {
			// Non-fatal, the colony runs without sound
			a.logger.Warn("audio unavailable", zap.Error(err))
		} else {
			defer sm.Cleanup()
			driver.OnTick(func(_ *engine.Snapshot, report colony.TickReport) {
				sm.HandleTick(report)
			})
		}
	}

	renderer := render.NewRenderer(screen, rc.ShowPheromones)

	driver.Start()
	defer driver.Stop()

	if a.cfg.Run.Autostart {
		if err := driver.Play(); err != nil {
			return err
		}
	}

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	core.Go(func() { screen.ChannelEvents(events, quit) })
	defer close(quit)

	frameTicker := time.NewTicker(rc.FrameInterval)
	defer frameTicker.Stop()

	renderer.Draw(driver.Snapshot())

	for {
		select {
		case ev := <-events:
			action := render.Decode(ev)
			switch action {
			case render.ActionQuit:
				a.logger.Info("quit", zap.Uint64("tick", driver.Snapshot().Tick))
				return nil
			case render.ActionTogglePause:
				err = driver.TogglePause()
			case render.ActionReset:
				err = driver.Reset()
			case render.ActionTogglePheromones:
				renderer.TogglePheromones()
			case render.ActionResize:
				screen.Sync()
				cols, rows := screen.Size()
				w, h := render.WorldSize(cols, rows, rc.CellWidth, rc.CellHeight)
				err = driver.Resize(w, h)
			}
			if err != nil {
				a.logger.Warn("action failed", zap.Stringer("action", action), zap.Error(err))
				err = nil
			}
			if action != render.ActionNone {
				renderer.Draw(driver.Snapshot())
			}

		case <-frameTicker.C:
			renderer.Draw(driver.Snapshot())
		}
	}
}
