package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/system"
	"github.com/spf13/cobra"
)

var (
	checkScene string
	checkTicks int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load config, scene and scripts headless and print stats",
	Long: `check builds the world exactly as run does, optionally drives it for a
number of ticks against a simulated 80x24 screen, and prints a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScene, "scene", "", "scene file, overrides host.scene")
	checkCmd.Flags().IntVar(&checkTicks, "ticks", 0, "ticks to run against a simulated screen")
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkScene != "" {
		cfg.Host.Scene = checkScene
	}
	log, err := newLogger(cfg.Logging, false)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a, err := bootstrap(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println()
	printSection("Config")
	printStat("tick rate (ms)", int(cfg.Host.TickRate/time.Millisecond))
	printStat("max events per tick", cfg.Host.MaxEventsPerTick)
	printStat("max flush commands", cfg.Runtime.MaxFlushCommands)

	if a.scene != nil {
		printSection("Scene")
		counts := a.scene.KindCounts()
		for _, kind := range a.reg.Kinds() {
			if n := counts[kind]; n > 0 {
				printStat(kind, n)
			}
		}
	}

	if a.engine != nil {
		printSection("Scripts")
		printStat("library chunks", a.engine.Loaded())
		printStat("attached", a.engine.Attached())
	}

	if checkTicks > 0 {
		screen := tcell.NewSimulationScreen("UTF-8")
		if err := screen.Init(); err != nil {
			return fmt.Errorf("simulation screen: %w", err)
		}
		defer screen.Fini()
		screen.SetSize(80, 24)

		render := system.NewRenderSystem(a.w, screen)
		cleanup := system.NewCleanupSystem(a.w, nil, log.Named("cleanup"))
		runner := coresys.NewRunner(a.w)
		runner.Register(system.NewTickSystem(a.w))
		runner.Register(render)
		runner.Register(cleanup)
		for i := 0; i < checkTicks; i++ {
			runner.Tick(cfg.Host.TickRate)
		}

		printSection("Ticks")
		printStat("ticks", int(runner.Ticks()))
		printStat("drawn last tick", render.Drawn())
		printStat("expired", cleanup.Removed())
	}

	st := a.w.Stats()
	printSection("World")
	printStat("entities", st.Entities)
	printStat("concrete types", st.Types)
	printStat("observers", st.Observers)
	printStat("dependency links", st.Links)
	printStat("pending commands", st.Pending)
	fmt.Println()
	printOK("check passed")
	return nil
}
