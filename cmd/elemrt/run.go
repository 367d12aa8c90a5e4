package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/system"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runScene string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scene in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHost()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runScene, "scene", "", "scene file, overrides host.scene")
}

func runHost() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runScene != "" {
		cfg.Host.Scene = runScene
	}

	// 2. Logger, to a file since the screen is ours
	log, err := newLogger(cfg.Logging, true)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	// 3. World, scripts, scene
	a, err := bootstrap(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	// 4. Screen
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	events := make(chan tcell.Event, 256)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	// 5. Systems
	done := make(chan struct{})
	var once sync.Once
	quit := func() { once.Do(func() { close(done) }) }

	runner := coresys.NewRunner(a.w)
	runner.Register(system.NewInputSystem(a.w, events, system.NewHitGrid(), cfg.Host.MaxEventsPerTick, quit, log.Named("input")))
	runner.Register(system.NewTickSystem(a.w))
	runner.Register(system.NewRenderSystem(a.w, screen))
	runner.Register(system.NewCleanupSystem(a.w, nil, log.Named("cleanup")))

	// 6. Host loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Host.TickRate)
	defer ticker.Stop()
	log.Info("host loop started", zap.Duration("tick", cfg.Host.TickRate), zap.Int("elements", a.w.Len()))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Host.TickRate)
		case <-done:
			log.Info("quit requested", zap.Uint64("ticks", runner.Ticks()))
			return nil
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}
