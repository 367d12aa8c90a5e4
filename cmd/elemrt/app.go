package main

import (
	"fmt"

	"github.com/l1jgo/elemrt/internal/config"
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/data"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/scripting"
	"github.com/l1jgo/elemrt/internal/world"
	"go.uber.org/zap"
)

// app is everything both commands build before they diverge.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	w       *world.World
	reg     *element.Registry
	scene   *data.Scene
	handles map[string]ecs.Handle
	engine  *scripting.Engine
}

func bootstrap(cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, reg: element.NewRegistry(nil)}

	// 1. World
	a.w = world.New(
		world.WithLogger(log.Named("world")),
		world.WithMaxFlushCommands(cfg.Runtime.MaxFlushCommands),
	)

	// 2. Scripting
	if cfg.Scripting.Dir != "" {
		eng, err := scripting.NewEngine(a.w, cfg.Scripting.Dir, log.Named("lua"))
		if err != nil {
			return nil, fmt.Errorf("scripting: %w", err)
		}
		a.engine = eng
	}

	// 3. Scene
	if cfg.Host.Scene == "" {
		a.handles = map[string]ecs.Handle{}
		return a, nil
	}
	scene, err := data.LoadSceneEncoded(cfg.Host.Scene, cfg.Host.SceneEncoding)
	if err != nil {
		a.close()
		return nil, err
	}
	a.scene = scene
	a.handles, err = scene.Spawn(a.w, a.reg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("spawn %s: %w", cfg.Host.Scene, err)
	}
	log.Info("scene spawned", zap.String("path", cfg.Host.Scene), zap.Int("elements", scene.Count()))

	// 4. Scripts bound to scene elements
	for _, b := range scene.Scripts(a.handles) {
		if a.engine == nil {
			log.Warn("scripting disabled, binding skipped", zap.String("element", b.Name), zap.String("script", b.File))
			continue
		}
		if err := a.engine.Attach(b.Handle, b.File); err != nil {
			a.close()
			return nil, fmt.Errorf("element %s: %w", b.Name, err)
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
	_ = a.log.Sync()
}
