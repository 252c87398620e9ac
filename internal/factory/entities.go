package factory

import (
	"fmt"
	"log/slog"
	"time"

	"statbars/internal/component"
	"statbars/internal/config"
	"statbars/internal/ecs"
	"statbars/internal/stats"
	"statbars/internal/timer"

	"github.com/gdamore/tcell/v2"
)

// Deps carries what every actor's stats component is built with.
type Deps struct {
	Timers *timer.Manager
	Logger *slog.Logger
	Config config.Config
}

func (d Deps) newStats(sheet map[stats.Stat]stats.StatData) *stats.Component {
	opts := []stats.Option{
		stats.WithLogger(d.Logger),
		stats.WithBeginPlayDelay(d.Config.BeginPlayDelay),
	}
	for key, data := range sheet {
		opts = append(opts, stats.WithStat(key, data))
	}
	return stats.New(d.Timers, opts...)
}

// StatSheet converts the configured stats into component data.
func StatSheet(cfgs []config.StatConfig) (map[stats.Stat]stats.StatData, error) {
	sheet := make(map[stats.Stat]stats.StatData, len(cfgs))
	for _, sc := range cfgs {
		key, data, err := sc.Data()
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", sc.Name, err)
		}
		sheet[key] = data
	}
	return sheet, nil
}

// NewPlayer creates the player actor with the configured stat sheet.
// saved, when non-nil, overrides the configured values per stat.
func NewPlayer(w *ecs.World, deps Deps, name string, saved map[stats.Stat]stats.StatData) (ecs.EntityID, error) {
	sheet, err := StatSheet(deps.Config.Stats)
	if err != nil {
		return ecs.NilEntity, err
	}
	for key, data := range saved {
		if _, ok := sheet[key]; ok {
			sheet[key] = data
		}
	}

	id := w.CreateEntity()
	w.Add(id, component.Renderable{
		Name:        name,
		Glyph:       "🧙",
		FGColor:     tcell.ColorYellow,
		RenderOrder: 10,
	})
	w.Add(id, component.Statistics{Component: deps.newStats(sheet)})
	w.Add(id, component.Combat{Damage: 14, Spread: 8, StaminaCost: 15, XPPerHit: 10, XPPerKill: 150})
	w.Add(id, component.Caster{HealAmount: 25, ManaCost: 20})
	w.Add(id, component.TagPlayer{})
	return id, nil
}

// NewDummy creates the training dummy: a single health bar that never
// regenerates, and a fixed punch.
func NewDummy(w *ecs.World, deps Deps) ecs.EntityID {
	health := stats.NewStatData(0, deps.Config.Dummy.Health)
	health.MinLerpTime = 300 * time.Millisecond
	health.MaxLerpTime = 1200 * time.Millisecond

	id := w.CreateEntity()
	w.Add(id, component.Renderable{
		Name:        "Training Dummy",
		Glyph:       "🪵",
		FGColor:     tcell.ColorRed,
		RenderOrder: 5,
	})
	w.Add(id, component.Statistics{Component: deps.newStats(map[stats.Stat]stats.StatData{
		stats.StatHealth: health,
	})})
	w.Add(id, component.Combat{Damage: deps.Config.Dummy.Damage})
	w.Add(id, component.TagDummy{})
	return id
}
