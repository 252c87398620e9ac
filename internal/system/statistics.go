package system

import (
	"statbars/internal/component"
	"statbars/internal/ecs"
	"statbars/internal/stats"
)

// StatsOf returns the statistics of id, or nil if it has none.
func StatsOf(w *ecs.World, id ecs.EntityID) *stats.Component {
	c := w.Get(id, component.CStatistics)
	if c == nil {
		return nil
	}
	return c.(component.Statistics).Component
}

// BeginPlayAll starts every statistics component in the world.
func BeginPlayAll(w *ecs.World) {
	for _, id := range w.Query(component.CStatistics) {
		StatsOf(w, id).BeginPlay()
	}
}

// RearmRegeneration refreshes the regeneration timer of every stat that has
// regeneration but is not currently ticking, e.g. after it saturated.
// It returns how many timers were re-armed.
func RearmRegeneration(w *ecs.World) int {
	n := 0
	for _, id := range w.Query(component.CStatistics) {
		sc := StatsOf(w, id)
		for _, key := range sc.Keys() {
			if sc.RegenActive(key) {
				continue
			}
			sc.RefreshRegenTimer(key)
			if sc.RegenActive(key) {
				n++
			}
		}
	}
	return n
}

// Revive animates id's health back to full. It reports false if id has no
// health or is already full.
func Revive(w *ecs.World, id ecs.EntityID) bool {
	sc := StatsOf(w, id)
	if sc == nil {
		return false
	}
	hp, ok := sc.Stat(stats.StatHealth)
	if !ok || hp.Current >= hp.Max {
		return false
	}
	return sc.Modify(stats.StatHealth, hp.Max-hp.Current, true) == stats.ModifyAnimated
}

// Sheet copies every statistic of id, for saving.
func Sheet(w *ecs.World, id ecs.EntityID) map[stats.Stat]stats.StatData {
	sc := StatsOf(w, id)
	if sc == nil {
		return nil
	}
	sheet := make(map[stats.Stat]stats.StatData)
	for _, key := range sc.Keys() {
		sheet[key], _ = sc.Stat(key)
	}
	return sheet
}
