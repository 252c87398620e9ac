package system

import (
	"statbars/internal/component"
	"statbars/internal/ecs"
	"statbars/internal/stats"
)

// HealResult holds the outcome of one heal.
type HealResult struct {
	Healed float64
	NoMana bool
	Full   bool // health was already at maximum, nothing was spent
}

// Heal trades mana for health. Both bars animate.
func Heal(w *ecs.World, id ecs.EntityID) HealResult {
	cc := w.Get(id, component.CCaster)
	sc := StatsOf(w, id)
	if cc == nil || sc == nil {
		return HealResult{}
	}
	caster := cc.(component.Caster)

	hp, ok := sc.Stat(stats.StatHealth)
	if !ok {
		return HealResult{}
	}
	if hp.Current >= hp.Max {
		return HealResult{Full: true}
	}
	if mana, ok := sc.Stat(stats.StatMana); ok && caster.ManaCost > 0 {
		if mana.Current-mana.Min < caster.ManaCost {
			return HealResult{NoMana: true}
		}
		sc.Modify(stats.StatMana, -caster.ManaCost, true)
	}

	sc.Modify(stats.StatHealth, caster.HealAmount, true)
	after, _ := sc.Stat(stats.StatHealth)
	return HealResult{Healed: after.Current - hp.Current}
}

// Sprint drains stamina at once, without a trail.
func Sprint(w *ecs.World, id ecs.EntityID, cost float64) stats.ModifyResult {
	sc := StatsOf(w, id)
	if sc == nil {
		return stats.ModifyNotFound
	}
	return sc.Modify(stats.StatStamina, -cost, false)
}

// Study grants experience with an animated trail.
func Study(w *ecs.World, id ecs.EntityID, amount float64) stats.ModifyResult {
	sc := StatsOf(w, id)
	if sc == nil {
		return stats.ModifyNotFound
	}
	return sc.Modify(stats.StatExperience, amount, true)
}
