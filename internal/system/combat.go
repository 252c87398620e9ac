package system

import (
	"math/rand"

	"statbars/internal/component"
	"statbars/internal/ecs"
	"statbars/internal/stats"
)

// AttackResult holds the outcome of one attack.
type AttackResult struct {
	Damage     int
	Exhausted  bool    // attacker lacked the stamina to swing
	Killed     bool    // defender's health reached its minimum
	Experience float64 // experience granted to the attacker
}

// Attack resolves one swing from attacker against defender.
//
// The stamina cost is paid up front without animation; an attacker short on
// stamina does not swing at all. Damage is Damage + rand.Intn(Spread+1) and
// lands as an animated health loss. A defender already at minimum health
// takes nothing. Landed hits grant the attacker experience.
func Attack(w *ecs.World, rng *rand.Rand, attackerID, defenderID ecs.EntityID) AttackResult {
	atkComp := w.Get(attackerID, component.CCombat)
	def := StatsOf(w, defenderID)
	if atkComp == nil || def == nil {
		return AttackResult{}
	}
	cbt := atkComp.(component.Combat)
	atk := StatsOf(w, attackerID)

	if atk != nil && cbt.StaminaCost > 0 {
		if st, ok := atk.Stat(stats.StatStamina); ok {
			if st.Current-st.Min < cbt.StaminaCost {
				return AttackResult{Exhausted: true}
			}
			atk.Modify(stats.StatStamina, -cbt.StaminaCost, false)
		}
	}

	dmg := cbt.Damage
	if cbt.Spread > 0 {
		dmg += rng.Intn(cbt.Spread + 1)
	}

	before, ok := def.Stat(stats.StatHealth)
	if !ok || dmg <= 0 {
		return AttackResult{}
	}
	if def.Modify(stats.StatHealth, -float64(dmg), true) == stats.ModifySaturated {
		return AttackResult{Killed: true}
	}
	after, _ := def.Stat(stats.StatHealth)

	result := AttackResult{
		Damage: int(before.Current - after.Current),
		Killed: after.Current <= after.Min,
	}

	if atk != nil {
		gain := cbt.XPPerHit
		if result.Killed {
			gain += cbt.XPPerKill
		}
		if gain > 0 && atk.Modify(stats.StatExperience, gain, true) == stats.ModifyAnimated {
			result.Experience = gain
		}
	}
	return result
}
