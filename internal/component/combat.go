package component

import "statbars/internal/ecs"

const (
	CCombat ecs.ComponentType = 3
	CCaster ecs.ComponentType = 4
)

// Combat lets an actor strike. Damage is Damage + rand.Intn(Spread+1).
type Combat struct {
	Damage      int
	Spread      int
	StaminaCost float64
	XPPerHit    float64 // experience granted to the attacker per landed hit
	XPPerKill   float64
}

func (Combat) Type() ecs.ComponentType { return CCombat }

// Caster lets an actor trade mana for health.
type Caster struct {
	HealAmount float64
	ManaCost   float64
}

func (Caster) Type() ecs.ComponentType { return CCaster }
