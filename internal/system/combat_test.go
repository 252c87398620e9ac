package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbars/internal/component"
	"statbars/internal/ecs"
	"statbars/internal/stats"
	"statbars/internal/timer"
)

// bar builds a statistic spanning [0, max] that starts at cur.
func bar(max, cur float64) stats.StatData {
	d := stats.NewStatData(0, max)
	d.Current, d.Displayed = cur, cur
	return d
}

// spawn adds an actor whose statistics have already begun play.
func spawn(w *ecs.World, tm *timer.Manager, sheet map[stats.Stat]stats.StatData, extra ...ecs.Component) ecs.EntityID {
	opts := []stats.Option{stats.WithBeginPlayDelay(0)}
	for k, d := range sheet {
		opts = append(opts, stats.WithStat(k, d))
	}
	sc := stats.New(tm, opts...)
	sc.BeginPlay()

	id := w.CreateEntity()
	w.Add(id, component.Statistics{Component: sc})
	for _, c := range extra {
		w.Add(id, c)
	}
	return id
}

func current(t *testing.T, w *ecs.World, id ecs.EntityID, key stats.Stat) float64 {
	t.Helper()
	d, ok := StatsOf(w, id).Stat(key)
	require.True(t, ok, "stat %s missing", key)
	return d.Current
}

func makeCombatants(tm *timer.Manager, cbt component.Combat, stamina, defHP float64) (*ecs.World, ecs.EntityID, ecs.EntityID) {
	w := ecs.NewWorld()
	attacker := spawn(w, tm, map[stats.Stat]stats.StatData{
		stats.StatStamina:    bar(100, stamina),
		stats.StatExperience: bar(1000, 0),
	}, cbt)
	defender := spawn(w, tm, map[stats.Stat]stats.StatData{
		stats.StatHealth: bar(defHP, defHP),
	})
	return w, attacker, defender
}

func TestAttackDamageRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cbt := component.Combat{Damage: 5, Spread: 2, StaminaCost: 10, XPPerHit: 1}

	for i := 0; i < 50; i++ {
		tm := timer.NewManager()
		w, attacker, defender := makeCombatants(tm, cbt, 100, 1000)

		res := Attack(w, rng, attacker, defender)
		assert.GreaterOrEqual(t, res.Damage, 5)
		assert.LessOrEqual(t, res.Damage, 7)
		assert.False(t, res.Killed)
		assert.Equal(t, 1000-float64(res.Damage), current(t, w, defender, stats.StatHealth))
		assert.True(t, StatsOf(w, defender).Animating(stats.StatHealth), "damage animates")

		st, _ := StatsOf(w, attacker).Stat(stats.StatStamina)
		assert.Equal(t, 90.0, st.Current)
		assert.Equal(t, 90.0, st.Displayed, "stamina cost is not animated")
		assert.Equal(t, 1.0, res.Experience)
	}
}

func TestAttackExhausted(t *testing.T) {
	tm := timer.NewManager()
	w, attacker, defender := makeCombatants(tm, component.Combat{Damage: 5, StaminaCost: 10}, 5, 100)

	res := Attack(w, rand.New(rand.NewSource(1)), attacker, defender)
	assert.Equal(t, AttackResult{Exhausted: true}, res)
	assert.Equal(t, 5.0, current(t, w, attacker, stats.StatStamina))
	assert.Equal(t, 100.0, current(t, w, defender, stats.StatHealth))
}

func TestAttackKillsDefender(t *testing.T) {
	tm := timer.NewManager()
	cbt := component.Combat{Damage: 10, XPPerHit: 2, XPPerKill: 50}
	w, attacker, defender := makeCombatants(tm, cbt, 100, 3)

	res := Attack(w, rand.New(rand.NewSource(1)), attacker, defender)
	require.True(t, res.Killed)
	assert.Equal(t, 3, res.Damage, "damage is capped by the remaining health")
	assert.Equal(t, 52.0, res.Experience)
	assert.Equal(t, 52.0, current(t, w, attacker, stats.StatExperience))
	assert.True(t, w.Alive(defender), "defeated actors stay in the world")

	again := Attack(w, rand.New(rand.NewSource(1)), attacker, defender)
	assert.Equal(t, AttackResult{Killed: true}, again, "a defender at minimum takes nothing")
}

func TestAttackMissingComponents(t *testing.T) {
	tm := timer.NewManager()
	w := ecs.NewWorld()
	attacker := w.CreateEntity() // no CCombat
	defender := spawn(w, tm, map[stats.Stat]stats.StatData{stats.StatHealth: bar(10, 10)})

	res := Attack(w, rand.New(rand.NewSource(0)), attacker, defender)
	assert.Equal(t, AttackResult{}, res)
	assert.Equal(t, 10.0, current(t, w, defender, stats.StatHealth))
}

func TestAttackWithoutAttackerStats(t *testing.T) {
	tm := timer.NewManager()
	w := ecs.NewWorld()
	attacker := w.CreateEntity()
	w.Add(attacker, component.Combat{Damage: 4, StaminaCost: 10, XPPerHit: 5})
	defender := spawn(w, tm, map[stats.Stat]stats.StatData{stats.StatHealth: bar(10, 10)})

	res := Attack(w, rand.New(rand.NewSource(0)), attacker, defender)
	assert.Equal(t, 4, res.Damage)
	assert.Zero(t, res.Experience)
}

func TestAttackPausesDefenderRegen(t *testing.T) {
	tm := timer.NewManager()
	w := ecs.NewWorld()
	hp := bar(100, 100)
	hp.HasRegeneration = true
	hp.RegenInterval = 100 * time.Millisecond
	defender := spawn(w, tm, map[stats.Stat]stats.StatData{stats.StatHealth: hp})
	attacker := w.CreateEntity()
	w.Add(attacker, component.Combat{Damage: 20})

	sc := StatsOf(w, defender)
	require.True(t, sc.RegenActive(stats.StatHealth))
	Attack(w, rand.New(rand.NewSource(0)), attacker, defender)
	assert.False(t, sc.RegenActive(stats.StatHealth))

	for i := 0; i < 200 && sc.Animating(stats.StatHealth); i++ {
		tm.Advance(10 * time.Millisecond)
	}
	assert.True(t, sc.RegenActive(stats.StatHealth), "regen resumes once the trail settles")
}
