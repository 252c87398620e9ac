// Package game runs one interactive statbars session: a player, a training
// dummy that hits back, and their animated bars on a tcell screen.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"statbars/internal/component"
	"statbars/internal/config"
	"statbars/internal/ecs"
	"statbars/internal/factory"
	"statbars/internal/feed"
	"statbars/internal/render"
	"statbars/internal/savedata"
	"statbars/internal/stats"
	"statbars/internal/system"
	"statbars/internal/timer"

	"github.com/gdamore/tcell/v2"
)

const (
	maxMessages = 50
	sprintCost  = 25
	studyXP     = 40
	reviveDelay = 2 * time.Second
)

var sessionSeq atomic.Uint64

// SessionLog records what happened during one session.
type SessionLog struct {
	Player      string    `json:"player"`
	Started     time.Time `json:"started"`
	Seconds     float64   `json:"seconds"`
	Attacks     int       `json:"attacks"`
	Kills       int       `json:"kills"`
	Heals       int       `json:"heals"`
	Sprints     int       `json:"sprints"`
	Studies     int       `json:"studies"`
	DamageDealt int       `json:"damage_dealt"`
	DamageTaken int       `json:"damage_taken"`
	Collapses   int       `json:"collapses"`
	Saves       int       `json:"saves"`
}

// Options carries a session's dependencies. Store and Hub are optional.
type Options struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   *savedata.Store
	Hub     *feed.Hub
	Name    string
	Session string // feed ID; empty picks a process-unique one
	Seed    int64  // 0 seeds from the clock
}

// Game is the top-level orchestrator of one session.
type Game struct {
	screen   tcell.Screen
	renderer *render.Renderer
	timers   *timer.Manager
	world    *ecs.World
	rng      *rand.Rand

	cfg    config.Config
	logger *slog.Logger
	store  *savedata.Store
	hub    *feed.Hub

	name     string
	session  string
	playerID ecs.EntityID
	dummyID  ecs.EntityID
	bars     map[ecs.EntityID]render.BarSet
	messages []string

	dummyAttack timer.Handle
	dummyRevive timer.Handle

	runLog SessionLog
	quit   bool
}

// New builds a session on screen. A saved sheet for opts.Name is restored
// when a store is given.
func New(ctx context.Context, screen tcell.Screen, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := opts.Name
	if name == "" {
		name = "player"
	}
	session := opts.Session
	if session == "" {
		session = "s" + strconv.FormatUint(sessionSeq.Add(1), 10)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		screen:   screen,
		renderer: render.NewRenderer(screen),
		timers:   timer.NewManager(),
		world:    ecs.NewWorld(),
		rng:      rand.New(rand.NewSource(seed)),
		cfg:      opts.Config,
		logger:   logger.With("player", name, "session", session),
		store:    opts.Store,
		hub:      opts.Hub,
		name:     name,
		session:  session,
		bars:     make(map[ecs.EntityID]render.BarSet),
		runLog:   SessionLog{Player: name, Started: time.Now()},
	}

	saved := g.loadSheet(ctx)
	deps := factory.Deps{Timers: g.timers, Logger: g.logger, Config: g.cfg}
	var err error
	g.playerID, err = factory.NewPlayer(g.world, deps, name, saved)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	g.dummyID = factory.NewDummy(g.world, deps)

	for _, id := range []ecs.EntityID{g.playerID, g.dummyID} {
		sc := system.StatsOf(g.world, id)
		sc.OnBeginPlay(func() { g.bindBars(id, sc) })
	}
	system.StatsOf(g.world, g.playerID).OnReady(func() {
		g.addMessage("Your bars are live. Hit the dummy!")
	})
	system.BeginPlayAll(g.world)

	if g.cfg.Dummy.AttackInterval > 0 {
		g.timers.SetTimer(&g.dummyAttack, g.dummyStrike, g.cfg.Dummy.AttackInterval, true)
	}
	return g, nil
}

func (g *Game) loadSheet(ctx context.Context) map[stats.Stat]stats.StatData {
	if g.store == nil {
		return nil
	}
	sheet, err := g.store.LoadSheet(ctx, g.name)
	switch {
	case errors.Is(err, savedata.ErrNoSheet):
		return nil
	case err != nil:
		g.logger.Warn("loading saved sheet failed, starting fresh", "err", err)
		return nil
	}
	g.addMessage("Welcome back.")
	return sheet
}

// bindBars attaches a terminal bar, and a feed bar when a hub is set, to
// every statistic of id.
func (g *Game) bindBars(id ecs.EntityID, sc *stats.Component) {
	set := render.BarSet{}
	var wrap func(stats.Stat, *render.Bar) stats.Bar
	if g.hub != nil {
		actor := g.entityName(id)
		wrap = func(key stats.Stat, b *render.Bar) stats.Bar {
			return stats.MultiBar(b, feed.NewBar(g.hub, g.session, actor, key))
		}
	}
	set.Bind(sc, wrap)
	g.bars[id] = set
}

// Run drives the session until the player quits, the screen closes or ctx
// is done. The caller owns the screen and finalizes it.
func (g *Game) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer g.finish()

	events := make(chan tcell.Event)
	go func() {
		defer close(events)
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(g.cfg.FrameInterval())
	defer ticker.Stop()
	last := time.Now()
	g.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			g.handleEvent(ctx, ev)
			if g.quit {
				return nil
			}
			g.draw()
		case now := <-ticker.C:
			g.Step(now.Sub(last))
			last = now
			g.draw()
		}
	}
}

func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
	case *tcell.EventKey:
		g.Do(ctx, keyToAction(ev))
	}
}

// Step advances every timer by dt: animations, regeneration, the dummy.
func (g *Game) Step(dt time.Duration) {
	g.timers.Advance(dt)
}

func (g *Game) draw() {
	g.renderer.DrawFrame(g.world, g.bars, g.messages)
}

// Do performs one player action.
func (g *Game) Do(ctx context.Context, a Action) {
	switch a {
	case ActionAttack:
		g.playerAttack()
	case ActionHeal:
		g.playerHeal()
	case ActionSprint:
		g.runLog.Sprints++
		switch system.Sprint(g.world, g.playerID, sprintCost) {
		case stats.ModifySaturated:
			g.addMessage("You are too winded to sprint.")
		default:
			g.addMessage("You sprint in place.")
		}
	case ActionStudy:
		g.runLog.Studies++
		switch system.Study(g.world, g.playerID, studyXP) {
		case stats.ModifySaturated:
			g.addMessage("There is nothing left to learn here.")
		default:
			g.addMessage(fmt.Sprintf("You study the dummy's stance. (+%d XP)", studyXP))
		}
	case ActionRearm:
		n := system.RearmRegeneration(g.world)
		g.addMessage(fmt.Sprintf("Regeneration re-armed on %d bar(s).", n))
	case ActionSave:
		g.save(ctx)
	case ActionForget:
		g.forget(ctx)
	case ActionQuit:
		g.quit = true
	}
}

func (g *Game) playerAttack() {
	res := system.Attack(g.world, g.rng, g.playerID, g.dummyID)
	switch {
	case res.Exhausted:
		g.addMessage("You are too exhausted to swing.")
		return
	case res.Damage == 0 && res.Killed:
		g.addMessage("The dummy is already down.")
		return
	}
	g.runLog.Attacks++
	g.runLog.DamageDealt += res.Damage
	if res.Killed {
		g.runLog.Kills++
		g.addMessage(fmt.Sprintf("You smash the dummy for %d. It falls! (+%.0f XP)", res.Damage, res.Experience))
		g.timers.SetTimer(&g.dummyRevive, g.reviveDummy, reviveDelay, false)
		return
	}
	g.addMessage(fmt.Sprintf("You hit the dummy for %d.", res.Damage))
}

func (g *Game) playerHeal() {
	res := system.Heal(g.world, g.playerID)
	switch {
	case res.Full:
		g.addMessage("You are already at full health.")
	case res.NoMana:
		g.addMessage("Not enough mana.")
	default:
		g.runLog.Heals++
		g.addMessage(fmt.Sprintf("You heal for %.0f.", res.Healed))
	}
}

func (g *Game) reviveDummy() {
	if system.Revive(g.world, g.dummyID) {
		g.addMessage("The dummy creaks back upright.")
	}
}

// dummyStrike is the dummy's attack timer. A downed dummy does not strike.
func (g *Game) dummyStrike() {
	if g.timers.IsTimerActive(g.dummyRevive) {
		return
	}
	res := system.Attack(g.world, g.rng, g.dummyID, g.playerID)
	if res.Damage == 0 {
		return
	}
	g.runLog.DamageTaken += res.Damage
	if res.Killed {
		g.runLog.Collapses++
		g.addMessage(fmt.Sprintf("The dummy hits you for %d. You collapse, then get back up.", res.Damage))
		system.Revive(g.world, g.playerID)
		return
	}
	g.addMessage(fmt.Sprintf("The dummy hits you for %d.", res.Damage))
}

func (g *Game) save(ctx context.Context) {
	if g.store == nil {
		g.addMessage("Saving is disabled.")
		return
	}
	if err := g.store.SaveSheet(ctx, g.name, system.Sheet(g.world, g.playerID)); err != nil {
		g.logger.Error("save failed", "err", err)
		g.addMessage("Save failed.")
		return
	}
	g.runLog.Saves++
	g.addMessage("Saved.")
}

// forget deletes the player's saved sheet. The live bars are untouched.
func (g *Game) forget(ctx context.Context) {
	if g.store == nil {
		g.addMessage("Saving is disabled.")
		return
	}
	if err := g.store.DeleteSheet(ctx, g.name); err != nil {
		g.logger.Error("forget failed", "err", err)
		g.addMessage("Could not forget your save.")
		return
	}
	g.addMessage("Your saved bars are forgotten.")
}

func (g *Game) finish() {
	g.runLog.Seconds = time.Since(g.runLog.Started).Seconds()
	g.timers.ClearTimer(&g.dummyAttack)
	saveSessionLog(g.logger, g.runLog)
	g.logger.Info("session ended",
		"attacks", g.runLog.Attacks,
		"kills", g.runLog.Kills,
		"damage_taken", g.runLog.DamageTaken)
}

func (g *Game) entityName(id ecs.EntityID) string {
	if c := g.world.Get(id, component.CRenderable); c != nil {
		return c.(component.Renderable).Name
	}
	return "?"
}

func (g *Game) addMessage(msg string) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
}

// Session returns the ID this game publishes its bars under.
func (g *Game) Session() string { return g.session }

// Messages returns the message log, oldest first.
func (g *Game) Messages() []string { return g.messages }

// Log returns the session statistics gathered so far.
func (g *Game) Log() SessionLog { return g.runLog }
