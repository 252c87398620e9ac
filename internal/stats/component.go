// Package stats implements the per-actor statistics component: bounded
// values such as health or mana, an animated trail that lets the displayed
// value catch up with the real one, and periodic regeneration.
//
// A Component never spawns goroutines. All of its work happens inside
// callbacks of the timer.Manager it was built with, so it must be driven
// from the same goroutine that calls its methods.
package stats

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"statbars/internal/timer"
)

// DefaultBeginPlayDelay is how long BeginPlay waits before setting up bars
// and regeneration, leaving room for sibling systems to finish their own
// startup first.
const DefaultBeginPlayDelay = 50 * time.Millisecond

// ModifyResult reports what Modify did.
type ModifyResult uint8

const (
	ModifyNotFound ModifyResult = iota
	ModifySaturated
	ModifyApplied
	ModifyAnimated
)

func (r ModifyResult) String() string {
	switch r {
	case ModifySaturated:
		return "saturated"
	case ModifyApplied:
		return "applied"
	case ModifyAnimated:
		return "animated"
	default:
		return "not found"
	}
}

type lerpState struct {
	start    float64
	target   float64
	positive bool
	duration time.Duration
}

type entry struct {
	data       StatData
	bar        Bar
	lerp       lerpState
	trailShown bool
	regen      timer.Handle
	update     timer.Handle
}

// Component holds the statistics of one actor.
type Component struct {
	timers     *timer.Manager
	logger     *slog.Logger
	beginDelay time.Duration

	entries map[Stat]*entry

	beginHandle timer.Handle
	started     bool
	begun       bool
	onBeginPlay []func()
	onReady     []func()
}

// Option configures a Component.
type Option func(*Component)

// WithLogger sets the logger used for animation and saturation traces.
func WithLogger(l *slog.Logger) Option {
	return func(c *Component) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBeginPlayDelay overrides DefaultBeginPlayDelay. Zero or less begins
// synchronously inside BeginPlay.
func WithBeginPlayDelay(d time.Duration) Option {
	return func(c *Component) { c.beginDelay = d }
}

// WithStat seeds a statistic before play begins.
func WithStat(key Stat, data StatData) Option {
	return func(c *Component) { c.SetStat(key, data) }
}

// New creates a Component scheduled on timers.
func New(timers *timer.Manager, opts ...Option) *Component {
	c := &Component{
		timers:     timers,
		logger:     slog.Default(),
		beginDelay: DefaultBeginPlayDelay,
		entries:    make(map[Stat]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Keys returns the configured statistics in ascending order.
func (c *Component) Keys() []Stat {
	keys := make([]Stat, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Stat returns a copy of the statistic, or false if it is not configured.
func (c *Component) Stat(key Stat) (StatData, bool) {
	e, ok := c.entries[key]
	if !ok {
		return StatData{}, false
	}
	return e.data, true
}

// SetStat inserts or replaces a statistic. Replacing drops any running
// animation of that key; the bound bar is kept. After play has begun a
// Displayed lagging Current is animated toward it, and the regeneration
// timer follows the new HasRegeneration flag once nothing is animating.
func (c *Component) SetStat(key Stat, data StatData) {
	data.IsAnimating = false
	data.Elapsed = 0

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.timers.ClearTimer(&e.update)
	e.lerp = lerpState{}
	e.data = data

	if !c.begun {
		return
	}
	c.refreshBar(e)
	if data.Current != data.Displayed {
		c.startLerp(key, e)
	}
	switch {
	case !data.HasRegeneration || e.data.IsAnimating:
		c.timers.ClearTimer(&e.regen)
	case !c.timers.IsTimerActive(e.regen):
		c.armRegen(key, e, -1)
	}
}

// Modify adds delta to the statistic, clamped to [Min, Max].
//
// A statistic already sitting on the bound delta pushes toward is left
// untouched and its regeneration is stopped. Otherwise an animated change
// starts the trail animation and pauses regeneration until it finishes; a
// plain change snaps Displayed to Current. A NaN delta changes nothing.
func (c *Component) Modify(key Stat, delta float64, animated bool) ModifyResult {
	e, ok := c.entries[key]
	if !ok {
		return ModifyNotFound
	}
	if math.IsNaN(delta) {
		return ModifyApplied
	}
	d := &e.data
	if d.saturatedBy(delta) {
		if c.timers.IsTimerActive(e.regen) {
			c.logger.Debug("stat saturated, regeneration stopped", "stat", key, "value", d.Current)
		}
		c.timers.ClearTimer(&e.regen)
		return ModifySaturated
	}

	if animated {
		c.timers.ClearTimer(&e.regen)
		d.Current = clamp(d.Current+delta, d.Min, d.Max)
		c.startLerp(key, e)
		return ModifyAnimated
	}

	if d.IsAnimating {
		c.finishLerp(key, e)
	}
	d.Current = clamp(d.Current+delta, d.Min, d.Max)
	d.Displayed = d.Current
	c.UpdateStat(key)
	return ModifyApplied
}

// UpdateStat pushes the displayed fill of key to its bar.
func (c *Component) UpdateStat(key Stat) {
	e, ok := c.entries[key]
	if !ok || e.bar == nil {
		return
	}
	e.bar.SetFillPercent(e.data.Fraction(e.data.Displayed))
}

// Percent returns the displayed fill of key in [0, 1].
func (c *Component) Percent(key Stat) float64 {
	e, ok := c.entries[key]
	if !ok {
		return 0
	}
	return e.data.Fraction(e.data.Displayed)
}

// BindBar attaches the bar presenting key. Unknown keys and nil bars are
// ignored. A bar bound after play began is brought up to date at once.
func (c *Component) BindBar(key Stat, bar Bar) {
	e, ok := c.entries[key]
	if !ok || bar == nil {
		return
	}
	e.bar = bar
	if c.begun {
		c.refreshBar(e)
	}
}

// RefreshBars re-pushes every bound bar, e.g. after the bars were recreated.
func (c *Component) RefreshBars() {
	for _, key := range c.Keys() {
		c.refreshBar(c.entries[key])
	}
}

func (c *Component) refreshBar(e *entry) {
	if e.bar == nil {
		return
	}
	d := e.data
	e.bar.SetFillPercent(d.Fraction(d.Displayed))
	v := d.Fraction(d.Current)
	e.bar.SetEdgeParameter(EdgeLeft, v)
	e.bar.SetEdgeParameter(EdgeRight, v)
	c.setTrail(e, d.Current != d.Displayed)
}

func (c *Component) setTrail(e *entry, visible bool) {
	e.trailShown = visible
	if e.bar != nil {
		e.bar.SetSecondaryVisible(visible)
	}
}

// OnBeginPlay registers fn to run when the begin delay elapses, before bars
// are refreshed and regeneration is armed. It is the place to BindBar.
// Registering after play began runs fn immediately.
func (c *Component) OnBeginPlay(fn func()) {
	if c.begun {
		fn()
		return
	}
	c.onBeginPlay = append(c.onBeginPlay, fn)
}

// OnReady registers fn to run once setup has completed.
// Registering after that runs fn immediately.
func (c *Component) OnReady(fn func()) {
	if c.begun {
		fn()
		return
	}
	c.onReady = append(c.onReady, fn)
}

// BeginPlay schedules setup after the begin delay. Later calls are no-ops.
func (c *Component) BeginPlay() {
	if c.started {
		return
	}
	c.started = true
	if c.beginDelay <= 0 {
		c.beginPlay()
		return
	}
	c.timers.SetTimer(&c.beginHandle, c.beginPlay, c.beginDelay, false)
}

// HasBegunPlay reports whether setup has run.
func (c *Component) HasBegunPlay() bool { return c.begun }

func (c *Component) beginPlay() {
	c.begun = true
	for _, fn := range c.onBeginPlay {
		fn()
	}
	c.onBeginPlay = nil
	c.RefreshBars()
	c.setupRegeneration()
	for _, fn := range c.onReady {
		fn()
	}
	c.onReady = nil
	c.logger.Debug("stats component ready", "stats", len(c.entries))
}
