package stats

// Animating reports whether key's trail is currently catching up.
func (c *Component) Animating(key Stat) bool {
	e, ok := c.entries[key]
	return ok && e.data.IsAnimating
}

// startLerp begins (or restarts) the trail animation from Displayed to
// Current. The near edge jumps to the new value right away; the far edge
// follows on every frame.
func (c *Component) startLerp(key Stat, e *entry) {
	d := &e.data
	e.lerp = lerpState{
		start:    d.Displayed,
		target:   d.Current,
		positive: d.Current >= d.Displayed,
		duration: d.lerpDuration(),
	}
	d.IsAnimating = true
	d.Elapsed = 0

	if e.bar != nil {
		near := EdgeLeft
		if e.lerp.positive {
			near = EdgeRight
		}
		e.bar.SetEdgeParameter(near, d.Fraction(d.Current))
	}

	c.timers.SetFrameTimer(&e.update, func() { c.lerpTick(key) })
	c.logger.Debug("stat animation started",
		"stat", key,
		"from", e.lerp.start,
		"to", e.lerp.target,
		"duration", e.lerp.duration)
}

func (c *Component) lerpTick(key Stat) {
	e, ok := c.entries[key]
	if !ok || !e.data.IsAnimating {
		return
	}
	d := &e.data
	d.Elapsed += c.timers.DeltaTime()

	alpha := 1.0
	if e.lerp.duration > 0 {
		alpha = min(float64(d.Elapsed)/float64(e.lerp.duration), 1)
	}
	d.Displayed = lerp(e.lerp.start, e.lerp.target, alpha)

	if e.bar != nil {
		far := EdgeRight
		if e.lerp.positive {
			far = EdgeLeft
		}
		e.bar.SetEdgeParameter(far, d.Fraction(d.Displayed))
	}
	c.UpdateStat(key)

	// Only show the trail once both edges hold real values.
	if !e.trailShown {
		c.setTrail(e, true)
	}

	if d.Elapsed >= e.lerp.duration {
		c.finishLerp(key, e)
	}
}

func (c *Component) finishLerp(key Stat, e *entry) {
	c.timers.ClearTimer(&e.update)
	d := &e.data
	d.IsAnimating = false
	d.Displayed = d.Current
	d.Elapsed = 0
	e.lerp = lerpState{}

	c.UpdateStat(key)
	c.setTrail(e, false)
	c.logger.Debug("stat animation finished", "stat", key, "value", d.Current)

	if d.HasRegeneration {
		c.RefreshRegenTimer(key)
	}
}
