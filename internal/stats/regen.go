package stats

import "time"

// RegenActive reports whether key has a pending regeneration timer.
func (c *Component) RegenActive(key Stat) bool {
	e, ok := c.entries[key]
	return ok && c.timers.IsTimerActive(e.regen)
}

// ClearRegenTimer stops regeneration of key until it is refreshed.
func (c *Component) ClearRegenTimer(key Stat) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.timers.ClearTimer(&e.regen)
}

// RefreshRegenTimer resumes regeneration of key after ReenableRegenDelay.
// It does nothing if key is unknown, has no regeneration, or is already
// regenerating.
func (c *Component) RefreshRegenTimer(key Stat) {
	e, ok := c.entries[key]
	if !ok || !e.data.HasRegeneration || c.timers.IsTimerActive(e.regen) {
		return
	}
	c.armRegen(key, e, e.data.ReenableRegenDelay)
}

func (c *Component) setupRegeneration() {
	for _, key := range c.Keys() {
		e := c.entries[key]
		if e.data.HasRegeneration {
			c.armRegen(key, e, -1)
		}
	}
}

// armRegen starts the repeating regeneration timer. A negative firstDelay
// waits one RegenInterval.
func (c *Component) armRegen(key Stat, e *entry, firstDelay time.Duration) {
	c.timers.SetTimerWithDelay(&e.regen, func() { c.regenTick(key) }, e.data.RegenInterval, true, firstDelay)
}

func (c *Component) regenTick(key Stat) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.Modify(key, e.data.RegenValue, false)
}
