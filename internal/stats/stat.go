package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownStat is returned by ParseStat for names outside the known set.
var ErrUnknownStat = errors.New("unknown stat")

// Stat keys a statistic inside a Component. The set is open: any value may
// be used as a key, the named ones are just the common bars.
type Stat uint8

const (
	StatNull Stat = iota
	StatHealth
	StatMana
	StatStamina
	StatExperience
)

var statNames = map[Stat]string{
	StatNull:       "null",
	StatHealth:     "health",
	StatMana:       "mana",
	StatStamina:    "stamina",
	StatExperience: "experience",
}

func (s Stat) String() string {
	if name, ok := statNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stat(%d)", uint8(s))
}

// ParseStat maps a case-insensitive name back to its Stat.
func ParseStat(name string) (Stat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range statNames {
		if sn == n {
			return s, nil
		}
	}
	return StatNull, fmt.Errorf("%w: %q", ErrUnknownStat, name)
}

// StatData is the configuration and live state of one statistic.
type StatData struct {
	// HasRegeneration enables the periodic RegenValue tick.
	HasRegeneration bool
	// ReenableRegenDelay is waited before regeneration resumes after it was
	// paused, so a freshly lost chunk does not instantly refill.
	ReenableRegenDelay time.Duration
	// RegenInterval is the time between regeneration ticks.
	RegenInterval time.Duration
	// RegenValue is added on every regeneration tick. May be negative.
	RegenValue float64

	Current   float64
	Min       float64
	Max       float64
	Displayed float64 // value shown by the bar, trails Current while animating

	// MinLerpTime and MaxLerpTime bound how long the trail takes to catch up.
	MinLerpTime time.Duration
	MaxLerpTime time.Duration

	// Runtime state, maintained by the Component.
	IsAnimating bool
	Elapsed     time.Duration
}

// DefaultStatData returns a full 0..100 statistic with the stock lerp and
// regeneration tuning. Regeneration itself is off.
func DefaultStatData() StatData {
	return NewStatData(0, 100)
}

// NewStatData returns a statistic spanning [min, max] that starts full.
func NewStatData(min, max float64) StatData {
	return StatData{
		Min:                min,
		Max:                max,
		Current:            max,
		Displayed:          max,
		MinLerpTime:        500 * time.Millisecond,
		MaxLerpTime:        1500 * time.Millisecond,
		RegenValue:         1,
		RegenInterval:      50 * time.Millisecond,
		ReenableRegenDelay: 200 * time.Millisecond,
	}
}

// Fraction returns value/Max clamped to [0, 1].
func (d StatData) Fraction(value float64) float64 {
	if d.Max <= 0 {
		return 0
	}
	return clamp(value/d.Max, 0, 1)
}

// saturatedBy reports whether applying delta would push past a bound the
// statistic already sits on.
func (d StatData) saturatedBy(delta float64) bool {
	return (d.Current >= d.Max && delta > 0) || (d.Current <= d.Min && delta < 0)
}

// lerpDuration scales the trail time between the lerp bounds by how large
// the gap between Displayed and Current is relative to Max.
func (d StatData) lerpDuration() time.Duration {
	alpha := 1.0
	if d.Max > 0 {
		alpha = clamp(abs(d.Displayed-d.Current)/d.Max, 0, 1)
	}
	lo, hi := d.MinLerpTime.Seconds(), d.MaxLerpTime.Seconds()
	return time.Duration(lerp(lo, hi, alpha) * float64(time.Second))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, alpha float64) float64 { return a + (b-a)*alpha }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
