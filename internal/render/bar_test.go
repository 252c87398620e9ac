package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"statbars/internal/stats"
	"statbars/internal/timer"
)

func cellString(cells []Cell) string {
	out := make([]byte, len(cells))
	for i, c := range cells {
		out[i] = ".#~"[c]
	}
	return string(out)
}

func TestBarCells(t *testing.T) {
	tests := []struct {
		name string
		bar  Bar
		want string
	}{
		{name: "full", bar: Bar{Fill: 1, Left: 1, Right: 1}, want: "####################"},
		{name: "empty", bar: Bar{}, want: "...................."},
		{name: "damage in flight", bar: Bar{Fill: 0.85, Left: 0.7, Right: 0.85, Trail: true}, want: "##############~~~..."},
		{name: "heal in flight", bar: Bar{Fill: 0.5, Left: 0.5, Right: 0.75, Trail: true}, want: "##########~~~~~....."},
		{name: "hidden trail", bar: Bar{Fill: 0.5, Left: 0.5, Right: 0.75}, want: "##########.........."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellString(tt.bar.Cells(20)))
		})
	}
}

func TestBarSpanZeroWidth(t *testing.T) {
	b := Bar{Fill: 1, Left: 0, Right: 1}
	f, lo, hi := b.Span(0)
	assert.Zero(t, f+lo+hi)
	assert.Nil(t, b.Cells(-3))
}

func TestBarClampsInputs(t *testing.T) {
	b := &Bar{}
	b.SetFillPercent(1.7)
	b.SetEdgeParameter(stats.EdgeLeft, -0.2)
	b.SetEdgeParameter(stats.EdgeRight, math.NaN())
	b.SetSecondaryVisible(true)
	assert.Equal(t, Bar{Fill: 1, Left: 0, Right: 0, Trail: true}, *b)
}

func TestBarSetBind(t *testing.T) {
	hp := stats.NewStatData(0, 100)
	hp.Current, hp.Displayed = 40, 40
	sc := stats.New(timer.NewManager(),
		stats.WithBeginPlayDelay(0),
		stats.WithStat(stats.StatHealth, hp),
		stats.WithStat(stats.StatMana, stats.DefaultStatData()),
	)
	sc.BeginPlay()

	bs := BarSet{}
	bs.Bind(sc, nil)
	assert.Len(t, bs, 2)
	assert.InDelta(t, 0.4, bs[stats.StatHealth].Fill, 1e-9)
	assert.InDelta(t, 0.4, bs[stats.StatHealth].Left, 1e-9)
	assert.InDelta(t, 1.0, bs[stats.StatMana].Fill, 1e-9)
	assert.False(t, bs[stats.StatMana].Trail)
}

func TestBarSetBindWraps(t *testing.T) {
	sc := stats.New(timer.NewManager(),
		stats.WithBeginPlayDelay(0),
		stats.WithStat(stats.StatStamina, stats.DefaultStatData()),
	)
	sc.BeginPlay()

	mirror := &Bar{}
	var wrapped []stats.Stat
	bs := BarSet{}
	bs.Bind(sc, func(key stats.Stat, b *Bar) stats.Bar {
		wrapped = append(wrapped, key)
		return stats.MultiBar(b, mirror)
	})
	assert.Equal(t, []stats.Stat{stats.StatStamina}, wrapped)

	sc.Modify(stats.StatStamina, -50, false)
	assert.InDelta(t, 0.5, bs[stats.StatStamina].Fill, 1e-9)
	assert.InDelta(t, 0.5, mirror.Fill, 1e-9)
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, Palettes[stats.StatMana], PaletteFor(stats.StatMana))
	assert.Equal(t, fallbackPalette, PaletteFor(stats.Stat(200)))
}
