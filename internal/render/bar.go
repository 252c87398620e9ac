package render

import (
	"math"

	"statbars/internal/stats"
)

// Cell is what one column of a drawn bar shows.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellFill
	CellTrail
)

// Bar is the terminal presentation of one statistic. It only records what
// the stats component pushes; the Renderer reads it back every frame.
type Bar struct {
	Fill  float64
	Left  float64
	Right float64
	Trail bool
}

// SetFillPercent implements stats.Bar.
func (b *Bar) SetFillPercent(p float64) { b.Fill = unit(p) }

// SetEdgeParameter implements stats.Bar.
func (b *Bar) SetEdgeParameter(edge stats.Edge, v float64) {
	if edge == stats.EdgeRight {
		b.Right = unit(v)
		return
	}
	b.Left = unit(v)
}

// SetSecondaryVisible implements stats.Bar.
func (b *Bar) SetSecondaryVisible(visible bool) { b.Trail = visible }

// Span converts the bar into column indices for a bar width cells wide:
// the fill covers [0, fill), the trail covers [lo, hi).
func (b *Bar) Span(width int) (fill, lo, hi int) {
	if width <= 0 {
		return 0, 0, 0
	}
	cols := func(f float64) int { return int(math.Round(f * float64(width))) }
	fill = cols(b.Fill)
	lo, hi = cols(min(b.Left, b.Right)), cols(max(b.Left, b.Right))
	return fill, lo, hi
}

// Cells classifies every column. The trail is drawn over the fill, so a
// loss shows the chunk being removed and a gain shows the chunk being added.
func (b *Bar) Cells(width int) []Cell {
	if width <= 0 {
		return nil
	}
	fill, lo, hi := b.Span(width)
	cells := make([]Cell, width)
	for i := range cells {
		switch {
		case b.Trail && i >= lo && i < hi:
			cells[i] = CellTrail
		case i < fill:
			cells[i] = CellFill
		}
	}
	return cells
}

// BarSet holds one actor's bars by statistic.
type BarSet map[stats.Stat]*Bar

// Bind creates a Bar for every key of sc and binds it. wrap, when non-nil,
// decides what is bound in its place, e.g. a stats.MultiBar around it.
func (bs BarSet) Bind(sc *stats.Component, wrap func(key stats.Stat, b *Bar) stats.Bar) {
	for _, key := range sc.Keys() {
		b := &Bar{}
		bs[key] = b
		if wrap == nil {
			sc.BindBar(key, b)
			continue
		}
		sc.BindBar(key, wrap(key, b))
	}
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}
