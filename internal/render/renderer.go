package render

import (
	"fmt"
	"sort"

	"statbars/internal/component"
	"statbars/internal/ecs"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	labelCols   = 14 // icon, gap and stat name
	valueCols   = 11 // "1000/1000" plus padding
	minBarWidth = 10
	maxBarWidth = 40
	hudRows     = 5
)

// Renderer draws every actor's statistics onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// BarWidth is how many columns a bar gets on the current screen.
func (r *Renderer) BarWidth() int {
	w, _ := r.screen.Size()
	return min(max(w-2-labelCols-valueCols, minBarWidth), maxBarWidth)
}

// DrawFrame renders every actor with Renderable and Statistics, then the HUD.
func (r *Renderer) DrawFrame(w *ecs.World, bars map[ecs.EntityID]BarSet, messages []string) {
	r.screen.Clear()
	r.drawText(0, 0, "statbars", tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	y := 2
	_, screenH := r.screen.Size()
	for _, id := range actorsByOrder(w) {
		if y >= screenH-hudRows {
			break
		}
		y = r.drawActor(w, id, bars[id], y) + 1
	}
	r.DrawHUD(messages)
}

// actorsByOrder returns the drawable actors, highest RenderOrder first.
func actorsByOrder(w *ecs.World) []ecs.EntityID {
	ids := w.Query(component.CRenderable, component.CStatistics)
	order := func(id ecs.EntityID) int {
		return w.Get(id, component.CRenderable).(component.Renderable).RenderOrder
	}
	sort.SliceStable(ids, func(i, j int) bool { return order(ids[i]) > order(ids[j]) })
	return ids
}

// drawActor draws the name line and one line per statistic starting at y,
// returning the first free row.
func (r *Renderer) drawActor(w *ecs.World, id ecs.EntityID, bars BarSet, y int) int {
	rend := w.Get(id, component.CRenderable).(component.Renderable)
	sc := w.Get(id, component.CStatistics).(component.Statistics)

	x := r.putGlyph(0, y, rend.Glyph, tcell.StyleDefault)
	r.drawText(x+1, y, rend.Name, tcell.StyleDefault.Foreground(rend.FGColor).Bold(true))
	y++

	width := r.BarWidth()
	for _, key := range sc.Keys() {
		data, _ := sc.Stat(key)
		pal := PaletteFor(key)
		r.putGlyph(2, y, pal.Icon, tcell.StyleDefault)
		r.drawText(5, y, key.String(), tcell.StyleDefault.Foreground(tcell.ColorSilver))
		if b := bars[key]; b != nil {
			r.DrawBar(2+labelCols, y, width, pal, b)
		}
		value := fmt.Sprintf("%4.0f/%-4.0f", data.Current, data.Max)
		r.drawText(2+labelCols+width+1, y, value, tcell.StyleDefault.Foreground(tcell.ColorWhite))
		y++
	}
	return y
}

// DrawBar draws b as width cells starting at (x, y).
func (r *Renderer) DrawBar(x, y, width int, pal Palette, b *Bar) {
	for i, cell := range b.Cells(width) {
		var style tcell.Style
		ch := '█'
		switch cell {
		case CellFill:
			style = tcell.StyleDefault.Foreground(pal.Fill)
		case CellTrail:
			style = tcell.StyleDefault.Foreground(pal.Trail)
			ch = '▓'
		default:
			style = tcell.StyleDefault.Foreground(pal.Empty)
			ch = '░'
		}
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y) and
// returns the column after it.
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return x
	}
	r.screen.SetContent(x, y, runes[0], runes[1:], style)
	width := max(runewidth.StringWidth(glyph), 1)
	if width == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
	return x + width
}
