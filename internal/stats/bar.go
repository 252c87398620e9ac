package stats

// Edge selects one side of the dual-edged trail drawn behind a bar.
type Edge uint8

const (
	EdgeLeft Edge = iota
	EdgeRight
)

func (e Edge) String() string {
	if e == EdgeRight {
		return "right"
	}
	return "left"
}

// Bar is whatever presents a statistic: a terminal meter, a network feed,
// a widget. The trail ("secondary element") spans [left, right] and shows
// the value the bar is animating away from or toward.
type Bar interface {
	SetFillPercent(p float64)
	SetEdgeParameter(edge Edge, v float64)
	SetSecondaryVisible(visible bool)
}

// MultiBar returns a Bar that forwards every call to each of bars.
// Nil entries are skipped.
func MultiBar(bars ...Bar) Bar {
	all := make(multiBar, 0, len(bars))
	for _, b := range bars {
		if b == nil {
			continue
		}
		if mb, ok := b.(multiBar); ok {
			all = append(all, mb...)
			continue
		}
		all = append(all, b)
	}
	return all
}

type multiBar []Bar

func (m multiBar) SetFillPercent(p float64) {
	for _, b := range m {
		b.SetFillPercent(p)
	}
}

func (m multiBar) SetEdgeParameter(edge Edge, v float64) {
	for _, b := range m {
		b.SetEdgeParameter(edge, v)
	}
}

func (m multiBar) SetSecondaryVisible(visible bool) {
	for _, b := range m {
		b.SetSecondaryVisible(visible)
	}
}
