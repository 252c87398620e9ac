package feed

import "statbars/internal/stats"

// Bar mirrors one statistic of one actor onto the hub. Every change
// publishes the whole frame.
type Bar struct {
	hub   *Hub
	frame Frame
}

// NewBar creates the feed bar of actor's stat within session.
func NewBar(hub *Hub, session, actor string, stat stats.Stat) *Bar {
	return &Bar{hub: hub, frame: Frame{Session: session, Actor: actor, Stat: stat.String()}}
}

// Frame returns the last published state.
func (b *Bar) Frame() Frame { return b.frame }

// SetFillPercent implements stats.Bar.
func (b *Bar) SetFillPercent(p float64) {
	b.frame.Fill = p
	b.hub.Publish(b.frame)
}

// SetEdgeParameter implements stats.Bar.
func (b *Bar) SetEdgeParameter(edge stats.Edge, v float64) {
	if edge == stats.EdgeRight {
		b.frame.Right = v
	} else {
		b.frame.Left = v
	}
	b.hub.Publish(b.frame)
}

// SetSecondaryVisible implements stats.Bar.
func (b *Bar) SetSecondaryVisible(visible bool) {
	b.frame.Trail = visible
	b.hub.Publish(b.frame)
}
