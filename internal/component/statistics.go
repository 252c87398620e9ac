package component

import (
	"statbars/internal/ecs"
	"statbars/internal/stats"
)

const CStatistics ecs.ComponentType = 1

// Statistics attaches an actor's stat bars. The pointer is shared, so the
// component is added once and mutated through its methods.
type Statistics struct {
	*stats.Component
}

func (Statistics) Type() ecs.ComponentType { return CStatistics }
