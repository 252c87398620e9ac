package component

import "statbars/internal/ecs"

const (
	CTagPlayer ecs.ComponentType = 8
	CTagDummy  ecs.ComponentType = 9
)

// TagPlayer marks the player-controlled actor.
type TagPlayer struct{}

func (TagPlayer) Type() ecs.ComponentType { return CTagPlayer }

// TagDummy marks the training dummy the player fights.
type TagDummy struct{}

func (TagDummy) Type() ecs.ComponentType { return CTagDummy }
