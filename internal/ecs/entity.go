package ecs

// EntityID identifies an actor in the world.
type EntityID uint64

// NilEntity is the zero value; no live actor has this ID.
const NilEntity EntityID = 0

// ComponentType is a small integer key used to store and retrieve components.
type ComponentType uint8

// Component is implemented by every value stored in the world.
type Component interface {
	Type() ComponentType
}
