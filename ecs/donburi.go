// Package ecs provides ECS adapters for rig.
package ecs

import (
	"github.com/phanxgames/rig"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for rig scene events.
// Subscribe to this in your ECS systems to receive build errors, update
// errors, state changes and finished animations.
var SceneEventType = events.NewEventType[rig.SceneEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventSink backed by a Donburi world.
// Scene events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) rig.EventSink {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event rig.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}
