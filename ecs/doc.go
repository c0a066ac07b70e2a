// Package ecs provides ECS adapters for rig's scene event system.
//
// The primary adapter is [NewDonburiStore], which bridges rig scene events
// (build and update errors, state changes, finished animations) into a
// [Donburi] world as typed events. Subscribe to [SceneEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	artboard.SetEventSink(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
