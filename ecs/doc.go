// Package ecs provides ECS adapters for bramble's scene event system.
//
// The primary adapter is [NewDonburiSink], which publishes bramble scene
// events (entity created, deleted, duplicated, component added) into a
// [Donburi] world as typed events. Subscribe to [SceneEventType] in your ECS
// systems to receive them, or attach a [Mirror] to keep one Donburi entity
// per scene entity.
//
// Usage:
//
//	world := donburi.NewWorld()
//	mirror := ecs.NewMirror(world)
//	rt, err := bramble.NewRuntime(root, cfg, backends,
//		bramble.WithEventSink(ecs.NewDonburiSink(world)))
//	// once per frame:
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
