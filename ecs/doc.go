// Package ecs provides ECS adapters for sprig's input dispatch.
//
// The primary adapter is [NewDonburiStore], which forwards every event a Gui
// dispatches (pointer, wheel, key and character input) into a [Donburi] world
// as a typed event, tagged with the EntityID of the widget it concerns.
// Subscribe to [InteractionEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	gui.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
