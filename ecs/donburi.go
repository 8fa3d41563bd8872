package ecs

import (
	"github.com/phanxgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for bramble scene events.
// Subscribe to this in your ECS systems to receive entity and component
// lifecycle changes.
var SceneEventType = events.NewEventType[bramble.SceneEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Scene events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) bramble.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event bramble.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}

// EntityData is the Donburi component a Mirror attaches to each entity.
type EntityData struct {
	ID         bramble.EntityID
	Parent     bramble.EntityID
	Name       string
	Components []string
}

// Entity is the component type holding EntityData.
var Entity = donburi.NewComponentType[EntityData]()

// Mirror keeps one Donburi entity per live scene entity, so Go-side systems
// can query the scene with Donburi queries. It is updated when the world's
// scene events are processed.
type Mirror struct {
	world donburi.World
	byID  map[bramble.EntityID]donburi.Entity
}

// NewMirror subscribes a mirror to SceneEventType on world.
func NewMirror(world donburi.World) *Mirror {
	m := &Mirror{world: world, byID: make(map[bramble.EntityID]donburi.Entity)}
	SceneEventType.Subscribe(world, m.onEvent)
	return m
}

func (m *Mirror) onEvent(w donburi.World, e bramble.SceneEvent) {
	switch e.Type {
	case bramble.EventEntityCreated, bramble.EventEntityDuplicated:
		ent := w.Create(Entity)
		Entity.SetValue(w.Entry(ent), EntityData{ID: e.EntityID, Parent: e.ParentID, Name: e.Name})
		m.byID[e.EntityID] = ent
	case bramble.EventEntityDeleted:
		if ent, ok := m.byID[e.EntityID]; ok {
			w.Remove(ent)
			delete(m.byID, e.EntityID)
		}
	case bramble.EventComponentAdded:
		if ent, ok := m.byID[e.EntityID]; ok && w.Valid(ent) {
			data := Entity.Get(w.Entry(ent))
			data.Components = append(data.Components, e.Component)
		}
	}
}

// Len returns the number of mirrored entities.
func (m *Mirror) Len() int { return len(m.byID) }

// Lookup returns the mirrored data for a scene entity.
func (m *Mirror) Lookup(id bramble.EntityID) (EntityData, bool) {
	ent, ok := m.byID[id]
	if !ok || !m.world.Valid(ent) {
		return EntityData{}, false
	}
	return *Entity.Get(m.world.Entry(ent)), true
}
