package bramble

// SceneEventType identifies a scene lifecycle event.
type SceneEventType uint8

const (
	EventEntityCreated SceneEventType = iota
	EventEntityDeleted
	EventEntityDuplicated
	EventComponentAdded
)

var sceneEventNames = [...]string{
	EventEntityCreated:    "entity_created",
	EventEntityDeleted:    "entity_deleted",
	EventEntityDuplicated: "entity_duplicated",
	EventComponentAdded:   "component_added",
}

func (t SceneEventType) String() string {
	if int(t) < len(sceneEventNames) {
		return sceneEventNames[t]
	}
	return "unknown"
}

// SceneEvent describes one mutation of the scene. Fields that do not apply
// to the event type are zero.
type SceneEvent struct {
	Type      SceneEventType
	EntityID  EntityID
	ParentID  EntityID
	SourceID  EntityID // duplicated from
	Name      string   // entity name
	Component string   // component name, if the template had one
}

// EventSink receives scene events as they happen. Sinks must not call back
// into the scene.
type EventSink interface {
	EmitEvent(event SceneEvent)
}
