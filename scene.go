package bramble

import (
	"cmp"
	"log/slog"
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// EntityID identifies an entity in a Scene. Ids are never reused.
type EntityID uint64

// RootID is the id of the scene root.
const RootID EntityID = 0

// Field names shared by entity and component tables.
const (
	fieldID         = "id"
	fieldName       = "name"
	fieldParent     = "parent"
	fieldChildren   = "children"
	fieldComponents = "components"
	fieldEntity     = "entity"
	fieldAwake      = "awake"
	fieldUpdate     = "update"
	fieldRendering  = "rendering"
	fieldX          = "x"
	fieldY          = "y"
	fieldZ          = "z"
	fieldSizeX      = "size_x"
	fieldSizeY      = "size_y"
)

const defaultEntitySize = 32

// entityRecord is the native shadow of an entity table. The table is the
// source of truth for everything scripts can change; the record only carries
// what the scheduler needs to find it again.
type entityRecord struct {
	id        EntityID
	parent    EntityID
	hasParent bool
	table     *lua.LTable
}

// Scene owns the entity arena and the systems list of one Lua state.
type Scene struct {
	L    *lua.LState
	log  *slog.Logger
	sink EventSink

	guard   exclusive
	records map[EntityID]*entityRecord
	systems []*lua.LTable
	root    *lua.LTable
	nextID  EntityID
}

// NewScene creates a scene with its root entity. A nil logger uses
// slog.Default.
func NewScene(L *lua.LState, log *slog.Logger) *Scene {
	if log == nil {
		log = slog.Default()
	}
	s := &Scene{
		L:       L,
		log:     log,
		records: make(map[EntityID]*entityRecord),
		nextID:  RootID + 1,
	}
	s.root = s.newEntityTable(RootID, "root", nil, 0, 0)
	s.records[RootID] = &entityRecord{id: RootID, table: s.root}
	return s
}

// SetEventSink installs the receiver of scene lifecycle events. nil disables
// event delivery.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

func (s *Scene) emit(e SceneEvent) {
	if s.sink != nil {
		s.sink.EmitEvent(e)
	}
}

// Root returns the root entity table.
func (s *Scene) Root() *lua.LTable { return s.root }

// Entity returns the table registered under id.
func (s *Scene) Entity(id EntityID) (*lua.LTable, bool) {
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.table, true
}

// Len returns the number of live entities, root included.
func (s *Scene) Len() int { return len(s.records) }

// IDs returns the live entity ids in ascending order.
func (s *Scene) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Contains reports whether t is a live entity table of this scene.
func (s *Scene) Contains(t *lua.LTable) bool {
	id, ok := entityID(t)
	if !ok {
		return false
	}
	rec, ok := s.records[id]
	return ok && rec.table == t
}

// AddSystem appends a system table. Systems run in registration order.
func (s *Scene) AddSystem(system *lua.LTable) {
	s.guard.enter("AddSystem")
	defer s.guard.exit()
	s.systems = append(s.systems, system)
}

// Systems returns a snapshot of the systems list. Systems added while the
// snapshot is being walked run from the next frame on.
func (s *Scene) Systems() []*lua.LTable {
	return slices.Clone(s.systems)
}

type zEntry struct {
	id EntityID
	z  float64
}

// renderOrder snapshots the live ids sorted by ascending z, ties by id.
func (s *Scene) renderOrder() []EntityID {
	s.guard.enter("renderOrder")
	entries := make([]zEntry, 0, len(s.records))
	for id, rec := range s.records {
		z, _ := numberField(rec.table, fieldZ)
		entries = append(entries, zEntry{id: id, z: z})
	}
	s.guard.exit()

	slices.SortFunc(entries, func(a, b zEntry) int {
		if c := cmp.Compare(a.z, b.z); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	ids := make([]EntityID, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// entityID reads the id field of an entity table.
func entityID(t *lua.LTable) (EntityID, bool) {
	if t == nil {
		return 0, false
	}
	n, ok := t.RawGetString(fieldID).(lua.LNumber)
	if !ok || n < 0 || float64(n) != float64(int64(n)) {
		return 0, false
	}
	return EntityID(n), true
}

func numberField(t *lua.LTable, key string) (float64, bool) {
	n, ok := t.RawGetString(key).(lua.LNumber)
	return float64(n), ok
}

func tableField(t *lua.LTable, key string) (*lua.LTable, bool) {
	v, ok := t.RawGetString(key).(*lua.LTable)
	return v, ok
}
