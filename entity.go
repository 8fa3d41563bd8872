package bramble

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrNotEntity is returned when a table without a valid id is passed where
// an entity is expected.
var ErrNotEntity = errors.New("bramble: table is not an entity")

// maxParentDepth bounds parent-chain walks so a cyclic chain fails instead
// of spinning.
const maxParentDepth = 4096

func (s *Scene) newEntityTable(id EntityID, name string, parent *lua.LTable, x, y float64) *lua.LTable {
	t := s.L.NewTable()
	t.RawSetString(fieldID, lua.LNumber(id))
	t.RawSetString(fieldName, lua.LString(name))
	t.RawSetString(fieldX, lua.LNumber(x))
	t.RawSetString(fieldY, lua.LNumber(y))
	t.RawSetString(fieldZ, lua.LNumber(0))
	t.RawSetString(fieldSizeX, lua.LNumber(defaultEntitySize))
	t.RawSetString(fieldSizeY, lua.LNumber(defaultEntitySize))
	t.RawSetString(fieldComponents, s.L.NewTable())
	t.RawSetString(fieldChildren, s.L.NewTable())
	if parent != nil {
		t.RawSetString(fieldParent, parent)
	}
	return t
}

// linkChild appends child to parent.children.
func linkChild(parent, child *lua.LTable) error {
	children, ok := tableField(parent, fieldChildren)
	if !ok {
		return fmt.Errorf("parent has no %s table", fieldChildren)
	}
	children.Append(child)
	return nil
}

// NewEntity creates an entity named name with local position (x, y). A nil
// parent leaves the entity unattached to the hierarchy.
func (s *Scene) NewEntity(name string, parent *lua.LTable, x, y float64) (*lua.LTable, error) {
	var parentID EntityID
	if parent != nil {
		if _, ok := tableField(parent, fieldChildren); !ok {
			return nil, fmt.Errorf("new entity %q: parent has no %s table", name, fieldChildren)
		}
		parentID, _ = entityID(parent)
	}

	s.guard.enter("NewEntity")
	id := s.nextID
	s.nextID++
	t := s.newEntityTable(id, name, parent, x, y)
	s.records[id] = &entityRecord{id: id, parent: parentID, hasParent: parent != nil, table: t}
	s.guard.exit()

	if parent != nil {
		_ = linkChild(parent, t)
	}
	s.emit(SceneEvent{Type: EventEntityCreated, EntityID: id, ParentID: parentID, Name: name})
	return t, nil
}

// DeleteEntity removes e and all of its descendants from the scene, then
// unlinks e from its parent's children. Deleting an entity that is already
// gone only performs the unlink.
func (s *Scene) DeleteEntity(e *lua.LTable) error {
	id, ok := entityID(e)
	if !ok {
		return ErrNotEntity
	}
	if id == RootID {
		return ErrRootEntity
	}

	// Pre-order walk through the children tables. Tables are visited once
	// even if a script linked them twice.
	var removed []EntityID
	visited := make(map[*lua.LTable]struct{})
	stack := []*lua.LTable{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		if cid, ok := entityID(cur); ok {
			removed = append(removed, cid)
		}
		children, ok := tableField(cur, fieldChildren)
		if !ok {
			continue
		}
		for i := children.Len(); i >= 1; i-- {
			if child, ok := children.RawGetInt(i).(*lua.LTable); ok {
				stack = append(stack, child)
			}
		}
	}

	s.guard.enter("DeleteEntity")
	var dropped []EntityID
	for _, rid := range removed {
		// A record is dropped only if it still belongs to the walked table.
		if rec, ok := s.records[rid]; ok && rid != RootID {
			if _, walked := visited[rec.table]; walked {
				delete(s.records, rid)
				dropped = append(dropped, rid)
			}
		}
	}
	s.guard.exit()

	var parentID EntityID
	if parent, ok := tableField(e, fieldParent); ok {
		parentID, _ = entityID(parent)
		if children, ok := tableField(parent, fieldChildren); ok {
			for i := 1; i <= children.Len(); i++ {
				if children.RawGetInt(i) == e {
					children.Remove(i)
					break
				}
			}
		}
	}

	for _, rid := range dropped {
		ev := SceneEvent{Type: EventEntityDeleted, EntityID: rid}
		if rid == id {
			ev.ParentID = parentID
		}
		s.emit(ev)
	}
	return nil
}

// DuplicateEntity clones src under newParent. The clone gets a fresh id and
// an empty children table; descendants are not duplicated. Every cloned
// component is rebound to the clone and its awake function runs again.
func (s *Scene) DuplicateEntity(src, newParent *lua.LTable) (*lua.LTable, error) {
	srcID, ok := entityID(src)
	if !ok {
		return nil, ErrNotEntity
	}
	var parentID EntityID
	if newParent != nil {
		if _, ok := tableField(newParent, fieldChildren); !ok {
			return nil, fmt.Errorf("duplicate entity %d: parent has no %s table", srcID, fieldChildren)
		}
		parentID, _ = entityID(newParent)
	}

	cp := s.newCopier(src)
	if children, ok := tableField(src, fieldChildren); ok {
		cp.seen[children] = s.L.NewTable()
	}
	clone := cp.copy(src)

	s.guard.enter("DuplicateEntity")
	id := s.nextID
	s.nextID++
	clone.RawSetString(fieldID, lua.LNumber(id))
	if newParent != nil {
		clone.RawSetString(fieldParent, newParent)
	} else {
		clone.RawSetString(fieldParent, lua.LNil)
	}
	if _, ok := tableField(clone, fieldChildren); !ok {
		clone.RawSetString(fieldChildren, s.L.NewTable())
	}
	s.records[id] = &entityRecord{id: id, parent: parentID, hasParent: newParent != nil, table: clone}
	s.guard.exit()

	if newParent != nil {
		_ = linkChild(newParent, clone)
	}

	name, _ := clone.RawGetString(fieldName).(lua.LString)
	s.emit(SceneEvent{Type: EventEntityDuplicated, EntityID: id, ParentID: parentID, SourceID: srcID, Name: string(name)})

	for i, comp := range componentList(clone) {
		comp.RawSetString(fieldEntity, clone)
		awake, ok := s.L.GetField(comp, fieldAwake).(*lua.LFunction)
		if !ok {
			continue
		}
		if err := s.call(awake, clone, comp); err != nil {
			s.log.Error("component awake failed",
				"phase", "duplicate",
				"entity", id,
				"component", componentLabel(s.L, comp, i),
				"err", err)
		}
	}
	return clone, nil
}

// FindFirstChild returns the first immediate child of parent named name.
func FindFirstChild(parent *lua.LTable, name string) *lua.LTable {
	children, ok := tableField(parent, fieldChildren)
	if !ok {
		return nil
	}
	for i := 1; i <= children.Len(); i++ {
		child, ok := children.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		if n, ok := child.RawGetString(fieldName).(lua.LString); ok && string(n) == name {
			return child
		}
	}
	return nil
}

// WorldPosition sums the local positions along the parent chain of e.
func WorldPosition(e *lua.LTable) (x, y float64, err error) {
	cur := e
	for depth := 0; cur != nil; depth++ {
		if depth >= maxParentDepth {
			return 0, 0, fmt.Errorf("parent chain deeper than %d, likely cyclic", maxParentDepth)
		}
		lx, ok := numberField(cur, fieldX)
		if !ok {
			return 0, 0, fmt.Errorf("entity %s: %s is not a number", describeEntity(cur), fieldX)
		}
		ly, ok := numberField(cur, fieldY)
		if !ok {
			return 0, 0, fmt.Errorf("entity %s: %s is not a number", describeEntity(cur), fieldY)
		}
		x += lx
		y += ly
		cur, _ = tableField(cur, fieldParent)
	}
	return x, y, nil
}

// Bounds returns the world-space box of e.
func Bounds(e *lua.LTable) (Rect, error) {
	x, y, err := WorldPosition(e)
	if err != nil {
		return Rect{}, err
	}
	w, ok := numberField(e, fieldSizeX)
	if !ok {
		return Rect{}, fmt.Errorf("entity %s: %s is not a number", describeEntity(e), fieldSizeX)
	}
	h, ok := numberField(e, fieldSizeY)
	if !ok {
		return Rect{}, fmt.Errorf("entity %s: %s is not a number", describeEntity(e), fieldSizeY)
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// Overlaps reports whether any two distinct entities in list have strictly
// overlapping world boxes.
func Overlaps(list []*lua.LTable) (bool, error) {
	boxes := make([]Rect, len(list))
	for i, e := range list {
		b, err := Bounds(e)
		if err != nil {
			return false, err
		}
		boxes[i] = b
	}
	for i := range list {
		for j := range list {
			if list[i] == list[j] {
				continue
			}
			if boxes[i].Overlaps(boxes[j]) {
				return true, nil
			}
		}
	}
	return false, nil
}

func describeEntity(t *lua.LTable) string {
	name, _ := t.RawGetString(fieldName).(lua.LString)
	if id, ok := entityID(t); ok {
		return fmt.Sprintf("%d (%q)", id, string(name))
	}
	return fmt.Sprintf("%q", string(name))
}
