package bramble

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// AddComponent attaches a copy of template to e. The copy's entity field is
// bound to e and its awake function runs once before it is appended. When
// awake fails the component is not attached.
func (s *Scene) AddComponent(e, template *lua.LTable) (*lua.LTable, error) {
	id, ok := entityID(e)
	if !ok {
		return nil, ErrNotEntity
	}
	components, ok := tableField(e, fieldComponents)
	if !ok {
		return nil, fmt.Errorf("entity %d has no %s table", id, fieldComponents)
	}

	comp := s.newCopier(template).copy(template)
	comp.RawSetString(fieldEntity, e)
	awake, ok := s.L.GetField(comp, fieldAwake).(*lua.LFunction)
	if !ok {
		return nil, ErrNoAwake
	}
	if err := s.call(awake, e, comp); err != nil {
		return nil, fmt.Errorf("awake %s on entity %d: %w", componentLabel(s.L, comp, components.Len()), id, err)
	}
	components.Append(comp)

	s.emit(SceneEvent{Type: EventComponentAdded, EntityID: id, Component: componentName(s.L, comp)})
	return comp, nil
}

// call invokes fn in protected mode, discarding results.
func (s *Scene) call(fn *lua.LFunction, args ...lua.LValue) error {
	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

// componentList snapshots the components of e in attachment order.
func componentList(e *lua.LTable) []*lua.LTable {
	components, ok := tableField(e, fieldComponents)
	if !ok {
		return nil
	}
	n := components.Len()
	list := make([]*lua.LTable, 0, n)
	for i := 1; i <= n; i++ {
		if c, ok := components.RawGetInt(i).(*lua.LTable); ok {
			list = append(list, c)
		}
	}
	return list
}

// isRendering reports whether comp is deferred to the rendering pass. Any
// non-nil rendering field marks it, false included.
func isRendering(L *lua.LState, comp *lua.LTable) bool {
	return L.GetField(comp, fieldRendering) != lua.LNil
}

func componentName(L *lua.LState, comp *lua.LTable) string {
	if n, ok := L.GetField(comp, fieldName).(lua.LString); ok {
		return string(n)
	}
	return ""
}

// componentLabel names a component for diagnostics, falling back to its
// position in the entity's list.
func componentLabel(L *lua.LState, comp *lua.LTable, index int) string {
	if n := componentName(L, comp); n != "" {
		return n
	}
	return fmt.Sprintf("#%d", index+1)
}
