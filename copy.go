package bramble

import lua "github.com/yuin/gopher-lua"

// tableCopier deep-copies Lua tables by value. Each source table is copied
// at most once, so shared sub-tables stay shared in the copy and cycles
// terminate. Metatables, functions and userdata are shared by reference.
type tableCopier struct {
	L     *lua.LState
	seen  map[*lua.LTable]*lua.LTable
	share func(*lua.LTable) bool
}

// newCopier returns a copier for root. Live entity tables other than root
// are referenced, not copied, so components pointing at other entities keep
// pointing at them.
func (s *Scene) newCopier(root *lua.LTable) *tableCopier {
	return &tableCopier{
		L:    s.L,
		seen: make(map[*lua.LTable]*lua.LTable),
		share: func(t *lua.LTable) bool {
			return t != root && s.Contains(t)
		},
	}
}

func (c *tableCopier) copy(src *lua.LTable) *lua.LTable {
	if dst, ok := c.seen[src]; ok {
		return dst
	}
	if c.share != nil && c.share(src) {
		return src
	}
	dst := c.L.NewTable()
	c.seen[src] = dst
	src.ForEach(func(k, v lua.LValue) {
		dst.RawSet(c.value(k), c.value(v))
	})
	dst.Metatable = src.Metatable
	return dst
}

func (c *tableCopier) value(v lua.LValue) lua.LValue {
	if t, ok := v.(*lua.LTable); ok {
		return c.copy(t)
	}
	return v
}
