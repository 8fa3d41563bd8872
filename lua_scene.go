package bramble

import lua "github.com/yuin/gopher-lua"

func (r *Runtime) registerScene() {
	L := r.L

	ecs := L.NewTable()
	L.SetFuncs(ecs, map[string]lua.LGFunction{
		"newEntity":       r.luaNewEntity,
		"deleteEntity":    r.luaDeleteEntity,
		"duplicateEntity": r.luaDuplicateEntity,
		"findFirstChild":  luaFindFirstChild,
		"addComponent":    r.luaAddComponent,
		"addSystem":       r.luaAddSystem,
	})
	ecs.RawSetString("root", r.scene.Root())
	L.SetGlobal("ecs", ecs)

	transform := L.NewTable()
	L.SetFuncs(transform, map[string]lua.LGFunction{
		"getWorldPosition": luaGetWorldPosition,
		"doTheyOverlap":    luaDoTheyOverlap,
	})
	L.SetGlobal("transform", transform)
}

func (r *Runtime) luaNewEntity(L *lua.LState) int {
	name := L.CheckString(1)
	parent := L.OptTable(2, nil)
	x := float64(L.OptNumber(3, 0))
	y := float64(L.OptNumber(4, 0))
	e, err := r.scene.NewEntity(name, parent, x, y)
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(e)
	return 1
}

func (r *Runtime) luaDeleteEntity(L *lua.LState) int {
	if err := r.scene.DeleteEntity(L.CheckTable(1)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (r *Runtime) luaDuplicateEntity(L *lua.LState) int {
	clone, err := r.scene.DuplicateEntity(L.CheckTable(1), L.OptTable(2, nil))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(clone)
	return 1
}

func luaFindFirstChild(L *lua.LState) int {
	if child := FindFirstChild(L.CheckTable(1), L.CheckString(2)); child != nil {
		L.Push(child)
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (r *Runtime) luaAddComponent(L *lua.LState) int {
	comp, err := r.scene.AddComponent(L.CheckTable(1), L.CheckTable(2))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(comp)
	return 1
}

func (r *Runtime) luaAddSystem(L *lua.LState) int {
	r.scene.AddSystem(L.CheckTable(1))
	return 0
}

func luaGetWorldPosition(L *lua.LState) int {
	x, y, err := WorldPosition(L.CheckTable(1))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(x))
	L.Push(lua.LNumber(y))
	return 2
}

func luaDoTheyOverlap(L *lua.LState) int {
	t := L.CheckTable(1)
	// Values are read with pairs semantics, so keyed sets work too.
	var list []*lua.LTable
	t.ForEach(func(_, v lua.LValue) {
		e, ok := v.(*lua.LTable)
		if !ok {
			L.ArgError(1, "set must contain only entity tables")
		}
		list = append(list, e)
	})
	hit, err := Overlaps(list)
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LBool(hit))
	return 1
}
