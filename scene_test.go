package bramble

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

func mustEntity(t *testing.T, s *Scene, name string, parent *lua.LTable, x, y float64) *lua.LTable {
	t.Helper()
	e, err := s.NewEntity(name, parent, x, y)
	if err != nil {
		t.Fatalf("NewEntity(%q): %v", name, err)
	}
	return e
}

func setNumber(t *lua.LTable, key string, v float64) {
	t.RawSetString(key, lua.LNumber(v))
}

// --- NewEntity ---

func TestNewEntityDefaults(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "hero", s.Root(), 3, 4)

	if id, _ := entityID(e); id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	for key, want := range map[string]float64{"x": 3, "y": 4, "z": 0, "size_x": 32, "size_y": 32} {
		if got, _ := numberField(e, key); got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
	if p, _ := tableField(e, fieldParent); p != s.Root() {
		t.Error("parent should be the root table")
	}
	if FindFirstChild(s.Root(), "hero") != e {
		t.Error("entity should be linked under its parent")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestNewEntityWithoutParent(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "loose", nil, 0, 0)
	if _, ok := tableField(e, fieldParent); ok {
		t.Error("entity without parent should have no parent field")
	}
	if !s.Contains(e) {
		t.Error("entity should be registered")
	}
}

func TestEntityIDsIncrease(t *testing.T) {
	s := newTestScene(t)
	mustEntity(t, s, "a", nil, 0, 0)
	b := mustEntity(t, s, "b", nil, 0, 0)
	if err := s.DeleteEntity(b); err != nil {
		t.Fatal(err)
	}
	c := mustEntity(t, s, "c", nil, 0, 0)
	if id, _ := entityID(c); id != 3 {
		t.Errorf("id = %d, want 3 (ids are never reused)", id)
	}
}

// --- Transform ---

func TestWorldPositionSumsChain(t *testing.T) {
	s := newTestScene(t)
	a := mustEntity(t, s, "a", nil, 0, 0)
	b := mustEntity(t, s, "b", a, 10, 0)
	c := mustEntity(t, s, "c", b, 0, 5)

	x, y, err := WorldPosition(c)
	if err != nil {
		t.Fatal(err)
	}
	if x != 10 || y != 5 {
		t.Errorf("WorldPosition = (%v, %v), want (10, 5)", x, y)
	}
}

func TestWorldPositionErrors(t *testing.T) {
	s := newTestScene(t)
	a := mustEntity(t, s, "a", nil, 0, 0)
	a.RawSetString(fieldX, lua.LString("left"))
	if _, _, err := WorldPosition(a); err == nil {
		t.Error("non-numeric x should fail")
	}

	b := mustEntity(t, s, "b", nil, 0, 0)
	c := mustEntity(t, s, "c", b, 0, 0)
	b.RawSetString(fieldParent, c)
	if _, _, err := WorldPosition(c); err == nil {
		t.Error("cyclic parent chain should fail")
	}
}

func TestOverlaps(t *testing.T) {
	s := newTestScene(t)
	box := func(x, y float64) *lua.LTable {
		e := mustEntity(t, s, "box", nil, x, y)
		setNumber(e, fieldSizeX, 10)
		setNumber(e, fieldSizeY, 10)
		return e
	}
	a, b, far, touching := box(0, 0), box(5, 5), box(20, 20), box(10, 0)

	cases := []struct {
		name string
		list []*lua.LTable
		want bool
	}{
		{"overlapping", []*lua.LTable{a, b}, true},
		{"apart", []*lua.LTable{a, far}, false},
		{"edge contact", []*lua.LTable{a, touching}, false},
		{"self pair", []*lua.LTable{a, a}, false},
		{"single", []*lua.LTable{a}, false},
	}
	for _, tc := range cases {
		got, err := Overlaps(tc.list)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// --- DeleteEntity ---

func TestDeleteEntityRemovesSubtree(t *testing.T) {
	s := newTestScene(t)
	parent := mustEntity(t, s, "parent", s.Root(), 0, 0)
	mustEntity(t, s, "left", parent, 0, 0)
	right := mustEntity(t, s, "right", parent, 0, 0)
	mustEntity(t, s, "grandchild", right, 0, 0)
	keep := mustEntity(t, s, "keep", s.Root(), 0, 0)

	if err := s.DeleteEntity(parent); err != nil {
		t.Fatal(err)
	}
	keepID, _ := entityID(keep)
	if diff := cmp.Diff([]EntityID{RootID, keepID}, s.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	if FindFirstChild(s.Root(), "parent") != nil {
		t.Error("deleted entity still linked under root")
	}
	if FindFirstChild(s.Root(), "keep") != keep {
		t.Error("sibling should stay linked")
	}
}

func TestDeleteParentWithTwoChildrenRemovesThreeIDs(t *testing.T) {
	s := newTestScene(t)
	parent := mustEntity(t, s, "parent", s.Root(), 0, 0)
	mustEntity(t, s, "a", parent, 0, 0)
	mustEntity(t, s, "b", parent, 0, 0)
	before := s.Len()

	if err := s.DeleteEntity(parent); err != nil {
		t.Fatal(err)
	}
	if removed := before - s.Len(); removed != 3 {
		t.Errorf("removed %d ids, want 3", removed)
	}
}

func TestDeleteEntityRefusals(t *testing.T) {
	s := newTestScene(t)
	if err := s.DeleteEntity(s.Root()); !errors.Is(err, ErrRootEntity) {
		t.Errorf("delete root = %v, want ErrRootEntity", err)
	}
	if err := s.DeleteEntity(s.L.NewTable()); !errors.Is(err, ErrNotEntity) {
		t.Errorf("delete plain table = %v, want ErrNotEntity", err)
	}
}

func TestDeleteEntityTwiceIsHarmless(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "e", s.Root(), 0, 0)
	if err := s.DeleteEntity(e); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntity(e); err != nil {
		t.Errorf("second delete = %v, want nil", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

// --- Components ---

func awakeCounter(L *lua.LState, calls *int) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		*calls++
		comp := L.CheckTable(2)
		comp.RawSetString("woke", lua.LNumber(*calls))
		return 0
	})
}

func TestAddComponentCopiesTemplate(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "e", nil, 0, 0)

	var calls int
	tmpl := s.L.NewTable()
	inner := s.L.NewTable()
	tmpl.RawSetString("state", inner)
	tmpl.RawSetString(fieldAwake, awakeCounter(s.L, &calls))

	comp, err := s.AddComponent(e, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("awake calls = %d, want 1", calls)
	}
	if comp == tmpl {
		t.Error("component should be a copy of the template")
	}
	if st, _ := tableField(comp, "state"); st == inner {
		t.Error("nested tables should be copied")
	}
	if got, _ := tableField(comp, fieldEntity); got != e {
		t.Error("component.entity should be bound to the entity")
	}
	if tmpl.RawGetString("woke") != lua.LNil {
		t.Error("awake must not touch the template")
	}
	if list := componentList(e); len(list) != 1 || list[0] != comp {
		t.Error("component should be attached")
	}
}

func TestAddComponentWithoutAwake(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "e", nil, 0, 0)
	_, err := s.AddComponent(e, s.L.NewTable())
	if !errors.Is(err, ErrNoAwake) {
		t.Errorf("err = %v, want ErrNoAwake", err)
	}
	if n := len(componentList(e)); n != 0 {
		t.Errorf("components = %d, want 0", n)
	}
}

func TestAddComponentAwakeFailureNotAttached(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "e", nil, 0, 0)
	tmpl := s.L.NewTable()
	tmpl.RawSetString(fieldAwake, s.L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("boom")
		return 0
	}))
	_, err := s.AddComponent(e, tmpl)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want awake failure", err)
	}
	if n := len(componentList(e)); n != 0 {
		t.Errorf("components = %d, want 0", n)
	}
}

func TestAddComponentSharesOtherEntities(t *testing.T) {
	s := newTestScene(t)
	e := mustEntity(t, s, "e", nil, 0, 0)
	target := mustEntity(t, s, "target", nil, 0, 0)
	var calls int
	tmpl := s.L.NewTable()
	tmpl.RawSetString("target", target)
	tmpl.RawSetString(fieldAwake, awakeCounter(s.L, &calls))

	comp, err := s.AddComponent(e, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := tableField(comp, "target"); got != target {
		t.Error("references to live entities should not be copied")
	}
}

// --- DuplicateEntity ---

func TestDuplicateEntityIsShallow(t *testing.T) {
	s := newTestScene(t)
	src := mustEntity(t, s, "src", s.Root(), 7, 8)
	mustEntity(t, s, "child", src, 0, 0)

	var calls int
	tmpl := s.L.NewTable()
	tmpl.RawSetString(fieldAwake, awakeCounter(s.L, &calls))
	if _, err := s.AddComponent(src, tmpl); err != nil {
		t.Fatal(err)
	}

	dest := mustEntity(t, s, "dest", s.Root(), 0, 0)
	clone, err := s.DuplicateEntity(src, dest)
	if err != nil {
		t.Fatal(err)
	}

	cloneID, _ := entityID(clone)
	if cloneID != 4 {
		t.Errorf("clone id = %d, want 4", cloneID)
	}
	if p, _ := tableField(clone, fieldParent); p != dest {
		t.Error("clone parent should be the new parent")
	}
	if FindFirstChild(dest, "src") != clone {
		t.Error("clone should be linked under the new parent")
	}
	if children, _ := tableField(clone, fieldChildren); children.Len() != 0 {
		t.Errorf("clone children = %d, want 0", children.Len())
	}
	if x, _ := numberField(clone, fieldX); x != 7 {
		t.Errorf("clone x = %v, want 7", x)
	}
	if calls != 2 {
		t.Errorf("awake calls = %d, want 2", calls)
	}

	comps := componentList(clone)
	if len(comps) != 1 {
		t.Fatalf("clone components = %d, want 1", len(comps))
	}
	if comps[0] == componentList(src)[0] {
		t.Error("clone component should be a copy")
	}
	if got, _ := tableField(comps[0], fieldEntity); got != clone {
		t.Error("clone component should be bound to the clone")
	}
	if got, _ := tableField(componentList(src)[0], fieldEntity); got != src {
		t.Error("source component binding must not change")
	}
	if !s.Contains(clone) || !s.Contains(src) {
		t.Error("both source and clone should be registered")
	}
}

// --- Ordering ---

func TestRenderOrderByZThenID(t *testing.T) {
	s := newTestScene(t)
	a := mustEntity(t, s, "a", nil, 0, 0)
	b := mustEntity(t, s, "b", nil, 0, 0)
	c := mustEntity(t, s, "c", nil, 0, 0)
	setNumber(a, fieldZ, 2)
	setNumber(b, fieldZ, -1)
	setNumber(c, fieldZ, 2)

	want := []EntityID{2, RootID, 1, 3}
	if diff := cmp.Diff(want, s.renderOrder()); diff != "" {
		t.Errorf("renderOrder mismatch (-want +got):\n%s", diff)
	}
}

// --- Guard ---

func TestExclusiveGuardPanicsOnReentry(t *testing.T) {
	var g exclusive
	g.enter("first")
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on re-entry, got none")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "first") {
			t.Errorf("panic message should name the holder, got: %v", r)
		}
	}()
	g.enter("second")
}

func TestExclusiveGuardReleases(t *testing.T) {
	var g exclusive
	g.enter("first")
	g.exit()
	g.enter("second")
	g.exit()
}
