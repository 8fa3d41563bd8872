package bramble

import (
	"time"

	lua "github.com/yuin/gopher-lua"
)

// pendingUpdate is a rendering component queued for the deferred pass.
type pendingUpdate struct {
	id     EntityID
	entity *lua.LTable
	comp   *lua.LTable
	index  int
	fn     *lua.LFunction
}

// Frame advances the scene by dt seconds:
//
//  1. refresh the mouse and window globals and clear to app.bg
//  2. run every system's update(self, dt) in registration order
//  3. walk entities by ascending z, running logic components immediately
//     and queueing rendering components
//  4. run the queued rendering components
//
// Script errors are logged and skipped. Once a script calls die, Frame does
// nothing.
func (r *Runtime) Frame(dt float64) {
	if r.exited {
		return
	}
	var st frameStats

	r.refreshAmbient()
	r.backends.Renderer.Clear(r.background())

	start := time.Now()
	for i, sys := range r.scene.Systems() {
		fn, ok := r.L.GetField(sys, fieldUpdate).(*lua.LFunction)
		if !ok {
			r.log.Debug("system has no update function", "phase", "system", "index", i+1)
			continue
		}
		st.systemCalls++
		if err := r.scene.call(fn, sys, lua.LNumber(dt)); err != nil {
			if r.exited {
				return
			}
			st.errorCount++
			r.log.Error("script error", "phase", "system", "index", i+1, "err", err)
		}
	}
	st.systemTime = time.Since(start)

	start = time.Now()
	order := r.scene.renderOrder()
	st.sortTime = time.Since(start)
	st.entityCount = len(order)

	start = time.Now()
	var pending []pendingUpdate
	for _, id := range order {
		e, ok := r.scene.Entity(id)
		if !ok {
			continue
		}
		for i, comp := range componentList(e) {
			fn, ok := r.L.GetField(comp, fieldUpdate).(*lua.LFunction)
			if !ok {
				r.log.Debug("component has no update function",
					"entity", id, "component", componentLabel(r.L, comp, i))
				continue
			}
			if isRendering(r.L, comp) {
				pending = append(pending, pendingUpdate{id: id, entity: e, comp: comp, index: i, fn: fn})
				continue
			}
			st.updateCalls++
			if !r.invoke("update", pendingUpdate{id: id, entity: e, comp: comp, index: i, fn: fn}, dt, &st) {
				return
			}
		}
	}
	st.immediateTime = time.Since(start)

	start = time.Now()
	for _, p := range pending {
		st.renderCalls++
		if !r.invoke("render", p, dt, &st) {
			return
		}
	}
	st.deferredTime = time.Since(start)

	r.frames++
	r.debugCheckEntityCount(st.entityCount)
	r.debugLog(st)
	if r.afterFrame != nil {
		r.afterFrame(r.frames)
	}
}

// invoke runs one component update. It returns false when the script
// called die and the frame must stop.
func (r *Runtime) invoke(phase string, p pendingUpdate, dt float64, st *frameStats) bool {
	err := r.scene.call(p.fn, p.entity, p.comp, lua.LNumber(dt))
	if err == nil {
		return true
	}
	if r.exited {
		return false
	}
	st.errorCount++
	r.log.Error("script error",
		"phase", phase,
		"entity", p.id,
		"component", componentLabel(r.L, p.comp, p.index),
		"err", err)
	return true
}
