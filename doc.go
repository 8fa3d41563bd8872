// Package bramble is a scriptable 2D game runtime for [Ebitengine].
//
// Bramble hosts Lua scripts (via [gopher-lua]), gives them an
// entity/component scene, runs a per-frame update and render loop, and
// caches decoded image and WAV assets.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the runtime from Ebitengine's game loop:
//
//	cfg, _ := bramble.LoadConfig("mygame")
//	eb := bramble.NewEbitenBackend(cfg.Width, cfg.Height, cfg.AudioSampleRate)
//	rt, err := bramble.NewRuntime("mygame", cfg, eb.Backends())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rt.Close()
//	if err := rt.Start(); err != nil {
//		log.Fatal(err)
//	}
//	bramble.Run(rt, eb, bramble.RunConfig{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
//
// For tests and CI, pass [NewHeadlessBackends] and call [Runtime.Frame]
// directly.
//
// # Scene
//
// Entities are Lua tables with id, name, x, y, z, size_x, size_y, parent,
// children and components fields. Each one is shadowed by a native record
// in the [Scene] so the scheduler can enumerate and order them. Scripts own
// every field; the record only tracks identity.
//
//	local player = ecs.newEntity("player", ecs.root, 100, 50)
//	ecs.addComponent(player, core.Rect2D)
//
// Components are copied from template tables. Their awake(entity, component)
// runs once at attach time and update(entity, component, dt) runs every
// frame. Components with a truthy rendering field run after every logic
// component of the frame, in z order.
//
// # Assets
//
// [Cache] deduplicates loads by canonical path and holds its entries weakly:
// a resource lives as long as a script or Go caller references it. Edits to
// pixels or samples mark the resource dirty and are pushed to the backend on
// the next draw or play.
//
// [Ebitengine]: https://ebitengine.org
// [gopher-lua]: https://github.com/yuin/gopher-lua
package bramble
