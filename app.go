package main

import (
	"context"
	"log"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/vitrine/pkg/overlay"
	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/script"
)

// App is the Wails backend. It owns the authoritative scene engine and
// the overlay scheduler, and exposes methods to the frontend via bindings.
// The frontend is the reactive layer: it renders the snapshots each frame
// carries and reports edits back through UpdateValue.
type App struct {
	ctx     context.Context
	engine  *scene.Engine
	sched   *overlay.Scheduler
	console *script.Console
}

// NewApp wires the engine, scheduler, and script console together. Engine
// mutations invalidate the scheduler; coalesced invalidations surface to
// the frontend as a "vitrine:invalidate" event so it requests a frame on
// its next animation frame.
func NewApp() *App {
	engine := scene.NewEngine()
	a := &App{
		engine:  engine,
		console: script.NewConsole(engine),
	}
	a.sched = overlay.NewScheduler(engine, overlay.WithKick(a.kick))
	engine.OnChange(a.sched.Invalidate)
	return a
}

// startup is called by Wails on app startup. The context is saved so we
// can emit runtime events later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown tears the overlay pipeline down before the window goes away.
func (a *App) shutdown(ctx context.Context) {
	a.sched.Close()
}

func (a *App) kick() {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "vitrine:invalidate")
	}
}

// Frame runs one scheduler tick and returns the published frame. The
// frontend calls this from its animation-frame handler after an
// invalidate event.
func (a *App) Frame() overlay.Frame {
	return a.sched.Tick()
}

// SetViewport reports the overlay container's pixel size (window resize).
func (a *App) SetViewport(w, h float64) {
	a.sched.SetViewport(w, h)
}

// UpdateValue applies a field edit from the frontend through the value
// sync protocol.
func (a *App) UpdateValue(nodeID, field string, v overlay.Value) error {
	return a.sched.Bridge().ApplyEdit(scene.NodeID(nodeID), field, v)
}

// SelectNode toggles a node's selection state.
func (a *App) SelectNode(nodeID string, selected bool) error {
	return a.engine.Select(scene.NodeID(nodeID), selected)
}

// Pan shifts the camera by (dx, dy) scene units.
func (a *App) Pan(dx, dy float64) {
	a.engine.Pan(dx, dy)
}

// ZoomAt zooms the camera around the screen point (cx, cy).
func (a *App) ZoomAt(factor, cx, cy float64) {
	a.engine.ZoomAt(factor, cx, cy)
}

// RunScript evaluates a batch-edit script against the engine. Script
// errors come back in the result; fatal failures (timeout, panic) are
// logged and reported the same way so the frontend has one error surface.
func (a *App) RunScript(source string) script.Result {
	res, err := a.console.Run(source)
	if err != nil {
		log.Printf("RunScript fatal error: %v", err)
		return script.Result{Errors: []script.Error{{Message: err.Error()}}}
	}
	return res
}
