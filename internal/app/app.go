// Package app owns application state: entities and windows live in
// generational slot stores inside one AppContext, are reached through
// typed handles, and change notifications travel through a deferred effect
// queue drained once every nested update has returned.
package app

import (
	"sync"
	"weak"

	"go.uber.org/zap"

	"github.com/l1jgo/statecore/internal/core/effect"
	"github.com/l1jgo/statecore/internal/core/event"
	"github.com/l1jgo/statecore/internal/core/slot"
	"github.com/l1jgo/statecore/internal/platform"
)

// App is the process-wide owner of the AppContext. All state transitions
// happen with mu held.
type App struct {
	mu sync.Mutex
	cx *AppContext
}

// New must be called on the platform's main thread.
func New(p platform.Platform, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{}
	cx := &AppContext{
		this:        weak.Make(app),
		platform:    platform.NewMainThreadOnly(p, p.Dispatcher()),
		dispatcher:  p.Dispatcher(),
		text:        p.TextSystem(),
		quit:        p.Quit,
		log:         log.Named("app"),
		entities:    slot.NewStore[any](),
		windows:     slot.NewStore[*Window](),
		observers:   make(map[EntityID][]handler),
		subscribers: make(map[EntityID][]handler),
		bus:         event.NewBus(),
	}
	cx.unit = EntityID(cx.entities.Insert(struct{}{}))
	app.cx = cx
	return app
}

// Run starts the platform loop on the calling goroutine, which must be the
// main thread, and runs onReady under the lock once the loop is live.
// Returns after Quit.
func (app *App) Run(onReady func(cx *AppContext)) {
	p := app.cx.platform.Borrow()
	app.cx.log.Info("app starting")
	p.Run(func() {
		if onReady != nil {
			app.Update(onReady)
		}
	})
	var flushes uint64
	app.Update(func(cx *AppContext) { flushes = cx.flushes })
	app.cx.log.Info("app stopped", zap.Uint64("flushes", flushes))
}

// Update runs fn with the lock held. Effects raised by fn are flushed
// before Update returns. Safe from any goroutine; must not be called from
// inside another update on the same goroutine.
func (app *App) Update(fn func(cx *AppContext)) {
	app.mu.Lock()
	defer app.mu.Unlock()
	update(app.cx, func() struct{} {
		fn(app.cx)
		return struct{}{}
	})
}

// Quit asks the platform loop to stop. Safe from any goroutine.
func (app *App) Quit() {
	app.cx.Quit()
}

// AppContext is the root container. It is only reachable with the App
// lock held: through App.Update, Run's onReady, or SpawnOnMain.
type AppContext struct {
	this       weak.Pointer[App]
	platform   platform.MainThreadOnly[platform.Platform]
	dispatcher platform.Dispatcher
	text       platform.TextSystem
	quit       func()
	log        *zap.Logger

	entities *slot.Store[any]
	windows  *slot.Store[*Window]
	unit     EntityID

	effects        effect.Queue
	observers      map[EntityID][]handler
	subscribers    map[EntityID][]handler
	pendingUpdates int
	flushing       bool
	flushes        uint64

	bus *event.Bus
}

// handler reacts to an effect on the entity it is registered for and
// reports whether it stays registered. ev is nil for notifications.
type handler func(cx *AppContext, ev any) bool

func (cx *AppContext) app() *AppContext { return cx }
func (cx *AppContext) window() *Window  { return nil }

// UnitEntityID identifies the payload-less entity reserved at startup.
func (cx *AppContext) UnitEntityID() EntityID { return cx.unit }

func (cx *AppContext) TextSystem() platform.TextSystem { return cx.text }

func (cx *AppContext) Logger() *zap.Logger { return cx.log }

// Quit asks the platform loop to stop once the current task returns.
// It bypasses the dispatch queue, so a backlog cannot swallow it.
func (cx *AppContext) Quit() {
	cx.quit()
}

// Stats is a snapshot of the runtime's bookkeeping.
type Stats struct {
	Entities       int // excludes the unit entity
	Windows        int
	Observers      int
	Subscribers    int
	PendingEffects int
	Flushes        uint64
}

func (cx *AppContext) Stats() Stats {
	s := Stats{
		Entities:       cx.entities.Len() - 1,
		Windows:        cx.windows.Len(),
		PendingEffects: cx.effects.Len(),
		Flushes:        cx.flushes,
	}
	for _, hs := range cx.observers {
		s.Observers += len(hs)
	}
	for _, hs := range cx.subscribers {
		s.Subscribers += len(hs)
	}
	return s
}

// OnLifecycle subscribes fn to one lifecycle event type (event.EntityCreated,
// event.WindowClosed, ...). Handlers run after the flush that produced
// the event, with the lock held.
func OnLifecycle[Ev any](cx Context, fn func(cx *AppContext, ev Ev)) {
	a := cx.app()
	event.Subscribe(a.bus, func(ev Ev) { fn(a, ev) })
}
