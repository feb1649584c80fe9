// Package headless is an offscreen Platform: a main loop driven by a
// ticker and a wake channel, windows that count presented frames, and a
// cell-grid text system.
package headless

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/statecore/internal/config"
	"github.com/l1jgo/statecore/internal/core/system"
	"github.com/l1jgo/statecore/internal/platform"
)

var (
	ErrNotRunning = errors.New("headless: platform has quit")
	ErrQueueFull  = errors.New("headless: dispatch queue full")
)

var _ platform.Platform = (*Platform)(nil)

// Platform runs its loop on the goroutine that called New. That goroutine
// is the main thread for the platform's lifetime.
type Platform struct {
	cfg        config.DispatchConfig
	log        *zap.Logger
	dispatcher *dispatcher
	text       TextSystem
	runner     *system.Runner

	// main thread only
	windows []*Window
	running bool

	quit     chan struct{}
	quitOnce sync.Once
}

func New(cfg config.DispatchConfig, log *zap.Logger) *Platform {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Platform{
		cfg:        cfg,
		log:        log.Named("headless"),
		dispatcher: newDispatcher(platform.GoroutineID(), cfg.QueueSize),
		text:       NewTextSystem(),
		runner:     system.NewRunner(),
		quit:       make(chan struct{}),
	}
	p.runner.Register(system.Func{P: system.PhaseDispatch, Fn: p.dispatchSystem})
	p.runner.Register(system.Func{P: system.PhaseFrame, Fn: p.frameSystem})
	p.runner.Register(system.Func{P: system.PhaseCleanup, Fn: p.cleanupSystem})
	return p
}

func (p *Platform) Dispatcher() platform.Dispatcher { return p.dispatcher }
func (p *Platform) TextSystem() platform.TextSystem { return p.text }

// Run blocks until Quit. Tasks still queued at quit are run once before
// the remaining windows are closed.
func (p *Platform) Run(onReady func()) {
	p.mustBeMain("Run")
	if p.running {
		panic("headless: Run called twice")
	}
	p.running = true
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tickRate := p.cfg.TickRate
	if tickRate <= 0 {
		tickRate = 16 * time.Millisecond
	}
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	p.log.Info("main loop started",
		zap.Duration("tick_rate", tickRate),
		zap.Int("queue_size", p.cfg.QueueSize),
	)
	if onReady != nil {
		onReady()
	}

	for {
		select {
		case <-p.quit:
			p.shutdown()
			return
		case <-p.dispatcher.wake:
			p.runner.Wake()
		case <-ticker.C:
			p.runner.Frame()
		}
	}
}

// Quit stops the loop. Safe from any goroutine and idempotent; it does
// not go through the dispatch queue, so a full queue cannot hold it up.
func (p *Platform) Quit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *Platform) OpenWindow(options platform.WindowOptions) (platform.Window, error) {
	p.mustBeMain("OpenWindow")
	select {
	case <-p.quit:
		return nil, ErrNotRunning
	default:
	}
	w := newWindow(p, options)
	p.windows = append(p.windows, w)
	p.log.Debug("window opened", zap.String("window", w.id), zap.String("title", options.Title))
	return w, nil
}

// Windows returns the open windows in opening order. Main thread only.
func (p *Platform) Windows() []*Window {
	p.mustBeMain("Windows")
	open := make([]*Window, 0, len(p.windows))
	for _, w := range p.windows {
		if !w.Closed() {
			open = append(open, w)
		}
	}
	return open
}

func (p *Platform) dispatchSystem() {
	if _, more := p.dispatcher.drain(p.cfg.MaxTasksPerTick); more {
		p.dispatcher.signal()
	}
}

func (p *Platform) frameSystem() {
	for _, w := range p.windows {
		w.frame()
	}
}

func (p *Platform) cleanupSystem() {
	open := p.windows[:0]
	for _, w := range p.windows {
		if !w.Closed() {
			open = append(open, w)
		}
	}
	clear(p.windows[len(open):])
	p.windows = open
}

func (p *Platform) shutdown() {
	leftover := p.dispatcher.close()
	for _, task := range leftover {
		task()
	}
	for _, w := range p.windows {
		w.Close()
	}
	p.windows = nil
	p.log.Info("main loop stopped",
		zap.Uint64("frames", p.runner.Frames()),
		zap.Uint64("wakes", p.runner.Wakes()),
		zap.Int("drained_tasks", len(leftover)),
	)
}

func (p *Platform) mustBeMain(op string) {
	if !p.dispatcher.IsMainThread() {
		panic(fmt.Sprintf("headless: %s called off the main thread", op))
	}
}
