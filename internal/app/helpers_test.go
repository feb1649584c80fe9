package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/statecore/internal/config"
	"github.com/l1jgo/statecore/internal/platform"
	"github.com/l1jgo/statecore/internal/platform/headless"
)

type counter struct {
	n int
}

type label struct {
	text string
}

func testDispatch() config.DispatchConfig {
	return config.DispatchConfig{
		TickRate:        time.Millisecond,
		QueueSize:       256,
		MaxTasksPerTick: 16,
	}
}

// newApp returns an App over a headless platform that is never run. The
// test goroutine is its main thread.
func newApp(t *testing.T) *App {
	t.Helper()
	log := zaptest.NewLogger(t)
	return New(headless.New(testDispatch(), log), log)
}

// runApp starts an App with a live platform loop on its own goroutine.
// wrap, if set, decorates the platform handed to the App.
func runApp(t *testing.T, log *zap.Logger, wrap func(platform.Platform) platform.Platform) (*App, *headless.Platform) {
	t.Helper()
	if log == nil {
		log = zaptest.NewLogger(t)
	}
	type started struct {
		app      *App
		platform *headless.Platform
	}
	ready := make(chan started, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hp := headless.New(testDispatch(), log)
		var p platform.Platform = hp
		if wrap != nil {
			p = wrap(hp)
		}
		a := New(p, log)
		a.Run(func(*AppContext) { ready <- started{app: a, platform: hp} })
	}()
	s := <-ready
	t.Cleanup(func() {
		s.app.Quit()
		<-done
	})
	return s.app, s.platform
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// onMain runs fn on the platform's main thread and waits for it.
func onMain(t *testing.T, p *headless.Platform, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, p.Dispatcher().Dispatch(func() {
		defer close(done)
		fn()
	}))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("main thread task did not run")
	}
}

func newCounter(cx Context, n int) Handle[counter] {
	return Entity(cx, func(*ModelContext[counter]) counter { return counter{n: n} })
}

func readCounter(cx Context, h Handle[counter]) int {
	return UpdateEntity(cx, h, func(c *counter, _ *ModelContext[counter]) int { return c.n })
}
