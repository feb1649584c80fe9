package headless

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/statecore/internal/config"
	"github.com/l1jgo/statecore/internal/platform"
)

func testConfig() config.DispatchConfig {
	return config.DispatchConfig{
		TickRate:        time.Millisecond,
		QueueSize:       64,
		MaxTasksPerTick: 4,
	}
}

// start runs a platform on its own goroutine, which becomes its main thread.
func start(t *testing.T, cfg config.DispatchConfig) *Platform {
	t.Helper()
	ready := make(chan *Platform)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p := New(cfg, zaptest.NewLogger(t))
		p.Run(func() { ready <- p })
	}()
	p := <-ready
	t.Cleanup(func() {
		p.Quit()
		<-done
	})
	return p
}

// onMain runs fn on the platform's main thread and waits for it.
func onMain(t *testing.T, p *Platform, fn func()) {
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

func TestDispatchRunsOnMainThread(t *testing.T) {
	p := start(t, testConfig())
	assert.False(t, p.Dispatcher().IsMainThread())

	var onMainThread bool
	onMain(t, p, func() { onMainThread = p.Dispatcher().IsMainThread() })
	assert.True(t, onMainThread)
}

func TestDispatchPreservesOrder(t *testing.T) {
	p := start(t, testConfig())

	var got []int
	for i := 0; i < 20; i++ {
		i := i
		require.NoError(t, p.Dispatcher().Dispatch(func() { got = append(got, i) }))
	}
	onMain(t, p, func() {})

	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestDispatchFromManyGoroutines(t *testing.T) {
	p := start(t, testConfig())

	var (
		wg    sync.WaitGroup
		count int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				for p.Dispatcher().Dispatch(func() { count++ }) == ErrQueueFull {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
	onMain(t, p, func() {})
	assert.Equal(t, 40, count)
}

func TestDispatchQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 2
	p := New(cfg, zaptest.NewLogger(t))

	require.NoError(t, p.Dispatcher().Dispatch(func() {}))
	require.NoError(t, p.Dispatcher().Dispatch(func() {}))
	assert.ErrorIs(t, p.Dispatcher().Dispatch(func() {}), ErrQueueFull)
	assert.Equal(t, 2, p.dispatcher.pending())
}

func TestDrainHonoursBatchLimit(t *testing.T) {
	d := newDispatcher(platform.GoroutineID(), 16)
	var ran int
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(func() { ran++ }))
	}

	n, more := d.drain(2)
	assert.Equal(t, 2, n)
	assert.True(t, more)
	n, more = d.drain(0)
	assert.Equal(t, 3, n)
	assert.False(t, more)
	assert.Equal(t, 5, ran)
}

func TestQueuedTasksRunAtQuit(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = time.Hour
	p := New(cfg, zaptest.NewLogger(t))

	var ran bool
	require.NoError(t, p.Dispatcher().Dispatch(func() { ran = true }))
	p.Quit()
	p.Run(nil)

	assert.True(t, ran)
	assert.ErrorIs(t, p.Dispatcher().Dispatch(func() {}), ErrNotRunning)
}

func TestRunOffMainThreadPanics(t *testing.T) {
	p := New(testConfig(), zaptest.NewLogger(t))
	panicked := make(chan any, 1)
	go func() {
		defer func() { panicked <- recover() }()
		p.Run(nil)
	}()
	assert.NotNil(t, <-panicked)
}

func TestWindowFramesAndClose(t *testing.T) {
	p := start(t, testConfig())

	var (
		w      *Window
		frames = make(chan struct{}, 1)
		closed int
	)
	onMain(t, p, func() {
		pw, err := p.OpenWindow(platform.WindowOptions{Title: "main", Width: 320, Height: 200})
		require.NoError(t, err)
		w = pw.(*Window)
		w.OnFrame(func() {
			w.Present()
			select {
			case frames <- struct{}{}:
			default:
			}
		})
		w.OnClose(func() { closed++ })
	})
	assert.NotEmpty(t, w.ID())
	assert.Equal(t, "main", w.Options().Title)

	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("no frame callback")
	}
	assert.Positive(t, w.Frames())

	require.NoError(t, w.RequestClose())
	onMain(t, p, func() {
		w.Close()
		assert.Empty(t, p.Windows())
	})
	assert.True(t, w.Closed())
	assert.Equal(t, 1, closed)
}

func TestOpenWindowOffMainThreadPanics(t *testing.T) {
	p := start(t, testConfig())
	assert.Panics(t, func() { _, _ = p.OpenWindow(platform.WindowOptions{}) })
}

func TestWindowIDsAreUnique(t *testing.T) {
	p := start(t, testConfig())
	onMain(t, p, func() {
		a, err := p.OpenWindow(platform.WindowOptions{})
		require.NoError(t, err)
		b, err := p.OpenWindow(platform.WindowOptions{})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
		assert.Len(t, p.Windows(), 2)
	})
}
