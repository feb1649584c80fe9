package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/statecore/internal/platform/headless"
)

func TestQuitWithFullQueueStopsLoop(t *testing.T) {
	log := zaptest.NewLogger(t)
	cfg := testDispatch()
	cfg.QueueSize = 1

	ready := make(chan *App, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a := New(headless.New(cfg, log), log)
		a.Run(func(*AppContext) { ready <- a })
	}()
	app := <-ready

	blocked := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, app.cx.dispatcher.Dispatch(func() {
		close(blocked)
		<-release
	}))
	<-blocked
	require.NoError(t, app.cx.dispatcher.Dispatch(func() {}))
	require.ErrorIs(t, app.cx.dispatcher.Dispatch(func() {}), headless.ErrQueueFull)

	app.Quit()
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop still running after Quit")
	}
}
