package headless

import (
	"sync"

	"github.com/l1jgo/statecore/internal/platform"
)

var _ platform.Dispatcher = (*dispatcher)(nil)

// dispatcher is the ingress queue onto the main loop. Producers on any
// goroutine append under mu; the loop drains in batches.
type dispatcher struct {
	main  uint64
	limit int

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
}

func newDispatcher(main uint64, limit int) *dispatcher {
	if limit <= 0 {
		limit = 1024
	}
	return &dispatcher{
		main:  main,
		limit: limit,
		queue: make([]func(), 0, 64),
		wake:  make(chan struct{}, 1),
	}
}

func (d *dispatcher) IsMainThread() bool {
	return platform.GoroutineID() == d.main
}

// Dispatch never blocks, so it is safe to call from the main thread itself.
func (d *dispatcher) Dispatch(task func()) error {
	if task == nil {
		return nil
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrNotRunning
	}
	if len(d.queue) >= d.limit {
		d.mu.Unlock()
		return ErrQueueFull
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()
	d.signal()
	return nil
}

func (d *dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// drain runs up to max queued tasks (0 = all currently queued) in FIFO
// order and reports whether tasks remain.
func (d *dispatcher) drain(max int) (ran int, more bool) {
	d.mu.Lock()
	n := len(d.queue)
	if max > 0 && n > max {
		n = max
	}
	batch := make([]func(), n)
	copy(batch, d.queue[:n])
	rest := copy(d.queue, d.queue[n:])
	clear(d.queue[rest:])
	d.queue = d.queue[:rest]
	more = rest > 0
	d.mu.Unlock()

	for _, task := range batch {
		task()
	}
	return len(batch), more
}

// close refuses further tasks and hands back whatever was still queued.
func (d *dispatcher) close() []func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	rest := d.queue
	d.queue = nil
	return rest
}

func (d *dispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
