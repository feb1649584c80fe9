package system

import "fmt"

// Runner holds main-loop systems bucketed by phase. Frame runs every
// phase in order; Wake services only PhaseDispatch, so tasks dispatched
// between frames do not wait for the next one. Systems of one phase run
// in registration order. Main thread only.
type Runner struct {
	phases [phaseCount][]System
	frames uint64
	wakes  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: unknown phase %d", p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Frame runs one full frame.
func (r *Runner) Frame() {
	r.frames++
	for p := range r.phases {
		r.run(Phase(p))
	}
}

// Wake drains dispatched work outside the frame cadence.
func (r *Runner) Wake() {
	r.wakes++
	r.run(PhaseDispatch)
}

func (r *Runner) Frames() uint64 { return r.frames }
func (r *Runner) Wakes() uint64  { return r.wakes }

func (r *Runner) run(p Phase) {
	for _, s := range r.phases[p] {
		s.Run()
	}
}
