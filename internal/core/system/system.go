package system

// Phase orders the work of one main-loop frame.
type Phase int

const (
	PhaseDispatch Phase = iota // drain main-thread tasks
	PhaseFrame                 // window frame callbacks
	PhaseCleanup               // forget closed windows
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseDispatch:
		return "dispatch"
	case PhaseFrame:
		return "frame"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is one unit of main-loop work.
type System interface {
	Phase() Phase
	Run()
}

// Func adapts a function to System.
type Func struct {
	P  Phase
	Fn func()
}

func (f Func) Phase() Phase { return f.P }
func (f Func) Run()         { f.Fn() }
