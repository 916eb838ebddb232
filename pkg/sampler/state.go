package sampler

// State is the lifecycle state of one case in the sampler.
type State int

const (
	Idle State = iota
	WarmingUp
	Sampling
	Done
	Failed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WarmingUp:
		return "warming_up"
	case Sampling:
		return "sampling"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
