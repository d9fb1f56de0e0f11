package search

// State is a step of the per-call pipeline.
type State int

const (
	StateIdle State = iota
	StateDeviceAcquired
	StateBuffersAllocated
	StateDispatched
	StateAwaitingMap
	StateMapped
	StateDecoded
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateDeviceAcquired:   "device-acquired",
	StateBuffersAllocated: "buffers-allocated",
	StateDispatched:       "dispatched",
	StateAwaitingMap:      "awaiting-map",
	StateMapped:           "mapped",
	StateDecoded:          "decoded",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDecoded || s == StateFailed
}
