package monitor

import "fmt"

// State is the lifecycle state of the dashboard.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	default:
		return "stopped"
	}
}

// transitions lists the allowed state changes.
var transitions = map[State][]State{
	StateStopped:   {StateRunning},
	StateRunning:   {StateSuspended, StateStopped},
	StateSuspended: {StateRunning, StateStopped},
}

// checkTransition reports an error if from cannot move to to.
func checkTransition(from, to State) error {
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state change %s -> %s", from, to)
}
