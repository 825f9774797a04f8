package poller

import "fmt"

// State is a position in the poller's lifecycle.
type State uint32

const (
	// StateIdle: no Run in progress.
	StateIdle State = iota
	// StateAwaitingBlock: a Run is waiting for, fetching or delivering
	// the block at the current cursor.
	StateAwaitingBlock
	// StateDone: the last Run reached its limit.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingBlock:
		return "AwaitingBlock"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}
