package state

import (
	"errors"
	"fmt"
)

type State int

const (
	NotCreated State = iota
	Stopped
	Paused
	Running
	Sending
	Receiving
)

var ErrInvalidState = errors.New("invalid state")

func (s State) String() string {
	switch s {
	case NotCreated:
		return "NotCreated"
	case Stopped:
		return "Stopped"
	case Paused:
		return "Paused"
	case Running:
		return "Running"
	case Sending:
		return "Sending"
	case Receiving:
		return "Receiving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	NotCreated: {Stopped},
	Stopped:    {Running},
	Running:    {Sending, Receiving, Paused, Stopped},
	Sending:    {Running},
	Receiving:  {Running},
	Paused:     {Running, Stopped},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
