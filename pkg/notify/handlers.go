package notify

import (
	"fmt"

	"Soundlink/pkg/state"
)

// Handlers are the application callbacks. Nil fields are skipped.
// Payload slices are owned by the handler.
type Handlers struct {
	OnReceived         func(payload []byte) // nil payload when the frame failed to decode
	OnSending          func(payload []byte)
	OnSent             func(payload []byte)
	OnReceiving        func()
	OnStateChanged     func(old, new state.State)
	OnVolumeChanged    func(level float64)
	OnAuthStateChanged func(err error) // nil when approved
	OnError            func(err error)
}

type Kind int

const (
	Received Kind = iota
	Sending
	Sent
	Receiving
	StateChanged
	VolumeChanged
	AuthStateChanged
	Error
	call
)

func (k Kind) String() string {
	switch k {
	case Received:
		return "received"
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	case Receiving:
		return "receiving"
	case StateChanged:
		return "state changed"
	case VolumeChanged:
		return "volume changed"
	case AuthStateChanged:
		return "auth state changed"
	case Error:
		return "error"
	case call:
		return "call"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Event struct {
	Kind     Kind
	Payload  []byte
	Old, New state.State
	Level    float64
	Err      error

	fn func()
}

func (h *Handlers) deliver(ev Event) {
	switch ev.Kind {
	case Received:
		if h.OnReceived != nil {
			h.OnReceived(ev.Payload)
		}
	case Sending:
		if h.OnSending != nil {
			h.OnSending(ev.Payload)
		}
	case Sent:
		if h.OnSent != nil {
			h.OnSent(ev.Payload)
		}
	case Receiving:
		if h.OnReceiving != nil {
			h.OnReceiving()
		}
	case StateChanged:
		if h.OnStateChanged != nil {
			h.OnStateChanged(ev.Old, ev.New)
		}
	case VolumeChanged:
		if h.OnVolumeChanged != nil {
			h.OnVolumeChanged(ev.Level)
		}
	case AuthStateChanged:
		if h.OnAuthStateChanged != nil {
			h.OnAuthStateChanged(ev.Err)
		}
	case Error:
		if h.OnError != nil {
			h.OnError(ev.Err)
		}
	case call:
		ev.fn()
	}
}
