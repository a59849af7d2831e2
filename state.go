package chat

// State is the phase of a streaming turn.
//
//	Idle -> Sending -> Streaming -> Completed
//	           |           |
//	           +-----------+------> Failed
//
// Completed and Failed are resting states: a new turn may start from them
// exactly as from Idle.
type State int

const (
	StateIdle      State = iota // No turn has run yet.
	StateSending                // Request sent, awaiting status and body.
	StateStreaming              // Reading the response body.
	StateCompleted              // Last turn ended normally.
	StateFailed                 // Last turn ended with an error.
)

// Busy reports whether a turn is in flight.
func (s State) Busy() bool {
	return s == StateSending || s == StateStreaming
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
