package protocol

// SessionState is the runner's lifecycle state as reported over the wire.
type SessionState string

const (
	StateIdle     SessionState = "idle"
	StateRunning  SessionState = "running"
	StatePaused   SessionState = "paused"
	StateFinished SessionState = "finished"
)

// Valid reports whether s is one of the known runner states.
func (s SessionState) Valid() bool {
	switch s {
	case StateIdle, StateRunning, StatePaused, StateFinished:
		return true
	}
	return false
}
