package voicebridge

// Phase is the private connection lifecycle position, used for logging and
// telemetry deltas.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseInitializing
	PhaseConnected
	PhaseDisconnected
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInitializing:
		return "initializing"
	case PhaseConnected:
		return "connected"
	case PhaseDisconnected:
		return "disconnected"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// SessionState is the caller-visible snapshot of the bridge.
type SessionState struct {
	IsSupported    bool
	IsInitializing bool
	IsConnected    bool
	IsListening    bool
	IsSpeaking     bool
	ErrorDetails   *ErrorDetails
}
