package shared

import "errors"

var (
	ErrNoLogger              = errors.New("no logger provided")
	ErrNoTokenSource         = errors.New("no token source provided")
	ErrNoToolExecutor        = errors.New("no tool executor provided")
	ErrNoBaseURL             = errors.New("no base URL provided")
	ErrNotSupported          = errors.New("realtime audio is not supported on this host")
	ErrSessionAlreadyRunning = errors.New("session already running")
	ErrChannelNotReady       = errors.New("data channel not ready")
	ErrTokenMissing          = errors.New("token endpoint returned no credential")
)
