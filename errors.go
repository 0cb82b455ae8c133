package voicebridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aisha-crm/voice-bridge/shared"
)

// ErrorCode is the fixed classification every surfaced session failure falls
// into. The UI layer keys toasts and help text off these values.
type ErrorCode string

const (
	ErrorCodeMicDenied          ErrorCode = "mic_denied"
	ErrorCodeMicNotFound        ErrorCode = "mic_not_found"
	ErrorCodeTokenRequestFailed ErrorCode = "token_request_failed"
	ErrorCodeTokenMissing       ErrorCode = "token_missing"
	ErrorCodeConnectionFailed   ErrorCode = "connection_failed"
	ErrorCodeICEFailed          ErrorCode = "ice_failed"
	ErrorCodeDataChannelError   ErrorCode = "datachannel_error"
	ErrorCodeChannelNotReady    ErrorCode = "channel_not_ready"
	ErrorCodeGeneral            ErrorCode = "general"
)

// ErrorDetails is the user-facing error shape surfaced in SessionState.
type ErrorDetails struct {
	Code        ErrorCode
	Message     string
	Hint        string
	Suggestions []string
	Cause       error
}

func (e *ErrorDetails) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ErrorDetails) Unwrap() error {
	return e.Cause
}

var errorCatalog = map[ErrorCode]ErrorDetails{
	ErrorCodeMicDenied: {
		Message: "Microphone access was denied.",
		Hint:    "The voice assistant needs microphone permission to hear you.",
		Suggestions: []string{
			"Allow microphone access for this application",
			"Check the operating system privacy settings",
		},
	},
	ErrorCodeMicNotFound: {
		Message: "No microphone was found.",
		Hint:    "A working audio input device is required.",
		Suggestions: []string{
			"Connect a microphone or headset",
			"Check that the device is not disabled",
		},
	},
	ErrorCodeTokenRequestFailed: {
		Message: "Could not obtain a voice session credential.",
		Hint:    "The backend token endpoint did not respond successfully.",
		Suggestions: []string{
			"Check your network connection",
			"Verify you are signed in to the CRM",
		},
	},
	ErrorCodeTokenMissing: {
		Message: "The voice session credential was empty.",
		Hint:    "The backend responded but returned no usable token.",
		Suggestions: []string{
			"Try again in a moment",
			"Contact your administrator if it persists",
		},
	},
	ErrorCodeConnectionFailed: {
		Message: "The voice connection could not be established.",
		Hint:    "The realtime peer connection failed.",
		Suggestions: []string{
			"Check your network connection",
			"Retry the connection",
		},
	},
	ErrorCodeICEFailed: {
		Message: "The voice connection was lost.",
		Hint:    "Network negotiation (ICE) failed.",
		Suggestions: []string{
			"Check firewall or VPN settings",
			"Retry the connection",
		},
	},
	ErrorCodeDataChannelError: {
		Message: "The voice event channel reported an error.",
		Hint:    "Messages to or from the assistant may have been lost.",
		Suggestions: []string{
			"Reconnect the voice session",
		},
	},
	ErrorCodeChannelNotReady: {
		Message: "The voice session is not ready.",
		Hint:    "The event channel is not open yet.",
		Suggestions: []string{
			"Wait for the session to finish connecting",
		},
	},
	ErrorCodeGeneral: {
		Message: "The voice session hit an unexpected error.",
		Hint:    "",
		Suggestions: []string{
			"Retry the connection",
		},
	},
}

func newErrorDetails(code ErrorCode, cause error) *ErrorDetails {
	det := errorCatalog[code]
	det.Code = code
	det.Cause = cause
	return &det
}

// Stages tagged onto low-level failures at their call site so classification
// does not depend on error message text alone.
type errorStage string

const (
	stageSupport errorStage = "support"
	stageToken   errorStage = "token"
	stageMic     errorStage = "mic"
	stageSDP     errorStage = "sdp"
	stagePeer    errorStage = "peer"
	stageChannel errorStage = "channel"
)

type stagedError struct {
	stage errorStage
	err   error
}

func (e *stagedError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stagedError) Unwrap() error {
	return e.err
}

func atStage(stage errorStage, err error) error {
	return &stagedError{stage: stage, err: err}
}

// classify maps a failure to its ErrorCode. Sentinels win over stages; mic
// failures are further split by the driver's error text.
func classify(err error) *ErrorDetails {
	var det *ErrorDetails
	if errors.As(err, &det) {
		return det
	}
	switch {
	case errors.Is(err, shared.ErrTokenMissing):
		return newErrorDetails(ErrorCodeTokenMissing, err)
	case errors.Is(err, shared.ErrChannelNotReady):
		return newErrorDetails(ErrorCodeChannelNotReady, err)
	}
	var staged *stagedError
	if !errors.As(err, &staged) {
		return newErrorDetails(ErrorCodeGeneral, err)
	}
	switch staged.stage {
	case stageToken:
		return newErrorDetails(ErrorCodeTokenRequestFailed, err)
	case stageMic:
		return newErrorDetails(classifyMicError(staged.err), err)
	case stageSDP, stagePeer, stageSupport:
		return newErrorDetails(ErrorCodeConnectionFailed, err)
	case stageChannel:
		return newErrorDetails(ErrorCodeDataChannelError, err)
	}
	return newErrorDetails(ErrorCodeGeneral, err)
}

func classifyMicError(err error) ErrorCode {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "denied") || strings.Contains(msg, "not allowed") || strings.Contains(msg, "permission"):
		return ErrorCodeMicDenied
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no audio") || strings.Contains(msg, "failed to find"):
		return ErrorCodeMicNotFound
	}
	return ErrorCodeMicNotFound
}
