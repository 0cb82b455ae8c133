package voicebridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"token missing sentinel", shared.ErrTokenMissing, ErrorCodeTokenMissing},
		{"wrapped token missing", fmt.Errorf("fetching token: %w", shared.ErrTokenMissing), ErrorCodeTokenMissing},
		{"channel not ready sentinel", shared.ErrChannelNotReady, ErrorCodeChannelNotReady},
		{"token stage", atStage(stageToken, errors.New("status 500")), ErrorCodeTokenRequestFailed},
		{"mic denied", atStage(stageMic, errors.New("microphone access denied")), ErrorCodeMicDenied},
		{"mic permission", atStage(stageMic, errors.New("operation not allowed by permission policy")), ErrorCodeMicDenied},
		{"mic not found", atStage(stageMic, errors.New("failed to find audio recorder")), ErrorCodeMicNotFound},
		{"sdp stage", atStage(stageSDP, errors.New("status 502")), ErrorCodeConnectionFailed},
		{"peer stage", atStage(stagePeer, errors.New("creating offer failed")), ErrorCodeConnectionFailed},
		{"support stage", atStage(stageSupport, shared.ErrNotSupported), ErrorCodeConnectionFailed},
		{"channel stage", atStage(stageChannel, errors.New("stream closed")), ErrorCodeDataChannelError},
		{"bare error", errors.New("something else"), ErrorCodeGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := classify(tt.err)
			require.NotNil(t, det)
			assert.Equal(t, tt.want, det.Code)
			assert.NotEmpty(t, det.Message, "every code needs catalog copy")
		})
	}
}

func TestClassifyPassesThroughErrorDetails(t *testing.T) {
	orig := newErrorDetails(ErrorCodeICEFailed, errors.New("ice disconnected"))
	det := classify(fmt.Errorf("session ended: %w", orig))
	assert.Same(t, orig, det)
}

func TestErrorDetailsUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	det := newErrorDetails(ErrorCodeConnectionFailed, atStage(stageSDP, cause))
	assert.ErrorIs(t, det, cause)
	assert.Contains(t, det.Error(), "connection_failed")
}

func TestErrorCatalogCoversEveryCode(t *testing.T) {
	codes := []ErrorCode{
		ErrorCodeMicDenied, ErrorCodeMicNotFound,
		ErrorCodeTokenRequestFailed, ErrorCodeTokenMissing,
		ErrorCodeConnectionFailed, ErrorCodeICEFailed,
		ErrorCodeDataChannelError, ErrorCodeChannelNotReady,
		ErrorCodeGeneral,
	}
	for _, code := range codes {
		det, ok := errorCatalog[code]
		require.True(t, ok, "missing catalog entry for %s", code)
		assert.NotEmpty(t, det.Message)
		assert.NotEmpty(t, det.Suggestions)
	}
}
