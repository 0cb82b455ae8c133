package voicebridge

import (
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3/realtime"
)

// Outbound data-channel payload constructors. Each returns the marshaled
// frame ready for the transport.

func newEventID() string {
	return "evt_" + uuid.NewString()
}

func marshalClientEvent(eventType EventType, fields map[string]any) ([]byte, error) {
	payload := map[string]any{
		"event_id": newEventID(),
		"type":     eventType,
	}
	for k, v := range fields {
		payload[k] = v
	}
	return sonic.Marshal(payload)
}

// userMessageEvent appends a user text message to the remote conversation.
func userMessageEvent(text string) ([]byte, error) {
	return marshalClientEvent(ClientEventTypeConversationItemCreate, map[string]any{
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
}

// functionCallOutputEvent reports a tool result (or error) for call_id back
// into the conversation. output is already-encoded JSON.
func functionCallOutputEvent(callID string, output []byte) ([]byte, error) {
	return marshalClientEvent(ClientEventTypeConversationItemCreate, map[string]any{
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(output),
		},
	})
}

// responseCreateEvent asks the model to generate. Empty instructions leave
// the session defaults in place.
func responseCreateEvent(instructions string) ([]byte, error) {
	fields := map[string]any{}
	if instructions != "" {
		fields["response"] = map[string]any{"instructions": instructions}
	}
	return marshalClientEvent(ClientEventTypeResponseCreate, fields)
}

// sessionUpdateEvent pushes the caller's session configuration once the
// channel opens.
func sessionUpdateEvent(cfg *realtime.RealtimeSessionCreateRequestParam) ([]byte, error) {
	cfgBytes, err := cfg.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var session map[string]any
	if err := sonic.Unmarshal(cfgBytes, &session); err != nil {
		return nil, err
	}
	return marshalClientEvent(ClientEventTypeSessionUpdate, map[string]any{
		"session": session,
	})
}
