package voicebridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// EventType discriminates inbound data-channel payloads. The taxonomy is
// owned by the remote realtime endpoint; the bridge only pattern-matches on
// the subset it reacts to and passes everything else through untouched.
type EventType string

const (
	EventTypeError                       EventType = "error"
	EventTypeSessionCreated              EventType = "session.created"
	EventTypeSessionUpdated              EventType = "session.updated"
	EventTypeInputSpeechStarted          EventType = "input_audio_buffer.speech_started"
	EventTypeInputSpeechStopped          EventType = "input_audio_buffer.speech_stopped"
	EventTypeInputTranscriptionCompleted EventType = "conversation.item.input_audio_transcription.completed"
	EventTypeOutputSpeechStarted         EventType = "output_audio_buffer.speech_started"
	EventTypeOutputSpeechStopped         EventType = "output_audio_buffer.speech_stopped"
	EventTypeResponseCreated             EventType = "response.created"
	EventTypeResponseDone                EventType = "response.done"
	EventTypeAudioDelta                  EventType = "response.audio.delta"
	EventTypeAudioDone                   EventType = "response.audio.done"
	EventTypeAudioTranscriptDelta        EventType = "response.audio_transcript.delta"
	EventTypeAudioTranscriptDone         EventType = "response.audio_transcript.done"
	EventTypeOutputTextDone              EventType = "response.output_text.done"
	EventTypeOutputItemAdded             EventType = "response.output_item.added"
	EventTypeOutputItemDone              EventType = "response.output_item.done"
	EventTypeFunctionCallArgumentsDone   EventType = "response.function_call_arguments.done"
)

// Client event types sent over the data channel.
const (
	ClientEventTypeSessionUpdate          EventType = "session.update"
	ClientEventTypeConversationItemCreate EventType = "conversation.item.create"
	ClientEventTypeResponseCreate         EventType = "response.create"
)

type EventParam interface {
	New(map[string]any) error
	Json() map[string]any
}

// Event is one decoded data-channel payload.
type Event struct {
	EventID string
	Type    EventType
	Param   EventParam
}

// ParseEvent decodes a raw data-channel message. Unrecognized types are not
// an error; they become an EventParamUnknown so callers can still observe
// them.
func ParseEvent(data []byte) (*Event, error) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling event: %w", err)
	}
	e := new(Event)
	if v, ok := raw["event_id"].(string); ok {
		e.EventID = v
		delete(raw, "event_id")
	}
	v, ok := raw["type"].(string)
	if !ok {
		return nil, errors.New("missing type")
	}
	e.Type = EventType(v)
	delete(raw, "type")

	switch e.Type {
	case EventTypeError:
		e.Param = new(EventParamError)
	case EventTypeSessionCreated, EventTypeSessionUpdated:
		e.Param = new(EventParamSession)
	case EventTypeInputSpeechStarted:
		e.Param = new(EventParamSpeechStarted)
	case EventTypeInputSpeechStopped:
		e.Param = new(EventParamSpeechStopped)
	case EventTypeInputTranscriptionCompleted:
		e.Param = new(EventParamInputTranscriptionCompleted)
	case EventTypeOutputSpeechStarted, EventTypeOutputSpeechStopped:
		e.Param = new(EventParamAudioCue)
	case EventTypeResponseCreated, EventTypeResponseDone:
		e.Param = new(EventParamResponse)
	case EventTypeAudioDelta, EventTypeAudioTranscriptDelta:
		e.Param = new(EventParamDelta)
	case EventTypeAudioDone:
		e.Param = new(EventParamAudioDone)
	case EventTypeAudioTranscriptDone:
		e.Param = new(EventParamTranscriptDone)
	case EventTypeOutputTextDone:
		e.Param = new(EventParamTextDone)
	case EventTypeOutputItemAdded, EventTypeOutputItemDone:
		e.Param = new(EventParamOutputItem)
	case EventTypeFunctionCallArgumentsDone:
		e.Param = new(EventParamFunctionCallArgumentsDone)
	default:
		e.Param = new(EventParamUnknown)
	}
	if err := e.Param.New(raw); err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", e.Type, err)
	}
	return e, nil
}

func (e *Event) MarshalJSON() ([]byte, error) {
	if e.Type == "" {
		return nil, errors.New("Type is empty")
	}
	if e.Param == nil {
		return nil, errors.New("Param is nil")
	}
	resp := map[string]any{}
	for k, v := range e.Param.Json() {
		resp[k] = v
	}
	if e.EventID != "" {
		resp["event_id"] = e.EventID
	}
	resp["type"] = e.Type
	return sonic.Marshal(resp)
}

func (e *Event) MarshalYAML() ([]byte, error) {
	if e.Type == "" {
		return nil, errors.New("Type is empty")
	}
	if e.Param == nil {
		return nil, errors.New("Param is nil")
	}
	resp := map[string]any{}
	for k, v := range e.Param.Json() {
		resp[k] = v
	}
	if e.EventID != "" {
		resp["event_id"] = e.EventID
	}
	resp["type"] = e.Type
	return yaml.MarshalWithOptions(resp, yaml.UseJSONMarshaler())
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// EventParamError carries the remote error shape, nested or flattened.
type EventParamError struct {
	ErrType string
	Code    string
	Message string
	Param   any
}

func (p *EventParamError) New(raw map[string]any) error {
	src := raw
	if nested, ok := raw["error"].(map[string]any); ok {
		src = nested
	}
	p.ErrType = stringField(src, "type")
	p.Code = stringField(src, "code")
	p.Message = stringField(src, "message")
	if p.Message == "" {
		return errors.New("missing error.message")
	}
	p.Param = src["param"]
	return nil
}

func (p *EventParamError) Json() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"type":    p.ErrType,
			"code":    p.Code,
			"message": p.Message,
			"param":   p.Param,
		},
	}
}

// EventParamSession holds the raw session object from session.created /
// session.updated; the bridge never interprets it.
type EventParamSession struct {
	Session map[string]any
}

func (p *EventParamSession) New(raw map[string]any) error {
	if v, ok := raw["session"].(map[string]any); ok {
		p.Session = v
		return nil
	}
	return errors.New("missing session")
}

func (p *EventParamSession) Json() map[string]any {
	return map[string]any{"session": p.Session}
}

type EventParamSpeechStarted struct {
	AudioStartMs int
	ItemID       string
}

func (p *EventParamSpeechStarted) New(raw map[string]any) error {
	if v, ok := asInt(raw["audio_start_ms"]); ok {
		p.AudioStartMs = v
	}
	p.ItemID = stringField(raw, "item_id")
	return nil
}

func (p *EventParamSpeechStarted) Json() map[string]any {
	return map[string]any{
		"audio_start_ms": p.AudioStartMs,
		"item_id":        p.ItemID,
	}
}

type EventParamSpeechStopped struct {
	AudioEndMs int
	ItemID     string
}

func (p *EventParamSpeechStopped) New(raw map[string]any) error {
	if v, ok := asInt(raw["audio_end_ms"]); ok {
		p.AudioEndMs = v
	}
	p.ItemID = stringField(raw, "item_id")
	return nil
}

func (p *EventParamSpeechStopped) Json() map[string]any {
	return map[string]any{
		"audio_end_ms": p.AudioEndMs,
		"item_id":      p.ItemID,
	}
}

type EventParamInputTranscriptionCompleted struct {
	ItemID     string
	Transcript string
}

func (p *EventParamInputTranscriptionCompleted) New(raw map[string]any) error {
	p.ItemID = stringField(raw, "item_id")
	p.Transcript = stringField(raw, "transcript")
	return nil
}

func (p *EventParamInputTranscriptionCompleted) Json() map[string]any {
	return map[string]any{
		"item_id":    p.ItemID,
		"transcript": p.Transcript,
	}
}

// EventParamAudioCue covers output_audio_buffer.speech_started/stopped.
type EventParamAudioCue struct {
	ResponseID string
}

func (p *EventParamAudioCue) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	return nil
}

func (p *EventParamAudioCue) Json() map[string]any {
	return map[string]any{"response_id": p.ResponseID}
}

// EventParamResponse covers response.created and response.done.
type EventParamResponse struct {
	ResponseID string
	Status     string
}

func (p *EventParamResponse) New(raw map[string]any) error {
	resp, ok := raw["response"].(map[string]any)
	if !ok {
		return errors.New("missing response")
	}
	p.ResponseID = stringField(resp, "id")
	p.Status = stringField(resp, "status")
	return nil
}

func (p *EventParamResponse) Json() map[string]any {
	return map[string]any{
		"response": map[string]any{
			"id":     p.ResponseID,
			"status": p.Status,
		},
	}
}

// EventParamDelta covers response.audio.delta and
// response.audio_transcript.delta.
type EventParamDelta struct {
	ResponseID string
	ItemID     string
	Delta      string
}

func (p *EventParamDelta) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	p.ItemID = stringField(raw, "item_id")
	p.Delta = stringField(raw, "delta")
	return nil
}

func (p *EventParamDelta) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item_id":     p.ItemID,
		"delta":       p.Delta,
	}
}

type EventParamAudioDone struct {
	ResponseID string
	ItemID     string
}

func (p *EventParamAudioDone) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	p.ItemID = stringField(raw, "item_id")
	return nil
}

func (p *EventParamAudioDone) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item_id":     p.ItemID,
	}
}

type EventParamTranscriptDone struct {
	ResponseID string
	ItemID     string
	Transcript string
}

func (p *EventParamTranscriptDone) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	p.ItemID = stringField(raw, "item_id")
	p.Transcript = stringField(raw, "transcript")
	return nil
}

func (p *EventParamTranscriptDone) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item_id":     p.ItemID,
		"transcript":  p.Transcript,
	}
}

// EventParamTextDone carries the final text of a text-modality response
// item, the only assistant output a headless websocket session produces.
type EventParamTextDone struct {
	ResponseID string
	ItemID     string
	Text       string
}

func (p *EventParamTextDone) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	p.ItemID = stringField(raw, "item_id")
	p.Text = stringField(raw, "text")
	return nil
}

func (p *EventParamTextDone) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item_id":     p.ItemID,
		"text":        p.Text,
	}
}

// EventParamOutputItem covers response.output_item.added/done. The item
// shape varies by item type, so it stays a raw map with typed accessors.
type EventParamOutputItem struct {
	ResponseID string
	Item       map[string]any
}

func (p *EventParamOutputItem) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	item, ok := raw["item"].(map[string]any)
	if !ok {
		return errors.New("missing item")
	}
	p.Item = item
	return nil
}

func (p *EventParamOutputItem) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item":        p.Item,
	}
}

func (p *EventParamOutputItem) ItemType() string {
	return stringField(p.Item, "type")
}

// FunctionCall extracts the call fields when the item is a function call.
func (p *EventParamOutputItem) FunctionCall() (callID, name, arguments string, ok bool) {
	if p.ItemType() != "function_call" {
		return "", "", "", false
	}
	return stringField(p.Item, "call_id"), stringField(p.Item, "name"), stringField(p.Item, "arguments"), true
}

type EventParamFunctionCallArgumentsDone struct {
	ResponseID string
	ItemID     string
	CallID     string
	Name       string
	Arguments  string
}

func (p *EventParamFunctionCallArgumentsDone) New(raw map[string]any) error {
	p.ResponseID = stringField(raw, "response_id")
	p.ItemID = stringField(raw, "item_id")
	p.CallID = stringField(raw, "call_id")
	if p.CallID == "" {
		return errors.New("missing call_id")
	}
	p.Name = stringField(raw, "name")
	p.Arguments = stringField(raw, "arguments")
	return nil
}

func (p *EventParamFunctionCallArgumentsDone) Json() map[string]any {
	return map[string]any{
		"response_id": p.ResponseID,
		"item_id":     p.ItemID,
		"call_id":     p.CallID,
		"name":        p.Name,
		"arguments":   p.Arguments,
	}
}

// EventParamUnknown preserves payloads of types the bridge does not handle.
type EventParamUnknown struct {
	Raw map[string]any
}

func (p *EventParamUnknown) New(raw map[string]any) error {
	p.Raw = raw
	return nil
}

func (p *EventParamUnknown) Json() map[string]any {
	return p.Raw
}
