package voicebridge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aisha-crm/voice-bridge/audio"
	"github.com/aisha-crm/voice-bridge/internal/metrics"
	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3/realtime"
	"github.com/pion/webrtc/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultRealtimeBaseURL = "https://api.openai.com/v1"
	defaultModel           = "gpt-realtime"
	defaultGreeting        = "Greet the user warmly, introduce yourself as the CRM voice assistant, and ask how you can help today."
	dataChannelLabel       = "oai"
)

// EventHandler receives every decoded inbound event verbatim.
type EventHandler func(event *Event)

// TokenSource mints the ephemeral credential used to authorize the SDP or
// websocket exchange with the realtime endpoint.
type TokenSource interface {
	EphemeralToken(ctx context.Context, tenantID string) (string, error)
}

// probeSupport is evaluated once per bridge construction.
var probeSupport = audio.Supported

type Config struct {
	Logger   shared.LoggerAdapter
	Tokens   TokenSource
	Tools    ToolExecutor
	TenantID string

	// OnEvent, Session, Greeting, RealtimeBaseURL and Model are optional.
	OnEvent         EventHandler
	Session         *realtime.RealtimeSessionCreateRequestParam
	Greeting        string
	RealtimeBaseURL string
	Model           string
}

type ConnectOptions struct {
	// StartMuted selects push-to-talk mode: the mic stays closed until an
	// explicit UnmuteMic.
	StartMuted bool
	Transport  Transport
}

// Bridge owns the lifecycle of one realtime voice session: credential,
// microphone, peer connection, data channel, tool relay, teardown. At most
// one session is held at a time.
type Bridge struct {
	logger    shared.LoggerAdapter
	tokens    TokenSource
	tools     ToolExecutor
	tenantID  string
	onEvent   EventHandler
	session   *realtime.RealtimeSessionCreateRequestParam
	greeting  string
	baseURL   *url.URL
	model     string
	supported bool

	executed *executedCallSet
	msgs     *messageLog

	mu                sync.Mutex
	phase             Phase
	pc                *webrtc.PeerConnection
	dc                *webrtc.DataChannel
	ws                *wsTransport
	sender            frameSender
	channelOpen       bool
	mic               *audio.Capture
	gate              *audio.Gate
	speaking          bool
	pushToTalk        bool
	unmuteTimer       *time.Timer
	unmuteDelay       time.Duration
	toolTurns         int
	errDetails        *ErrorDetails
	sessionStart      time.Time
	connectStart      time.Time
	pendingResponseAt time.Time
	sessionCtx        context.Context
	sessionStop       context.CancelCauseFunc
}

func New(cfg Config) (*Bridge, error) {
	if cfg.Logger == nil {
		return nil, shared.ErrNoLogger
	}
	if cfg.Tokens == nil {
		return nil, shared.ErrNoTokenSource
	}
	if cfg.Tools == nil {
		return nil, shared.ErrNoToolExecutor
	}
	rawURL := cfg.RealtimeBaseURL
	if rawURL == "" {
		rawURL = defaultRealtimeBaseURL
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing realtime base URL: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	greeting := cfg.Greeting
	if greeting == "" {
		greeting = defaultGreeting
	}
	return &Bridge{
		logger:      cfg.Logger,
		tokens:      cfg.Tokens,
		tools:       cfg.Tools,
		tenantID:    cfg.TenantID,
		onEvent:     cfg.OnEvent,
		session:     cfg.Session,
		greeting:    greeting,
		baseURL:     baseURL,
		model:       model,
		supported:   probeSupport(),
		executed:    newExecutedCallSet(toolCallDedupWindow),
		msgs:        newMessageLog(messageLogCapacity),
		unmuteDelay: micUnmuteDelay,
	}, nil
}

// State returns the caller-visible session snapshot.
func (b *Bridge) State() SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return SessionState{
		IsSupported:    b.supported,
		IsInitializing: b.phase == PhaseInitializing,
		IsConnected:    b.phase == PhaseConnected,
		IsListening:    b.channelOpen,
		IsSpeaking:     b.speaking,
		ErrorDetails:   b.errDetails,
	}
}

// Messages returns the capped assistant transcript log.
func (b *Bridge) Messages() []MessageLogEntry {
	return b.msgs.snapshot()
}

// Connect establishes one realtime session. A second Connect while a session
// is initializing or connected returns shared.ErrSessionAlreadyRunning
// rather than racing two peer connections.
func (b *Bridge) Connect(ctx context.Context, opts ConnectOptions) error {
	if !b.supported && opts.Transport == TransportWebRTC {
		det := classify(atStage(stageSupport, shared.ErrNotSupported))
		b.mu.Lock()
		b.errDetails = det
		b.mu.Unlock()
		return det
	}
	b.mu.Lock()
	if b.phase == PhaseInitializing || b.phase == PhaseConnected {
		b.mu.Unlock()
		return shared.ErrSessionAlreadyRunning
	}
	b.setPhaseLocked(PhaseInitializing)
	b.errDetails = nil
	b.pushToTalk = opts.StartMuted
	b.connectStart = time.Now()
	sessionCtx, stop := context.WithCancelCause(context.Background())
	b.sessionCtx, b.sessionStop = sessionCtx, stop
	b.mu.Unlock()

	metrics.SessionsTotal.Inc()
	b.logger.Info("connecting realtime session",
		zap.String("transport", opts.Transport.String()),
		zap.Bool("startMuted", opts.StartMuted),
	)

	var err error
	switch opts.Transport {
	case TransportWebSocket:
		err = b.connectWebSocket(ctx)
	default:
		err = b.connectWebRTC(ctx, opts)
	}
	if err != nil {
		det := classify(err)
		b.cleanup("connect failed")
		b.mu.Lock()
		b.errDetails = det
		b.setPhaseLocked(PhaseError)
		b.mu.Unlock()
		metrics.Errors.WithLabelValues(string(det.Code)).Inc()
		b.logger.Error("connect failed", err, zap.String("code", string(det.Code)))
		return det
	}
	return nil
}

func (b *Bridge) connectWebRTC(ctx context.Context, opts ConnectOptions) error {
	b.mu.Lock()
	sessionCtx := b.sessionCtx
	b.mu.Unlock()

	token, err := b.tokens.EphemeralToken(ctx, b.tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrTokenMissing) {
			return err
		}
		return atStage(stageToken, err)
	}

	mic, err := audio.NewMicrophoneCapture()
	if err != nil {
		return atStage(stageMic, err)
	}
	gate := audio.NewGate(!opts.StartMuted)

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		mic.Stop()
		return atStage(stagePeer, fmt.Errorf("creating peer connection: %w", err))
	}
	local, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeOpus,
			ClockRate:   48000,
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		},
		"audio",
		"mic",
	)
	if err != nil {
		mic.Stop()
		_ = pc.Close()
		return atStage(stagePeer, fmt.Errorf("creating local audio track: %w", err))
	}
	if _, err := pc.AddTrack(local); err != nil {
		mic.Stop()
		_ = pc.Close()
		return atStage(stagePeer, fmt.Errorf("adding audio track: %w", err))
	}

	connected := make(chan struct{})
	var connectedOnce sync.Once
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		b.logger.Debug("peer connection state changed", zap.String("state", state.String()))
		switch state {
		case webrtc.PeerConnectionStateConnected:
			connectedOnce.Do(func() { close(connected) })
			b.peerConnected()
		case webrtc.PeerConnectionStateFailed:
			b.applyError(newErrorDetails(ErrorCodeConnectionFailed, errors.New("peer connection failed")))
			b.cleanup("peer connection failed")
		case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateClosed:
			b.cleanup("peer connection " + state.String())
		}
	})
	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		if state == webrtc.ICEConnectionStateFailed {
			b.applyError(newErrorDetails(ErrorCodeICEFailed, errors.New("ice connection failed")))
			b.cleanup("ice failed")
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track.Kind() == webrtc.RTPCodecTypeAudio {
			go audio.PlayRemoteTrack(sessionCtx, b.logger, track)
		}
	})

	dc, err := pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		mic.Stop()
		_ = pc.Close()
		return atStage(stageChannel, fmt.Errorf("creating data channel: %w", err))
	}
	chanOpen := make(chan struct{})
	var openOnce sync.Once
	dc.OnOpen(func() {
		b.mu.Lock()
		b.channelOpen = true
		b.mu.Unlock()
		openOnce.Do(func() { close(chanOpen) })
		b.logger.Info("data channel opened")
		b.pushSessionConfig()
	})
	dc.OnClose(func() {
		b.mu.Lock()
		b.channelOpen = false
		b.mu.Unlock()
		b.logger.Info("data channel closed")
	})
	dc.OnError(func(err error) {
		// The peer connection state machine decides whether the session ends.
		b.applyError(newErrorDetails(ErrorCodeDataChannelError, err))
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if !msg.IsString {
			b.logger.Warn("ignoring non-string data channel message")
			return
		}
		b.handleRaw(msg.Data)
	})

	b.mu.Lock()
	b.pc, b.dc, b.mic, b.gate = pc, dc, mic, gate
	b.sender = &dataChannelSender{dc: dc}
	b.mu.Unlock()

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return atStage(stageSDP, fmt.Errorf("creating offer: %w", err))
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return atStage(stageSDP, fmt.Errorf("setting local description: %w", err))
	}
	answer, err := b.exchangeSDP(ctx, token, offer.SDP)
	if err != nil {
		return atStage(stageSDP, err)
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return atStage(stageSDP, fmt.Errorf("setting remote description: %w", err))
	}

	go func() {
		select {
		case <-connected:
			mic.Pump(sessionCtx, b.logger, local, gate)
		case <-sessionCtx.Done():
		}
	}()

	select {
	case <-connected:
	case <-ctx.Done():
		return atStage(stagePeer, ctx.Err())
	case <-sessionCtx.Done():
		return atStage(stagePeer, context.Cause(sessionCtx))
	}
	select {
	case <-chanOpen:
	case <-ctx.Done():
		return atStage(stageChannel, ctx.Err())
	case <-sessionCtx.Done():
		return atStage(stageChannel, context.Cause(sessionCtx))
	}
	return nil
}

func (b *Bridge) connectWebSocket(ctx context.Context) error {
	token, err := b.tokens.EphemeralToken(ctx, b.tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrTokenMissing) {
			return err
		}
		return atStage(stageToken, err)
	}
	endpoint := b.websocketEndpoint()
	ws, err := dialRealtimeWebSocket(ctx, endpoint, token)
	if err != nil {
		return atStage(stagePeer, err)
	}
	b.mu.Lock()
	b.ws = ws
	b.sender = ws
	b.channelOpen = true
	b.mu.Unlock()
	b.peerConnected()
	go ws.readLoop(b.handleRaw, func(err error) {
		b.logger.Info("websocket closed", zap.Error(err))
		b.cleanup("websocket closed")
	})
	b.pushSessionConfig()
	return nil
}

func (b *Bridge) websocketEndpoint() string {
	u := *b.baseURL
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	default:
		u.Scheme = "wss"
	}
	u = *u.JoinPath("realtime")
	q := u.Query()
	q.Set("model", b.model)
	u.RawQuery = q.Encode()
	return u.String()
}

// exchangeSDP posts the local offer to the realtime call endpoint and
// returns the remote answer.
func (b *Bridge) exchangeSDP(ctx context.Context, token, offer string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(b.baseURL.JoinPath("/realtime/calls").String())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.SetContentType("application/sdp")
	req.SetBodyString(offer)

	errC := make(chan error, 1)
	go func() {
		errC <- fasthttp.Do(req, resp)
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errC:
		if err != nil {
			return "", fmt.Errorf("posting SDP offer: %w", err)
		}
	}
	if resp.StatusCode() != fasthttp.StatusOK && resp.StatusCode() != fasthttp.StatusCreated {
		return "", fmt.Errorf("unexpected status code %d from realtime call endpoint: %s", resp.StatusCode(), resp.Body())
	}
	return string(resp.Body()), nil
}

func (b *Bridge) peerConnected() {
	b.mu.Lock()
	if b.phase == PhaseConnected {
		b.mu.Unlock()
		return
	}
	b.setPhaseLocked(PhaseConnected)
	b.sessionStart = time.Now()
	if !b.connectStart.IsZero() {
		metrics.HandshakeDuration.Observe(time.Since(b.connectStart).Seconds())
		b.connectStart = time.Time{}
	}
	b.mu.Unlock()
	metrics.SessionsActive.Inc()
	b.logger.Info("realtime session connected")
}

func (b *Bridge) pushSessionConfig() {
	if b.session == nil {
		return
	}
	payload, err := sessionUpdateEvent(b.session)
	if err != nil {
		b.logger.Error("encoding session update", err)
		return
	}
	if err := b.send(payload); err != nil {
		b.logger.Error("sending session update", err)
	}
}

func (b *Bridge) setPhaseLocked(next Phase) {
	if b.phase == next {
		return
	}
	metrics.PhaseTransitions.WithLabelValues(b.phase.String(), next.String()).Inc()
	b.phase = next
}

// applyError surfaces a classified error without tearing the session down.
func (b *Bridge) applyError(det *ErrorDetails) {
	b.mu.Lock()
	b.errDetails = det
	b.mu.Unlock()
	metrics.Errors.WithLabelValues(string(det.Code)).Inc()
	b.logger.Error("session error", det.Cause, zap.String("code", string(det.Code)))
}

func (b *Bridge) send(data []byte) error {
	b.mu.Lock()
	sender, open := b.sender, b.channelOpen
	b.mu.Unlock()
	if sender == nil || !open {
		return shared.ErrChannelNotReady
	}
	return sender.Send(data)
}

// SendUserMessage appends a user text message to the conversation and asks
// the model to respond. Empty or whitespace-only text is a no-op.
func (b *Bridge) SendUserMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	b.mu.Lock()
	open := b.channelOpen && b.sender != nil
	if open {
		b.pendingResponseAt = time.Now()
	}
	b.mu.Unlock()
	if !open {
		return classify(shared.ErrChannelNotReady)
	}
	payload, err := userMessageEvent(text)
	if err != nil {
		b.clearPendingResponse()
		return fmt.Errorf("encoding user message: %w", err)
	}
	if err := b.send(payload); err != nil {
		b.clearPendingResponse()
		return classify(atStage(stageChannel, err))
	}
	cont, err := responseCreateEvent("")
	if err != nil {
		b.clearPendingResponse()
		return fmt.Errorf("encoding response request: %w", err)
	}
	if err := b.send(cont); err != nil {
		b.clearPendingResponse()
		return classify(atStage(stageChannel, err))
	}
	return nil
}

// clearPendingResponse disarms the response-latency measurement after a
// message failed to reach the wire.
func (b *Bridge) clearPendingResponse() {
	b.mu.Lock()
	b.pendingResponseAt = time.Time{}
	b.mu.Unlock()
}

// TriggerGreeting asks the model to greet the user. Reports whether the
// request was sent; false when the channel is not open.
func (b *Bridge) TriggerGreeting() bool {
	payload, err := responseCreateEvent(b.greeting)
	if err != nil {
		b.logger.Error("encoding greeting request", err)
		return false
	}
	if err := b.send(payload); err != nil {
		return false
	}
	return true
}

// Disconnect tears the session down and clears any error state. Safe to call
// repeatedly and in any phase.
func (b *Bridge) Disconnect() {
	b.cleanup("disconnect requested")
	b.mu.Lock()
	b.errDetails = nil
	b.mu.Unlock()
}

func (b *Bridge) handleRaw(data []byte) {
	event, err := ParseEvent(data)
	if err != nil {
		b.logger.Warn("dropping undecodable event", zap.Error(err), zap.ByteString("data", data))
		return
	}
	b.handleEvent(event)
}

// handleEvent is the single dispatch point for inbound events; messages are
// processed in delivery order.
func (b *Bridge) handleEvent(event *Event) {
	metrics.EventsReceived.WithLabelValues(string(event.Type)).Inc()
	switch event.Type {
	case EventTypeAudioDelta, EventTypeAudioTranscriptDelta, EventTypeOutputSpeechStarted:
		b.assistantAudioStarted()
		b.observeResponseLatency()
	case EventTypeOutputItemAdded:
		if p, ok := event.Param.(*EventParamOutputItem); ok && p.ItemType() == "audio" {
			b.assistantAudioStarted()
		}
	case EventTypeAudioDone, EventTypeResponseDone, EventTypeAudioTranscriptDone, EventTypeOutputSpeechStopped:
		b.assistantAudioStopped()
		if p, ok := event.Param.(*EventParamTranscriptDone); ok && p.Transcript != "" {
			b.recordAssistantMessage(p.ItemID, p.Transcript)
		}
	case EventTypeOutputTextDone:
		if p, ok := event.Param.(*EventParamTextDone); ok && p.Text != "" {
			b.recordAssistantMessage(p.ItemID, p.Text)
		}
	case EventTypeInputSpeechStarted:
		b.userSpeechStarted()
	case EventTypeInputTranscriptionCompleted:
		b.resetToolTurns()
	case EventTypeFunctionCallArgumentsDone:
		if p, ok := event.Param.(*EventParamFunctionCallArgumentsDone); ok {
			b.executeToolCall(p.CallID, p.Name, p.Arguments)
		}
	case EventTypeOutputItemDone:
		if p, ok := event.Param.(*EventParamOutputItem); ok {
			if callID, name, args, isCall := p.FunctionCall(); isCall {
				b.executeToolCall(callID, name, args)
			}
		}
	case EventTypeError:
		if p, ok := event.Param.(*EventParamError); ok {
			b.logger.Warn("remote error event",
				zap.String("code", p.Code),
				zap.String("message", p.Message),
			)
		}
	}
	if b.onEvent != nil {
		b.onEvent(event)
	}
}

func (b *Bridge) recordAssistantMessage(itemID, content string) {
	if itemID == "" {
		itemID = "msg_" + uuid.NewString()
	}
	b.msgs.push(MessageLogEntry{
		ID:        itemID,
		Role:      "assistant",
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (b *Bridge) observeResponseLatency() {
	b.mu.Lock()
	at := b.pendingResponseAt
	b.pendingResponseAt = time.Time{}
	b.mu.Unlock()
	if !at.IsZero() {
		metrics.ResponseLatency.Observe(time.Since(at).Seconds())
	}
}

// executeToolCall runs the tool-call protocol: de-duplicate, enforce the
// per-turn budget, execute through the backend, and always hand the model a
// terminal function_call_output plus a continuation request.
func (b *Bridge) executeToolCall(callID, name, rawArgs string) {
	if callID == "" {
		return
	}
	if !b.executed.mark(callID) {
		b.logger.Debug("skipping duplicate tool call", zap.String("callId", callID))
		return
	}
	args := map[string]any{}
	if rawArgs != "" {
		if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
			b.logger.Warn("tool arguments did not decode, using empty args",
				zap.String("tool", name),
				zap.Error(err),
			)
			args = map[string]any{}
		}
	}
	b.mu.Lock()
	b.toolTurns++
	turns := b.toolTurns
	ctx := b.sessionCtx
	b.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if turns > toolCallsPerTurn {
		b.logger.Warn("tool call limit reached for this turn",
			zap.String("tool", name),
			zap.Int("count", turns),
		)
		b.finishToolCall(callID, encodeJSON(map[string]any{
			"error": "tool call limit reached for this turn",
		}))
		metrics.ToolCalls.WithLabelValues(name, "limit").Inc()
		return
	}
	result, err := b.tools.Execute(ctx, ToolCall{
		ID:       callID,
		Name:     name,
		Args:     args,
		TenantID: b.tenantID,
	})
	if err != nil {
		b.logger.Error("tool execution failed", err, zap.String("tool", name))
		b.finishToolCall(callID, encodeJSON(map[string]any{"error": err.Error()}))
		metrics.ToolCalls.WithLabelValues(name, "error").Inc()
		return
	}
	b.finishToolCall(callID, result)
	metrics.ToolCalls.WithLabelValues(name, "ok").Inc()
}

// finishToolCall sends the output before requesting continuation, preserving
// the conversation ordering the model expects.
func (b *Bridge) finishToolCall(callID string, output []byte) {
	payload, err := functionCallOutputEvent(callID, output)
	if err != nil {
		b.logger.Error("encoding tool output", err, zap.String("callId", callID))
		return
	}
	if err := b.send(payload); err != nil {
		b.logger.Error("sending tool output", err, zap.String("callId", callID))
		return
	}
	cont, err := responseCreateEvent("")
	if err != nil {
		b.logger.Error("encoding continuation request", err)
		return
	}
	if err := b.send(cont); err != nil {
		b.logger.Error("sending continuation request", err)
	}
}

func encodeJSON(v map[string]any) []byte {
	out, err := sonic.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return out
}

// cleanup releases every session resource; each release is isolated so one
// failure cannot block the others. Safe to call repeatedly.
func (b *Bridge) cleanup(reason string) {
	b.mu.Lock()
	dc, pc, ws, mic := b.dc, b.pc, b.ws, b.mic
	b.dc, b.pc, b.ws, b.mic = nil, nil, nil, nil
	b.sender = nil
	b.gate = nil
	b.channelOpen = false
	b.speaking = false
	b.pushToTalk = false
	if b.unmuteTimer != nil {
		b.unmuteTimer.Stop()
		b.unmuteTimer = nil
	}
	b.toolTurns = 0
	stop := b.sessionStop
	b.sessionStop = nil
	b.sessionCtx = nil
	wasActive := !b.sessionStart.IsZero()
	start := b.sessionStart
	b.sessionStart = time.Time{}
	b.connectStart = time.Time{}
	b.pendingResponseAt = time.Time{}
	hadSession := dc != nil || pc != nil || ws != nil || mic != nil || wasActive
	if hadSession || b.phase == PhaseInitializing || b.phase == PhaseError {
		b.setPhaseLocked(PhaseDisconnected)
	}
	b.mu.Unlock()

	b.executed.reset()
	if stop != nil {
		stop(fmt.Errorf("session cleanup: %s", reason))
	}
	if dc != nil {
		if err := dc.Close(); err != nil {
			b.logger.Debug("closing data channel", zap.Error(err))
		}
	}
	if ws != nil {
		if err := ws.Close(); err != nil {
			b.logger.Debug("closing websocket", zap.Error(err))
		}
	}
	if pc != nil {
		if err := pc.Close(); err != nil {
			b.logger.Warn("closing peer connection", zap.Error(err))
		}
	}
	if mic != nil {
		mic.Stop()
	}
	if wasActive {
		metrics.SessionsActive.Dec()
		metrics.SessionDuration.Observe(time.Since(start).Seconds())
	}
	if hadSession {
		b.logger.Info("session cleaned up", zap.String("reason", reason))
	}
}
