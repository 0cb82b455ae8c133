package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	voicebridge "github.com/aisha-crm/voice-bridge"
	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ToolClient executes model-requested tools through the backend proxy.
type ToolClient struct {
	baseURL  *url.URL
	appToken string
	logger   shared.LoggerAdapter
}

var _ voicebridge.ToolExecutor = (*ToolClient)(nil)

func NewToolClient(baseURL, appToken string, logger shared.LoggerAdapter) (*ToolClient, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if baseURL == "" {
		return nil, shared.ErrNoBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}
	return &ToolClient{baseURL: parsed, appToken: appToken, logger: logger}, nil
}

// Execute posts the tool call to the backend and returns the JSON-encoded
// result. The backend wraps results as {data: ...}; the inner value is
// returned as-is.
func (c *ToolClient) Execute(ctx context.Context, call voicebridge.ToolCall) ([]byte, error) {
	body, err := sonic.Marshal(map[string]any{
		"tool_name": call.Name,
		"tool_args": call.Args,
		"tenant_id": call.TenantID,
		"call_id":   call.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding tool request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL.JoinPath("/api/ai/realtime-tools/execute").String())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.appToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.appToken)
	}
	req.SetBody(body)

	if err := do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("executing tool %s: %w", call.Name, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("tool endpoint returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decoding tool response: %w", err)
	}
	c.logger.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.String("callId", call.ID),
	)
	if len(envelope.Data) == 0 {
		return []byte("null"), nil
	}
	return envelope.Data, nil
}
