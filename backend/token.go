// Package backend holds the HTTP clients for the CRM backend: ephemeral
// credential minting and server-side tool execution.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// TokenClient mints short-lived realtime credentials from the CRM backend.
type TokenClient struct {
	baseURL  *url.URL
	appToken string
	logger   shared.LoggerAdapter
}

func NewTokenClient(baseURL, appToken string, logger shared.LoggerAdapter) (*TokenClient, error) {
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
	return &TokenClient{baseURL: parsed, appToken: appToken, logger: logger}, nil
}

// EphemeralToken requests a one-shot credential for the realtime endpoint.
// The backend may return {value} or {data:{value}}; both shapes are
// accepted.
func (c *TokenClient) EphemeralToken(ctx context.Context, tenantID string) (string, error) {
	endpoint := *c.baseURL.JoinPath("/api/ai/realtime-token")
	if tenantID != "" {
		q := endpoint.Query()
		q.Set("tenant_id", tenantID)
		endpoint.RawQuery = q.Encode()
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint.String())
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.appToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.appToken)
	}

	if err := do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("requesting realtime token: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from token endpoint", resp.StatusCode())
	}

	var body struct {
		Value string `json:"value"`
		Data  struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	token := body.Value
	if token == "" {
		token = body.Data.Value
	}
	if token == "" {
		return "", shared.ErrTokenMissing
	}
	c.logger.Debug("ephemeral token obtained", zap.String("tenantId", tenantID))
	return token, nil
}

// do runs a fasthttp request while respecting ctx cancellation.
func do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	errC := make(chan error, 1)
	go func() {
		errC <- fasthttp.DoTimeout(req, resp, requestTimeout)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errC:
		return err
	}
}
