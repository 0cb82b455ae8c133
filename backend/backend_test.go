package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	voicebridge "github.com/aisha-crm/voice-bridge"
	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenClientValidation(t *testing.T) {
	_, err := NewTokenClient("http://localhost", "", nil)
	assert.ErrorIs(t, err, shared.ErrNoLogger)

	_, err = NewTokenClient("", "", shared.NewNopLogger())
	assert.ErrorIs(t, err, shared.ErrNoBaseURL)

	_, err = NewTokenClient("http://localhost", "", shared.NewNopLogger())
	assert.NoError(t, err)
}

func TestEphemeralToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/ai/realtime-token", r.URL.Path)
		assert.Equal(t, "tenant-7", r.URL.Query().Get("tenant_id"))
		assert.Equal(t, "Bearer app-secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"value":"ek_abc123"}`))
	}))
	defer server.Close()

	client, err := NewTokenClient(server.URL, "app-secret", shared.NewNopLogger())
	require.NoError(t, err)

	token, err := client.EphemeralToken(context.Background(), "tenant-7")
	require.NoError(t, err)
	assert.Equal(t, "ek_abc123", token)
}

func TestEphemeralTokenEnvelopedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"value":"ek_nested"}}`))
	}))
	defer server.Close()

	client, err := NewTokenClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	token, err := client.EphemeralToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "ek_nested", token)
}

func TestEphemeralTokenMissingValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":""}`))
	}))
	defer server.Close()

	client, err := NewTokenClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	_, err = client.EphemeralToken(context.Background(), "tenant-7")
	assert.ErrorIs(t, err, shared.ErrTokenMissing)
}

func TestEphemeralTokenBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewTokenClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	_, err = client.EphemeralToken(context.Background(), "tenant-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestEphemeralTokenContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewTokenClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = client.EphemeralToken(ctx, "tenant-7")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToolClientExecute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ai/realtime-tools/execute", r.URL.Path)
		assert.Equal(t, "Bearer app-secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "list_leads", body["tool_name"])
		assert.Equal(t, "tenant-7", body["tenant_id"])
		assert.Equal(t, "call_1", body["call_id"])
		assert.Equal(t, map[string]any{"status": "open"}, body["tool_args"])

		_, _ = w.Write([]byte(`{"data":{"leads":[{"id":1}]}}`))
	}))
	defer server.Close()

	client, err := NewToolClient(server.URL, "app-secret", shared.NewNopLogger())
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), voicebridge.ToolCall{
		ID:       "call_1",
		Name:     "list_leads",
		Args:     map[string]any{"status": "open"},
		TenantID: "tenant-7",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"leads":[{"id":1}]}`, string(result))
}

func TestToolClientExecuteEmptyEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewToolClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), voicebridge.ToolCall{ID: "c1", Name: "noop"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(result))
}

func TestToolClientExecuteBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unknown tool"}`))
	}))
	defer server.Close()

	client, err := NewToolClient(server.URL, "", shared.NewNopLogger())
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), voicebridge.ToolCall{ID: "c1", Name: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
