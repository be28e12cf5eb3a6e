package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/dispatch"
	"targetmcp/internal/infra/registry"
	"targetmcp/internal/infra/session"
	"targetmcp/internal/infra/transport"
)

func activityTool(name string, required []any, fn domain.ToolFunc) domain.Tool {
	properties := map[string]any{}
	for _, field := range required {
		properties[field.(string)] = map[string]any{"type": "string"}
	}
	return domain.NewFuncTool(domain.ToolSchema{
		Name:        name,
		Description: "Update an activity in Adobe Target.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}, fn)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tools := []domain.Tool{
		activityTool("update_activity_priority", []any{"tenant", "priority"}, func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("403 Forbidden")
		}),
		activityTool("update_activity_schedule", []any{"tenant", "startsAt", "endsAt"}, func(_ context.Context, args map[string]any) (any, error) {
			return args, nil
		}),
		activityTool("update_activity_state", []any{"tenant", "state"}, func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{"id": 168816, "state": args["state"]}, nil
		}),
	}
	reg := registry.New(tools, zap.NewNop())
	return NewServer(reg, dispatch.New(reg, zap.NewNop(), nil), session.NewRegistry(zap.NewNop(), nil), zap.NewNop(), Options{})
}

func connectClient(t *testing.T, ctx context.Context, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func requireProtocolError(t *testing.T, err error, code int64, message string) {
	t.Helper()
	require.Error(t, err)
	var wire *jsonrpc.Error
	require.True(t, errors.As(err, &wire), "expected JSON-RPC error, got %v", err)
	assert.Equal(t, code, wire.Code)
	assert.Equal(t, message, wire.Message)
}

func TestProtocolServer_ListTools(t *testing.T) {
	ctx := context.Background()
	cs := connectClient(t, ctx, newTestServer(t).NewProtocolServer())

	res, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 3)
	assert.Equal(t, "update_activity_priority", res.Tools[0].Name)
	assert.Equal(t, "update_activity_schedule", res.Tools[1].Name)
	assert.Equal(t, "update_activity_state", res.Tools[2].Name)

	schema, ok := res.Tools[2].InputSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"tenant", "state"}, schema["required"])
}

func TestProtocolServer_CallToolSuccess(t *testing.T) {
	ctx := context.Background()
	cs := connectClient(t, ctx, newTestServer(t).NewProtocolServer())

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "update_activity_state",
		Arguments: map[string]any{"tenant": "acme", "state": "approved"},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": 168816,\n  \"state\": \"approved\"\n}", textOf(t, res))
}

func TestProtocolServer_UnknownTool(t *testing.T) {
	ctx := context.Background()
	cs := connectClient(t, ctx, newTestServer(t).NewProtocolServer())

	_, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "delete_activity", Arguments: map[string]any{}})
	requireProtocolError(t, err, dispatch.CodeMethodNotFound, "Unknown tool: delete_activity")
}

func TestProtocolServer_MissingParameter(t *testing.T) {
	ctx := context.Background()
	cs := connectClient(t, ctx, newTestServer(t).NewProtocolServer())

	_, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "update_activity_schedule",
		Arguments: map[string]any{"tenant": "acme", "endsAt": "2025-01-01"},
	})
	requireProtocolError(t, err, dispatch.CodeInvalidParams, "Missing required parameter: startsAt")
}

func TestProtocolServer_ToolFailure(t *testing.T) {
	ctx := context.Background()
	cs := connectClient(t, ctx, newTestServer(t).NewProtocolServer())

	_, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "update_activity_priority",
		Arguments: map[string]any{"tenant": "acme", "priority": 5},
	})
	requireProtocolError(t, err, dispatch.CodeInternalError, "API error: 403 Forbidden")
}

func TestProtocolServer_FreshInstancePerCall(t *testing.T) {
	s := newTestServer(t)
	assert.NotSame(t, s.NewProtocolServer(), s.NewProtocolServer())
}

func TestSSE_TwoClientsGetDistinctSessions(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connect := func() *mcp.ClientSession {
		client := mcp.NewClient(&mcp.Implementation{Name: "sse-client", Version: "0.1.0"}, nil)
		cs, err := client.Connect(ctx, &mcp.SSEClientTransport{Endpoint: ts.URL + "/sse"}, nil)
		require.NoError(t, err)
		return cs
	}

	first := connect()
	second := connect()

	require.Eventually(t, func() bool { return s.Sessions().Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	ids := s.Sessions().IDs()
	assert.NotEqual(t, ids[0], ids[1])

	for _, cs := range []*mcp.ClientSession{first, second} {
		res, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
		require.NoError(t, err)
		assert.Len(t, res.Tools, 3)
	}

	res, err := second.CallTool(ctx, &mcp.CallToolParams{
		Name:      "update_activity_state",
		Arguments: map[string]any{"tenant": "acme", "state": "paused"},
	})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, res), `"state": "paused"`)

	_, err = first.CallTool(ctx, &mcp.CallToolParams{Name: "nope", Arguments: map[string]any{}})
	requireProtocolError(t, err, dispatch.CodeMethodNotFound, "Unknown tool: nope")

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return s.Sessions().Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, second.Close())
	require.Eventually(t, func() bool { return s.Sessions().Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestSSE_UnknownSessionRejected(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	for _, target := range []string{"/messages?sessionId=does-not-exist", "/messages"} {
		resp, err := http.Post(ts.URL+target, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "No transport/server found for sessionId")
	}
}

func TestSSE_ClosedSessionRejectedWithoutAffectingOthers(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connect := func() *mcp.ClientSession {
		client := mcp.NewClient(&mcp.Implementation{Name: "sse-client", Version: "0.1.0"}, nil)
		cs, err := client.Connect(ctx, &mcp.SSEClientTransport{Endpoint: ts.URL + "/sse"}, nil)
		require.NoError(t, err)
		return cs
	}

	closing := connect()
	require.Eventually(t, func() bool { return s.Sessions().Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	closedID := s.Sessions().IDs()[0]

	live := connect()
	defer live.Close()
	require.Eventually(t, func() bool { return s.Sessions().Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, closing.Close())
	require.Eventually(t, func() bool { return s.Sessions().Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, s.Sessions().IDs(), closedID)

	body := `{"jsonrpc":"2.0","id":7,"method":"tools/list"}`
	resp, err := http.Post(ts.URL+"/messages?sessionId="+closedID, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "No transport/server found for sessionId")

	res, err := live.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, res.Tools, 3)
	assert.Equal(t, 1, s.Sessions().Len())
}

func TestSSE_HealthAndMetricsRoutes(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestServe_ShutdownClosesSessions(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skip test due to listen error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	clientCtx, clientCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer clientCancel()
	client := mcp.NewClient(&mcp.Implementation{Name: "sse-client", Version: "0.1.0"}, nil)
	cs, err := client.Connect(clientCtx, &mcp.SSEClientTransport{Endpoint: fmt.Sprintf("http://%s/sse", ln.Addr())}, nil)
	require.NoError(t, err)
	defer cs.Close()
	require.Eventually(t, func() bool { return s.Sessions().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop in time")
	}
	assert.Equal(t, 0, s.Sessions().Len())
}

func TestRunStdio_ServesUntilCancelled(t *testing.T) {
	s := newTestServer(t)

	serverIn, clientOut := io.Pipe()
	clientIn, serverOut := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.RunStdio(ctx, &transport.Streams{Reader: serverIn, Writer: serverOut})
	}()

	clientCtx, clientCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer clientCancel()
	client := mcp.NewClient(&mcp.Implementation{Name: "stdio-client", Version: "0.1.0"}, nil)
	cs, err := client.Connect(clientCtx, &mcp.IOTransport{Reader: clientIn, Writer: clientOut}, nil)
	require.NoError(t, err)

	res, err := cs.ListTools(clientCtx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, res.Tools, 3)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("stdio server did not stop in time")
	}
	_ = cs.Close()
}
