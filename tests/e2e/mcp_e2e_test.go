package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/floxyview/internal/diagram"
	floxymcp "github.com/rendis/floxyview/pkg/mcp"
)

// --- Test infrastructure ---

type testEnv struct {
	server *floxymcp.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := floxymcp.NewServer(floxymcp.ServerDeps{
		Version: "e2e",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{server: srv}
}

// rpc sends one JSON-RPC message through HandleMessage and decodes the reply.
func (e *testEnv) rpc(t *testing.T, msg map[string]any, target any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	resp := e.server.MCPServer().HandleMessage(context.Background(), raw)
	require.NotNil(t, resp)

	respBytes, err := json.Marshal(resp)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBytes, target))
}

func (e *testEnv) initialize(t *testing.T) {
	t.Helper()
	var out map[string]any
	e.rpc(t, map[string]any{
		"jsonrpc": "2.0",
		"id":      0,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "e2e-test",
				"version": "1.0.0",
			},
		},
	}, &out)
	require.Contains(t, out, "result")
}

// callTool invokes a tool through a full JSON-RPC round-trip.
func (e *testEnv) callTool(t *testing.T, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	e.initialize(t)

	var rpcResp struct {
		Result *mcp.CallToolResult `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	e.rpc(t, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": args,
		},
	}, &rpcResp)

	if rpcResp.Error != nil {
		t.Fatalf("JSON-RPC error: code=%d, msg=%s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	require.NotNil(t, rpcResp.Result)
	return rpcResp.Result
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

// --- E2E Tests ---

func TestMCPToolsList(t *testing.T) {
	env := newTestEnv(t)
	env.initialize(t)

	var out struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	env.rpc(t, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}, &out)

	var names []string
	for _, tool := range out.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"floxy.render", "floxy.example"}, names)
}

func TestMCPRenderExampleFlows(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"order-saga", "legacy-approval"} {
		t.Run(name, func(t *testing.T) {
			doc, want := loadFlow(t, name)
			result := env.callTool(t, "floxy.render", map[string]any{
				"definition": string(doc),
			})
			assert.False(t, result.IsError)
			assert.Equal(t, want, extractText(t, result))
		})
	}
}

func TestMCPRenderInvalidDocument(t *testing.T) {
	env := newTestEnv(t)

	result := env.callTool(t, "floxy.render", map[string]any{"definition": `{"start": 1}`})
	assert.False(t, result.IsError)
	assert.Equal(t, "flowchart TD\nerror([Invalid JSON format])", extractText(t, result))

	result = env.callTool(t, "floxy.render", map[string]any{
		"definition": `{"start": 1}`,
		"format":     "svg",
	})
	assert.True(t, result.IsError)
}

func TestMCPRenderSVG(t *testing.T) {
	env := newTestEnv(t)
	doc, _ := loadFlow(t, "legacy-approval")

	result := env.callTool(t, "floxy.render", map[string]any{
		"definition": string(doc),
		"format":     "svg",
	})
	require.False(t, result.IsError, extractText(t, result))
	assert.Contains(t, extractText(t, result), "<svg")
}

func TestMCPExample(t *testing.T) {
	env := newTestEnv(t)
	result := env.callTool(t, "floxy.example", map[string]any{})
	assert.Equal(t, diagram.Placeholder, extractText(t, result))
}

// Concurrent renders share no state.
func TestMCPConcurrentRenders(t *testing.T) {
	env := newTestEnv(t)
	doc, want := loadFlow(t, "order-saga")
	env.initialize(t)

	var wg sync.WaitGroup
	got := make([]string, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(map[string]any{
				"jsonrpc": "2.0",
				"id":      i + 10,
				"method":  "tools/call",
				"params": map[string]any{
					"name":      "floxy.render",
					"arguments": map[string]any{"definition": string(doc)},
				},
			})
			resp := env.server.MCPServer().HandleMessage(context.Background(), raw)
			b, _ := json.Marshal(resp)

			var rpcResp struct {
				Result *mcp.CallToolResult `json:"result"`
			}
			if json.Unmarshal(b, &rpcResp) == nil && rpcResp.Result != nil && len(rpcResp.Result.Content) > 0 {
				got[i] = mcp.GetTextFromContent(rpcResp.Result.Content[0])
			}
		}()
	}
	wg.Wait()

	for i, text := range got {
		assert.Equal(t, want, text, "render %d", i)
	}
}
