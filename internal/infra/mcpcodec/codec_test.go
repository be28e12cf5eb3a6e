package mcpcodec

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"targetmcp/internal/domain"
)

const listingEntrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "inputSchema"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "description": { "type": "string" },
    "inputSchema": {
      "type": "object",
      "required": ["type"],
      "properties": { "type": { "const": "object" } }
    }
  }
}`

func validateAgainstSchema(t *testing.T, schemaJSON string, payload []byte) {
	t.Helper()

	var schema jsonschema.Schema
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &schema))

	resolved, err := schema.Resolve(nil)
	require.NoError(t, err)

	var decoded any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.NoError(t, resolved.Validate(decoded))
}

func schemaTool(name string, params map[string]any) domain.Tool {
	return domain.NewFuncTool(
		domain.ToolSchema{Name: name, Description: name + " tool", Parameters: params},
		func(context.Context, map[string]any) (any, error) { return nil, nil },
	)
}

func objectParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tenant": map[string]any{"type": "string"},
		},
		"required": []any{"tenant"},
	}
}

func TestToListing_OrderAndShape(t *testing.T) {
	tools := []domain.Tool{
		schemaTool("update_activity_state", objectParams()),
		schemaTool("update_activity_priority", objectParams()),
	}

	listing := ToListing(tools)
	require.Len(t, listing, 2)
	assert.Equal(t, "update_activity_state", listing[0].Name)
	assert.Equal(t, "update_activity_priority", listing[1].Name)
	assert.Equal(t, "update_activity_state tool", listing[0].Description)

	for _, entry := range listing {
		raw, err := json.Marshal(entry)
		require.NoError(t, err)
		validateAgainstSchema(t, listingEntrySchema, raw)
	}
}

func TestToListing_DropsMalformed(t *testing.T) {
	tools := []domain.Tool{
		schemaTool("", objectParams()),
		schemaTool("no_params", nil),
		nil,
		schemaTool("ok", objectParams()),
	}

	listing := ToListing(tools)
	require.Len(t, listing, 1)
	assert.Equal(t, "ok", listing[0].Name)
}

func TestToListing_Empty(t *testing.T) {
	assert.Empty(t, ToListing(nil))
}

func TestToolToMCP_DeepCopiesSchema(t *testing.T) {
	params := objectParams()
	wire, ok := ToolToMCP(schemaTool("t", params))
	require.True(t, ok)

	copied := wire.InputSchema.(map[string]any)
	copied["properties"].(map[string]any)["tenant"].(map[string]any)["type"] = "number"

	assert.Equal(t, "string", params["properties"].(map[string]any)["tenant"].(map[string]any)["type"])
}

func TestTextResult_PrettyPrinted(t *testing.T) {
	result, err := TextResult(map[string]any{"id": 168816, "state": "approved"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "{\n  \"id\": 168816,\n  \"state\": \"approved\"\n}", text.Text)
	assert.False(t, result.IsError)
}

func TestTextResult_EncodingFailure(t *testing.T) {
	_, err := TextResult(math.Inf(1))
	require.Error(t, err)
}

func TestHashListing_Deterministic(t *testing.T) {
	first := ToListing([]domain.Tool{schemaTool("a", objectParams())})
	second := ToListing([]domain.Tool{schemaTool("a", objectParams())})
	other := ToListing([]domain.Tool{schemaTool("b", objectParams())})

	h1, err := HashListing(first)
	require.NoError(t, err)
	h2, err := HashListing(second)
	require.NoError(t, err)
	h3, err := HashListing(other)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
