package mcpcodec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"targetmcp/internal/domain"
)

// ToolToMCP converts a tool to its wire listing entry. It reports false when
// the tool has no name or no parameter schema.
func ToolToMCP(tool domain.Tool) (*mcp.Tool, bool) {
	if tool == nil {
		return nil, false
	}
	schema := tool.Describe()
	if schema.Name == "" || schema.Parameters == nil {
		return nil, false
	}
	return &mcp.Tool{
		Name:        schema.Name,
		Description: schema.Description,
		InputSchema: domain.CloneJSONValue(schema.Parameters),
	}, true
}

// ToListing maps tools to wire entries in input order, dropping malformed ones.
func ToListing(tools []domain.Tool) []*mcp.Tool {
	listing := make([]*mcp.Tool, 0, len(tools))
	for _, tool := range tools {
		if wire, ok := ToolToMCP(tool); ok {
			listing = append(listing, wire)
		}
	}
	return listing
}

// TextResult renders v as indented JSON inside a single text content item.
func TextResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil
}

// HashListing returns a deterministic fingerprint of a tool listing.
func HashListing(listing []*mcp.Tool) (string, error) {
	hasher := sha256.New()
	for i, tool := range listing {
		raw, err := json.Marshal(tool)
		if err != nil {
			return "", fmt.Errorf("marshal tool %d: %w", i, err)
		}
		_, _ = hasher.Write(raw)
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
