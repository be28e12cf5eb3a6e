package gateway

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"targetmcp/internal/infra/dispatch"
	"targetmcp/internal/infra/telemetry"
)

const (
	methodListTools = "tools/list"
	methodCallTool  = "tools/call"
)

// toolsMiddleware answers the tool methods itself so unknown tools surface as
// MethodNotFound. Everything else goes to the SDK.
func (s *Server) toolsMiddleware() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			switch method {
			case methodListTools:
				return &mcp.ListToolsResult{Tools: s.Listing()}, nil
			case methodCallTool:
				return s.callTool(ctx, req)
			default:
				return next(ctx, method, req)
			}
		}
	}
}

func (s *Server) callTool(ctx context.Context, req mcp.Request) (mcp.Result, error) {
	call, ok := req.(*mcp.CallToolRequest)
	if !ok || call.Params == nil {
		return nil, &jsonrpc.Error{Code: dispatch.CodeInvalidParams, Message: "invalid tools/call request"}
	}
	ctx, _ = telemetry.EnsureRequestMeta(ctx, telemetry.NewRequestID())

	result, err := s.dispatcher.Call(ctx, call.Params.Name, call.Params.Arguments)
	if err != nil {
		return nil, dispatch.ProtocolError(err)
	}
	return result, nil
}
