package transport

import (
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Streams overrides the process pipes, mainly for tests.
type Streams struct {
	Reader io.ReadCloser
	Writer io.WriteCloser
}

// Stdio returns the process-pipe transport: newline-delimited JSON-RPC on
// stdin/stdout, or on the given streams when both are set.
func Stdio(streams *Streams) mcp.Transport {
	if streams == nil || streams.Reader == nil || streams.Writer == nil {
		return &mcp.StdioTransport{}
	}
	return &mcp.IOTransport{
		Reader: streams.Reader,
		Writer: streams.Writer,
	}
}
