package hashutil

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"targetmcp/internal/infra/mcpcodec"
)

// ListingETag returns an ETag for a tool listing and logs on failure.
func ListingETag(logger *zap.Logger, listing []*mcp.Tool) string {
	return hashWithLogger(logger, "tool listing", func() (string, error) {
		return mcpcodec.HashListing(listing)
	})
}

// Short truncates an ETag for log and health output.
func Short(etag string) string {
	if len(etag) > 12 {
		return etag[:12]
	}
	return etag
}

func hashWithLogger(logger *zap.Logger, label string, fn func() (string, error)) string {
	etag, err := fn()
	if err != nil {
		if logger != nil {
			logger.Warn(fmt.Sprintf("%s hash failed", label), zap.Error(err))
		}
		return ""
	}
	return etag
}
