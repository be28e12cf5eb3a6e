package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/telemetry"
)

const (
	eventEndpoint = "endpoint"
	eventMessage  = "message"

	incomingQueueSize = 64
)

var (
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
	ErrAlreadyConnected     = errors.New("sse transport already connected")
)

// SSETransport is the server side of one event-stream session. Outbound
// messages are written to the held-open GET response; inbound messages arrive
// through HandlePostMessage and are read by the protocol server in order.
type SSETransport struct {
	sessionID string
	endpoint  string
	maxBytes  int64
	logger    *zap.Logger

	w       http.ResponseWriter
	flusher http.Flusher

	incoming chan jsonrpc.Message
	done     chan struct{}

	mu        sync.Mutex
	closed    bool
	connected bool
	closeOnce sync.Once
}

type SSEOptions struct {
	// MessagesPath is the POST path advertised in the endpoint event.
	MessagesPath    string
	MaxMessageBytes int64
	Logger          *zap.Logger
}

func NewSSETransport(w http.ResponseWriter, opts SSEOptions) (*SSETransport, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	messagesPath := opts.MessagesPath
	if messagesPath == "" {
		messagesPath = domain.DefaultMessagesPath
	}
	maxBytes := opts.MaxMessageBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxMessageBytes
	}

	sessionID := uuid.NewString()
	query := url.Values{domain.SessionIDQueryParam: []string{sessionID}}
	return &SSETransport{
		sessionID: sessionID,
		endpoint:  messagesPath + "?" + query.Encode(),
		maxBytes:  maxBytes,
		logger:    logger.With(telemetry.SessionIDField(sessionID)),
		w:         w,
		flusher:   flusher,
		incoming:  make(chan jsonrpc.Message, incomingQueueSize),
		done:      make(chan struct{}),
	}, nil
}

func (t *SSETransport) SessionID() string { return t.sessionID }

// Endpoint is the relative URL clients POST their messages to.
func (t *SSETransport) Endpoint() string { return t.endpoint }

// Done is closed once the transport is closed.
func (t *SSETransport) Done() <-chan struct{} { return t.done }

// Connect announces the message endpoint and hands the connection to the
// protocol server. It may be called once.
func (t *SSETransport) Connect(_ context.Context) (mcp.Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, mcp.ErrConnectionClosed
	}
	if t.connected {
		return nil, ErrAlreadyConnected
	}
	if err := t.writeEventLocked(eventEndpoint, t.endpoint); err != nil {
		return nil, fmt.Errorf("write endpoint event: %w", err)
	}
	t.connected = true
	return &sseConn{transport: t}, nil
}

// HandlePostMessage decodes one JSON-RPC message from the request body and
// queues it for the protocol server.
func (t *SSETransport) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, t.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "message body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read message body", http.StatusBadRequest)
		return
	}
	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		t.logger.Debug("reject malformed message", zap.Error(err))
		http.Error(w, "invalid JSON-RPC message: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := t.Deliver(r.Context(), msg); err != nil {
		http.Error(w, "session closed", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, "Accepted")
}

// Deliver queues msg for the protocol server, blocking while the queue is full.
// A message that lands in the queue while the transport is closing is reported
// as not delivered.
func (t *SSETransport) Deliver(ctx context.Context, msg jsonrpc.Message) error {
	if t.isDone() {
		return mcp.ErrConnectionClosed
	}
	select {
	case t.incoming <- msg:
		if t.isDone() {
			return mcp.ErrConnectionClosed
		}
		return nil
	case <-t.done:
		return mcp.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *SSETransport) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Close ends the session. Writes in flight complete before Close returns,
// after which the response writer is never touched again.
func (t *SSETransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
	})
	return nil
}

func (t *SSETransport) read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case msg := <-t.incoming:
		return msg, nil
	case <-t.done:
		return nil, mcp.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *SSETransport) write(ctx context.Context, msg jsonrpc.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return mcp.ErrConnectionClosed
	}
	return t.writeEventLocked(eventMessage, string(data))
}

func (t *SSETransport) writeEventLocked(event, data string) error {
	if _, err := io.WriteString(t.w, formatEvent(event, data)); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

func formatEvent(event, data string) string {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteString("\n")
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

type sseConn struct {
	transport *SSETransport
}

func (c *sseConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	return c.transport.read(ctx)
}

func (c *sseConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	return c.transport.write(ctx, msg)
}

func (c *sseConn) Close() error { return c.transport.Close() }

func (c *sseConn) SessionID() string { return c.transport.sessionID }

var (
	_ mcp.Transport  = (*SSETransport)(nil)
	_ mcp.Connection = (*sseConn)(nil)
)
