package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/transport"
)

func testConfig() domain.Config {
	return domain.Config{
		Port: domain.DefaultPort,
		Log:  domain.LogConfig{Level: "info"},
		Adobe: domain.AdobeConfig{
			BaseURL:    domain.DefaultAdobeBaseURL,
			ActivityID: domain.DefaultAdobeActivityID,
		},
	}
}

func TestInitializeApplication_DiscoversEmbeddedTools(t *testing.T) {
	application, err := InitializeApplication(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"update_activity_priority",
		"update_activity_schedule",
		"update_activity_state",
	}, application.tools.Names())
	assert.Len(t, application.gateway.Listing(), 3)
}

func TestInitializeApplication_MissingToolsDir(t *testing.T) {
	cfg := testConfig()
	cfg.ToolsDir = filepath.Join(t.TempDir(), "missing")

	_, err := InitializeApplication(context.Background(), cfg, zap.NewNop())
	require.ErrorIs(t, err, domain.ErrDiscoveryRoot)
}

func TestValidateTools_ToolsDir(t *testing.T) {
	dir := t.TempDir()
	manifest := `function: adobe.target.update_activity_state
definition:
  type: function
  function:
    name: update_activity_state
    description: Update the state of an activity.
    parameters:
      type: object
      properties:
        tenant:
          type: string
      required: [tenant]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.yaml"), []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	cfg := testConfig()
	cfg.ToolsDir = dir
	names, err := ValidateTools(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"update_activity_state"}, names)
}

func TestApplicationRun_StdioStopsOnCancel(t *testing.T) {
	application, err := InitializeApplication(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)

	serverIn, clientOut := io.Pipe()
	clientIn, serverOut := io.Pipe()
	application.streams = &transport.Streams{Reader: serverIn, Writer: serverOut}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	clientCtx, clientCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer clientCancel()
	client := mcp.NewClient(&mcp.Implementation{Name: "app-test", Version: "0.1.0"}, nil)
	cs, err := client.Connect(clientCtx, &mcp.IOTransport{Reader: clientIn, Writer: clientOut}, nil)
	require.NoError(t, err)

	res, err := cs.ListTools(clientCtx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 3)
	assert.Equal(t, "update_activity_priority", res.Tools[0].Name)

	report := application.health.Report()
	assert.Equal(t, "ok", report.Status)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not stop in time")
	}
	_ = cs.Close()
}

func TestListenAddress(t *testing.T) {
	assert.Equal(t, ":3001", ListenAddress(3001))
}
