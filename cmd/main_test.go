package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dev-ticker-server/internal/client"
	"dev-ticker-server/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tokens := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(tokens, []byte(`[
		{"symbol": "ETH", "address": "0x0000000000000000000000000000000000000000"},
		{"symbol": "wBTC", "address": "0x00000000000000000000000000000000000000aa"}
	]`), 0o600))

	return &config.Config{
		ListenAddr:      freeAddr(t),
		OpsAddr:         freeAddr(t),
		TokensFile:      tokens,
		LogLevel:        "error",
		ShutdownTimeout: time.Second,
		MetricsInterval: time.Minute,
	}
}

func TestServeMissingCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.TokensFile = filepath.Join(t.TempDir(), "missing.json")

	err := serve(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestServeLifecycle(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	c := client.NewClient("http://" + cfg.ListenAddr)
	require.Eventually(t, func() bool {
		_, err := c.CoinsList(ctx)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	coins, err := c.CoinsList(ctx)
	require.NoError(t, err)
	assert.Len(t, coins, 2)

	resp, err := http.Get("http://" + cfg.OpsAddr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--sloppy", "--addr", "127.0.0.1:1234", "--ops-addr", ""}))

	sloppy, err := cmd.Flags().GetBool("sloppy")
	require.NoError(t, err)
	assert.True(t, sloppy)

	addr, err := cmd.Flags().GetString("addr")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1234", addr)
}

func TestSampleUnknownEndpoint(t *testing.T) {
	_, err := sampleCall(client.NewClient("http://127.0.0.1:1"), "volume", "")
	require.Error(t, err)
}

func TestSampleCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpsAddr = ""
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	c := client.NewClient("http://" + cfg.ListenAddr)
	require.Eventually(t, func() bool {
		_, err := c.CoinsList(ctx)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sample", "--url", "http://" + cfg.ListenAddr, "--endpoint", "quotes", "-n", "20", "--concurrency", "4"})
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.Contains(t, out.String(), "requests:     20")
	assert.Contains(t, out.String(), "errors:       0 (0.00%)")

	cancel()
	<-done
}
