package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/drstein77/eshop/internal/config"
	"github.com/drstein77/eshop/internal/logger"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, ctx context.Context) *Server {
	t.Helper()
	t.Setenv("DATABASE_URI", "")

	option := config.NewOptions()
	require.NoError(t, option.ParseArgs([]string{
		"-a", "127.0.0.1:0",
		"-c", filepath.Join(t.TempDir(), "products.json"),
	}))
	return newServer(ctx, option, logger.Nop())
}

func serveAsync(server *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- server.Serve() }()
	return done
}

func waitServe(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
}

func TestShutdownBeforeServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := testServer(t, ctx)
	server.Shutdown(time.Second)
	cancel()

	waitServe(t, serveAsync(server))
}

func TestShutdownWhileServing(t *testing.T) {
	server := testServer(t, context.Background())
	done := serveAsync(server)

	time.Sleep(100 * time.Millisecond)
	server.Shutdown(time.Second)

	waitServe(t, done)
}

func TestParentContextStopsServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := testServer(t, ctx)
	done := serveAsync(server)

	time.Sleep(100 * time.Millisecond)
	cancel()

	waitServe(t, done)
}
