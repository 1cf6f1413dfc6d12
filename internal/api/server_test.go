package api

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"medibook/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestGRPCHealth(t *testing.T) {
	var (
		mu       sync.Mutex
		readyErr = errors.New("ledger not migrated")
	)
	ready := func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		return readyErr
	}

	cfg := config.APIConfig{
		Enabled: true,
		GRPC:    config.APIGRPCConfig{Enabled: true, Port: 0, Reflection: true},
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{{Key: "k", Extra: "e"}},
		},
	}
	logger := zerolog.New(io.Discard)
	srv, err := NewGRPCServer(&cfg, nil, ready, &logger)
	require.NoError(t, err)

	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.CheckReady(ctx)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: BookingServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	mu.Lock()
	readyErr = nil
	mu.Unlock()

	srv.CheckReady(ctx)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestBuildTLSConfig_MissingFiles(t *testing.T) {
	_, err := buildTLSConfig(config.APITLSConfig{Enabled: true})
	assert.Error(t, err)

	_, err = buildTLSConfig(config.APITLSConfig{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.key"})
	assert.Error(t, err)
}
