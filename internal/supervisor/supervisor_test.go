// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockServer is a test double for the HTTPServer interface.
type mockServer struct {
	listenErr     error
	block         bool
	shutdownCount atomic.Int32
	stopCh        chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{stopCh: make(chan struct{})}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	if m.block {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return nil
}

func TestServiceInterfaces(t *testing.T) {
	var _ suture.Service = (*HTTPService)(nil)
	var _ suture.Service = (*GCService)(nil)
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newMockServer()
	server.block = true
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Give the server loop a moment to start, then request shutdown.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if server.shutdownCount.Load() != 1 {
		t.Errorf("shutdown called %d times, want 1", server.shutdownCount.Load())
	}
}

func TestHTTPServiceSurfacesListenError(t *testing.T) {
	server := newMockServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
}

func TestTreeServesAndStops(t *testing.T) {
	tree := NewTree(DefaultTreeConfig())

	server := newMockServer()
	server.block = true
	tree.AddAPIService(NewHTTPService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree exited with %v, want nil or context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}
