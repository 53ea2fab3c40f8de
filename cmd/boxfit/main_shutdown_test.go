package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type stubServer struct {
	shutdownErr error
	closed      bool
}

func (s *stubServer) Shutdown(context.Context) error { return s.shutdownErr }

func (s *stubServer) Close() error {
	s.closed = true
	return nil
}

func fakeSignal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}
}

func TestShutdownSignals(t *testing.T) {
	fakeSignal(t)

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	logger := zaptest.NewLogger(t)
	shutdown(server, time.Millisecond, logger)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
}

func TestShutdownForcesCloseOnFailure(t *testing.T) {
	fakeSignal(t)

	srv := &stubServer{shutdownErr: errors.New("timeout")}
	shutdown(srv, time.Millisecond, zaptest.NewLogger(t))

	if !srv.closed {
		t.Fatalf("expected Close after failed graceful shutdown")
	}
}
