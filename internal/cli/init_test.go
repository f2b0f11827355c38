package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	applog "finance/internal/log"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	if f.shutdowns.Add(1) == 1 && f.listenErr == nil {
		close(f.stop)
	}
	return nil
}

func quietLogger() *applog.Logger {
	var buf bytes.Buffer
	return applog.New(applog.Config{Level: slog.LevelError, Output: &buf})
}

func TestServeUntilDone_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ServeUntilDone(ctx, quietLogger(), srv, time.Second) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ServeUntilDone() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ServeUntilDone did not return after cancel")
	}
	if got := srv.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestServeUntilDone_ListenFailure(t *testing.T) {
	listenErr := errors.New("address already in use")
	srv := newFakeServer(listenErr)

	err := ServeUntilDone(context.Background(), quietLogger(), srv, time.Second)
	if !errors.Is(err, listenErr) {
		t.Fatalf("ServeUntilDone() error = %v, want %v", err, listenErr)
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "json")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}

	logger = SetupLogger("nonsense", "")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}
