package main

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeDispatcher struct {
	calls  atomic.Int64
	result outbox.Result
	err    error
	cancel context.CancelFunc
	after  int64
}

func (f *fakeDispatcher) Dispatch(ctx context.Context) (*outbox.Result, error) {
	if f.calls.Add(1) >= f.after && f.cancel != nil {
		f.cancel()
	}
	if f.err != nil {
		return nil, f.err
	}
	result := f.result
	return &result, nil
}

func (f *fakeDispatcher) Resend(ctx context.Context, ids []uuid.UUID) (*outbox.Result, error) {
	return nil, errors.New("not used")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
}

func TestServiceRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := &fakeDispatcher{cancel: cancel, after: 3, result: outbox.Result{Processed: 1, Sent: 1}}
	service, err := NewService(ServiceParams{
		Logger:         testLogger(),
		DB:             &fakePinger{},
		Dispatcher:     dispatcher,
		PollIntervalMS: 1,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = service.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if dispatcher.calls.Load() < 3 {
		t.Fatalf("expected at least 3 dispatch passes, got %d", dispatcher.calls.Load())
	}
}

func TestServiceRun_FailsWhenDatabaseUnreachable(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger:         testLogger(),
		DB:             &fakePinger{err: errors.New("connection refused")},
		Dispatcher:     &fakeDispatcher{},
		PollIntervalMS: 1,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := service.Run(context.Background()); err == nil {
		t.Fatal("expected readiness error")
	}
}

func TestServiceRun_BacksOffOnDispatchError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := &fakeDispatcher{cancel: cancel, after: 2, err: errors.New("sink down")}
	service, err := NewService(ServiceParams{
		Logger:         testLogger(),
		DB:             &fakePinger{},
		Dispatcher:     dispatcher,
		PollIntervalMS: 1,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop after cancellation")
	}
}

func TestNextBackoff_Caps(t *testing.T) {
	floor := 100 * time.Millisecond
	backoff := floor
	for i := 0; i < 30; i++ {
		backoff = nextBackoff(backoff, floor)
	}
	if backoff != maxBackoff {
		t.Fatalf("expected backoff capped at %v, got %v", maxBackoff, backoff)
	}
}
