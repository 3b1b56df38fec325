package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/internal/outbox"
)

type fakeDispatcher struct {
	result *outbox.Result
	err    error
	calls  int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context) (*outbox.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeDispatcher) Resend(ctx context.Context, ids []uuid.UUID) (*outbox.Result, error) {
	return nil, errors.New("not used")
}

func TestOutboxDispatchJob(t *testing.T) {
	dispatcher := &fakeDispatcher{result: &outbox.Result{Processed: 2, Sent: 1, Failed: 1}}
	job, err := NewOutboxDispatchJob(OutboxDispatchJobParams{
		Logger:     testLogger(),
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("NewOutboxDispatchJob error: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("dispatcher called %d times, want 1", dispatcher.calls)
	}

	dispatcher.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("dispatcher error must surface as job failure")
	}
}
