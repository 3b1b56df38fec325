package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	released bool
	allow    bool
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquired = true
	return f.allow, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.released = true
	return nil
}

type fakeJob struct {
	name string
	runs int
	err  error
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run(ctx context.Context) error {
	f.runs++
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestRunCycle_SkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{allow: false}
	job := &fakeJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle error: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("jobs must not run while another instance holds the lock")
	}
	if lock.released {
		t.Fatal("lock must not be released when never acquired")
	}
}

func TestRunCycle_RunsAllJobsAndReleases(t *testing.T) {
	lock := &fakeLock{allow: true}
	good := &fakeJob{name: "good"}
	bad := &fakeJob{name: "bad", err: errors.New("boom")}
	after := &fakeJob{name: "after"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(good, bad, after),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle error: %v", err)
	}
	if good.runs != 1 || bad.runs != 1 || after.runs != 1 {
		t.Fatalf("all jobs must run exactly once: %d/%d/%d", good.runs, bad.runs, after.runs)
	}
	if !lock.released {
		t.Fatal("lock must be released after the cycle")
	}
}
