package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

type fakeRepository struct {
	rows map[uuid.UUID]*models.OutboxMessage
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[uuid.UUID]*models.OutboxMessage{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, message *models.OutboxMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	copy := *message
	f.rows[message.ID] = &copy
	return nil
}

func (f *fakeRepository) DueBatch(ctx context.Context, now time.Time, maxAttempts, limit int) ([]models.OutboxMessage, error) {
	var due []models.OutboxMessage
	for _, row := range f.rows {
		if row.Status == enums.OutboxStatusSent {
			continue
		}
		if row.Attempts >= maxAttempts {
			continue
		}
		if row.NextRetryAt.After(now) {
			continue
		}
		due = append(due, *row)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.OutboxMessage, error) {
	var out []models.OutboxMessage
	for _, id := range ids {
		if row, ok := f.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, message *models.OutboxMessage) error {
	copy := *message
	f.rows[message.ID] = &copy
	return nil
}

func (f *fakeRepository) ListFailed(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	var out []models.OutboxMessage
	for _, row := range f.rows {
		if row.Status == enums.OutboxStatusFailed {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeSink struct {
	sendFn func(ctx context.Context, payload json.RawMessage) error
	sends  int
}

func (f *fakeSink) Send(ctx context.Context, payload json.RawMessage) error {
	f.sends++
	if f.sendFn != nil {
		return f.sendFn(ctx, payload)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func pendingRow(createdAt time.Time) *models.OutboxMessage {
	return &models.OutboxMessage{
		ID:          uuid.New(),
		BookingID:   uuid.New(),
		Destination: "sheet",
		Payload:     json.RawMessage(`{"booking_id":"x"}`),
		Status:      enums.OutboxStatusPending,
		NextRetryAt: createdAt,
		CreatedAt:   createdAt,
	}
}

func TestDispatch_RetryBackoffMonotonic(t *testing.T) {
	repo := newFakeRepository()
	row := pendingRow(time.Now().UTC().Add(-time.Hour))
	repo.rows[row.ID] = row

	sink := &fakeSink{sendFn: func(ctx context.Context, payload json.RawMessage) error {
		return errors.New("sink down")
	}}

	clock := time.Now().UTC()
	d, err := NewDispatcher(repo, sink, testLogger(), Policy{MaxAttempts: 5, BackoffBaseMinutes: 2})
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}
	disp := d.(*dispatcher)
	disp.now = func() time.Time { return clock }

	var lastRetryAt time.Time
	for attempt := 1; attempt < 5; attempt++ {
		// Advance past the previous backoff so the row is due again.
		clock = clock.Add(24 * time.Hour)
		result, err := disp.Dispatch(context.Background())
		if err != nil {
			t.Fatalf("Dispatch error: %v", err)
		}
		if result.Processed != 1 || result.Failed != 1 {
			t.Fatalf("attempt %d: unexpected result %+v", attempt, result)
		}

		stored := repo.rows[row.ID]
		if stored.Attempts != attempt {
			t.Fatalf("attempts = %d, want %d", stored.Attempts, attempt)
		}
		if stored.Status != enums.OutboxStatusPending {
			t.Fatalf("status = %s before exhausting retries", stored.Status)
		}
		if stored.LastError == nil || *stored.LastError != "sink down" {
			t.Fatalf("last_error not recorded: %+v", stored.LastError)
		}
		if !stored.NextRetryAt.After(clock) {
			t.Fatal("next_retry_at must be in the future")
		}
		wantDelay := time.Duration(math2Pow(2, attempt)) * time.Minute
		if got := stored.NextRetryAt.Sub(clock); got != wantDelay {
			t.Fatalf("attempt %d: backoff = %s, want %s", attempt, got, wantDelay)
		}
		if !lastRetryAt.IsZero() && !stored.NextRetryAt.After(lastRetryAt) {
			t.Fatal("next_retry_at must strictly increase")
		}
		lastRetryAt = stored.NextRetryAt
	}

	// Fifth consecutive failure exhausts the budget.
	clock = clock.Add(24 * time.Hour)
	if _, err := disp.Dispatch(context.Background()); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	stored := repo.rows[row.ID]
	if stored.Status != enums.OutboxStatusFailed {
		t.Fatalf("status = %s, want failed at max attempts", stored.Status)
	}
	if stored.Attempts != 5 {
		t.Fatalf("attempts = %d, want 5", stored.Attempts)
	}

	// Exhausted rows are never auto-resurrected.
	clock = clock.Add(24 * time.Hour)
	before := sink.sends
	result, err := disp.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if result.Processed != 0 || sink.sends != before {
		t.Fatalf("failed row was re-dispatched: %+v sends=%d", result, sink.sends-before)
	}
}

func math2Pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

func TestDispatch_BatchIsolation(t *testing.T) {
	repo := newFakeRepository()
	base := time.Now().UTC().Add(-time.Hour)

	row1 := pendingRow(base)
	row2 := pendingRow(base.Add(time.Second))
	row3 := pendingRow(base.Add(2 * time.Second))
	row2.Payload = json.RawMessage(`{"poison":true}`)
	for _, row := range []*models.OutboxMessage{row1, row2, row3} {
		repo.rows[row.ID] = row
	}

	sink := &fakeSink{sendFn: func(ctx context.Context, payload json.RawMessage) error {
		if string(payload) == `{"poison":true}` {
			return fmt.Errorf("destination rejected payload")
		}
		return nil
	}}

	d, err := NewDispatcher(repo, sink, testLogger(), Policy{})
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}

	result, err := d.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if result.Processed != 3 || result.Sent != 2 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	if repo.rows[row1.ID].Status != enums.OutboxStatusSent {
		t.Fatal("row 1 should be sent despite row 2 failing")
	}
	if repo.rows[row3.ID].Status != enums.OutboxStatusSent {
		t.Fatal("row 3 should be sent despite row 2 failing")
	}
	if repo.rows[row2.ID].Status != enums.OutboxStatusPending || repo.rows[row2.ID].Attempts != 1 {
		t.Fatalf("row 2 should be pending with one attempt: %+v", repo.rows[row2.ID])
	}
}

func TestResend_ResetsAttemptsAndBypassesGate(t *testing.T) {
	repo := newFakeRepository()
	row := pendingRow(time.Now().UTC())
	row.Status = enums.OutboxStatusFailed
	row.Attempts = 5
	reason := "gave up"
	row.LastError = &reason
	row.NextRetryAt = time.Now().UTC().Add(time.Hour) // not due
	repo.rows[row.ID] = row

	sink := &fakeSink{}
	d, err := NewDispatcher(repo, sink, testLogger(), Policy{})
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}

	result, err := d.Resend(context.Background(), []uuid.UUID{row.ID})
	if err != nil {
		t.Fatalf("Resend error: %v", err)
	}
	if result.Processed != 1 || result.Sent != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	stored := repo.rows[row.ID]
	if stored.Status != enums.OutboxStatusSent {
		t.Fatalf("status = %s, want sent", stored.Status)
	}
	if stored.LastError != nil {
		t.Fatal("last_error should be cleared on success")
	}
}

func TestResend_UnknownIDRejected(t *testing.T) {
	d, err := NewDispatcher(newFakeRepository(), &fakeSink{}, testLogger(), Policy{})
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}
	if _, err := d.Resend(context.Background(), []uuid.UUID{uuid.New()}); err == nil {
		t.Fatal("expected error for unknown outbox id")
	}
	if _, err := d.Resend(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty id list")
	}
}
