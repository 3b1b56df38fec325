package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

// Sink delivers one payload to the external destination. Delivery is
// at-least-once; the destination dedupes on booking_id.
type Sink interface {
	Send(ctx context.Context, payload json.RawMessage) error
}

// Policy bounds the retry behavior of a dispatcher.
type Policy struct {
	BatchSize          int
	MaxAttempts        int
	BackoffBaseMinutes int
	SendTimeout        time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.BatchSize <= 0 {
		p.BatchSize = 50
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.BackoffBaseMinutes <= 0 {
		p.BackoffBaseMinutes = 2
	}
	if p.SendTimeout <= 0 {
		p.SendTimeout = 10 * time.Second
	}
	return p
}

// Result reports what one dispatch pass did.
type Result struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// Dispatcher drains due outbox rows to the sink. Each invocation handles one
// bounded batch and returns; an external scheduler drives repetition.
type Dispatcher interface {
	Dispatch(ctx context.Context) (*Result, error)
	Resend(ctx context.Context, ids []uuid.UUID) (*Result, error)
}

type dispatcher struct {
	repo   Repository
	sink   Sink
	logg   *logger.Logger
	policy Policy
	now    func() time.Time
}

// NewDispatcher wires an outbox dispatcher.
func NewDispatcher(repo Repository, sink Sink, logg *logger.Logger, policy Policy) (Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if sink == nil {
		return nil, fmt.Errorf("outbox sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &dispatcher{
		repo:   repo,
		sink:   sink,
		logg:   logg,
		policy: policy.withDefaults(),
		now:    time.Now,
	}, nil
}

func (d *dispatcher) Dispatch(ctx context.Context) (*Result, error) {
	rows, err := d.repo.DueBatch(ctx, d.now().UTC(), d.policy.MaxAttempts, d.policy.BatchSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "selecting due outbox rows")
	}
	return d.deliverAll(ctx, rows), nil
}

// Resend targets explicit rows, resetting their attempt counters first so
// operator-resurrected rows get a full retry budget. The next_retry_at gate is
// bypassed on purpose.
func (d *dispatcher) Resend(ctx context.Context, ids []uuid.UUID) (*Result, error) {
	if len(ids) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one outbox id is required")
	}

	rows, err := d.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading outbox rows")
	}
	if len(rows) != len(ids) {
		return nil, apperrors.New(apperrors.CodeNotFound, "one or more outbox rows not found")
	}

	for i := range rows {
		rows[i].Attempts = 0
		rows[i].Status = enums.OutboxStatusPending
		rows[i].LastError = nil
	}
	return d.deliverAll(ctx, rows), nil
}

// deliverAll processes rows sequentially with per-row isolation: one row's
// failure never aborts the remainder of the batch.
func (d *dispatcher) deliverAll(ctx context.Context, rows []models.OutboxMessage) *Result {
	result := &Result{}
	for i := range rows {
		result.Processed++
		if d.deliver(ctx, &rows[i]) {
			result.Sent++
		} else {
			result.Failed++
		}
	}
	return result
}

func (d *dispatcher) deliver(ctx context.Context, row *models.OutboxMessage) bool {
	rowCtx := d.logg.WithFields(ctx, map[string]any{
		"outbox_id":  row.ID.String(),
		"booking_id": row.BookingID.String(),
	})

	sendCtx, cancel := context.WithTimeout(ctx, d.policy.SendTimeout)
	sendErr := d.sink.Send(sendCtx, row.Payload)
	cancel()

	now := d.now().UTC()
	if sendErr == nil {
		row.Status = enums.OutboxStatusSent
		row.LastError = nil
		if err := d.repo.Update(ctx, row); err != nil {
			d.logg.Error(rowCtx, "failed to mark outbox row sent", err)
			return false
		}
		return true
	}

	row.Attempts++
	delay := backoffDelay(d.policy.BackoffBaseMinutes, row.Attempts)
	row.NextRetryAt = now.Add(delay)
	reason := sendErr.Error()
	row.LastError = &reason
	if row.Attempts >= d.policy.MaxAttempts {
		row.Status = enums.OutboxStatusFailed
	} else {
		row.Status = enums.OutboxStatusPending
	}

	if err := d.repo.Update(ctx, row); err != nil {
		d.logg.Error(rowCtx, "failed to record outbox delivery failure", err)
		return false
	}

	d.logg.Warn(d.logg.WithField(rowCtx, "attempts", row.Attempts), "outbox delivery failed: "+reason)
	return false
}

// backoffDelay grows base^attempts minutes.
func backoffDelay(baseMinutes, attempts int) time.Duration {
	minutes := math.Pow(float64(baseMinutes), float64(attempts))
	return time.Duration(minutes * float64(time.Minute))
}
