package attendance

import (
	"context"
	"errors"
	"fmt"

	"gymkiosk/internal/apperr"
)

// Store is what the ledger needs from persistence.
type Store interface {
	FindOpen(ctx context.Context, memberID, date string) (*Log, error)
	Create(ctx context.Context, l Log) (Log, error)
	Close(ctx context.Context, id string, checkout, worked int) (Log, error)
}

// Ledger flips a member's day between checked-in and checked-out.
type Ledger struct {
	store Store
	clock Clock
}

// NewLedger creates a ledger computing days and minutes with clock.
func NewLedger(store Store, clock Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// RecordScan opens a log when the member has none open today and closes it otherwise.
// It performs exactly one mutation.
func (l *Ledger) RecordScan(ctx context.Context, memberID string) (Result, error) {
	now := l.clock.Now()
	day := l.clock.Day(now)
	minutes := l.clock.MinutesSinceMidnight(now)

	open, err := l.store.FindOpen(ctx, memberID, day)
	if err != nil {
		return Result{}, fmt.Errorf("find open log: %w: %w", apperr.ErrUpstream, err)
	}
	if open != nil {
		closed, err := l.store.Close(ctx, open.ID, minutes, WorkedMinutes(open.CheckInMinutes, minutes))
		if err != nil {
			return Result{}, fmt.Errorf("close log %s: %w: %w", open.ID, apperr.ErrUpstream, err)
		}
		return Result{Action: ActionCheckOut, Log: closed}, nil
	}

	created, err := l.store.Create(ctx, Log{MemberID: memberID, Date: day, CheckInMinutes: minutes})
	if errors.Is(err, ErrOpenLogExists) {
		// A concurrent scan opened the log first; report that check-in instead of a second one.
		open, err = l.store.FindOpen(ctx, memberID, day)
		if err == nil && open != nil {
			return Result{Action: ActionCheckIn, Log: *open}, nil
		}
		if err == nil {
			err = ErrOpenLogExists
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("create log: %w: %w", apperr.ErrUpstream, err)
	}
	return Result{Action: ActionCheckIn, Log: created}, nil
}
