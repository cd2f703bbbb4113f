// Package scan turns a scanned payload into a membership check plus one ledger transition.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymkiosk/internal/apperr"
	"gymkiosk/internal/attendance"
	"gymkiosk/internal/lock"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/memberid"
	"gymkiosk/internal/membership"
	"gymkiosk/internal/metrics"
	"gymkiosk/internal/photos"
)

// ExpiryLayout formats the end of a lapsed membership in outcome messages.
const ExpiryLayout = "2006-01-02 15:04"

// Validator resolves a member's membership state.
type Validator interface {
	Resolve(ctx context.Context, memberID string) (membership.Resolution, error)
}

// Recorder applies one check-in/check-out transition.
type Recorder interface {
	RecordScan(ctx context.Context, memberID string) (attendance.Result, error)
}

// Orchestrator composes the validator, the ledger and the photo store.
type Orchestrator struct {
	validator Validator
	ledger    Recorder
	photos    photos.Store
	locker    lock.Locker
	loc       *time.Location
	log       logging.Logger
	metrics   *metrics.Metrics
	lockWait  time.Duration
}

// Options carries the optional collaborators of an Orchestrator.
type Options struct {
	Photos   photos.Store
	Locker   lock.Locker
	Location *time.Location
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	LockWait time.Duration
}

// NewOrchestrator wires an orchestrator. Missing options fall back to no photos,
// an in-process locker, UTC and a discarding logger.
func NewOrchestrator(v Validator, r Recorder, opts Options) *Orchestrator {
	o := &Orchestrator{
		validator: v,
		ledger:    r,
		photos:    opts.Photos,
		locker:    opts.Locker,
		loc:       opts.Location,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		lockWait:  opts.LockWait,
	}
	if o.locker == nil {
		o.locker = lock.NewMemory()
	}
	if o.loc == nil {
		o.loc = time.UTC
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	if o.lockWait <= 0 {
		o.lockWait = 5 * time.Second
	}
	return o
}

// HandleScan validates payload, checks the membership and records the visit.
// Invalid, absent and expired members are outcomes, not errors; only store
// failures return an error (wrapping apperr.ErrUpstream).
func (o *Orchestrator) HandleScan(ctx context.Context, payload string) (out Outcome, err error) {
	started := time.Now()
	defer func() {
		if err == nil {
			o.metrics.ObserveScan(string(out.Status), string(out.Action), time.Since(started))
		}
	}()

	id := strings.TrimSpace(payload)
	if !memberid.Valid(id) {
		return Outcome{OK: false, Status: StatusInvalid, Message: "QR must be a 6-digit code."}, nil
	}

	res, err := o.validator.Resolve(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	switch res.State {
	case membership.StateAbsent:
		return Outcome{OK: true, Status: StatusNoMembership, Message: fmt.Sprintf("No membership for %s.", id)}, nil
	case membership.StateExpired:
		return Outcome{
			OK:         true,
			Status:     StatusExpired,
			Message:    fmt.Sprintf("Membership expired on %s.", res.Membership.EndAt.In(o.loc).Format(ExpiryLayout)),
			Membership: res.Membership,
		}, nil
	}

	photoURL, _ := o.photoURL(ctx, id)

	unlock, err := o.lockMember(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	result, err := o.ledger.RecordScan(ctx, id)
	unlock()
	if err != nil {
		return Outcome{}, err
	}

	o.log.Info(ctx, "scan recorded", "member_id", id, "action", result.Action, "log_id", result.Log.ID)

	log := result.Log
	return Outcome{
		OK:         true,
		Status:     StatusActive,
		Action:     result.Action,
		Message:    message(id, result),
		Membership: res.Membership,
		PhotoURL:   photoURL,
		Log:        &log,
	}, nil
}

func message(id string, r attendance.Result) string {
	if r.Action == attendance.ActionCheckOut {
		worked := 0
		if r.Log.WorkedMinutes != nil {
			worked = *r.Log.WorkedMinutes
		}
		return fmt.Sprintf("Checked out. Worked %d min.", worked)
	}
	return fmt.Sprintf("Check-in recorded for %s.", id)
}

// photoURL looks up the member's photo. Absence or failure yields ok=false.
func (o *Orchestrator) photoURL(ctx context.Context, id string) (string, bool) {
	if o.photos == nil {
		return "", false
	}
	url, err := o.photos.URL(ctx, id)
	if err != nil {
		o.metrics.PhotoMiss()
		if !errors.Is(err, apperr.ErrNotFound) {
			o.log.Debug(ctx, "photo lookup failed", "member_id", id, "err", err)
		}
		return "", false
	}
	return url, url != ""
}

func (o *Orchestrator) lockMember(ctx context.Context, id string) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, o.lockWait)
	defer cancel()
	unlock, err := o.locker.Lock(lctx, "member:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock member %s: %w: %w", id, apperr.ErrUpstream, err)
	}
	return unlock, nil
}
