package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymkiosk/internal/apperr"
)

// memStore mimics the partial unique index: one open log per member and day.
type memStore struct {
	logs      []Log
	findErr   error
	createErr error
	mutations int
}

func (m *memStore) FindOpen(ctx context.Context, memberID, date string) (*Log, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.logs {
		l := m.logs[i]
		if l.MemberID == memberID && l.Date == date && l.Open() {
			return &l, nil
		}
	}
	return nil, nil
}

func (m *memStore) Create(ctx context.Context, l Log) (Log, error) {
	if m.createErr != nil {
		return Log{}, m.createErr
	}
	for _, existing := range m.logs {
		if existing.MemberID == l.MemberID && existing.Date == l.Date && existing.Open() {
			return Log{}, ErrOpenLogExists
		}
	}
	m.mutations++
	l.ID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, l)
	return l, nil
}

func (m *memStore) Close(ctx context.Context, id string, checkout, worked int) (Log, error) {
	for i := range m.logs {
		if m.logs[i].ID == id && m.logs[i].Open() {
			m.mutations++
			m.logs[i].CheckoutMinutes = &checkout
			m.logs[i].WorkedMinutes = &worked
			return m.logs[i], nil
		}
	}
	return Log{}, errors.New("not open")
}

type tick struct{ t time.Time }

func (k *tick) now() time.Time { return k.t }

func beirut(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Beirut")
	require.NoError(t, err)
	return loc
}

func TestRecordScan_AlternatesCheckinCheckout(t *testing.T) {
	loc := beirut(t)
	clk := &tick{t: time.Date(2026, 3, 10, 9, 0, 0, 0, loc)}
	st := &memStore{}
	ledger := NewLedger(st, NewClock(loc).WithNow(clk.now))
	ctx := context.Background()

	first, err := ledger.RecordScan(ctx, "000001")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, first.Action)
	assert.Equal(t, 540, first.Log.CheckInMinutes)
	assert.Equal(t, "2026-03-10", first.Log.Date)
	assert.Nil(t, first.Log.CheckoutMinutes)

	clk.t = clk.t.Add(time.Hour)
	second, err := ledger.RecordScan(ctx, "000001")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckOut, second.Action)
	require.NotNil(t, second.Log.CheckoutMinutes)
	require.NotNil(t, second.Log.WorkedMinutes)
	assert.Equal(t, 600, *second.Log.CheckoutMinutes)
	assert.Equal(t, 60, *second.Log.WorkedMinutes)
	assert.Equal(t, first.Log.ID, second.Log.ID)

	clk.t = clk.t.Add(time.Minute)
	third, err := ledger.RecordScan(ctx, "000001")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, third.Action)
	assert.NotEqual(t, first.Log.ID, third.Log.ID)

	assert.Equal(t, 3, st.mutations)
}

func TestRecordScan_UsesConfiguredZoneNotUTC(t *testing.T) {
	loc := beirut(t)
	// 22:30 UTC on the 10th is already the 11th in Beirut.
	clk := &tick{t: time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)}
	ledger := NewLedger(&memStore{}, NewClock(loc).WithNow(clk.now))

	res, err := ledger.RecordScan(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", res.Log.Date)
	assert.Equal(t, 30, res.Log.CheckInMinutes)
}

func TestRecordScan_PreviousDayOpenLogIsIgnored(t *testing.T) {
	st := &memStore{logs: []Log{{ID: "old", MemberID: "000001", Date: "2026-03-09", CheckInMinutes: 1200}}}
	clk := &tick{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	ledger := NewLedger(st, NewClock(time.UTC).WithNow(clk.now))

	res, err := ledger.RecordScan(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, res.Action)
	assert.NotEqual(t, "old", res.Log.ID)
}

type racingStore struct {
	memStore
	winner Log
	calls  int
}

// FindOpen reports nothing the first time, then the log a concurrent scan created.
func (r *racingStore) FindOpen(ctx context.Context, memberID, date string) (*Log, error) {
	r.calls++
	if r.calls == 1 {
		return nil, nil
	}
	return &r.winner, nil
}

func (r *racingStore) Create(ctx context.Context, l Log) (Log, error) {
	return Log{}, ErrOpenLogExists
}

func TestRecordScan_ConcurrentCreateCollapsesToCheckin(t *testing.T) {
	st := &racingStore{winner: Log{ID: "winner", MemberID: "000001", Date: "2026-03-10", CheckInMinutes: 540}}
	ledger := NewLedger(st, NewClock(time.UTC))

	res, err := ledger.RecordScan(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, res.Action)
	assert.Equal(t, "winner", res.Log.ID)
}

func TestRecordScan_StoreErrorsAreUpstream(t *testing.T) {
	ledger := NewLedger(&memStore{findErr: errors.New("timeout")}, NewClock(time.UTC))
	_, err := ledger.RecordScan(context.Background(), "000001")
	require.ErrorIs(t, err, apperr.ErrUpstream)

	ledger = NewLedger(&memStore{createErr: errors.New("disk full")}, NewClock(time.UTC))
	_, err = ledger.RecordScan(context.Background(), "000001")
	require.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestWorkedMinutes(t *testing.T) {
	assert.Equal(t, 60, WorkedMinutes(540, 600))
	assert.Equal(t, 0, WorkedMinutes(600, 600))
	assert.Equal(t, 0, WorkedMinutes(1430, 10))
}

func TestClock_MinutesSinceMidnight(t *testing.T) {
	clk := NewClock(time.UTC)
	assert.Equal(t, 0, clk.MinutesSinceMidnight(time.Date(2026, 1, 1, 0, 0, 59, 0, time.UTC)))
	assert.Equal(t, 1439, clk.MinutesSinceMidnight(time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01-01", clk.Day(time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)))
}
