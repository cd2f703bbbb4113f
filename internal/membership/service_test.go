package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymkiosk/internal/apperr"
)

type fakeStore struct {
	latest    *Membership
	latestErr error
	createErr error
	created   []Membership
}

func (f *fakeStore) Latest(ctx context.Context, memberID string) (*Membership, error) {
	return f.latest, f.latestErr
}

func (f *fakeStore) Create(ctx context.Context, m Membership) (Membership, error) {
	if f.createErr != nil {
		return Membership{}, f.createErr
	}
	m.ID = "m-1"
	f.created = append(f.created, m)
	return m, nil
}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		latest *Membership
		want   State
	}{
		{"absent", nil, StateAbsent},
		{"active", &Membership{Status: StatusActive, EndAt: now.Add(time.Hour)}, StateActive},
		{"ends exactly now", &Membership{Status: StatusActive, EndAt: now}, StateActive},
		{"end in past", &Membership{Status: StatusActive, EndAt: now.Add(-time.Second)}, StateExpired},
		{"end in past regardless of status", &Membership{Status: "frozen", EndAt: now.Add(-time.Hour)}, StateExpired},
		{"inactive status", &Membership{Status: "cancelled", EndAt: now.Add(time.Hour)}, StateExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeStore{latest: tc.latest}, "skygym").WithClock(fixedNow)

			res, err := svc.Resolve(context.Background(), "000001")
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.State)
			assert.Equal(t, tc.latest, res.Membership)
		})
	}
}

func TestResolve_StoreFailureIsUpstream(t *testing.T) {
	svc := NewService(&fakeStore{latestErr: errors.New("conn refused")}, "skygym")

	_, err := svc.Resolve(context.Background(), "000001")
	require.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestCreateMonthly(t *testing.T) {
	fs := &fakeStore{}
	svc := NewService(fs, "skygym").WithClock(fixedNow)

	m, err := svc.CreateMonthly(context.Background(), "000007", 3)
	require.NoError(t, err)

	assert.Equal(t, "000007", m.MemberID)
	assert.Equal(t, StatusActive, m.Status)
	assert.Equal(t, "skygym", m.Location)
	assert.Equal(t, now, m.StartAt)
	assert.Equal(t, time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC), m.EndAt)
}

func TestCreateMonthly_DefaultsToOneMonth(t *testing.T) {
	svc := NewService(&fakeStore{}, "skygym").WithClock(fixedNow)

	m, err := svc.CreateMonthly(context.Background(), "000007", 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC), m.EndAt)
}

func TestCreateDaily(t *testing.T) {
	svc := NewService(&fakeStore{}, "skygym").WithClock(fixedNow)

	m, err := svc.CreateDaily(context.Background(), "000007")
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), m.EndAt)
}

func TestCreate_RejectsBadMemberID(t *testing.T) {
	fs := &fakeStore{}
	svc := NewService(fs, "skygym")

	_, err := svc.CreateDaily(context.Background(), "12345")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, fs.created)
}

func TestCreate_StoreFailureIsUpstream(t *testing.T) {
	svc := NewService(&fakeStore{createErr: errors.New("down")}, "skygym")

	_, err := svc.CreateMonthly(context.Background(), "000007", 1)
	require.ErrorIs(t, err, apperr.ErrUpstream)
}
