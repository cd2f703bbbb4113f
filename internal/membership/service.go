package membership

import (
	"context"
	"fmt"
	"time"

	"gymkiosk/internal/apperr"
	"gymkiosk/internal/memberid"
)

// Store is what the validator and service need from persistence.
type Store interface {
	Latest(ctx context.Context, memberID string) (*Membership, error)
	Create(ctx context.Context, m Membership) (Membership, error)
}

// Service resolves membership validity and issues new memberships.
type Service struct {
	store    Store
	location string
	now      func() time.Time
}

// NewService creates a service. location is stamped on every membership it creates.
func NewService(store Store, location string) *Service {
	return &Service{store: store, location: location, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Resolve decides whether memberID has no membership, an expired one or an active one.
func (s *Service) Resolve(ctx context.Context, memberID string) (Resolution, error) {
	m, err := s.store.Latest(ctx, memberID)
	if err != nil {
		return Resolution{}, fmt.Errorf("latest membership for %s: %w: %w", memberID, apperr.ErrUpstream, err)
	}
	switch {
	case m == nil:
		return Resolution{State: StateAbsent}, nil
	case IsActive(m, s.now()):
		return Resolution{State: StateActive, Membership: m}, nil
	default:
		return Resolution{State: StateExpired, Membership: m}, nil
	}
}

// CreateMonthly issues an active membership lasting the given number of calendar months.
// Values below one are treated as one.
func (s *Service) CreateMonthly(ctx context.Context, memberID string, months int) (Membership, error) {
	if months < 1 {
		months = 1
	}
	start := s.now()
	return s.create(ctx, memberID, start, start.AddDate(0, months, 0))
}

// CreateDaily issues an active pass valid for the next 24 hours.
func (s *Service) CreateDaily(ctx context.Context, memberID string) (Membership, error) {
	start := s.now()
	return s.create(ctx, memberID, start, start.Add(24*time.Hour))
}

func (s *Service) create(ctx context.Context, memberID string, start, end time.Time) (Membership, error) {
	if !memberid.Valid(memberID) {
		return Membership{}, fmt.Errorf("user_id must be 6 digits: %w", apperr.ErrValidation)
	}
	m, err := s.store.Create(ctx, Membership{
		MemberID: memberID,
		Status:   StatusActive,
		StartAt:  start,
		EndAt:    end,
		Location: s.location,
	})
	if err != nil {
		return Membership{}, fmt.Errorf("create membership: %w: %w", apperr.ErrUpstream, err)
	}
	return m, nil
}
