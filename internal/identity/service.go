// Package identity manages member login accounts and enrolment.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/bcrypt"

	"gymkiosk/internal/apperr"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/memberid"
	"gymkiosk/internal/metrics"
	"gymkiosk/internal/photos"
)

// PageSize is the number of identities fetched per listing call.
const PageSize = 100

const enrolAttempts = 3

// hashPassword is swapped in tests for a cheaper cost.
var hashPassword = func(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, in Identity) (Identity, error)
	List(ctx context.Context, after string, limit int) (Page, error)
}

type Service struct {
	store   Store
	photos  photos.Store
	domain  string
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, photoStore photos.Store, domain string, log logging.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{store: store, photos: photoStore, domain: domain, log: log, metrics: m}
}

// NextNumber returns one more than the highest member number in use, starting at 1.
func (s *Service) NextNumber(ctx context.Context) (int, error) {
	highest := 0
	after := ""
	for {
		page, err := s.store.List(ctx, after, PageSize)
		if err != nil {
			return 0, fmt.Errorf("list identities: %w: %w", apperr.ErrUpstream, err)
		}
		for _, i := range page.Identities {
			if n, ok := memberid.FromEmail(i.Email, s.domain); ok && n > highest {
				highest = n
			}
		}
		if page.Next == "" {
			break
		}
		after = page.Next
	}
	if highest >= memberid.Max {
		return 0, fmt.Errorf("member numbers exhausted: %w", apperr.ErrUpstream)
	}
	return highest + 1, nil
}

// Enrol creates an identity under the next member number and stores its photo.
func (s *Service) Enrol(ctx context.Context, req EnrolRequest) (Enrolment, error) {
	if req.Password == "" {
		return Enrolment{}, fmt.Errorf("password is required: %w", apperr.ErrValidation)
	}
	if len(req.Photo) == 0 {
		return Enrolment{}, fmt.Errorf("photo is required: %w", apperr.ErrValidation)
	}
	mtype := mimetype.Detect(req.Photo)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Enrolment{}, fmt.Errorf("photo %q is %s, not an image: %w", req.Filename, mtype.String(), apperr.ErrValidation)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return Enrolment{}, fmt.Errorf("hash password: %w", err)
	}

	var (
		created Identity
		number  int
	)
	for attempt := 0; ; attempt++ {
		number, err = s.NextNumber(ctx)
		if err != nil {
			return Enrolment{}, err
		}
		email := memberid.Email(memberid.Format(number), s.domain)
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = email
		}
		created, err = s.store.Create(ctx, Identity{Email: email, Name: name, PasswordHash: string(hash)})
		if err == nil {
			break
		}
		if errors.Is(err, ErrEmailTaken) && attempt+1 < enrolAttempts {
			s.log.Warn(ctx, "member number taken, retrying", "number", number)
			continue
		}
		return Enrolment{}, fmt.Errorf("create identity: %w: %w", apperr.ErrUpstream, err)
	}

	key := memberid.Format(number)
	if err := s.photos.Delete(ctx, key); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.log.Debug(ctx, "old photo delete failed", "key", key, "err", err)
	}
	if err := s.photos.Put(ctx, key, req.Photo, mtype.String()); err != nil {
		return Enrolment{}, fmt.Errorf("upload photo %s: %w: %w", key, apperr.ErrUpstream, err)
	}

	s.metrics.Enrolled()
	s.log.Info(ctx, "member enrolled", "number", key, "identity_id", created.ID)
	return Enrolment{
		Identity:  created,
		Number:    number,
		NumberStr: key,
		Email:     created.Email,
	}, nil
}
