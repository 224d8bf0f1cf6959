package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/aiteamhq/billsync/internal/domain/profile"
	ierr "github.com/aiteamhq/billsync/internal/errors"
)

// InMemoryProfileStore implements profile.Repository
type InMemoryProfileStore struct {
	*InMemoryStore[*profile.Profile]
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		InMemoryStore: NewInMemoryStore[*profile.Profile](),
	}
}

func copyProfile(p *profile.Profile) *profile.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Add seeds a profile
func (s *InMemoryProfileStore) Add(p *profile.Profile) {
	s.Set(context.Background(), p.ID, copyProfile(p))
}

func (s *InMemoryProfileStore) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	matches := s.List(ctx, func(_ context.Context, p *profile.Profile) bool {
		return strings.ToLower(p.Email) == email
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("profile not found").
			WithHint("Profile not found").
			Mark(ierr.ErrNotFound)
	}
	return copyProfile(matches[0]), nil
}

func (s *InMemoryProfileStore) UpdateContact(ctx context.Context, p *profile.Profile) error {
	return s.Mutate(ctx, p.ID, func(existing *profile.Profile) *profile.Profile {
		updated := copyProfile(existing)
		updated.FullName = p.FullName
		updated.Phone = p.Phone
		updated.UpdatedAt = time.Now().UTC()
		return updated
	})
}
