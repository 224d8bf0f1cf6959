package profile

import "context"

// Repository defines the interface for profile lookups
type Repository interface {
	// GetByEmail returns the profile with the given email, matched case-insensitively
	GetByEmail(ctx context.Context, email string) (*Profile, error)

	// UpdateContact writes full_name and phone of an existing profile
	UpdateContact(ctx context.Context, profile *Profile) error
}
