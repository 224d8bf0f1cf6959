package profile

import "time"

// Profile is the application's record of a person using the dashboard. The
// billing flow only ever reads it by email and mirrors contact fields onto it.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ApplyContact copies the non-empty contact fields and reports whether anything changed
func (p *Profile) ApplyContact(fullName, phone string) bool {
	changed := false
	if fullName != "" && fullName != p.FullName {
		p.FullName = fullName
		changed = true
	}
	if phone != "" && phone != p.Phone {
		p.Phone = phone
		changed = true
	}
	return changed
}
