package domain

import "time"

// Company groups client users and the tickets they open.
type Company struct {
	ID        string
	Name      string
	TaxID     *string
	Users     []UserSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}
