// Package directory is the public, read-only view of verified organizations.
package directory

import (
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/shopspring/decimal"
)

// RecentLimit caps the search result when neither a keyword nor a category is given.
const RecentLimit = 12

var ErrOrganizationNotFound = errors.NewNotFoundError("Organization not found", errors.ErrCodeOrganizationNotFound)

// Row is a verified_organizations row as read by the directory queries.
type Row struct {
	ID                  int64     `db:"id"`
	Name                string    `db:"name"`
	Category            string    `db:"category"`
	Mission             string    `db:"mission"`
	Website             *string   `db:"website"`
	ContactEmail        string    `db:"contact_email"`
	ContactPhone        string    `db:"contact_phone"`
	Location            string    `db:"location"`
	TotalDonationsCents int64     `db:"total_donations_cents"`
	ApprovedAt          time.Time `db:"approved_at"`
}

type Organization struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	Mission             string    `json:"mission"`
	Website             *string   `json:"website,omitempty"`
	ContactEmail        string    `json:"contact_email"`
	ContactPhone        string    `json:"contact_phone,omitempty"`
	Location            string    `json:"location,omitempty"`
	TotalDonations      string    `json:"total_donations"`
	TotalDonationsCents int64     `json:"total_donations_cents"`
	ApprovedAt          time.Time `json:"approved_at"`
}

type SearchQuery struct {
	Keyword  string
	Category string
}

func (q SearchQuery) IsEmpty() bool {
	return q.Keyword == "" && q.Category == ""
}

func FromRow(r *Row) *Organization {
	return &Organization{
		ID:                  r.ID,
		Name:                r.Name,
		Category:            r.Category,
		Mission:             r.Mission,
		Website:             r.Website,
		ContactEmail:        r.ContactEmail,
		ContactPhone:        r.ContactPhone,
		Location:            r.Location,
		TotalDonations:      decimal.New(r.TotalDonationsCents, -2).StringFixed(2),
		TotalDonationsCents: r.TotalDonationsCents,
		ApprovedAt:          r.ApprovedAt,
	}
}

func fromRows(rows []*Row) []*Organization {
	out := make([]*Organization, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromRow(r))
	}
	return out
}
