package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire formats used by the legacy clinic API. Timestamps come without a zone
// offset ("2024-01-01T10:30:00"), dates as plain "2024-01-01".
const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// DateTime zone-less legacy timestamp. Accepts RFC3339 as well so the client
// also works against sources that emit offsets.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{dateTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q", s)
}

// Date legacy calendar date
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// ClientRecord transient legacy client row, fetched per run and never
// persisted as-is
type ClientRecord struct {
	Guid      uuid.UUID `json:"guid"`
	Agency    string    `json:"agency"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Status    string    `json:"status"`
	DOB       *Date     `json:"dob"`
	CreatedAt DateTime  `json:"createdDateTime"`
}

// CommentRecord transient legacy comment row
type CommentRecord struct {
	Text       string    `json:"comments"`
	Guid       uuid.UUID `json:"guid"`
	ClientGuid uuid.UUID `json:"clientGuid"`
	Datetime   *DateTime `json:"datetime"`
	LoggedUser string    `json:"loggedUser"`
	CreatedAt  DateTime  `json:"createdDateTime"`
	ModifiedAt *DateTime `json:"modifiedDateTime"`
}

// CommentQuery request body for the legacy notes endpoint
type CommentQuery struct {
	Agency     string    `json:"agency"`
	ClientGuid uuid.UUID `json:"clientGuid"`
	DateFrom   Date      `json:"dateFrom"`
	DateTo     Date      `json:"dateTo"`
}

// ClientValidator pluggable field-constraint predicate for client records
type ClientValidator func(ClientRecord) bool

// CommentValidator pluggable field-constraint predicate for comment records
type CommentValidator func(CommentRecord) bool

// ValidClient default client constraints: guid and createdDateTime present,
// agency/firstName/lastName/status non-blank. DOB is optional.
func ValidClient(c ClientRecord) bool {
	return c.Guid != uuid.Nil &&
		notBlank(c.Agency) &&
		notBlank(c.FirstName) &&
		notBlank(c.LastName) &&
		notBlank(c.Status) &&
		!c.CreatedAt.IsZero()
}

// ValidComment default comment constraints: guids, author and createdDateTime
// present, text non-blank. datetime and modifiedDateTime are optional.
func ValidComment(c CommentRecord) bool {
	return c.Guid != uuid.Nil &&
		c.ClientGuid != uuid.Nil &&
		notBlank(c.Text) &&
		notBlank(c.LoggedUser) &&
		!c.CreatedAt.IsZero()
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
