// Package id defines TypeID-based identifiers for skydesk records that have
// no natural key.
//
// Tickets, announcements and audit events get an ID of the form
// "prefix_suffix" (for example "tkt_01h2xcejqtf2nbrexx3vqjhp41"). Accounts,
// flights and reservations are keyed by platform user id, flight code and
// booking code and do not use this package.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the record type encoded in an ID.
type Prefix string

const (
	PrefixTicket       Prefix = "tkt"
	PrefixAnnouncement Prefix = "ann"
	PrefixAuditEvent   Prefix = "aud"
)

// ID is a prefix-qualified, K-sortable identifier. The zero value is the
// nil ID and stores as SQL NULL.
//
//nolint:recvcheck // UnmarshalText and Scan need pointer receivers.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// TicketID identifies a support ticket.
type TicketID = ID

// AnnouncementID identifies a boarding announcement.
type AnnouncementID = ID

// AuditEventID identifies an audit trail event.
type AuditEventID = ID

// New generates an ID with the given prefix. It panics on a malformed
// prefix, which only the constants above can supply.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: generate %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

func NewTicketID() ID       { return New(PrefixTicket) }
func NewAnnouncementID() ID { return New(PrefixAnnouncement) }
func NewAuditEventID() ID   { return New(PrefixAuditEvent) }

// Parse parses any skydesk ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("id: parse: empty string")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseTicketID parses s and requires the "tkt" prefix.
func ParseTicketID(s string) (ID, error) { return parseAs(s, PrefixTicket) }

// ParseAnnouncementID parses s and requires the "ann" prefix.
func ParseAnnouncementID(s string) (ID, error) { return parseAs(s, PrefixAnnouncement) }

func parseAs(s string, want Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return ID{}, err
	}
	if got := parsed.Prefix(); got != want {
		return ID{}, fmt.Errorf("id: %q has prefix %q, want %q", s, got, want)
	}
	return parsed, nil
}

func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the record type of i, or "" for the nil ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler. The nil ID encodes as "".
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = ID{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value implements driver.Valuer.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // NULL
	}
	return i.inner.String(), nil
}

// Scan implements sql.Scanner for TEXT columns and NULL.
func (i *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = ID{}
		return nil
	case string:
		return i.UnmarshalText([]byte(v))
	case []byte:
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
