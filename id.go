package skydesk

import "github.com/xraph/skydesk/id"

// ID is the identifier type for tickets, announcements and audit events.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
