package announcement

import "context"

// Store persists announcements keyed by message id.
type Store interface {
	InsertAnnouncement(ctx context.Context, a *Announcement) error
	GetAnnouncement(ctx context.Context, messageID int64) (*Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *Announcement) error
	ListAnnouncements(ctx context.Context, flightNumber string) ([]*Announcement, error)
}
