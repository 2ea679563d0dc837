// Package types provides common types shared by skydesk entities.
package types

import "time"

// Entity carries creation and modification timestamps.
// Embed it in records that are edited after they are created.
type Entity struct {
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// NewEntity creates an Entity stamped at t (UTC).
func NewEntity(t time.Time) Entity {
	t = t.UTC()
	return Entity{
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// Touch sets UpdatedAt to t (UTC).
func (e *Entity) Touch(t time.Time) {
	e.UpdatedAt = t.UTC()
}

// Age returns how long before now the entity was created.
func (e Entity) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
