package types_test

import (
	"testing"
	"time"

	"github.com/xraph/skydesk/types"
)

func TestEntity(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*60*60)
	created := time.Date(2026, time.October, 17, 15, 0, 0, 0, local)

	e := types.NewEntity(created)
	if e.CreatedAt.Location() != time.UTC || !e.CreatedAt.Equal(created) {
		t.Errorf("expected UTC %v, got %v", created.UTC(), e.CreatedAt)
	}
	if !e.UpdatedAt.Equal(e.CreatedAt) {
		t.Errorf("new entity should have UpdatedAt == CreatedAt")
	}

	later := created.Add(90 * time.Minute)
	e.Touch(later)
	if !e.UpdatedAt.Equal(later) {
		t.Errorf("Touch: expected %v, got %v", later, e.UpdatedAt)
	}
	if got := e.Age(later); got != 90*time.Minute {
		t.Errorf("Age: expected 90m, got %v", got)
	}
}
