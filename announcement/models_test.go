package announcement_test

import (
	"testing"

	"github.com/xraph/skydesk/announcement"
)

func TestOnTime(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"On Time", true},
		{"ON TIME - boarding soon", true},
		{"Delayed", false},
		{"", false},
	}
	for _, tt := range tests {
		a := &announcement.Announcement{Status: tt.status}
		if got := a.OnTime(); got != tt.want {
			t.Errorf("OnTime(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
