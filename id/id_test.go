package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/skydesk/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"TicketID", id.NewTicketID, "tkt_"},
		{"AnnouncementID", id.NewAnnouncementID, "ann_"},
		{"AuditEventID", id.NewAuditEventID, "aud_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestTypedParsers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
		wantErr bool
	}{
		{"ticket round-trip", id.NewTicketID().String(), id.ParseTicketID, false},
		{"announcement round-trip", id.NewAnnouncementID().String(), id.ParseAnnouncementID, false},
		{"ticket rejects ann_", id.NewAnnouncementID().String(), id.ParseTicketID, true},
		{"announcement rejects tkt_", id.NewTicketID().String(), id.ParseAnnouncementID, true},
		{"ticket rejects garbage", "not-an-id", id.ParseTicketID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := tt.parseFn(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error parsing %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != tt.input {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewTicketID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	var fromBytes id.ID
	if err := fromBytes.Scan([]byte(original.String())); err != nil {
		t.Fatalf("Scan([]byte) failed: %v", err)
	}
	if fromBytes.String() != original.String() {
		t.Errorf("mismatch: %q != %q", fromBytes.String(), original.String())
	}

	var nilID id.ID
	if val, _ := nilID.Value(); val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}
	var scannedNil id.ID
	if err := scannedNil.Scan(nil); err != nil || !scannedNil.IsNil() {
		t.Errorf("Scan(nil) = %v, nil=%v", err, scannedNil.IsNil())
	}
	if err := scannedNil.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestMarshalText(t *testing.T) {
	original := id.NewAnnouncementID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewTicketID()
	b := id.NewTicketID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewTicketID() calls returned the same ID: %q", a.String())
	}
}
