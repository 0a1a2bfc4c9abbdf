package natsadapter

import (
	"testing"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

func TestSubject(t *testing.T) {
	got := Subject(domain.RecordChange{Kind: domain.FeatureKindEvent, ID: "1", Op: domain.ChangeDestroyed})
	if got != "crew.records.event.destroyed" {
		t.Errorf("subject = %q", got)
	}
}

func TestDecodeChange(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"kind":"job","id":"42","op":"saved","at":"2025-01-01T00:00:00Z"}`, false},
		{"bad json", `{"kind":`, true},
		{"unknown kind", `{"kind":"vessel","id":"42","op":"saved"}`, true},
		{"missing id", `{"kind":"job","op":"saved"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := decodeChange([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (change.ID != "42" || !change.At.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))) {
				t.Errorf("unexpected change %+v", change)
			}
		})
	}
}
