package panel

import (
	"testing"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

func TestTile_Rendering(t *testing.T) {
	tests := []struct {
		name      string
		record    yacht.Record
		wantClass string
		wantImage string
	}{
		{
			name:      "available with image",
			record:    yacht.Record{ID: "y1", Available: true, ImageURL: "https://img.example.com/y1.jpg"},
			wantClass: TileClass,
			wantImage: "background-image:url(https://img.example.com/y1.jpg)",
		},
		{
			name:      "unavailable without image",
			record:    yacht.Record{ID: "y2", Available: false},
			wantClass: TileDisabledClass,
			wantImage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := NewTile(tt.record, "")
			if got := tile.StyleClass(); got != tt.wantClass {
				t.Errorf("StyleClass() = %q, want %q", got, tt.wantClass)
			}
			if got := tile.BackgroundImage(); got != tt.wantImage {
				t.Errorf("BackgroundImage() = %q, want %q", got, tt.wantImage)
			}
			if tile.Available() != tt.record.Available || tile.ImageURL() != tt.record.ImageURL {
				t.Error("accessors do not reflect the record")
			}
		})
	}
}

func TestTile_Select(t *testing.T) {
	rec := yacht.Record{ID: "y3", Name: "Calypso", Available: true}
	tile := NewTile(rec, "y1")

	if tile.Selected() {
		t.Error("Selected() = true before selection")
	}
	e := tile.Select()
	if e.Yacht != rec {
		t.Errorf("event yacht = %v, want %v", e.Yacht, rec)
	}
	if !tile.Selected() {
		t.Error("Selected() = false after Select")
	}
	if tile.Record() != rec {
		t.Error("Select() changed the record")
	}
}
