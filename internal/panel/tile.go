package panel

import (
	"fmt"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

// Style classes returned by Tile.StyleClass.
const (
	TileClass         = "tile-wrapper"
	TileDisabledClass = "tile-wrapper tile-disable"
)

// TileSelectEvent is emitted by a tile to its container when activated.
type TileSelectEvent struct {
	Yacht yacht.Record
}

// Tile renders one result record. It holds a snapshot and never touches the bus.
type Tile struct {
	record     yacht.Record
	selectedID string
}

// NewTile creates a tile for r. selectedID is the last selected yacht, used
// for highlighting.
func NewTile(r yacht.Record, selectedID string) *Tile {
	return &Tile{record: r, selectedID: selectedID}
}

func (t *Tile) Record() yacht.Record {
	return t.record
}

func (t *Tile) ImageURL() string {
	return t.record.ImageURL
}

// BackgroundImage returns the style declaration for the tile image.
func (t *Tile) BackgroundImage() string {
	if t.record.ImageURL == "" {
		return ""
	}
	return fmt.Sprintf("background-image:url(%s)", t.record.ImageURL)
}

func (t *Tile) Available() bool {
	return t.record.Available
}

// StyleClass returns the disabled class for unavailable yachts.
func (t *Tile) StyleClass() string {
	if !t.record.Available {
		return TileDisabledClass
	}
	return TileClass
}

// Selected reports whether this tile was the last one selected.
func (t *Tile) Selected() bool {
	return t.selectedID != "" && t.selectedID == t.record.ID
}

// Select remembers the selection and returns the event for the container.
func (t *Tile) Select() TileSelectEvent {
	t.selectedID = t.record.ID
	return TileSelectEvent{Yacht: t.record}
}
