// Package model defines the core data types for collage generation.
// Struct tags mirror the JSON shape the data API serves, so the same types
// flow from the Last.fm proxy through the cache and into the export pipeline.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is the Last.fm time window a collage covers.
type Period string

const (
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
	PeriodOverall Period = "overall"
)

// AllPeriods is the ordered list of periods, shortest window first.
var AllPeriods = []Period{Period7Day, Period1Month, Period3Month, Period6Month, Period12Month, PeriodOverall}

// Valid reports whether p is one of the Last.fm periods.
func (p Period) Valid() bool {
	for _, v := range AllPeriods {
		if p == v {
			return true
		}
	}
	return false
}

// ItemType is the kind of tile in a collage.
type ItemType string

const (
	TypeArtists ItemType = "artists"
	TypeAlbums  ItemType = "albums"
)

// Valid reports whether t is artists or albums.
func (t ItemType) Valid() bool {
	return t == TypeArtists || t == TypeAlbums
}

// GridSize is a "<rows>x<cols>" layout tag.
type GridSize string

const (
	Grid3x3   GridSize = "3x3"
	Grid4x4   GridSize = "4x4"
	Grid5x5   GridSize = "5x5"
	Grid10x10 GridSize = "10x10"
)

// AllGridSizes is ordered by capacity, smallest first.
var AllGridSizes = []GridSize{Grid3x3, Grid4x4, Grid5x5, Grid10x10}

// Valid reports whether g is one of the supported grids.
func (g GridSize) Valid() bool {
	for _, v := range AllGridSizes {
		if g == v {
			return true
		}
	}
	return false
}

// Dimensions splits the tag into rows and columns. Unsupported tags
// fall back to 3x3, the smallest grid.
func (g GridSize) Dimensions() (rows, cols int) {
	if !g.Valid() {
		return 3, 3
	}
	parts := strings.SplitN(string(g), "x", 2)
	rows, _ = strconv.Atoi(parts[0])
	cols, _ = strconv.Atoi(parts[1])
	return rows, cols
}

// Columns is the column count, taken from the first number of the tag.
func (g GridSize) Columns() int {
	_, cols := g.Dimensions()
	return cols
}

// Limit is the number of items the grid holds, which is also the
// upstream fetch limit.
func (g GridSize) Limit() int {
	rows, cols := g.Dimensions()
	return rows * cols
}

// GridSizeForLimit returns the smallest grid that holds n items.
func GridSizeForLimit(n int) GridSize {
	for _, g := range AllGridSizes {
		if n <= g.Limit() {
			return g
		}
	}
	return Grid10x10
}

// CollageItem is one tile: an artist or an album with its play count.
// Artist is only set for albums. An empty ImageURL means no artwork.
type CollageItem struct {
	Name      string `json:"name"`
	Artist    string `json:"artist,omitempty"`
	Playcount int    `json:"playcount"`
	ImageURL  string `json:"imageUrl"`
}

// CollageData is the full collage. Items are in rank order, most played first.
type CollageData struct {
	Username string        `json:"username"`
	Period   Period        `json:"period"`
	Type     ItemType      `json:"type"`
	GridSize GridSize      `json:"gridSize"`
	Items    []CollageItem `json:"items"`
}

// Validate checks the enumerated fields and that the items fit the grid.
func (d *CollageData) Validate() error {
	if d.Username == "" {
		return fmt.Errorf("username is required")
	}
	if !d.Period.Valid() {
		return fmt.Errorf("invalid period: %q", d.Period)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("invalid type: %q", d.Type)
	}
	if !d.GridSize.Valid() {
		return fmt.Errorf("invalid grid size: %q", d.GridSize)
	}
	if len(d.Items) > d.GridSize.Limit() {
		return fmt.Errorf("%d items do not fit a %s grid", len(d.Items), d.GridSize)
	}
	for i, item := range d.Items {
		if item.Name == "" {
			return fmt.Errorf("item %d has no name", i)
		}
		if item.Playcount < 0 {
			return fmt.Errorf("item %d has a negative playcount", i)
		}
	}
	return nil
}
