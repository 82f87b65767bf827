package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fleveque/lastmosaic/internal/model"
)

// fakeT echoes the key and its params so tests can assert on lookups.
func fakeT(key string, params map[string]string) string {
	switch key {
	case "collage.title":
		return params["username"] + "'s " + params["type"]
	case "collage.topAlbums":
		return "Top Albums"
	case "collage.topArtists":
		return "Top Artists"
	case "common.by":
		return "by"
	case "common.generatedWith":
		return "Generated with"
	case "pluralization.plays.one":
		return params["count"] + " play"
	case "pluralization.plays.other":
		return params["count"] + " plays"
	}
	return key
}

func fakeNumber(n int, locale string) string {
	return fmt.Sprintf("%d@%s", n, locale)
}

func testData(n int, grid model.GridSize) model.CollageData {
	items := make([]model.CollageItem, n)
	for i := range items {
		items[i] = model.CollageItem{
			Name:      fmt.Sprintf("Album %d", i),
			Artist:    "Artist",
			Playcount: 100 - i,
			ImageURL:  fmt.Sprintf("https://img.example/%d.png", i),
		}
	}
	return model.CollageData{
		Username: "rj",
		Period:   model.Period7Day,
		Type:     model.TypeAlbums,
		GridSize: grid,
		Items:    items,
	}
}

func testOptions() model.DownloadOptions {
	return model.DownloadOptions{
		ShowTitles:    true,
		ShowPlayCount: true,
		ShowStyles:    true,
		Locale:        "en",
		DateString:    "Jan 2, 2026",
		IsDarkMode:    true,
		T:             fakeT,
		FormatNumber:  fakeNumber,
	}
}

func texts(root Node, role Role) []string {
	var out []string
	for _, n := range Find(root, role) {
		out = append(out, n.(*Text).Content)
	}
	return out
}

func TestPlanGrid(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		grid     model.GridSize
		rows     int
		empty    int
		columns  int
		capacity int
	}{
		{"full 3x3", 9, model.Grid3x3, 3, 0, 3, 9},
		{"partial 3x3", 7, model.Grid3x3, 3, 2, 3, 9},
		{"one row", 2, model.Grid4x4, 1, 14, 4, 16},
		{"empty", 0, model.Grid5x5, 0, 25, 5, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := PlanGrid(testData(tt.n, tt.grid))
			if g.Rows != tt.rows || g.EmptyCells() != tt.empty || g.Columns != tt.columns || g.Capacity != tt.capacity {
				t.Errorf("PlanGrid() = %+v (empty %d), want rows=%d empty=%d cols=%d cap=%d",
					g, g.EmptyCells(), tt.rows, tt.empty, tt.columns, tt.capacity)
			}
		})
	}
}

func TestSynthesizeStyled(t *testing.T) {
	root := Synthesize(testData(7, model.Grid3x3), testOptions())

	if root.Rect.W != RootWidth {
		t.Errorf("root width = %v, want %v", root.Rect.W, RootWidth)
	}
	if root.Style.Radius != 16 {
		t.Errorf("root radius = %v, want 16", root.Style.Radius)
	}
	if got := root.Style.Fills[0].Color.Hex(); got != "#111827" {
		t.Errorf("dark background = %s, want #111827", got)
	}

	if got := texts(root, RoleTitle); len(got) != 1 || got[0] != "rj's Top Albums" {
		t.Errorf("title = %v", got)
	}
	if got := texts(root, RoleSubtitle); len(got) != 1 || got[0] != "form.period.options.7day" {
		t.Errorf("subtitle = %v", got)
	}

	overlay := Find(root, RoleOverlay)
	if len(overlay) != 1 {
		t.Fatalf("overlay count = %d, want 1", len(overlay))
	}
	if o := overlay[0].(*Container); o.Style.Opacity != 0.08 || len(o.Style.Fills) != 2 {
		t.Errorf("overlay style = %+v", o.Style)
	}

	tiles := Find(root, RoleTile)
	if len(tiles) != 7 {
		t.Fatalf("tile count = %d, want 7", len(tiles))
	}
	for i, tile := range tiles {
		r := tile.Frame().Rect
		if r.W != r.H {
			t.Errorf("tile %d not square: %+v", i, r)
		}
	}

	// Row-major placement: tile 3 starts row two, column one.
	first, fourth := tiles[0].Frame().Rect, tiles[3].Frame().Rect
	if fourth.X != first.X || fourth.Y != first.Y+first.H {
		t.Errorf("tile 3 at %+v, want directly below tile 0 at %+v", fourth, first)
	}

	grid := Find(root, RoleGrid)[0].(*Container)
	if grid.Rect.H != 3*first.H {
		t.Errorf("grid height = %v, want three rows of %v", grid.Rect.H, first.H)
	}
	if grid.Style.Border == nil || grid.Style.Radius != 12 || len(grid.Style.Shadows) != 2 {
		t.Errorf("grid style = %+v", grid.Style)
	}

	footer := texts(root, RoleFooterText)
	if len(footer) != 2 || footer[0] != "Generated with" || footer[1] != "LastMosaic • Jan 2, 2026" {
		t.Errorf("footer = %v", footer)
	}
	if len(Find(root, RoleLogo)) != 1 {
		t.Error("footer should carry the logo glyph")
	}

	f := Find(root, RoleFooter)[0].Frame().Rect
	if f.Y != grid.Rect.Bottom()+25 {
		t.Errorf("footer y = %v, want grid bottom + 25", f.Y)
	}
	if root.Rect.H != f.Bottom()+40 {
		t.Errorf("root height = %v, want footer bottom + padding", root.Rect.H)
	}
}

func TestSynthesizeLightPalette(t *testing.T) {
	opts := testOptions()
	opts.IsDarkMode = false
	root := Synthesize(testData(1, model.Grid3x3), opts)

	if got := root.Style.Fills[0].Color.Hex(); got != "#f8fafc" {
		t.Errorf("light background = %s, want #f8fafc", got)
	}
	title := Find(root, RoleTitle)[0].(*Text)
	if got := title.Color.Hex(); got != "#4f46e5" {
		t.Errorf("light title colour = %s, want #4f46e5", got)
	}
}

func TestSynthesizeUnstyled(t *testing.T) {
	opts := testOptions()
	opts.ShowStyles = false
	root := Synthesize(testData(9, model.Grid3x3), opts)

	for _, role := range []Role{RoleOverlay, RoleHeader, RoleFooter} {
		if n := len(Find(root, role)); n != 0 {
			t.Errorf("unstyled collage has %d %s nodes", n, role)
		}
	}
	if len(root.Style.Fills) != 0 || root.Style.Radius != 0 {
		t.Errorf("unstyled root should be bare, got %+v", root.Style)
	}
	if root.Rect.W != RootWidth || root.Rect.H != RootWidth {
		t.Errorf("3x3 unstyled root = %+v, want 1200x1200", root.Rect)
	}
	tile := Find(root, RoleTile)[0].Frame().Rect
	if tile.X != 0 || tile.Y != 0 || tile.W != 400 {
		t.Errorf("first tile = %+v, want 400px at origin", tile)
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	opts := testOptions()
	opts.ShowStyles = false
	root := Synthesize(testData(0, model.Grid3x3), opts)
	if root.Rect.W != RootWidth || root.Rect.H != 400 {
		t.Errorf("empty unstyled collage = %+v, want one empty 400px row", root.Rect)
	}
	if g := PlanGrid(testData(0, model.Grid3x3)); g.Rows != 0 || g.EmptyCells() != 9 {
		t.Errorf("empty grid = %+v, want 0 rendered rows and 9 empty cells", g)
	}

	opts.ShowStyles = true
	root = Synthesize(testData(0, model.Grid3x3), opts)
	if len(Find(root, RoleTile)) != 0 {
		t.Error("no tiles expected")
	}
	if len(Find(root, RoleFooter)) != 1 {
		t.Error("styled collage keeps its footer with no items")
	}
	if grid := Find(root, RoleGrid)[0].Frame().Rect; grid.H <= 0 {
		t.Errorf("styled empty grid height = %v, want one row", grid.H)
	}
}

func TestPlaceholder(t *testing.T) {
	data := testData(2, model.Grid3x3)
	data.Items[1].ImageURL = ""
	root := Synthesize(data, testOptions())

	if n := len(Images(root)); n != 1 {
		t.Errorf("image nodes = %d, want 1", n)
	}
	ph := Find(root, RolePlaceholder)
	if len(ph) != 1 {
		t.Fatalf("placeholders = %d, want 1", len(ph))
	}
	fill := ph[0].(*Container).Style.Fills[0]
	if fill.Kind != FillLinear || fill.Stops[0].Color.Hex() != "#1f2937" || fill.Stops[1].Color.Hex() != "#111827" {
		t.Errorf("placeholder fill = %+v", fill)
	}
	label := Find(root, RolePlaceholderLabel)[0].(*Text)
	if label.Content != "collage.noImage" || label.Size != 14 || label.Color.Hex() != "#6b7280" {
		t.Errorf("placeholder label = %+v", label)
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name      string
		titles    bool
		plays     bool
		artist    string
		playcount int
		wantRoles []Role
		wantPlays string
	}{
		{"titles and plays", true, true, "Radiohead", 5, []Role{RoleCaptionName, RoleCaptionArtist, RoleCaptionPlays}, "5@en plays"},
		{"single play", false, true, "", 1, []Role{RoleCaptionPlays}, "1@en play"},
		{"zero plays is plural", false, true, "", 0, []Role{RoleCaptionPlays}, "0@en plays"},
		{"two plays is plural", false, true, "", 2, []Role{RoleCaptionPlays}, "2@en plays"},
		{"titles only, no artist", true, false, "", 3, []Role{RoleCaptionName}, ""},
		{"nothing", false, false, "Radiohead", 3, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testData(1, model.Grid3x3)
			data.Items[0].Artist = tt.artist
			data.Items[0].Playcount = tt.playcount
			opts := testOptions()
			opts.ShowTitles = tt.titles
			opts.ShowPlayCount = tt.plays

			root := Synthesize(data, opts)
			captions := Find(root, RoleCaption)
			if tt.wantRoles == nil {
				if len(captions) != 0 {
					t.Errorf("expected no caption, got %d", len(captions))
				}
				return
			}
			if len(captions) != 1 {
				t.Fatalf("captions = %d, want 1", len(captions))
			}

			c := captions[0].(*Container)
			var roles []Role
			for _, child := range c.Children {
				roles = append(roles, child.Frame().Role)
			}
			if fmt.Sprint(roles) != fmt.Sprint(tt.wantRoles) {
				t.Errorf("caption lines = %v, want %v", roles, tt.wantRoles)
			}

			tile := Find(root, RoleTile)[0].Frame().Rect
			if c.Rect.Bottom() != tile.Bottom() {
				t.Errorf("caption bottom = %v, want tile bottom %v", c.Rect.Bottom(), tile.Bottom())
			}

			if tt.wantPlays != "" {
				if got := texts(root, RoleCaptionPlays); got[0] != tt.wantPlays {
					t.Errorf("plays = %q, want %q", got[0], tt.wantPlays)
				}
			}
			if tt.artist != "" && tt.titles {
				if got := texts(root, RoleCaptionArtist); got[0] != "by "+tt.artist {
					t.Errorf("artist line = %q", got[0])
				}
			}
		})
	}
}

func TestCaptionTruncation(t *testing.T) {
	data := testData(100, model.Grid10x10)
	data.Items[0].Name = strings.Repeat("Very Long Album Name ", 10)
	data.Items[1].Name = strings.Repeat("東京事変", 10)
	root := Synthesize(data, testOptions())

	names := Find(root, RoleCaptionName)
	for _, n := range names[:2] {
		text := n.(*Text)
		if !strings.HasSuffix(text.Content, "…") {
			t.Errorf("expected ellipsis, got %q", text.Content)
		}
		if w := TextWidth(text.Content, text.Size, text.Bold); w > text.Rect.W {
			t.Errorf("truncated width %v exceeds %v", w, text.Rect.W)
		}
	}
	if got := names[2].(*Text).Content; got != "Album 2" {
		t.Errorf("short name changed: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		maxWidth float64
		want     string
	}{
		{"short", 100, "short"},
		{"abcdefghij", 10 * 5.5, "abcdefghij"},
		{"abcdefghijk", 10 * 5.5, "abcdefghi…"},
		{"日本語テキスト", 6 * 5.5, "日本…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, 10, false, tt.maxWidth); got != tt.want {
			t.Errorf("Truncate(%q, %v) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
		}
	}
}
