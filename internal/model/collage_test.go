package model

import "testing"

func TestGridSizeDimensions(t *testing.T) {
	tests := []struct {
		grid       GridSize
		rows, cols int
		limit      int
	}{
		{Grid3x3, 3, 3, 9},
		{Grid4x4, 4, 4, 16},
		{Grid5x5, 5, 5, 25},
		{Grid10x10, 10, 10, 100},
		{GridSize("7x2"), 3, 3, 9},
	}

	for _, tt := range tests {
		t.Run(string(tt.grid), func(t *testing.T) {
			rows, cols := tt.grid.Dimensions()
			if rows != tt.rows || cols != tt.cols {
				t.Errorf("Dimensions() = %d,%d, want %d,%d", rows, cols, tt.rows, tt.cols)
			}
			if got := tt.grid.Columns(); got != tt.cols {
				t.Errorf("Columns() = %d, want %d", got, tt.cols)
			}
			if got := tt.grid.Limit(); got != tt.limit {
				t.Errorf("Limit() = %d, want %d", got, tt.limit)
			}
		})
	}
}

func TestGridSizeForLimit(t *testing.T) {
	tests := []struct {
		n    int
		want GridSize
	}{
		{1, Grid3x3},
		{9, Grid3x3},
		{10, Grid4x4},
		{25, Grid5x5},
		{50, Grid10x10},
		{500, Grid10x10},
	}
	for _, tt := range tests {
		if got := GridSizeForLimit(tt.n); got != tt.want {
			t.Errorf("GridSizeForLimit(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestCollageDataValidate(t *testing.T) {
	valid := func() CollageData {
		return CollageData{
			Username: "rj",
			Period:   PeriodOverall,
			Type:     TypeAlbums,
			GridSize: Grid3x3,
			Items:    []CollageItem{{Name: "Kid A", Artist: "Radiohead", Playcount: 10}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *CollageData)
		wantErr bool
	}{
		{"valid", func(d *CollageData) {}, false},
		{"no username", func(d *CollageData) { d.Username = "" }, true},
		{"bad period", func(d *CollageData) { d.Period = "2week" }, true},
		{"bad type", func(d *CollageData) { d.Type = "tracks" }, true},
		{"bad grid", func(d *CollageData) { d.GridSize = "2x2" }, true},
		{"too many items", func(d *CollageData) { d.Items = make([]CollageItem, 10) }, true},
		{"negative playcount", func(d *CollageData) { d.Items[0].Playcount = -1 }, true},
		{"empty items", func(d *CollageData) { d.Items = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompressionLevelResolve(t *testing.T) {
	tests := []struct {
		name  string
		level CompressionLevel
		want  CompressionOptions
	}{
		{"zero value is normal", CompressionLevel{}, Presets[PresetNormal]},
		{"high", PresetLevel(PresetHigh), CompressionOptions{Quality: 1.0, Format: FormatPNG}},
		{"medium equals normal", PresetLevel(PresetMedium), Presets[PresetNormal]},
		{"tiny", PresetLevel(PresetTiny), CompressionOptions{Quality: 0.3, MaxWidth: 800, Format: FormatJPEG}},
		{
			"explicit",
			ExplicitLevel(CompressionOptions{Quality: 0.5, MaxWidth: 640, Format: FormatPNG, PreserveTransparency: true}),
			CompressionOptions{Quality: 0.5, MaxWidth: 640, Format: FormatPNG, PreserveTransparency: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.level.Resolve()
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCompressionLevelResolveInvalid(t *testing.T) {
	if _, err := PresetLevel("huge").Resolve(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := ExplicitLevel(CompressionOptions{Quality: 1.5, Format: FormatJPEG}).Resolve(); err == nil {
		t.Error("expected error for quality above 1")
	}
	if _, err := ExplicitLevel(CompressionOptions{Quality: 0.5, Format: "image/gif"}).Resolve(); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseCompressionLevel(t *testing.T) {
	l, err := ParseCompressionLevel("ULTRALOW")
	if err != nil {
		t.Fatalf("ParseCompressionLevel() error = %v", err)
	}
	if l.String() != string(PresetUltraLow) {
		t.Errorf("String() = %s, want %s", l.String(), PresetUltraLow)
	}

	l, err = ParseCompressionLevel("")
	if err != nil || l.String() != "normal" {
		t.Errorf("empty level = %s, %v; want normal", l.String(), err)
	}

	if _, err := ParseCompressionLevel("lossless"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDownloadOptionsFallbacks(t *testing.T) {
	var opts DownloadOptions
	if got := opts.Translate("collage.noImage", nil); got != "collage.noImage" {
		t.Errorf("Translate() = %q, want key", got)
	}
	if got := opts.Number(1234); got != "1234" {
		t.Errorf("Number() = %q, want 1234", got)
	}
}
