package i18n

import (
	"testing"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestTranslate(t *testing.T) {
	c := mustLoad(t)

	tests := []struct {
		name   string
		locale string
		key    string
		params map[string]string
		want   string
	}{
		{"simple", English, "collage.noImage", nil, "No image"},
		{"mixed case key", English, "collage.topAlbums", nil, "Top Albums"},
		{"params", English, "collage.title", map[string]string{"username": "rj", "type": "Top Albums"}, "rj's Top Albums"},
		{"period", English, "form.period.options.7day", nil, "Last 7 days"},
		{"plural", English, "pluralization.plays.other", map[string]string{"count": "1,234"}, "1,234 plays"},
		{"portuguese", Brazilian, "common.by", nil, "por"},
		{"loose locale", "pt_br", "collage.noImage", nil, "Sem imagem"},
		{"unknown locale", "de", "common.by", nil, "by"},
		{"unknown key", English, "collage.missing", nil, "collage.missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.T(tt.locale, tt.key, tt.params); got != tt.want {
				t.Errorf("T() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	c := mustLoad(t)
	for key := range c.messages[English] {
		if _, ok := c.messages[Brazilian][key]; !ok {
			t.Errorf("pt-BR catalog is missing %q", key)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	c := mustLoad(t)
	if got := c.FormatNumber(1234567, English); got != "1,234,567" {
		t.Errorf("FormatNumber(en) = %q, want 1,234,567", got)
	}
	if got := c.FormatNumber(1234567, Brazilian); got != "1.234.567" {
		t.Errorf("FormatNumber(pt-BR) = %q, want 1.234.567", got)
	}
	if got := c.FormatNumber(7, English); got != "7" {
		t.Errorf("FormatNumber(7) = %q", got)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", English},
		{"pt-BR,pt;q=0.9,en;q=0.8", Brazilian},
		{"en-US,en;q=0.9", English},
		{"not a header;;", English},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestDownloadOptions(t *testing.T) {
	c := mustLoad(t)
	opts := c.DownloadOptions("pt-BR")
	if opts.Locale != Brazilian {
		t.Errorf("Locale = %q", opts.Locale)
	}
	if opts.DateString == "" {
		t.Error("DateString should be set")
	}
	if got := opts.Translate("common.by", nil); got != "por" {
		t.Errorf("Translate() = %q, want por", got)
	}
	if got := opts.Number(1000); got != "1.000" {
		t.Errorf("Number() = %q, want 1.000", got)
	}
}
