package layout

import (
	"math"

	"github.com/fleveque/lastmosaic/internal/model"
)

// RootWidth is the logical width of every collage.
const RootWidth = 1200.0

const (
	rootPadding = 40.0
	rootRadius  = 16.0

	titleSize    = 36.0
	subtitleSize = 16.0
	titleGap     = 8.0
	headerGap    = 30.0

	gridRadius = 12.0

	placeholderLabelSize = 14.0

	captionPadTop    = 12.0
	captionPadX      = 8.0
	captionPadBottom = 8.0
	nameSize         = 12.0
	detailSize       = 10.0
	artistGap        = 2.0
	playsGap         = 4.0

	footerGap  = 25.0
	footerSize = 14.0
	logoSize   = 16.0
	logoGap    = 4.0
)

// Brand is the product name printed in the footer.
const Brand = "LastMosaic"

var logoPaths = []Path{
	{D: "M16.0573 0H37.1389L21.6397 22.9729H0.558105L16.0573 0Z", Fill: hex("#6366F1")},
	{D: "M16.9805 25.102L10.9773 34H33.0589L48.5581 11.0271H32.2605L22.7645 25.102H16.9805Z", Fill: hex("#8B5CF6")},
}

type palette struct {
	background      Color
	title           Color
	subtitle        Color
	footer          Color
	placeholderFrom Color
	placeholderTo   Color
	placeholderText Color
	gridBorder      Color
	overlayAlpha    float64
	shadows         []Shadow
}

func paletteFor(dark bool) palette {
	if dark {
		return palette{
			background:      hex("#111827"),
			title:           hex("#6366f1"),
			subtitle:        hex("#d1d5db"),
			footer:          hex("#9ca3af"),
			placeholderFrom: hex("#1f2937"),
			placeholderTo:   hex("#111827"),
			placeholderText: hex("#6b7280"),
			gridBorder:      RGBA(255, 255, 255, 0.1),
			overlayAlpha:    0.5,
			shadows: []Shadow{
				{DY: 20, Blur: 25, Color: RGBA(0, 0, 0, 0.5)},
				{DY: 10, Blur: 10, Color: RGBA(0, 0, 0, 0.2)},
			},
		}
	}
	return palette{
		background:      hex("#f8fafc"),
		title:           hex("#4f46e5"),
		subtitle:        hex("#4b5563"),
		footer:          hex("#6b7280"),
		placeholderFrom: hex("#e5e7eb"),
		placeholderTo:   hex("#d1d5db"),
		placeholderText: hex("#9ca3af"),
		gridBorder:      RGBA(0, 0, 0, 0.1),
		overlayAlpha:    0.3,
		shadows: []Shadow{
			{DY: 20, Blur: 25, Color: RGBA(0, 0, 0, 0.1)},
			{DY: 10, Blur: 10, Color: RGBA(0, 0, 0, 0.04)},
		},
	}
}

// Background returns the root fill colour for a theme. Unstyled collages
// have no background of their own; the rasterizer still needs one.
func Background(dark bool) Color {
	return paletteFor(dark).background
}

// Grid describes how items are placed: row-major, in input order.
type Grid struct {
	Columns  int
	Rows     int // rows actually rendered
	Capacity int
	Filled   int
}

// EmptyCells is the number of capacity slots with no item. Empty cells
// are not drawn.
func (g Grid) EmptyCells() int {
	return g.Capacity - g.Filled
}

// height is the grid box height for square tiles of side tile. A grid
// with no items keeps one empty row, so the collage always has area.
func (g Grid) height(tile float64) float64 {
	return tile * float64(max(g.Rows, 1))
}

// PlanGrid computes the grid geometry for data.
func PlanGrid(data model.CollageData) Grid {
	rows, cols := data.GridSize.Dimensions()
	n := len(data.Items)
	return Grid{
		Columns:  cols,
		Rows:     (n + cols - 1) / cols,
		Capacity: rows * cols,
		Filled:   n,
	}
}

// Synthesize builds the collage tree for data. It is a pure function of
// its inputs apart from calls to opts.T and opts.FormatNumber.
func Synthesize(data model.CollageData, opts model.DownloadOptions) *Container {
	pal := paletteFor(opts.IsDarkMode)
	grid := PlanGrid(data)

	if !opts.ShowStyles {
		tile := RootWidth / float64(grid.Columns)
		g := gridNode(data, opts, pal, grid, Rect{X: 0, Y: 0, W: RootWidth, H: grid.height(tile)}, false)
		return &Container{
			Box:      Box{Role: RoleRoot, Rect: Rect{W: RootWidth, H: g.Rect.H}},
			Style:    Style{Clip: true},
			Children: []Node{g},
		}
	}

	inner := RootWidth - 2*rootPadding
	header := headerNode(data, opts, pal, rootPadding, rootPadding, inner)

	gridTop := header.Rect.Bottom() + headerGap
	tile := inner / float64(grid.Columns)
	g := gridNode(data, opts, pal, grid, Rect{X: rootPadding, Y: gridTop, W: inner, H: grid.height(tile)}, true)

	footer := footerNode(opts, pal, rootPadding, g.Rect.Bottom()+footerGap, inner)
	height := footer.Rect.Bottom() + rootPadding

	bounds := Rect{W: RootWidth, H: height}
	return &Container{
		Box: Box{Role: RoleRoot, Rect: bounds},
		Style: Style{
			Fills:  []Fill{Solid(pal.background)},
			Radius: rootRadius,
			Clip:   true,
		},
		Children: []Node{overlayNode(pal, bounds), header, g, footer},
	}
}

func overlayNode(pal palette, bounds Rect) *Container {
	violet := RGBA(124, 58, 237, pal.overlayAlpha)
	blue := RGBA(59, 130, 246, pal.overlayAlpha)
	return &Container{
		Box: Box{Role: RoleOverlay, Rect: bounds},
		Style: Style{
			Fills: []Fill{
				{Kind: FillRadial, CX: 1, CY: 0, R: math.Sqrt2, Stops: []Stop{{0, violet}, {0.7, Transparent}}},
				{Kind: FillRadial, CX: 0, CY: 1, R: math.Sqrt2, Stops: []Stop{{0, blue}, {0.7, Transparent}}},
			},
			Opacity: 0.08,
		},
	}
}

func headerNode(data model.CollageData, opts model.DownloadOptions, pal palette, x, y, w float64) *Container {
	typeKey := "collage.topAlbums"
	if data.Type == model.TypeArtists {
		typeKey = "collage.topArtists"
	}
	title := opts.Translate("collage.title", map[string]string{
		"username": data.Username,
		"type":     opts.Translate(typeKey, nil),
	})
	subtitle := opts.Translate("form.period.options."+string(data.Period), nil)

	titleRect := Rect{X: x, Y: y, W: w, H: lineBox(titleSize)}
	subRect := Rect{X: x, Y: titleRect.Bottom() + titleGap, W: w, H: lineBox(subtitleSize)}

	return &Container{
		Box: Box{Role: RoleHeader, Rect: Rect{X: x, Y: y, W: w, H: subRect.Bottom() - y}},
		Children: []Node{
			&Text{
				Box:     Box{Role: RoleTitle, Rect: titleRect},
				Content: Truncate(title, titleSize, true, w),
				Size:    titleSize,
				Bold:    true,
				Color:   pal.title,
			},
			&Text{
				Box:     Box{Role: RoleSubtitle, Rect: subRect},
				Content: Truncate(subtitle, subtitleSize, false, w),
				Size:    subtitleSize,
				Color:   pal.subtitle,
			},
		},
	}
}

func gridNode(data model.CollageData, opts model.DownloadOptions, pal palette, grid Grid, bounds Rect, styled bool) *Container {
	c := &Container{
		Box:   Box{Role: RoleGrid, Rect: bounds},
		Style: Style{Clip: true},
	}
	if styled {
		c.Style.Border = &Border{Width: 1, Color: pal.gridBorder}
		c.Style.Radius = gridRadius
		c.Style.Shadows = pal.shadows
	}

	tile := bounds.W / float64(grid.Columns)
	c.Children = make([]Node, 0, len(data.Items))
	for i, item := range data.Items {
		col, row := i%grid.Columns, i/grid.Columns
		r := Rect{
			X: bounds.X + float64(col)*tile,
			Y: bounds.Y + float64(row)*tile,
			W: tile,
			H: tile,
		}
		c.Children = append(c.Children, tileNode(item, opts, pal, r))
	}
	return c
}

func tileNode(item model.CollageItem, opts model.DownloadOptions, pal palette, r Rect) *Container {
	t := &Container{
		Box:   Box{Role: RoleTile, Rect: r},
		Style: Style{Clip: true},
	}

	if item.ImageURL != "" {
		t.Children = append(t.Children, &Image{
			Box: Box{Role: RoleArtwork, Rect: r},
			URL: item.ImageURL,
			Alt: item.Name,
		})
	} else {
		t.Children = append(t.Children, placeholderNode(opts, pal, r))
	}

	if opts.ShowTitles || opts.ShowPlayCount {
		t.Children = append(t.Children, captionNode(item, opts, r))
	}
	return t
}

func placeholderNode(opts model.DownloadOptions, pal palette, r Rect) *Container {
	label := opts.Translate("collage.noImage", nil)
	return &Container{
		Box: Box{Role: RolePlaceholder, Rect: r},
		Style: Style{
			Fills: []Fill{{
				Kind: FillLinear,
				X1:   0, Y1: 0, X2: 1, Y2: 1,
				Stops: []Stop{{0, pal.placeholderFrom}, {1, pal.placeholderTo}},
			}},
		},
		Children: []Node{&Text{
			Box:     Box{Role: RolePlaceholderLabel, Rect: r},
			Content: Truncate(label, placeholderLabelSize, false, r.W-2*captionPadX),
			Size:    placeholderLabelSize,
			Color:   pal.placeholderText,
		}},
	}
}

type captionLine struct {
	role    Role
	text    string
	size    float64
	bold    bool
	opacity float64
	gap     float64
}

func captionNode(item model.CollageItem, opts model.DownloadOptions, tile Rect) *Container {
	var lines []captionLine
	if opts.ShowTitles {
		lines = append(lines, captionLine{role: RoleCaptionName, text: item.Name, size: nameSize, bold: true})
		if item.Artist != "" {
			lines = append(lines, captionLine{
				role:    RoleCaptionArtist,
				text:    opts.Translate("common.by", nil) + " " + item.Artist,
				size:    detailSize,
				opacity: 0.9,
				gap:     artistGap,
			})
		}
	}
	if opts.ShowPlayCount {
		key := "pluralization.plays.other"
		if item.Playcount == 1 {
			key = "pluralization.plays.one"
		}
		line := captionLine{
			role:    RoleCaptionPlays,
			text:    opts.Translate(key, map[string]string{"count": opts.Number(item.Playcount)}),
			size:    detailSize,
			opacity: 0.75,
		}
		if opts.ShowTitles {
			line.gap = playsGap
		}
		lines = append(lines, line)
	}

	height := captionPadTop + captionPadBottom
	for _, l := range lines {
		height += l.gap + lineBox(l.size)
	}
	bounds := Rect{X: tile.X, Y: tile.Bottom() - height, W: tile.W, H: height}

	c := &Container{
		Box: Box{Role: RoleCaption, Rect: bounds},
		Style: Style{
			Fills: []Fill{{
				Kind: FillLinear,
				X1:   0, Y1: 1, X2: 0, Y2: 0,
				Stops: []Stop{
					{0, RGBA(0, 0, 0, 0.85)},
					{0.7, RGBA(0, 0, 0, 0.6)},
					{1, Transparent},
				},
			}},
		},
	}

	white := RGB(255, 255, 255)
	textWidth := tile.W - 2*captionPadX
	y := bounds.Y + captionPadTop
	for _, l := range lines {
		y += l.gap
		h := lineBox(l.size)
		c.Children = append(c.Children, &Text{
			Box:     Box{Role: l.role, Rect: Rect{X: tile.X + captionPadX, Y: y, W: textWidth, H: h}},
			Content: Truncate(l.text, l.size, l.bold, textWidth),
			Size:    l.size,
			Bold:    l.bold,
			Color:   white,
			Opacity: l.opacity,
		})
		y += h
	}
	return c
}

func footerNode(opts model.DownloadOptions, pal palette, x, y, w float64) *Container {
	prefix := opts.Translate("common.generatedWith", nil)
	suffix := Brand + " • " + opts.DateString

	h := lineBox(footerSize)
	space := TextWidth(" ", footerSize, false)
	prefixW := TextWidth(prefix, footerSize, false)
	suffixW := TextWidth(suffix, footerSize, false)
	total := prefixW + space + logoSize + logoGap + suffixW

	left := x + (w-total)/2
	if left < x {
		left = x
	}
	logoX := left + prefixW + space
	suffixX := logoX + logoSize + logoGap

	return &Container{
		Box: Box{Role: RoleFooter, Rect: Rect{X: x, Y: y, W: w, H: h}},
		Children: []Node{
			&Text{
				Box:     Box{Role: RoleFooterText, Rect: Rect{X: left, Y: y, W: prefixW, H: h}},
				Content: prefix,
				Size:    footerSize,
				Color:   pal.footer,
				Align:   AlignStart,
			},
			&Glyph{
				Box:       Box{Role: RoleLogo, Rect: Rect{X: logoX, Y: y + (h-logoSize)/2, W: logoSize, H: logoSize}},
				ViewBox:   Rect{W: 48, H: 34},
				Transform: "translate(0, 0.5)",
				Paths:     logoPaths,
			},
			&Text{
				Box:     Box{Role: RoleFooterText, Rect: Rect{X: suffixX, Y: y, W: suffixW, H: h}},
				Content: suffix,
				Size:    footerSize,
				Color:   pal.footer,
				Align:   AlignStart,
			},
		},
	}
}
