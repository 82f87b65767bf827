// Package layout builds the declarative collage tree: a nested set of
// containers, images, text runs and vector glyphs, each placed at an
// absolute position in logical pixels. Building the tree does no I/O;
// the render package turns it into pixels.
package layout

import (
	"fmt"
	"strings"
)

// Role tags what a node is for, so renderers and tests can find nodes
// without depending on tree shape.
type Role string

const (
	RoleRoot             Role = "root"
	RoleOverlay          Role = "overlay"
	RoleHeader           Role = "header"
	RoleTitle            Role = "title"
	RoleSubtitle         Role = "subtitle"
	RoleGrid             Role = "grid"
	RoleTile             Role = "tile"
	RoleArtwork          Role = "artwork"
	RolePlaceholder      Role = "placeholder"
	RolePlaceholderLabel Role = "placeholder-label"
	RoleCaption          Role = "caption"
	RoleCaptionName      Role = "caption-name"
	RoleCaptionArtist    Role = "caption-artist"
	RoleCaptionPlays     Role = "caption-plays"
	RoleFooter           Role = "footer"
	RoleFooterText       Role = "footer-text"
	RoleLogo             Role = "logo"
)

// Rect is an axis-aligned box in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Box is the part every node shares. It is embedded by value.
type Box struct {
	Role Role
	Rect Rect
}

// Frame returns the node's role and position.
func (b Box) Frame() Box { return b }

// Node is one of *Container, *Image, *Text or *Glyph.
//
// Go note: Go has no sum types. A small interface plus a type switch at
// the consumer is the usual stand-in.
type Node interface {
	Frame() Box
}

// Container groups children and paints its own Style behind them.
type Container struct {
	Box
	Style    Style
	Children []Node
}

// Image is remote artwork drawn with cover fit: scaled to fill the box,
// cropped to the box.
type Image struct {
	Box
	URL string
	Alt string
}

// Align is horizontal text alignment within a Text's Rect.
type Align int

const (
	AlignCenter Align = iota
	AlignStart
)

// Text is a single line. Content is already truncated to fit Rect.W.
// Opacity of zero means fully opaque.
type Text struct {
	Box
	Content string
	Size    float64
	Bold    bool
	Color   Color
	Opacity float64
	Align   Align
}

// Path is one filled SVG path inside a Glyph.
type Path struct {
	D    string
	Fill Color
}

// Glyph is vector artwork drawn from its own ViewBox into Rect.
type Glyph struct {
	Box
	ViewBox   Rect
	Transform string
	Paths     []Path
}

// Color is sRGB with a separate alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Transparent is fully transparent black.
var Transparent = Color{}

// RGB builds an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 1} }

// RGBA builds a colour with alpha.
func RGBA(r, g, b uint8, a float64) Color { return Color{R: r, G: g, B: b, A: a} }

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid hex color: %q (expected 6 characters)", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("parsing hex color %q: %w", s, err)
	}
	return RGB(r, g, b), nil
}

func hex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the colour as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// FillKind selects how a Fill paints.
type FillKind int

const (
	FillSolid FillKind = iota
	FillLinear
	FillRadial
)

// Stop is a gradient colour stop; Offset is in [0,1].
type Stop struct {
	Offset float64
	Color  Color
}

// Fill is one paint layer.
//
// Linear gradients run from (X1,Y1) to (X2,Y2) in box fractions.
// Radial gradients are centred at (CX,CY) with radius R, also in box
// fractions.
type Fill struct {
	Kind  FillKind
	Color Color
	Stops []Stop

	X1, Y1, X2, Y2 float64
	CX, CY, R      float64
}

// Solid returns a single-colour fill.
func Solid(c Color) Fill { return Fill{Kind: FillSolid, Color: c} }

// Border is a stroke drawn inside the container edge.
type Border struct {
	Width float64
	Color Color
}

// Shadow is a blurred drop shadow offset from the container.
type Shadow struct {
	DX, DY, Blur float64
	Color        Color
}

// Style is how a Container paints itself. Layers are painted in order.
// Opacity applies to the container and everything inside it; zero means
// fully opaque.
type Style struct {
	Fills   []Fill
	Border  *Border
	Radius  float64
	Shadows []Shadow
	Opacity float64
	Clip    bool
}

// Walk visits n and its descendants depth first, in paint order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if c, ok := n.(*Container); ok {
		for _, child := range c.Children {
			Walk(child, fn)
		}
	}
}

// Find returns every node with the given role, in paint order.
func Find(root Node, role Role) []Node {
	var found []Node
	Walk(root, func(n Node) bool {
		if n.Frame().Role == role {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Images returns every Image node in the tree.
func Images(root Node) []*Image {
	var imgs []*Image
	Walk(root, func(n Node) bool {
		if img, ok := n.(*Image); ok {
			imgs = append(imgs, img)
		}
		return true
	})
	return imgs
}
