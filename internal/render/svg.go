package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/fleveque/lastmosaic/internal/layout"
)

const fontFamily = "Inter, Helvetica, Arial, sans-serif"

// svgWriter emits the body and collects gradient, clip and filter
// definitions separately; they are joined when the document is closed.
type svgWriter struct {
	body    bytes.Buffer
	defs    bytes.Buffer
	nextID  int
	artwork map[string]string
}

// RenderSVG writes the tree as a standalone SVG document. The viewBox is
// in logical pixels; width and height are multiplied by scale so the
// rasterizer produces a device-scaled bitmap. artwork maps image URLs to
// the data URIs embedded in place of them; images without an entry are
// linked by URL.
func RenderSVG(root *layout.Container, scale float64, artwork map[string]string) []byte {
	w := &svgWriter{artwork: artwork}
	w.node(root)

	bounds := root.Rect
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %s %s" width="%d" height="%d">`+"\n",
		num(bounds.W), num(bounds.H), scaled(bounds.W, scale), scaled(bounds.H, scale))
	if w.defs.Len() > 0 {
		buf.WriteString("<defs>\n")
		buf.Write(w.defs.Bytes())
		buf.WriteString("</defs>\n")
	}
	buf.Write(w.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// scaled converts a logical length to device pixels.
func scaled(v, scale float64) int {
	return int(math.Round(v * scale))
}

func (w *svgWriter) id(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s%d", prefix, w.nextID)
}

func (w *svgWriter) node(n layout.Node) {
	switch n := n.(type) {
	case *layout.Container:
		w.container(n)
	case *layout.Image:
		w.image(n)
	case *layout.Text:
		w.text(n)
	case *layout.Glyph:
		w.glyph(n)
	}
}

func (w *svgWriter) container(c *layout.Container) {
	r, s := c.Rect, c.Style

	// Shadows sit outside the container's own clip.
	for _, sh := range s.Shadows {
		fid := w.id("shadow")
		fmt.Fprintf(&w.defs, `<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%">`+
			`<feGaussianBlur in="SourceAlpha" stdDeviation="%s"/>`+
			`<feOffset dx="%s" dy="%s" result="offset"/>`+
			`<feFlood flood-color="%s" flood-opacity="%s"/>`+
			`<feComposite in2="offset" operator="in"/></filter>`+"\n",
			fid, num(sh.Blur/2), num(sh.DX), num(sh.DY), sh.Color.Hex(), num(sh.Color.A))
		fmt.Fprintf(&w.body, `<rect %s rx="%s" fill="#000000" filter="url(#%s)"/>`+"\n", rectAttrs(r), num(s.Radius), fid)
	}

	var attrs []string
	if s.Opacity > 0 && s.Opacity < 1 {
		attrs = append(attrs, fmt.Sprintf(`opacity="%s"`, num(s.Opacity)))
	}
	if s.Clip {
		cid := w.id("clip")
		fmt.Fprintf(&w.defs, `<clipPath id="%s"><rect %s rx="%s"/></clipPath>`+"\n", cid, rectAttrs(r), num(s.Radius))
		attrs = append(attrs, fmt.Sprintf(`clip-path="url(#%s)"`, cid))
	}
	fmt.Fprintf(&w.body, `<g data-role="%s"`, c.Role)
	for _, a := range attrs {
		w.body.WriteString(" " + a)
	}
	w.body.WriteString(">\n")

	for _, f := range s.Fills {
		fmt.Fprintf(&w.body, `<rect %s rx="%s" %s/>`+"\n", rectAttrs(r), num(s.Radius), w.paint(f))
	}
	for _, child := range c.Children {
		w.node(child)
	}
	if b := s.Border; b != nil && b.Width > 0 {
		inset := b.Width / 2
		br := layout.Rect{X: r.X + inset, Y: r.Y + inset, W: r.W - b.Width, H: r.H - b.Width}
		fmt.Fprintf(&w.body, `<rect %s rx="%s" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%s"/>`+"\n",
			rectAttrs(br), num(math.Max(s.Radius-inset, 0)), b.Color.Hex(), num(b.Color.A), num(b.Width))
	}

	w.body.WriteString("</g>\n")
}

// paint returns the fill attributes for f, defining gradients as needed.
func (w *svgWriter) paint(f layout.Fill) string {
	switch f.Kind {
	case layout.FillLinear:
		gid := w.id("linear")
		fmt.Fprintf(&w.defs, `<linearGradient id="%s" x1="%s" y1="%s" x2="%s" y2="%s">`,
			gid, num(f.X1), num(f.Y1), num(f.X2), num(f.Y2))
		w.stops(f.Stops)
		w.defs.WriteString("</linearGradient>\n")
		return fmt.Sprintf(`fill="url(#%s)"`, gid)
	case layout.FillRadial:
		gid := w.id("radial")
		fmt.Fprintf(&w.defs, `<radialGradient id="%s" cx="%s" cy="%s" r="%s">`,
			gid, num(f.CX), num(f.CY), num(f.R))
		w.stops(f.Stops)
		w.defs.WriteString("</radialGradient>\n")
		return fmt.Sprintf(`fill="url(#%s)"`, gid)
	default:
		return fmt.Sprintf(`fill="%s" fill-opacity="%s"`, f.Color.Hex(), num(f.Color.A))
	}
}

func (w *svgWriter) stops(stops []layout.Stop) {
	for _, st := range stops {
		fmt.Fprintf(&w.defs, `<stop offset="%s" stop-color="%s" stop-opacity="%s"/>`,
			num(st.Offset), st.Color.Hex(), num(st.Color.A))
	}
}

func (w *svgWriter) image(img *layout.Image) {
	href, ok := w.artwork[img.URL]
	if !ok {
		href = img.URL
	}
	fmt.Fprintf(&w.body, `<image %s preserveAspectRatio="xMidYMid slice" xlink:href="%s"/>`+"\n",
		rectAttrs(img.Rect), escape(href))
}

func (w *svgWriter) text(t *layout.Text) {
	x, anchor := t.Rect.CenterX(), "middle"
	if t.Align == layout.AlignStart {
		x, anchor = t.Rect.X, "start"
	}
	weight := "normal"
	if t.Bold {
		weight = "bold"
	}
	alpha := t.Color.A
	if t.Opacity > 0 && t.Opacity < 1 {
		alpha *= t.Opacity
	}
	fmt.Fprintf(&w.body, `<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%s" fill="%s" fill-opacity="%s" text-anchor="%s" dominant-baseline="central">%s</text>`+"\n",
		num(x), num(t.Rect.CenterY()), fontFamily, num(t.Size), weight, t.Color.Hex(), num(alpha), anchor, escape(t.Content))
}

func (w *svgWriter) glyph(g *layout.Glyph) {
	vb := g.ViewBox
	fmt.Fprintf(&w.body, `<svg %s viewBox="%s %s %s %s">`, rectAttrs(g.Rect), num(vb.X), num(vb.Y), num(vb.W), num(vb.H))
	if g.Transform != "" {
		fmt.Fprintf(&w.body, `<g transform="%s">`, escape(g.Transform))
	}
	for _, p := range g.Paths {
		fmt.Fprintf(&w.body, `<path d="%s" fill="%s"/>`, escape(p.D), p.Fill.Hex())
	}
	if g.Transform != "" {
		w.body.WriteString("</g>")
	}
	w.body.WriteString("</svg>\n")
}

func rectAttrs(r layout.Rect) string {
	return fmt.Sprintf(`x="%s" y="%s" width="%s" height="%s"`, num(r.X), num(r.Y), num(r.W), num(r.H))
}

// num formats a length with at most two decimals and no trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
