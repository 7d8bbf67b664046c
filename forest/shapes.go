// Copyright (c) 2026, The zEpid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DiamondGlyph is a glyph that draws a filled diamond, the default point
// marker for effect measure plots.
type DiamondGlyph struct{}

func (DiamondGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	r := sty.Radius
	c.FillPolygon(sty.Color, []vg.Point{
		{X: pt.X, Y: pt.Y - r},
		{X: pt.X + r, Y: pt.Y},
		{X: pt.X, Y: pt.Y + r},
		{X: pt.X - r, Y: pt.Y},
	})
}

var shapeGlyphs = map[string]draw.GlyphDrawer{
	"diamond":  DiamondGlyph{},
	"circle":   draw.CircleGlyph{},
	"ring":     draw.RingGlyph{},
	"square":   draw.BoxGlyph{},
	"triangle": draw.PyramidGlyph{},
	"plus":     draw.PlusGlyph{},
	"cross":    draw.CrossGlyph{},
}

// MarkerShapes returns the valid point marker shape names, sorted.
func MarkerShapes() []string {
	names := make([]string, 0, len(shapeGlyphs))
	for nm := range shapeGlyphs {
		names = append(names, nm)
	}
	sort.Strings(names)
	return names
}

// glyphForShape returns the glyph drawer for the given marker shape name.
func glyphForShape(name string) (draw.GlyphDrawer, error) {
	g, ok := shapeGlyphs[name]
	if !ok {
		return nil, fmt.Errorf("forest: unknown point shape %q (valid: %v)", name, MarkerShapes())
	}
	return g, nil
}
