package rig

import "math"

// ellipseSegments is the number of edges used to approximate an ellipse.
const ellipseSegments = 32

// RenderPath is a closed convex polygon in the owning shape's local space.
type RenderPath struct {
	Points []Vec2
}

// Paint is a resolved fill: the shape color with inherited opacity applied.
type Paint struct {
	Color     Color
	BlendMode BlendMode
}

// updateShape regenerates the path on DirtPath and the paint on DirtPaint,
// and mirrors the parent's world transform and opacity.
func (a *Artboard) updateShape(c *Component, dirt ComponentDirt) {
	parent := a.liveComponent(c.ParentID)
	if dirt&(DirtWorldTransform|DirtTransform) != 0 {
		c.worldTransform = IdentityMat2D
		if parent != nil {
			c.worldTransform = parent.worldTransform
		}
	}
	if dirt&DirtRenderOpacity != 0 {
		c.renderOpacity = 1
		if parent != nil {
			c.renderOpacity = parent.renderOpacity
		}
		dirt |= DirtPaint
	}
	if dirt&DirtPath != 0 {
		c.path.Points = buildShapePath(c.path.Points[:0], c.Shape, c.Width, c.Height)
	}
	if dirt&DirtPaint != 0 {
		col := c.Color
		col.A *= c.renderOpacity
		c.paint = Paint{Color: col, BlendMode: c.BlendMode}
	}
}

// buildShapePath appends the outline of a shape centered on the origin.
func buildShapePath(dst []Vec2, kind ShapeKind, w, h float64) []Vec2 {
	hw, hh := w/2, h/2
	switch kind {
	case ShapeEllipse:
		for i := 0; i < ellipseSegments; i++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(i) / ellipseSegments)
			dst = append(dst, Vec2{cos * hw, sin * hh})
		}
	default:
		dst = append(dst,
			Vec2{-hw, -hh},
			Vec2{hw, -hh},
			Vec2{hw, hh},
			Vec2{-hw, hh},
		)
	}
	return dst
}

// Path returns the shape's path after the last update.
func (c *Component) Path() *RenderPath {
	return &c.path
}

// Paint returns the shape's resolved paint after the last update.
func (c *Component) Paint() Paint {
	return c.paint
}
