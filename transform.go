package rig

import "math"

// Mat2D is a 2D affine matrix.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Mat2D [6]float64

// IdentityMat2D is the identity affine matrix.
var IdentityMat2D = Mat2D{1, 0, 0, 1, 0, 0}

// TranslateMat2D returns a translation matrix.
func TranslateMat2D(x, y float64) Mat2D {
	return Mat2D{1, 0, 0, 1, x, y}
}

// Multiply returns m * o (o is applied first).
func (m Mat2D) Multiply(o Mat2D) Mat2D {
	return Mat2D{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Mat2D) Invert() Mat2D {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityMat2D
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Mat2D{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms a point.
func (m Mat2D) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// Translation returns the matrix's translation component.
func (m Mat2D) Translation() Vec2 {
	return Vec2{m[4], m[5]}
}

// computeLocalTransform computes the local affine matrix from the
// component's transform properties.
//
// Composition order: Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(c *Component) Mat2D {
	sin, cos := math.Sincos(c.Rotation)
	return Mat2D{
		cos * c.ScaleX,
		sin * c.ScaleX,
		-sin * c.ScaleY,
		cos * c.ScaleY,
		c.X,
		c.Y,
	}
}

// updateTransform recomputes a node or bone. Constraints owned by the
// component are applied after its world transform is composed.
func (a *Artboard) updateTransform(c *Component, dirt ComponentDirt) {
	if dirt&DirtTransform != 0 {
		c.localTransform = computeLocalTransform(c)
		dirt |= DirtWorldTransform
	}
	parent := a.liveComponent(c.ParentID)
	if dirt&DirtWorldTransform != 0 {
		world := IdentityMat2D
		if parent != nil && parent.Type.isTransform() {
			world = parent.worldTransform
			if c.Type == ComponentTypeBone && parent.Type == ComponentTypeBone {
				world = world.Multiply(TranslateMat2D(parent.Length, 0))
			}
		}
		c.worldTransform = world.Multiply(c.localTransform)
		for _, id := range c.constraints {
			if k := a.liveComponent(id); k != nil {
				a.constrainTranslation(k, c)
			}
		}
	}
	if dirt&DirtRenderOpacity != 0 {
		c.renderOpacity = c.Opacity
		if parent != nil && parent.Type.isTransform() {
			c.renderOpacity *= parent.renderOpacity
		}
	}
}

// constrainTranslation moves the constrained component's world translation
// toward the target's world translation by the constraint strength.
func (a *Artboard) constrainTranslation(k, constrained *Component) {
	target := a.liveComponent(k.TargetID)
	if target == nil || k.Strength == 0 {
		return
	}
	s := math.Max(0, math.Min(1, k.Strength))
	from := constrained.worldTransform.Translation()
	to := target.worldTransform.Translation()
	constrained.worldTransform[4] = from.X + (to.X-from.X)*s
	constrained.worldTransform[5] = from.Y + (to.Y-from.Y)*s
}

// WorldToLocal converts a world-space point to this component's local space.
func (c *Component) WorldToLocal(p Vec2) Vec2 {
	return c.worldTransform.Invert().Apply(p)
}

// LocalToWorld converts a local-space point to world space.
func (c *Component) LocalToWorld(p Vec2) Vec2 {
	return c.worldTransform.Apply(p)
}

// SetPosition sets X and Y and marks the transform dirty.
func (c *Component) SetPosition(x, y float64) {
	c.X, c.Y = x, y
	c.MarkDirty(c.positionDirt())
}

// SetScale sets ScaleX and ScaleY and marks the transform dirty.
func (c *Component) SetScale(sx, sy float64) {
	c.ScaleX, c.ScaleY = sx, sy
	c.MarkDirty(DirtTransform)
}

// SetRotation sets the rotation (in radians) and marks the transform dirty.
func (c *Component) SetRotation(r float64) {
	c.Rotation = r
	c.MarkDirty(DirtTransform)
}

func (c *Component) positionDirt() ComponentDirt {
	if c.Type == ComponentTypeMeshVertex {
		return DirtVertices
	}
	return DirtTransform
}
