package rig

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// updateSkin recomputes the bone palette: entry 0 is the identity, entry i
// is tendon i-1's bone world transform times its inverse bind transform.
func (a *Artboard) updateSkin(c *Component, dirt ComponentDirt) error {
	if dirt&DirtSkin == 0 {
		return nil
	}
	need := len(c.Tendons) + 1
	if cap(c.palette) < need {
		c.palette = make([]Mat2D, need)
	}
	c.palette = c.palette[:need]
	c.palette[0] = IdentityMat2D
	for i, t := range c.Tendons {
		bone := a.liveComponent(t.BoneID)
		if bone == nil {
			return missingf("tendon %d bone %d", i, t.BoneID)
		}
		c.palette[i+1] = bone.worldTransform.Multiply(t.InverseBind)
	}
	if mesh := a.liveComponent(c.ParentID); mesh != nil {
		a.markDirty(mesh, DirtVertices)
	}
	return nil
}

// deform maps a vertex from mesh space into world space through the bone
// palette, blending up to four influences by weight.
func (c *Component) deform(v *Component) (Vec2, error) {
	p := c.BindTransform.Apply(Vec2{v.X, v.Y})
	var out Vec2
	total := 0.0
	for k, bi := range v.BoneIndices {
		w := v.Weights[k]
		if bi == 0 || w == 0 {
			continue
		}
		if int(bi) >= len(c.palette) {
			return Vec2{}, invalidf("vertex %q bone index %d out of range (%d tendons)", v.Name, bi, len(c.Tendons))
		}
		q := c.palette[bi].Apply(p)
		out.X += q.X * w
		out.Y += q.Y * w
		total += w
	}
	if total == 0 {
		return p, nil
	}
	return Vec2{out.X / total, out.Y / total}, nil
}

// updateMesh re-deforms vertices on DirtVertices and drops the vertex render
// buffer so it is rebuilt at the next draw. Unskinned meshes keep their
// vertices in local space and are drawn with the parent's world transform.
func (a *Artboard) updateMesh(c *Component, dirt ComponentDirt) error {
	parent := a.liveComponent(c.ParentID)
	if dirt&(DirtWorldTransform|DirtTransform) != 0 && parent != nil {
		c.worldTransform = parent.worldTransform
	}
	if dirt&DirtRenderOpacity != 0 && parent != nil {
		c.renderOpacity = parent.renderOpacity
	}
	if dirt&DirtVertices == 0 {
		return nil
	}

	if cap(c.deformed) < len(c.vertexIDs) {
		c.deformed = make([]Vec2, len(c.vertexIDs))
	}
	c.deformed = c.deformed[:len(c.vertexIDs)]
	skin := a.liveComponent(c.skinID)
	for i, id := range c.vertexIDs {
		v := a.Component(id)
		if v == nil {
			continue
		}
		if skin == nil {
			c.deformed[i] = Vec2{v.X, v.Y}
			continue
		}
		p, err := skin.deform(v)
		if err != nil {
			return err
		}
		c.deformed[i] = p
	}
	c.vertexBuffer = nil
	return nil
}

// Skinned reports whether the mesh is deformed by a skin. Skinned vertices are
// in world space.
func (c *Component) Skinned() bool {
	return c.skinID != NoID
}

// DeformedVertices returns the mesh's vertex positions after the last update.
// The returned slice MUST NOT be mutated by the caller.
func (c *Component) DeformedVertices() []Vec2 {
	return c.deformed
}

// meshVertexBuffer returns the render vertices, rebuilding them when an
// update dropped the buffer. Texture coordinates are scaled to the image.
func (a *Artboard) meshVertexBuffer(c *Component) []ebiten.Vertex {
	if c.vertexBuffer != nil {
		return c.vertexBuffer
	}
	sw, sh := float32(1), float32(1)
	if c.Image != nil {
		b := c.Image.Bounds()
		sw, sh = float32(b.Dx()), float32(b.Dy())
	}
	buf := make([]ebiten.Vertex, len(c.deformed))
	for i, p := range c.deformed {
		buf[i] = ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		}
		// A vertex removed since the last pass keeps its deformed position
		// but loses its UV until the rebuild.
		if v := a.Component(c.vertexIDs[i]); v != nil {
			buf[i].SrcX = float32(v.U) * sw
			buf[i].SrcY = float32(v.V) * sh
		}
	}
	c.vertexBuffer = buf
	return buf
}

// transformVertices applies an affine transform and opacity to src vertices,
// writing the result into dst. dst must be at least len(src) in length.
func transformVertices(src, dst []ebiten.Vertex, m Mat2D, opacity float32) {
	a, b, c, d, tx, ty := m[0], m[1], m[2], m[3], m[4], m[5]
	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * opacity,
			ColorG: s.ColorG * opacity,
			ColorB: s.ColorB * opacity,
			ColorA: s.ColorA * opacity,
		}
	}
}

// computeAABB returns the axis-aligned bounding box of the points.
func computeAABB(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// WorldBounds returns the world-space bounding box of a mesh or shape after
// the last update, or a zero Rect for other component types.
func (c *Component) WorldBounds() Rect {
	var local []Vec2
	switch c.Type {
	case ComponentTypeMesh:
		if c.Skinned() {
			return computeAABB(c.deformed)
		}
		local = c.deformed
	case ComponentTypeShape:
		local = c.path.Points
	}
	if len(local) == 0 {
		return Rect{}
	}
	m := c.worldTransform
	p := m.Apply(local[0])
	minX, minY, maxX, maxY := p.X, p.Y, p.X, p.Y
	for _, q := range local[1:] {
		p = m.Apply(q)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
