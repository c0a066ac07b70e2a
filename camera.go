package rig

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera maps artboard world space onto a screen viewport. X and Y name the
// world point drawn at the viewport center. Attach one with Scene.SetCamera;
// the scene updates it after every update pass.
type Camera struct {
	X, Y     float64
	Zoom     float64 // 1 is unscaled
	Rotation float64 // radians, clockwise
	Viewport Rect    // screen space

	// CullEnabled skips drawables whose world bounds miss VisibleBounds.
	CullEnabled bool

	// BoundsEnabled keeps the visible area inside Bounds (world space).
	BoundsEnabled bool
	Bounds        Rect

	follow *cameraFollow
	scroll *cameraScroll

	view, inverse Mat2D
	stale         bool
}

type cameraFollow struct {
	target *Component
	offset Vec2
	lerp   float64
}

// cameraScroll eases X and Y independently toward a destination.
type cameraScroll struct {
	axes    [2]*gween.Tween
	settled [2]bool
}

// step advances both axes and reports whether the scroll finished.
func (s *cameraScroll) step(dt float32, x, y *float64) bool {
	dst := [2]*float64{x, y}
	for i, tw := range s.axes {
		if s.settled[i] {
			continue
		}
		v, done := tw.Update(dt)
		*dst[i] = float64(v)
		s.settled[i] = done
	}
	return s.settled[0] && s.settled[1]
}

// NewCamera returns an unzoomed camera with culling on.
func NewCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: viewport, CullEnabled: true, stale: true}
}

// Follow tracks the world translation of a transform component plus an
// offset. Each Update closes lerp of the remaining distance; 1 snaps.
func (c *Camera) Follow(target *Component, offsetX, offsetY, lerp float64) {
	c.follow = &cameraFollow{target: target, offset: Vec2{offsetX, offsetY}, lerp: lerp}
}

// Unfollow stops tracking.
func (c *Camera) Unfollow() {
	c.follow = nil
}

// ScrollTo eases the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scroll = &cameraScroll{axes: [2]*gween.Tween{
		gween.New(float32(c.X), float32(x), duration, easeFn),
		gween.New(float32(c.Y), float32(y), duration, easeFn),
	}}
}

// SetBounds turns on clamping to bounds.
func (c *Camera) SetBounds(bounds Rect) {
	c.Bounds = bounds
	c.BoundsEnabled = true
}

// ClearBounds turns clamping off.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds applies bounds clamping now instead of on the next Update.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Update runs follow, then scroll, then clamping. A followed component that
// was removed from its artboard is dropped.
func (c *Camera) Update(dt float64) {
	before := [4]float64{c.X, c.Y, c.Zoom, c.Rotation}

	if f := c.follow; f != nil {
		if f.target.Artboard() == nil {
			c.follow = nil
		} else {
			goal := f.target.worldTransform.Translation()
			c.X += (goal.X + f.offset.X - c.X) * f.lerp
			c.Y += (goal.Y + f.offset.Y - c.Y) * f.lerp
		}
	}
	if c.scroll != nil && c.scroll.step(float32(dt), &c.X, &c.Y) {
		c.scroll = nil
	}
	if c.BoundsEnabled {
		c.clampToBounds()
	}

	if before != [4]float64{c.X, c.Y, c.Zoom, c.Rotation} {
		c.stale = true
	}
}

func (c *Camera) clampToBounds() {
	c.X = clampAxis(c.X, c.Bounds.X, c.Bounds.Width, c.Viewport.Width/(2*c.Zoom))
	c.Y = clampAxis(c.Y, c.Bounds.Y, c.Bounds.Height, c.Viewport.Height/(2*c.Zoom))
}

// clampAxis keeps [pos-half, pos+half] inside [lo, lo+size]. A span wider
// than size is centered.
func clampAxis(pos, lo, size, half float64) float64 {
	if 2*half >= size {
		return lo + size/2
	}
	return math.Min(math.Max(pos, lo+half), lo+size-half)
}

// ViewMatrix returns the world-to-screen transform: translate by -(X, Y),
// rotate by -Rotation, scale by Zoom, then translate to the viewport center.
func (c *Camera) ViewMatrix() Mat2D {
	if !c.stale {
		return c.view
	}
	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom
	center := Vec2{c.Viewport.X + c.Viewport.Width/2, c.Viewport.Y + c.Viewport.Height/2}
	c.view = Mat2D{
		z * cos, z * sin,
		-z * sin, z * cos,
		center.X - z*(cos*c.X-sin*c.Y),
		center.Y - z*(sin*c.X+cos*c.Y),
	}
	c.inverse = c.view.Invert()
	c.stale = false
	return c.view
}

func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	return c.ViewMatrix().Apply(p)
}

func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	c.ViewMatrix()
	return c.inverse.Apply(p)
}

// VisibleBounds is the world-space AABB of the viewport corners.
func (c *Camera) VisibleBounds() Rect {
	c.ViewMatrix()
	v := c.Viewport
	return computeAABB([]Vec2{
		c.inverse.Apply(Vec2{v.X, v.Y}),
		c.inverse.Apply(Vec2{v.X + v.Width, v.Y}),
		c.inverse.Apply(Vec2{v.X + v.Width, v.Y + v.Height}),
		c.inverse.Apply(Vec2{v.X, v.Y + v.Height}),
	})
}

// MarkDirty forces the view matrix to be rebuilt, for callers that assign
// X, Y, Zoom or Rotation directly.
func (c *Camera) MarkDirty() {
	c.stale = true
}

// culls reports whether d lies entirely outside visible. Empty bounds are
// never culled.
func (c *Camera) culls(d *Component, visible Rect) bool {
	if !c.CullEnabled {
		return false
	}
	b := d.WorldBounds()
	if b.Width == 0 && b.Height == 0 {
		return false
	}
	return !b.Intersects(visible)
}
