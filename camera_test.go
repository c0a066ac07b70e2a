package rig

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	if cam.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom)
	}
	if !cam.CullEnabled {
		t.Error("CullEnabled = false, want true")
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
}

func TestCameraViewMatrix(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		zoom     float64
		rotation float64
		world    Vec2
		want     Vec2
	}{
		{"identity centers origin", 0, 0, 1, 0, Vec2{0, 0}, Vec2{400, 300}},
		{"translated", 100, 50, 1, 0, Vec2{100, 50}, Vec2{400, 300}},
		{"zoom doubles distance", 0, 0, 2, 0, Vec2{1, 0}, Vec2{402, 300}},
		{"rotation", 0, 0, 1, 1.5707963267948966, Vec2{10, 0}, Vec2{400, 290}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(Rect{Width: 800, Height: 600})
			cam.X, cam.Y, cam.Zoom, cam.Rotation = tt.x, tt.y, tt.zoom, tt.rotation
			got := cam.WorldToScreen(tt.world)
			assertNear(t, "screen x", got.X, tt.want.X)
			assertNear(t, "screen y", got.Y, tt.want.Y)
		})
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.X, cam.Y, cam.Zoom, cam.Rotation = 37, -12, 1.5, 0.3
	p := Vec2{123, -45}
	back := cam.ScreenToWorld(cam.WorldToScreen(p))
	assertNear(t, "x", back.X, p.X)
	assertNear(t, "y", back.Y, p.Y)
}

func TestVisibleBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	b := cam.VisibleBounds()
	if !approxEqual(b.X, -400, epsilon) || !approxEqual(b.Width, 800, epsilon) {
		t.Errorf("VisibleBounds at zoom 1 = %+v", b)
	}

	cam.Zoom = 2
	cam.MarkDirty()
	b = cam.VisibleBounds()
	if !approxEqual(b.Width, 400, 1e-6) || !approxEqual(b.Height, 300, 1e-6) {
		t.Errorf("VisibleBounds at zoom 2 size = (%f,%f), want (400,300)", b.Width, b.Height)
	}
}

// --- Follow ---

func followTarget(t *testing.T, x, y float64) (*Artboard, *Component) {
	t.Helper()
	a := NewArtboard("t")
	n := NewNode("target")
	n.X, n.Y = x, y
	a.Add(a.Root().ID, n)
	a.RunUpdatePass()
	return a, n
}

func TestCameraFollow(t *testing.T) {
	_, target := followTarget(t, 200, 150)
	cam := NewCamera(Rect{Width: 800, Height: 600})

	cam.Follow(target, 0, 0, 1.0) // lerp=1 snaps immediately
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.X, 200, epsilon) || !approxEqual(cam.Y, 150, epsilon) {
		t.Errorf("after follow snap: cam = (%f,%f), want (200,150)", cam.X, cam.Y)
	}
}

func TestCameraFollowLerpAndOffset(t *testing.T) {
	_, target := followTarget(t, 100, 100)
	cam := NewCamera(Rect{Width: 800, Height: 600})

	cam.Follow(target, 10, -20, 0.5)
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.X, 55, epsilon) || !approxEqual(cam.Y, 40, epsilon) {
		t.Errorf("follow lerp with offset: cam = (%f,%f), want (55,40)", cam.X, cam.Y)
	}
}

func TestCameraUnfollow(t *testing.T) {
	a, target := followTarget(t, 100, 100)
	cam := NewCamera(Rect{Width: 800, Height: 600})

	cam.Follow(target, 0, 0, 1.0)
	cam.Update(1.0 / 60.0)
	cam.Unfollow()

	target.SetPosition(500, 100)
	a.RunUpdatePass()
	cam.Update(1.0 / 60.0)
	if !approxEqual(cam.X, 100, epsilon) {
		t.Errorf("after unfollow: cam.X = %f, want 100", cam.X)
	}
}

func TestCameraDropsRemovedTarget(t *testing.T) {
	a, target := followTarget(t, 100, 100)
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.Follow(target, 0, 0, 1.0)

	a.Remove(target.ID)
	cam.Update(1.0 / 60.0)
	if cam.X != 0 || cam.follow != nil {
		t.Errorf("removed target followed: cam.X = %f", cam.X)
	}
}

func TestSceneAdvanceUpdatesCamera(t *testing.T) {
	s, n, _ := newSceneWithNode(t)
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.Follow(n, 0, 0, 1)
	s.SetCamera(cam)
	if s.Camera() != cam {
		t.Fatal("Camera() mismatch")
	}

	n.SetPosition(70, 30)
	s.Advance(0.1)
	// The camera reads the world transform resolved by the same Advance.
	if !approxEqual(cam.X, 70, epsilon) || !approxEqual(cam.Y, 30, epsilon) {
		t.Errorf("cam = (%f,%f), want (70,30)", cam.X, cam.Y)
	}
}

// --- Scroll and bounds ---

func TestCameraScrollTo(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.ScrollTo(100, 200, 1.0, ease.Linear)

	cam.Update(0.5)
	if !approxEqual(cam.X, 50, 1.0) || !approxEqual(cam.Y, 100, 1.0) {
		t.Errorf("scroll halfway: cam = (%f,%f), want ~(50,100)", cam.X, cam.Y)
	}

	cam.Update(0.5)
	if !approxEqual(cam.X, 100, 1.0) || !approxEqual(cam.Y, 200, 1.0) {
		t.Errorf("scroll end: cam = (%f,%f), want ~(100,200)", cam.X, cam.Y)
	}
	if cam.scroll != nil {
		t.Error("scroll still active after completion")
	}
}

func TestCameraBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 100, Height: 100})
	cam.SetBounds(Rect{Width: 1000, Height: 1000})

	cam.Update(0)
	if cam.X < 50 || cam.Y < 50 {
		t.Errorf("bounds clamp min: cam = (%f,%f), want >= (50,50)", cam.X, cam.Y)
	}

	cam.X, cam.Y = 999, 999
	cam.ClampToBounds()
	if cam.X > 950 || cam.Y > 950 {
		t.Errorf("bounds clamp max: cam = (%f,%f), want <= (950,950)", cam.X, cam.Y)
	}

	cam.ClearBounds()
	cam.X, cam.Y = -999, -999
	cam.Update(0)
	if cam.X != -999 || cam.Y != -999 {
		t.Errorf("after ClearBounds: cam = (%f,%f), want (-999,-999)", cam.X, cam.Y)
	}
}

func TestCameraBoundsSmallWorld(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetBounds(Rect{Width: 100, Height: 100})
	cam.Update(0)
	if !approxEqual(cam.X, 50, epsilon) || !approxEqual(cam.Y, 50, epsilon) {
		t.Errorf("small world: cam = (%f,%f), want centered (50,50)", cam.X, cam.Y)
	}
}

// --- Culling ---

func TestCameraCullsOffscreenDrawables(t *testing.T) {
	a := NewArtboard("t")
	near := NewShape("near", ShapeRectangle, 10, 10, ColorWhite)
	a.Add(a.Root().ID, near)
	far := NewShape("far", ShapeRectangle, 10, 10, ColorWhite)
	holder := NewNode("holder")
	holder.X = 5000
	a.Add(a.Root().ID, holder)
	a.Add(holder.ID, far)
	a.RunUpdatePass()

	cam := NewCamera(Rect{Width: 800, Height: 600})
	r := newRecordingRenderer()
	a.draw(r, cam)
	if len(r.calls) != 1 {
		t.Errorf("culled draw calls = %d, want 1", len(r.calls))
	}

	cam.CullEnabled = false
	r = newRecordingRenderer()
	a.draw(r, cam)
	if len(r.calls) != 2 {
		t.Errorf("unculled draw calls = %d, want 2", len(r.calls))
	}
}
