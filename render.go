package rig

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer consumes the resolved state of drawable components. Transform
// concatenates onto the current matrix; Save and Restore bracket it.
type Renderer interface {
	Save()
	Restore()
	Transform(m Mat2D)
	DrawPath(path *RenderPath, paint Paint)
	DrawImageMesh(img *ebiten.Image, vertices []ebiten.Vertex, indices []uint16, blend BlendMode, opacity float64)
}

// Draw hands every drawable component to r in graph order. It reads only
// state produced by the last update pass and never calls back into the
// scheduler.
func (a *Artboard) Draw(r Renderer) {
	a.draw(r, nil)
}

// draw is Draw with optional culling against cam's visible bounds.
func (a *Artboard) draw(r Renderer, cam *Camera) {
	var visible Rect
	if cam != nil {
		visible = cam.VisibleBounds()
	}
	for _, c := range a.ordered {
		if !c.Type.isDrawable() || c.renderOpacity <= 0 {
			continue
		}
		if cam != nil && cam.culls(c, visible) {
			continue
		}
		switch c.Type {
		case ComponentTypeMesh:
			if len(c.deformed) == 0 {
				continue
			}
			verts := a.meshVertexBuffer(c)
			r.Save()
			if !c.Skinned() {
				r.Transform(c.worldTransform)
			}
			r.DrawImageMesh(c.Image, verts, c.Indices, c.BlendMode, c.renderOpacity)
			r.Restore()
		case ComponentTypeShape:
			if len(c.path.Points) < 3 || c.paint.Color.A <= 0 {
				continue
			}
			r.Save()
			r.Transform(c.worldTransform)
			r.DrawPath(&c.path, c.paint)
			r.Restore()
		}
	}
}
