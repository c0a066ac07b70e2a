package rig

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once, rendering is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 3x3 white image. Paths are
// filled by sampling its center pixel.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(3, 3)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// EbitenRenderer draws onto an *ebiten.Image.
type EbitenRenderer struct {
	target *ebiten.Image
	matrix Mat2D
	stack  []Mat2D

	// Reused scratch buffers (high-water mark, never shrink).
	verts []ebiten.Vertex
	inds  []uint16
}

// NewEbitenRenderer creates a renderer targeting dst. view is the initial
// matrix, e.g. a camera or a layout alignment.
func NewEbitenRenderer(dst *ebiten.Image, view Mat2D) *EbitenRenderer {
	return &EbitenRenderer{target: dst, matrix: view}
}

// Reset retargets the renderer for a new frame.
func (r *EbitenRenderer) Reset(dst *ebiten.Image, view Mat2D) {
	r.target = dst
	r.matrix = view
	r.stack = r.stack[:0]
}

// Matrix returns the current transform.
func (r *EbitenRenderer) Matrix() Mat2D {
	return r.matrix
}

func (r *EbitenRenderer) Save() {
	r.stack = append(r.stack, r.matrix)
}

func (r *EbitenRenderer) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.matrix = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *EbitenRenderer) Transform(m Mat2D) {
	r.matrix = r.matrix.Multiply(m)
}

// DrawPath fills a convex path as a triangle fan.
func (r *EbitenRenderer) DrawPath(path *RenderPath, paint Paint) {
	n := len(path.Points)
	if n < 3 {
		return
	}
	// Premultiply at submission time.
	a := float32(paint.Color.A)
	cr, cg, cb := float32(paint.Color.R)*a, float32(paint.Color.G)*a, float32(paint.Color.B)*a

	r.verts = r.verts[:0]
	for _, p := range path.Points {
		w := r.matrix.Apply(p)
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: float32(w.X), DstY: float32(w.Y),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a,
		})
	}
	r.inds = r.inds[:0]
	for i := 1; i < n-1; i++ {
		r.inds = append(r.inds, 0, uint16(i), uint16(i+1))
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = paint.BlendMode.EbitenBlend()
	op.AntiAlias = true
	r.target.DrawTriangles(r.verts, r.inds, ensureWhitePixel(), &op)
}

// DrawImageMesh draws mesh vertices through the current transform. A nil
// image draws the mesh untextured in white.
func (r *EbitenRenderer) DrawImageMesh(img *ebiten.Image, vertices []ebiten.Vertex, indices []uint16, blend BlendMode, opacity float64) {
	if len(vertices) == 0 || len(indices) == 0 {
		return
	}
	if cap(r.verts) < len(vertices) {
		r.verts = make([]ebiten.Vertex, len(vertices))
	}
	r.verts = r.verts[:len(vertices)]
	transformVertices(vertices, r.verts, r.matrix, float32(opacity))
	if img == nil {
		img = ensureWhitePixel()
		for i := range r.verts {
			r.verts[i].SrcX, r.verts[i].SrcY = 1, 1
		}
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = blend.EbitenBlend()
	r.target.DrawTriangles(r.verts, indices, img, &op)
}
