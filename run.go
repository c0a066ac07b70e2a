package rig

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int // default 640x480
	Background    Color
	ShowFPS       bool
	// Update runs once per tick before the scene advances. A non-nil error
	// stops the game loop and is returned by Run.
	Update func() error
}

type game struct {
	scene *Scene
	cfg   RunConfig
	bg    color.RGBA
}

func (g *game) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	g.scene.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.bg)
	g.scene.DrawCamera(screen)
}

func (g *game) Layout(int, int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives s at ebiten's tick rate until the window is
// closed or cfg.Update fails. Without a camera the scene gets one centered on
// the artboard origin.
func Run(s *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	if s.Camera() == nil {
		s.SetCamera(NewCamera(Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)}))
	}
	s.ShowStats(cfg.ShowFPS)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&game{scene: s, cfg: cfg, bg: cfg.Background.toRGBA()})
}

// toRGBA converts to a premultiplied 8-bit color.
func (c Color) toRGBA() color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(max(0, min(1, v))*255 + 0.5)
	}
	return color.RGBA{
		R: clamp(c.R * c.A),
		G: clamp(c.G * c.A),
		B: clamp(c.B * c.A),
		A: clamp(c.A),
	}
}
