package rig

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsOverlay shows FPS, TPS and graph counters in the top-left corner.
// The text is redrawn every ~0.5 seconds.
type statsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
	text       string
}

func newStatsOverlay() *statsOverlay {
	// Five lines of debug font.
	return &statsOverlay{img: ebiten.NewImage(140, 80), lastUpdate: 0.5}
}

func (o *statsOverlay) update(dt float64, a *Artboard) {
	o.lastUpdate += dt
	if o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0
	o.text = statsText(a, ebiten.ActualFPS(), ebiten.ActualTPS())

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

func (o *statsOverlay) draw(dst *ebiten.Image) {
	dst.DrawImage(o.img, nil)
}

func statsText(a *Artboard, fps, tps float64) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nordered: %d\nexcluded: %d\nfailing: %d",
		fps, tps, len(a.ordered), len(a.buildErrs), len(a.updateErrs))
}
