package rig

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PropertyTween animates up to 4 properties of one component simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenColor) and play it in a Scene, or drive it with Advance and Apply.
// Values are written through the same mix and dirt path as keyframed
// animations. If the target component is removed, the tween stops
// immediately.
type PropertyTween struct {
	tweens [4]*gween.Tween
	keys   [4]PropertyKey
	values [4]float64
	count  int
	target *Component
	Done   bool
}

// NewPropertyTween creates a tween of a single property from its current
// value to the given one. Panics if key does not apply to c.
func NewPropertyTween(c *Component, key PropertyKey, to float64, duration float32, fn ease.TweenFunc) *PropertyTween {
	g := &PropertyTween{target: c}
	g.add(key, to, duration, fn)
	return g
}

func (g *PropertyTween) add(key PropertyKey, to float64, duration float32, fn ease.TweenFunc) {
	from, ok := g.target.Property(key)
	if !ok {
		panic("rig: property does not apply to " + g.target.Type.String() + " " + g.target.Name)
	}
	g.tweens[g.count] = gween.New(float32(from), float32(to), duration, fn)
	g.keys[g.count] = key
	g.values[g.count] = from
	g.count++
}

// Advance advances all tweens by dt seconds. If the target has been removed,
// Done is set and no further writes occur.
func (g *PropertyTween) Advance(dt float64) bool {
	if g.Done {
		return false
	}
	if g.target.Artboard() == nil {
		g.Done = true
		return false
	}
	if !validStep(dt) {
		dt = 0
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(float32(dt))
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	return !allDone
}

// Apply writes the current values onto the target, blended by mix.
func (g *PropertyTween) Apply(a *Artboard, mix float64) {
	c := a.Component(g.target.ID)
	if c != g.target {
		return
	}
	for i := 0; i < g.count; i++ {
		mixProperty(c, g.keys[i], g.values[i], mix)
	}
}

// TweenPosition tweens X and Y to the given coordinates.
func TweenPosition(c *Component, toX, toY float64, duration float32, fn ease.TweenFunc) *PropertyTween {
	g := &PropertyTween{target: c}
	g.add(PropX, toX, duration, fn)
	g.add(PropY, toY, duration, fn)
	return g
}

// TweenScale tweens ScaleX and ScaleY.
func TweenScale(c *Component, toSX, toSY float64, duration float32, fn ease.TweenFunc) *PropertyTween {
	g := &PropertyTween{target: c}
	g.add(PropScaleX, toSX, duration, fn)
	g.add(PropScaleY, toSY, duration, fn)
	return g
}

// TweenRotation tweens Rotation, in radians.
func TweenRotation(c *Component, to float64, duration float32, fn ease.TweenFunc) *PropertyTween {
	return NewPropertyTween(c, PropRotation, to, duration, fn)
}

// TweenOpacity tweens Opacity.
func TweenOpacity(c *Component, to float64, duration float32, fn ease.TweenFunc) *PropertyTween {
	return NewPropertyTween(c, PropOpacity, to, duration, fn)
}

// TweenColor tweens all four channels of a shape's color.
func TweenColor(c *Component, to Color, duration float32, fn ease.TweenFunc) *PropertyTween {
	g := &PropertyTween{target: c}
	g.add(PropColorR, to.R, duration, fn)
	g.add(PropColorG, to.G, duration, fn)
	g.add(PropColorB, to.B, duration, fn)
	g.add(PropColorA, to.A, duration, fn)
	return g
}
