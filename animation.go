package rig

import "math"

// Loop selects what a LinearAnimationInstance does at the end of its range.
type Loop uint8

const (
	LoopOneShot  Loop = iota // stop at the end
	LoopLoop                 // wrap to the start
	LoopPingPong             // reverse direction at either end
)

// LinearAnimation is a timeline of keyed objects. It is definitional data:
// immutable after load and safe to share across instances and scenes.
type LinearAnimation struct {
	Name         string
	Duration     float64 // seconds
	Speed        float64 // 1 plays forward at real time, negative plays backward
	Loop         Loop
	KeyedObjects []*KeyedObject
}

// NewLinearAnimation creates an animation playing forward at real time.
func NewLinearAnimation(name string, duration float64, loop Loop, objects ...*KeyedObject) *LinearAnimation {
	return &LinearAnimation{
		Name:         name,
		Duration:     duration,
		Speed:        1,
		Loop:         loop,
		KeyedObjects: objects,
	}
}

// Apply writes the animation's values at time t onto the artboard.
func (la *LinearAnimation) Apply(a *Artboard, t, mix float64) {
	for _, o := range la.KeyedObjects {
		o.Apply(a, t, mix)
	}
}

// LinearAnimationInstance plays one LinearAnimation. It owns its time and is
// advanced by explicit deltas; there is no shared clock.
type LinearAnimationInstance struct {
	animation *LinearAnimation
	time      float64
	direction float64
	totalTime float64
	didLoop   bool
}

// NewLinearAnimationInstance starts anim at its beginning (its end when Speed
// is negative).
func NewLinearAnimationInstance(anim *LinearAnimation) *LinearAnimationInstance {
	i := &LinearAnimationInstance{animation: anim}
	i.Reset()
	return i
}

// Reset rewinds the instance.
func (i *LinearAnimationInstance) Reset() {
	i.direction = 1
	i.time = 0
	if i.animation.Speed < 0 {
		i.time = i.animation.Duration
	}
	i.totalTime = 0
	i.didLoop = false
}

// Animation returns the played animation.
func (i *LinearAnimationInstance) Animation() *LinearAnimation {
	return i.animation
}

// Time returns the current position in seconds.
func (i *LinearAnimationInstance) Time() float64 {
	return i.time
}

// SetTime moves the playhead, clamped to the animation's range.
func (i *LinearAnimationInstance) SetTime(t float64) {
	i.time = math.Max(0, math.Min(i.animation.Duration, t))
}

// TotalTime returns the accumulated advanced time.
func (i *LinearAnimationInstance) TotalTime() float64 {
	return i.totalTime
}

// DidLoop reports whether the last Advance wrapped or reversed.
func (i *LinearAnimationInstance) DidLoop() bool {
	return i.didLoop
}

// Advance moves the playhead by dt seconds and reports whether the instance
// keeps playing. One-shot instances report false once they reach an end.
// Negative deltas are ignored.
func (i *LinearAnimationInstance) Advance(dt float64) bool {
	if !validStep(dt) {
		dt = 0
	}
	anim := i.animation
	i.didLoop = false
	i.totalTime += dt
	end := anim.Duration
	if end <= 0 {
		i.time = 0
		return anim.Loop != LoopOneShot
	}
	rate := anim.Speed * i.direction
	i.time += dt * rate

	switch anim.Loop {
	case LoopOneShot:
		if i.time >= end {
			i.time = end
			return rate <= 0
		}
		if i.time <= 0 {
			i.time = 0
			return rate >= 0
		}
	case LoopLoop:
		if i.time >= end || i.time < 0 {
			i.time = math.Mod(i.time, end)
			if i.time < 0 {
				i.time += end
			}
			i.didLoop = true
		}
	case LoopPingPong:
		if i.time > end || i.time < 0 {
			// Fold onto one out-and-back period; the second half runs reversed.
			m := math.Mod(i.time, 2*end)
			if m < 0 {
				m += 2 * end
			}
			if m > end {
				m = 2*end - m
				i.direction = -i.direction
			}
			i.time = m
			i.didLoop = true
		}
	}
	return true
}

// Apply writes the animation's values at the current time, blended by mix.
func (i *LinearAnimationInstance) Apply(a *Artboard, mix float64) {
	i.animation.Apply(a, i.time, mix)
}

// validStep reports whether dt can advance time. Negative and non-finite
// steps advance nothing.
func validStep(dt float64) bool {
	return dt >= 0 && !math.IsInf(dt, 1)
}
