package rig

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// playing is an instance held by a Scene with its blend weight.
type playing struct {
	inst StateInstance
	mix  float64
	done bool
}

// Scene is the top-level object that bundles one artboard with the
// animation, state machine and tween instances playing on it.
//
// A Scene is driven by a single goroutine. Scenes share no mutable state, so
// independent scenes may be advanced in parallel (see Stage).
type Scene struct {
	artboard *Artboard
	playing  []playing
	renderer *EbitenRenderer
	camera   *Camera
	stats    *statsOverlay
}

// NewScene creates a scene around an artboard.
// Panics if a is nil.
func NewScene(a *Artboard) *Scene {
	if a == nil {
		panic("rig: cannot create scene with nil artboard")
	}
	return &Scene{artboard: a}
}

// Artboard returns the scene's artboard.
func (s *Scene) Artboard() *Artboard {
	return s.artboard
}

// SetCamera attaches a camera. Scene.Advance updates it and DrawCamera draws
// through it. nil detaches.
func (s *Scene) SetCamera(cam *Camera) {
	s.camera = cam
}

// Camera returns the attached camera, or nil.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// ShowStats toggles an FPS and graph counter overlay drawn by DrawCamera.
func (s *Scene) ShowStats(enabled bool) {
	if !enabled {
		s.stats = nil
		return
	}
	if s.stats == nil {
		s.stats = newStatsOverlay()
	}
}

// Play starts applying inst at the given mix. Instances apply in the order
// they were played, later ones blending over earlier ones.
func (s *Scene) Play(inst StateInstance, mix float64) {
	s.playing = append(s.playing, playing{inst: inst, mix: mix})
}

// PlayAnimation creates an instance of anim and plays it at full mix.
func (s *Scene) PlayAnimation(anim *LinearAnimation) *LinearAnimationInstance {
	inst := NewLinearAnimationInstance(anim)
	s.Play(inst, 1)
	return inst
}

// PlayStateMachine creates an instance of sm and plays it at full mix. State
// changes are reported to the artboard's event sink.
func (s *Scene) PlayStateMachine(sm *StateMachine) *StateMachineInstance {
	inst := NewStateMachineInstance(sm)
	a := s.artboard
	inst.OnStateChange = func(layer, state string) {
		a.emit(SceneEvent{Type: EventStateChanged, Layer: layer, State: state})
	}
	s.Play(inst, 1)
	return inst
}

// Stop removes inst without applying it again. Reports false if it was not
// playing.
func (s *Scene) Stop(inst StateInstance) bool {
	for i := range s.playing {
		if s.playing[i].inst == inst {
			s.playing = append(s.playing[:i], s.playing[i+1:]...)
			return true
		}
	}
	return false
}

// SetMix changes the blend weight of a playing instance.
func (s *Scene) SetMix(inst StateInstance, mix float64) bool {
	for i := range s.playing {
		if s.playing[i].inst == inst {
			s.playing[i].mix = mix
			return true
		}
	}
	return false
}

// Playing returns the number of playing instances.
func (s *Scene) Playing() int {
	return len(s.playing)
}

// Advance runs one frame: every instance advances by dt, every instance
// applies its values, finished instances are released and a single update
// pass resolves the artboard. Reports whether any component was updated.
func (s *Scene) Advance(dt float64) bool {
	for i := range s.playing {
		s.playing[i].done = !s.playing[i].inst.Advance(dt)
	}
	for i := range s.playing {
		p := &s.playing[i]
		p.inst.Apply(s.artboard, p.mix)
	}

	kept := s.playing[:0]
	for _, p := range s.playing {
		if !p.done {
			kept = append(kept, p)
			continue
		}
		s.artboard.emit(SceneEvent{Type: EventAnimationDone, State: instanceName(p.inst)})
	}
	clear(s.playing[len(kept):])
	s.playing = kept

	updated := s.artboard.RunUpdatePass()
	if s.camera != nil {
		s.camera.Update(dt)
	}
	if s.stats != nil {
		s.stats.update(dt, s.artboard)
	}
	return updated
}

// Update advances the scene by one ebiten tick.
func (s *Scene) Update() {
	s.Advance(1.0 / float64(ebiten.TPS()))
}

// Draw hands the artboard's drawables to r.
func (s *Scene) Draw(r Renderer) {
	s.artboard.Draw(r)
}

// DrawImage draws the artboard onto dst through view with a reused
// EbitenRenderer.
func (s *Scene) DrawImage(dst *ebiten.Image, view Mat2D) {
	if s.renderer == nil {
		s.renderer = NewEbitenRenderer(dst, view)
	} else {
		s.renderer.Reset(dst, view)
	}
	s.artboard.Draw(s.renderer)
}

// DrawCamera draws the artboard onto dst through the attached camera,
// skipping drawables outside its visible bounds. Without a camera the view is
// the identity.
func (s *Scene) DrawCamera(dst *ebiten.Image) {
	view := IdentityMat2D
	if s.camera != nil {
		view = s.camera.ViewMatrix()
	}
	if s.renderer == nil {
		s.renderer = NewEbitenRenderer(dst, view)
	} else {
		s.renderer.Reset(dst, view)
	}
	s.artboard.draw(s.renderer, s.camera)
	if s.stats != nil {
		s.stats.draw(dst)
	}
}

func instanceName(inst StateInstance) string {
	switch v := inst.(type) {
	case *LinearAnimationInstance:
		return v.animation.Name
	case *AnimationStateInstance:
		return v.state.Name
	case *StateMachineInstance:
		return v.machine.Name
	case *PropertyTween:
		return v.target.Name
	}
	return ""
}
