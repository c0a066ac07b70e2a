package rig

import (
	"errors"
	"os"
	"strings"
	"testing"
)

const testRigYAML = `
name: puppet
components:
  - name: arm
    type: bone
    x: 100
    length: 20
  - name: hand
    type: bone
    parent: arm
    length: 5
  - name: follow
    type: node
    x: 10
    scaleX: 2
    opacity: 0.5
  - name: pull
    type: constraint
    parent: follow
    target: hand
    strength: 0.5
  - name: body
    type: mesh
    indices: [0, 1, 2]
    blend: add
  - name: v0
    type: vertex
    parent: body
    bones: [1]
    weights: [1]
  - name: v1
    type: vertex
    parent: body
    x: 10
    u: 1
    bones: [1]
    weights: [1]
  - name: v2
    type: vertex
    parent: body
    y: 10
    v: 1
    bones: [1]
    weights: [1]
  - name: bodySkin
    type: skin
    parent: body
    tendons: [arm]
  - name: badge
    type: shape
    parent: follow
    shape: ellipse
    width: 6
    height: 4
    color: [1, 0, 0]
animations:
  - name: rest
    duration: 1
    loop: loop
    objects:
      - object: arm
        properties:
          - property: rotation
            frames:
              - {time: 0, value: 0}
  - name: wave
    duration: 1
    loop: pingPong
    speed: 2
    objects:
      - object: arm
        properties:
          - property: rotation
            frames:
              - {time: 0, value: 0, ease: inOutSine}
              - {time: 1, value: 1}
stateMachines:
  - name: moods
    inputs:
      - {name: excited, type: bool}
    layers:
      - name: main
        entry: rest
        states:
          - {name: rest, animation: rest}
          - {name: wave, animation: wave}
        transitions:
          - from: rest
            to: wave
            duration: 0.5
            conditions:
              - {input: excited, op: "==", value: 1}
          - from: "*"
            to: rest
            conditions:
              - {input: excited, op: "==", value: 0}
`

func loadTestRig(t *testing.T) *Rig {
	t.Helper()
	r, err := ParseRig([]byte(testRigYAML))
	if err != nil {
		t.Fatalf("ParseRig: %v", err)
	}
	return r
}

func TestLoadRigComponents(t *testing.T) {
	r := loadTestRig(t)
	a := r.Artboard
	if errs := a.BuildErrors(); len(errs) != 0 {
		t.Fatalf("BuildErrors = %v", errs)
	}

	arm, hand := a.Find("arm"), a.Find("hand")
	if arm == nil || hand == nil {
		t.Fatal("bones not found")
	}
	if arm.Type != ComponentTypeBone || arm.X != 100 || arm.Length != 20 {
		t.Errorf("arm = %v x=%v len=%v", arm.Type, arm.X, arm.Length)
	}
	if hand.ParentID != arm.ID {
		t.Errorf("hand parent = %d, want %d", hand.ParentID, arm.ID)
	}
	if arm.ParentID != a.Root().ID {
		t.Errorf("arm parent = %d, want root", arm.ParentID)
	}

	follow := a.Find("follow")
	if follow.ScaleX != 2 || follow.ScaleY != 1 || follow.Opacity != 0.5 {
		t.Errorf("follow scale/opacity = %v,%v,%v", follow.ScaleX, follow.ScaleY, follow.Opacity)
	}
	if pull := a.Find("pull"); pull.TargetID != hand.ID || pull.Strength != 0.5 {
		t.Errorf("pull target=%d strength=%v", pull.TargetID, pull.Strength)
	}
	if body := a.Find("body"); body.BlendMode != BlendAdd || !body.Skinned() {
		t.Errorf("body blend=%v skinned=%v", body.BlendMode, body.Skinned())
	}
	badge := a.Find("badge")
	if badge.Shape != ShapeEllipse || badge.Color != (Color{R: 1, A: 1}) {
		t.Errorf("badge shape=%v color=%+v", badge.Shape, badge.Color)
	}
}

func TestLoadRigResolvesPose(t *testing.T) {
	r := loadTestRig(t)
	a := r.Artboard
	a.RunUpdatePass()

	// hand sits at the tip of arm; the constraint pulls follow halfway.
	hand := a.Find("hand")
	assertNear(t, "hand x", hand.WorldTransform()[4], 120)
	assertNear(t, "follow x", a.Find("follow").WorldTransform()[4], 65)
	assertNear(t, "badge alpha", a.Find("badge").Paint().Color.A, 0.5)
}

func TestLoadRigBindsSkinAtLoadedPose(t *testing.T) {
	r := loadTestRig(t)
	a := r.Artboard
	a.RunUpdatePass()

	body := a.Find("body")
	got := body.DeformedVertices()
	if len(got) != 3 {
		t.Fatalf("vertices = %d, want 3", len(got))
	}
	assertNear(t, "bind v1 x", got[1].X, 10)
	assertNear(t, "bind v2 y", got[2].Y, 10)

	a.Find("arm").SetPosition(130, 5)
	a.RunUpdatePass()
	got = body.DeformedVertices()
	assertNear(t, "moved v1 x", got[1].X, 40)
	assertNear(t, "moved v1 y", got[1].Y, 5)
}

func TestLoadRigAnimations(t *testing.T) {
	r := loadTestRig(t)
	arm := r.Artboard.Find("arm")

	wave := r.Animation("wave")
	if wave == nil {
		t.Fatal("wave not found")
	}
	if wave.Loop != LoopPingPong || wave.Speed != 2 || wave.Duration != 1 {
		t.Errorf("wave loop=%v speed=%v duration=%v", wave.Loop, wave.Speed, wave.Duration)
	}
	if rest := r.Animation("rest"); rest.Speed != 1 {
		t.Errorf("rest speed = %v, want default 1", rest.Speed)
	}
	obj := wave.KeyedObjects[0]
	if obj.ObjectID != arm.ID {
		t.Errorf("keyed object = %d, want %d", obj.ObjectID, arm.ID)
	}
	frames := obj.Properties[0].Frames
	if obj.Properties[0].Key != PropRotation || frames[0].Ease == nil || frames[1].Ease != nil {
		t.Errorf("curve = %+v", obj.Properties[0])
	}
	if r.Animation("missing") != nil {
		t.Error("unknown animation should be nil")
	}

	inst := NewLinearAnimationInstance(wave)
	inst.Advance(0.25)
	inst.Apply(r.Artboard, 1)
	// inOutSine is symmetric, so the midpoint maps to half the range.
	assertClose(t, "rotation", arm.Rotation, 0.5)
}

func TestLoadRigStateMachine(t *testing.T) {
	r := loadTestRig(t)
	sm := r.StateMachine("moods")
	if sm == nil {
		t.Fatal("moods not found")
	}
	if len(sm.Layers) != 1 || len(sm.Layers[0].Transitions) != 2 {
		t.Fatalf("layers = %+v", sm.Layers)
	}
	if sm.Layers[0].Transitions[1].From != AnyState {
		t.Errorf("wildcard from = %d, want AnyState", sm.Layers[0].Transitions[1].From)
	}

	s := NewScene(r.Artboard)
	inst := s.PlayStateMachine(sm)
	s.Advance(0.1)
	if got := inst.CurrentState(0); got != "rest" {
		t.Errorf("CurrentState = %q, want rest", got)
	}
	inst.SetBool("excited", true)
	s.Advance(0.1)
	if got := inst.CurrentState(0); got != "wave" {
		t.Errorf("CurrentState = %q, want wave", got)
	}
}

func TestLoadRigExplicitZeroSpeed(t *testing.T) {
	r, err := ParseRig([]byte(`
name: still
components:
  - name: a
animations:
  - {name: frozen, duration: 1, speed: 0, objects: []}
  - {name: moving, duration: 1, objects: []}
`))
	if err != nil {
		t.Fatalf("ParseRig: %v", err)
	}
	if got := r.Animation("frozen").Speed; got != 0 {
		t.Errorf("frozen speed = %v, want 0", got)
	}
	if got := r.Animation("moving").Speed; got != 1 {
		t.Errorf("moving speed = %v, want 1", got)
	}
}

func TestLoadRigUnknownReferenceIsBuildError(t *testing.T) {
	r, err := ParseRig([]byte(`
name: lost
components:
  - name: orphan
    parent: ghost
  - name: child
    parent: orphan
  - name: fine
animations:
  - name: haunt
    duration: 1
    objects:
      - object: ghost
        properties:
          - property: x
            frames: [{time: 0, value: 1}]
`))
	if err != nil {
		t.Fatalf("ParseRig: %v", err)
	}
	a := r.Artboard
	errs := a.BuildErrors()
	if len(errs) != 2 {
		t.Fatalf("BuildErrors = %v, want orphan and child", errs)
	}
	for _, e := range errs {
		if !errors.Is(e, ErrMissingObject) {
			t.Errorf("error %v is not ErrMissingObject", e)
		}
	}
	if a.Find("fine").BuildErr() != nil {
		t.Error("unrelated component excluded")
	}

	// Curves on the unresolved object are skipped.
	a.RunUpdatePass()
	r.Animation("haunt").Apply(a, 0, 1)
	if a.IsDirty() {
		t.Error("applying to an unknown object marked dirt")
	}
}

func TestLoadRigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown field",
			"name: x\ncomponents:\n  - name: a\n    colour: [1, 1, 1]\n",
			"colour",
		},
		{
			"unknown component type",
			"name: x\ncomponents:\n  - name: a\n    type: sprite\n",
			"unknown component type",
		},
		{
			"missing name",
			"name: x\ncomponents:\n  - type: node\n",
			"missing name",
		},
		{
			"duplicate name",
			"name: x\ncomponents:\n  - name: a\n  - name: a\n",
			"duplicate name",
		},
		{
			"bad color",
			"name: x\ncomponents:\n  - name: a\n    type: shape\n    color: [1, 1]\n",
			"color",
		},
		{
			"mismatched weights",
			"name: x\ncomponents:\n  - name: v\n    type: vertex\n    bones: [1, 2]\n    weights: [1]\n",
			"bones and weights",
		},
		{
			"unknown property",
			"name: x\ncomponents:\n  - name: a\nanimations:\n  - name: an\n    duration: 1\n    objects:\n      - object: a\n        properties:\n          - property: glow\n            frames: [{time: 0, value: 1}]\n",
			"unknown property",
		},
		{
			"unknown ease",
			"name: x\ncomponents:\n  - name: a\nanimations:\n  - name: an\n    duration: 1\n    objects:\n      - object: a\n        properties:\n          - property: x\n            frames: [{time: 0, value: 1, ease: wobble}]\n",
			"unknown ease",
		},
		{
			"frames out of order",
			"name: x\ncomponents:\n  - name: a\nanimations:\n  - name: an\n    duration: 1\n    objects:\n      - object: a\n        properties:\n          - property: x\n            frames: [{time: 1, value: 1}, {time: 0, value: 0}]\n",
			"out of order",
		},
		{
			"unknown loop",
			"name: x\ncomponents: []\nanimations:\n  - name: an\n    duration: 1\n    loop: forever\n    objects: []\n",
			"unknown loop",
		},
		{
			"unknown state animation",
			"name: x\ncomponents: []\nstateMachines:\n  - name: sm\n    layers:\n      - name: l\n        states: [{name: s, animation: nope}]\n",
			"unknown animation",
		},
		{
			"unknown condition input",
			"name: x\ncomponents: []\nanimations:\n  - {name: an, duration: 1, objects: []}\nstateMachines:\n  - name: sm\n    layers:\n      - name: l\n        states: [{name: s, animation: an}]\n        transitions:\n          - {from: s, to: s, conditions: [{input: nope, op: \"==\", value: 1}]}\n",
			"unknown input",
		},
		{
			"empty layer",
			"name: x\ncomponents: []\nstateMachines:\n  - name: sm\n    layers:\n      - {name: l, states: []}\n",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRig(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("LoadRig succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDecodeRigRoundTrip(t *testing.T) {
	d, err := DecodeRig(strings.NewReader(testRigYAML))
	if err != nil {
		t.Fatalf("DecodeRig: %v", err)
	}
	if d.Name != "puppet" || len(d.Components) != 10 {
		t.Errorf("decoded %q with %d components", d.Name, len(d.Components))
	}
	if d.Components[3].Strength == nil || *d.Components[3].Strength != 0.5 {
		t.Error("strength not decoded")
	}
	if d.Components[0].ScaleX != nil {
		t.Error("absent scaleX should stay nil")
	}
}

func TestPuppetExampleLoads(t *testing.T) {
	data, err := os.ReadFile("examples/puppet/puppet.yaml")
	if err != nil {
		t.Fatalf("read example: %v", err)
	}
	r, err := ParseRig(data)
	if err != nil {
		t.Fatalf("ParseRig: %v", err)
	}
	if errs := r.Artboard.BuildErrors(); len(errs) != 0 {
		t.Fatalf("BuildErrors = %v", errs)
	}

	s := NewScene(r.Artboard)
	s.PlayStateMachine(r.StateMachine("greet"))
	for i := 0; i < 10; i++ {
		s.Advance(1.0 / 60)
	}
	if errs := r.Artboard.UpdateErrors(); len(errs) != 0 {
		t.Errorf("UpdateErrors = %v", errs)
	}
}
