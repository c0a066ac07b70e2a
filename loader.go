package rig

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// unresolvedID stands in for a name that matched no component. It never
// resolves, so the referencing component fails its build check instead of
// failing the load.
const unresolvedID = ID(math.MaxUint32)

// RigDescription is the serialized form of an artboard with its animations
// and state machines. Components reference each other by name.
type RigDescription struct {
	Name          string                    `yaml:"name"`
	Components    []ComponentDescription    `yaml:"components"`
	Animations    []AnimationDescription    `yaml:"animations,omitempty"`
	StateMachines []StateMachineDescription `yaml:"stateMachines,omitempty"`
}

// ComponentDescription describes one component. Fields that do not apply to
// Type are ignored. Pointer fields default to the constructor's value.
type ComponentDescription struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Parent   string   `yaml:"parent,omitempty"`
	X        float64  `yaml:"x,omitempty"`
	Y        float64  `yaml:"y,omitempty"`
	Rotation float64  `yaml:"rotation,omitempty"`
	ScaleX   *float64 `yaml:"scaleX,omitempty"`
	ScaleY   *float64 `yaml:"scaleY,omitempty"`
	Opacity  *float64 `yaml:"opacity,omitempty"`

	// bone
	Length float64 `yaml:"length,omitempty"`

	// skin: bone names, bound at the loaded pose
	Tendons []string `yaml:"tendons,omitempty"`

	// mesh
	Indices []uint16 `yaml:"indices,omitempty"`
	Blend   string   `yaml:"blend,omitempty"`

	// vertex: bones are 1-based tendon indices
	U       float64   `yaml:"u,omitempty"`
	V       float64   `yaml:"v,omitempty"`
	Bones   []uint8   `yaml:"bones,omitempty"`
	Weights []float64 `yaml:"weights,omitempty"`

	// shape
	Shape  string    `yaml:"shape,omitempty"`
	Width  float64   `yaml:"width,omitempty"`
	Height float64   `yaml:"height,omitempty"`
	Color  []float64 `yaml:"color,omitempty"` // r, g, b[, a]

	// constraint
	Target   string   `yaml:"target,omitempty"`
	Strength *float64 `yaml:"strength,omitempty"`
}

// AnimationDescription describes a linear animation.
type AnimationDescription struct {
	Name     string             `yaml:"name"`
	Duration float64            `yaml:"duration"`
	Speed    *float64           `yaml:"speed,omitempty"`
	Loop     string             `yaml:"loop,omitempty"` // oneShot, loop, pingPong
	Objects  []KeyedDescription `yaml:"objects"`
}

// KeyedDescription binds curves to a component by name.
type KeyedDescription struct {
	Object     string                `yaml:"object"`
	Properties []PropertyDescription `yaml:"properties"`
}

// PropertyDescription is one curve.
type PropertyDescription struct {
	Property string             `yaml:"property"`
	Frames   []FrameDescription `yaml:"frames"`
}

// FrameDescription is one keyframe. Ease names the curve toward the next
// frame; empty holds the value.
type FrameDescription struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
	Ease  string  `yaml:"ease,omitempty"`
}

// StateMachineDescription describes a state machine over the rig's
// animations.
type StateMachineDescription struct {
	Name   string             `yaml:"name"`
	Inputs []InputDescription `yaml:"inputs,omitempty"`
	Layers []LayerDescription `yaml:"layers"`
}

// InputDescription declares an input: number, bool or trigger.
type InputDescription struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`
	Default float64 `yaml:"default,omitempty"`
}

// LayerDescription describes a layer. Entry defaults to the first state.
type LayerDescription struct {
	Name        string                  `yaml:"name"`
	Entry       string                  `yaml:"entry,omitempty"`
	States      []StateDescription      `yaml:"states"`
	Transitions []TransitionDescription `yaml:"transitions,omitempty"`
}

// StateDescription plays the named animation.
type StateDescription struct {
	Name      string `yaml:"name"`
	Animation string `yaml:"animation"`
}

// TransitionDescription moves between states by name; From "*" matches any
// state.
type TransitionDescription struct {
	From       string                 `yaml:"from"`
	To         string                 `yaml:"to"`
	Duration   float64                `yaml:"duration,omitempty"`
	ExitTime   float64                `yaml:"exitTime,omitempty"`
	Conditions []ConditionDescription `yaml:"conditions,omitempty"`
}

// ConditionDescription compares an input: ==, !=, <, <=, >, >=.
type ConditionDescription struct {
	Input string  `yaml:"input"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

// Rig is a loaded artboard with its animations and state machines.
type Rig struct {
	Artboard      *Artboard
	Animations    []*LinearAnimation
	StateMachines []*StateMachine
}

// Animation returns the named animation, or nil.
func (r *Rig) Animation(name string) *LinearAnimation {
	for _, a := range r.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// StateMachine returns the named state machine, or nil.
func (r *Rig) StateMachine(name string) *StateMachine {
	for _, sm := range r.StateMachines {
		if sm.Name == name {
			return sm
		}
	}
	return nil
}

// DecodeRig decodes a YAML rig description.
func DecodeRig(r io.Reader) (*RigDescription, error) {
	var d RigDescription
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode rig: %w", err)
	}
	return &d, nil
}

// LoadRig decodes a YAML rig description and builds it.
func LoadRig(r io.Reader) (*Rig, error) {
	d, err := DecodeRig(r)
	if err != nil {
		return nil, err
	}
	return d.Build()
}

// ParseRig is LoadRig over a byte slice.
func ParseRig(data []byte) (*Rig, error) {
	return LoadRig(bytes.NewReader(data))
}

var easeByName = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
}

var loopByName = map[string]Loop{
	"":         LoopOneShot,
	"oneShot":  LoopOneShot,
	"loop":     LoopLoop,
	"pingPong": LoopPingPong,
}

var opByName = map[string]ConditionOp{
	"==": OpEqual,
	"!=": OpNotEqual,
	"<":  OpLess,
	"<=": OpLessOrEqual,
	">":  OpGreater,
	">=": OpGreaterOrEqual,
}

var inputTypeByName = map[string]InputType{
	"number":  InputNumber,
	"bool":    InputBool,
	"trigger": InputTrigger,
}

var blendByName = map[string]BlendMode{
	"":         BlendNormal,
	"normal":   BlendNormal,
	"add":      BlendAdd,
	"multiply": BlendMultiply,
	"screen":   BlendScreen,
}

// Build constructs the artboard, animations and state machines. Component
// references resolve by name in a second pass, so components may be listed
// in any order. A reference to an unknown component does not fail the load:
// the referencing component is excluded by the artboard build and reported
// in its BuildErrors.
//
// Skins are bound at the loaded pose: each tendon's inverse bind transform is
// the inverse of its bone's world transform after the first update pass.
func (d *RigDescription) Build() (*Rig, error) {
	a := NewArtboard(d.Name)
	byName := make(map[string]ID, len(d.Components))
	comps := make([]*Component, len(d.Components))

	// Pass 1: create.
	for i := range d.Components {
		cd := &d.Components[i]
		if cd.Name == "" {
			return nil, fmt.Errorf("component %d: missing name", i)
		}
		if _, dup := byName[cd.Name]; dup {
			return nil, fmt.Errorf("component %q: duplicate name", cd.Name)
		}
		c, err := cd.component()
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", cd.Name, err)
		}
		comps[i] = c
		byName[cd.Name] = a.Add(NoID, c)
	}
	resolve := func(name string) ID {
		if id, ok := byName[name]; ok {
			return id
		}
		return unresolvedID
	}

	// Pass 2: link by name.
	var skins []*Component
	for i := range d.Components {
		cd, c := &d.Components[i], comps[i]
		c.ParentID = a.root.ID
		if cd.Parent != "" {
			c.ParentID = resolve(cd.Parent)
		}
		switch c.Type {
		case ComponentTypeTranslationConstraint:
			c.TargetID = resolve(cd.Target)
		case ComponentTypeSkin:
			c.Tendons = make([]Tendon, len(cd.Tendons))
			for k, bone := range cd.Tendons {
				c.Tendons[k] = Tendon{BoneID: resolve(bone), InverseBind: IdentityMat2D}
			}
			skins = append(skins, c)
		}
	}

	// Bind skins at the loaded pose.
	_ = a.Build()
	if len(skins) > 0 {
		a.RunUpdatePass()
		for _, skin := range skins {
			if !skin.isLive() {
				continue
			}
			for k := range skin.Tendons {
				if bone := a.liveComponent(skin.Tendons[k].BoneID); bone != nil {
					skin.Tendons[k].InverseBind = bone.worldTransform.Invert()
				}
			}
			if mesh := a.liveComponent(skin.ParentID); mesh != nil {
				skin.BindTransform = mesh.worldTransform
			}
			a.markDirty(skin, DirtSkin)
		}
	}

	rig := &Rig{Artboard: a}
	for i := range d.Animations {
		anim, err := d.Animations[i].animation(resolve)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", d.Animations[i].Name, err)
		}
		rig.Animations = append(rig.Animations, anim)
	}
	for i := range d.StateMachines {
		sm, err := d.StateMachines[i].stateMachine(rig)
		if err != nil {
			return nil, fmt.Errorf("state machine %q: %w", d.StateMachines[i].Name, err)
		}
		rig.StateMachines = append(rig.StateMachines, sm)
	}
	return rig, nil
}

func (cd *ComponentDescription) component() (*Component, error) {
	var c *Component
	switch cd.Type {
	case "node", "":
		c = NewNode(cd.Name)
	case "bone":
		c = NewBone(cd.Name, cd.Length)
	case "skin":
		c = NewSkin(cd.Name)
	case "mesh":
		blend, ok := blendByName[cd.Blend]
		if !ok {
			return nil, fmt.Errorf("unknown blend mode %q", cd.Blend)
		}
		c = NewMesh(cd.Name, nil, cd.Indices)
		c.BlendMode = blend
	case "vertex":
		if len(cd.Bones) > 4 || len(cd.Bones) != len(cd.Weights) {
			return nil, fmt.Errorf("vertex needs matching bones and weights, at most 4")
		}
		c = NewMeshVertex(cd.Name, cd.X, cd.Y, cd.U, cd.V)
		copy(c.BoneIndices[:], cd.Bones)
		copy(c.Weights[:], cd.Weights)
		return c, nil
	case "shape":
		kind := ShapeRectangle
		switch cd.Shape {
		case "", "rectangle":
		case "ellipse":
			kind = ShapeEllipse
		default:
			return nil, fmt.Errorf("unknown shape %q", cd.Shape)
		}
		col := ColorWhite
		switch len(cd.Color) {
		case 0:
		case 3:
			col = Color{R: cd.Color[0], G: cd.Color[1], B: cd.Color[2], A: 1}
		case 4:
			col = Color{R: cd.Color[0], G: cd.Color[1], B: cd.Color[2], A: cd.Color[3]}
		default:
			return nil, fmt.Errorf("color needs 3 or 4 channels, got %d", len(cd.Color))
		}
		c = NewShape(cd.Name, kind, cd.Width, cd.Height, col)
		return c, nil
	case "constraint":
		c = NewTranslationConstraint(cd.Name, NoID, 1)
		if cd.Strength != nil {
			c.Strength = *cd.Strength
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown component type %q", cd.Type)
	}
	c.X, c.Y = cd.X, cd.Y
	c.Rotation = cd.Rotation
	if cd.ScaleX != nil {
		c.ScaleX = *cd.ScaleX
	}
	if cd.ScaleY != nil {
		c.ScaleY = *cd.ScaleY
	}
	if cd.Opacity != nil {
		c.Opacity = *cd.Opacity
	}
	return c, nil
}

func (ad *AnimationDescription) animation(resolve func(string) ID) (*LinearAnimation, error) {
	loop, ok := loopByName[ad.Loop]
	if !ok {
		return nil, fmt.Errorf("unknown loop %q", ad.Loop)
	}
	anim := NewLinearAnimation(ad.Name, ad.Duration, loop)
	if ad.Speed != nil {
		anim.Speed = *ad.Speed
	}
	for _, kd := range ad.Objects {
		obj := &KeyedObject{ObjectID: resolve(kd.Object)}
		for _, pd := range kd.Properties {
			key, ok := PropertyByName(pd.Property)
			if !ok {
				return nil, fmt.Errorf("object %q: unknown property %q", kd.Object, pd.Property)
			}
			prop := &KeyedProperty{Key: key, Frames: make([]KeyFrame, len(pd.Frames))}
			for i, fd := range pd.Frames {
				if i > 0 && fd.Time < pd.Frames[i-1].Time {
					return nil, fmt.Errorf("object %q property %q: frames out of order at %d", kd.Object, pd.Property, i)
				}
				var fn ease.TweenFunc
				if fd.Ease != "" {
					if fn, ok = easeByName[fd.Ease]; !ok {
						return nil, fmt.Errorf("object %q property %q: unknown ease %q", kd.Object, pd.Property, fd.Ease)
					}
				}
				prop.Frames[i] = KeyFrame{Time: fd.Time, Value: fd.Value, Ease: fn}
			}
			obj.Properties = append(obj.Properties, prop)
		}
		anim.KeyedObjects = append(anim.KeyedObjects, obj)
	}
	return anim, nil
}

func (sd *StateMachineDescription) stateMachine(rig *Rig) (*StateMachine, error) {
	sm := &StateMachine{Name: sd.Name}
	for _, in := range sd.Inputs {
		typ, ok := inputTypeByName[in.Type]
		if !ok {
			return nil, fmt.Errorf("input %q: unknown type %q", in.Name, in.Type)
		}
		sm.Inputs = append(sm.Inputs, Input{Name: in.Name, Type: typ, Default: in.Default})
	}
	for _, ld := range sd.Layers {
		layer := &Layer{Name: ld.Name}
		stateIndex := make(map[string]int, len(ld.States))
		for i, st := range ld.States {
			anim := rig.Animation(st.Animation)
			if anim == nil {
				return nil, fmt.Errorf("layer %q state %q: unknown animation %q", ld.Name, st.Name, st.Animation)
			}
			layer.States = append(layer.States, &AnimationState{Name: st.Name, Animation: anim})
			stateIndex[st.Name] = i
		}
		if ld.Entry != "" {
			i, ok := stateIndex[ld.Entry]
			if !ok {
				return nil, fmt.Errorf("layer %q: unknown entry state %q", ld.Name, ld.Entry)
			}
			layer.Entry = i
		}
		for _, td := range ld.Transitions {
			t := Transition{From: AnyState, Duration: td.Duration, ExitTime: td.ExitTime}
			if td.From != "*" {
				i, ok := stateIndex[td.From]
				if !ok {
					return nil, fmt.Errorf("layer %q: unknown state %q", ld.Name, td.From)
				}
				t.From = i
			}
			i, ok := stateIndex[td.To]
			if !ok {
				return nil, fmt.Errorf("layer %q: unknown state %q", ld.Name, td.To)
			}
			t.To = i
			for _, cd := range td.Conditions {
				op, ok := opByName[cd.Op]
				if !ok {
					return nil, fmt.Errorf("layer %q: unknown condition op %q", ld.Name, cd.Op)
				}
				in := sm.InputIndex(cd.Input)
				if in < 0 {
					return nil, fmt.Errorf("layer %q: unknown input %q", ld.Name, cd.Input)
				}
				t.Conditions = append(t.Conditions, Condition{Input: in, Op: op, Value: cd.Value})
			}
			layer.Transitions = append(layer.Transitions, t)
		}
		sm.Layers = append(sm.Layers, layer)
	}
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	return sm, nil
}
