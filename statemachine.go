package rig

import (
	"fmt"
	"math"
)

// StateInstance is a playing state: something that advances with time and
// writes property values into an artboard.
type StateInstance interface {
	// Advance moves the instance forward by dt seconds and reports whether it
	// keeps playing.
	Advance(dt float64) bool
	// Apply writes the instance's current values, blended by mix.
	Apply(a *Artboard, mix float64)
}

// LayerState is a state a state machine layer can be in.
type LayerState interface {
	StateName() string
	// MakeInstance creates a fresh instance. States are definitional data and
	// may be instanced any number of times.
	MakeInstance() StateInstance
}

// AnimationState plays a single linear animation.
type AnimationState struct {
	Name      string
	Animation *LinearAnimation
}

// StateName returns the state's name.
func (s *AnimationState) StateName() string { return s.Name }

// MakeInstance creates an instance playing the state's animation from the
// start.
func (s *AnimationState) MakeInstance() StateInstance {
	return &AnimationStateInstance{state: s, anim: NewLinearAnimationInstance(s.Animation)}
}

// AnimationStateInstance plays an AnimationState.
type AnimationStateInstance struct {
	state *AnimationState
	anim  *LinearAnimationInstance
}

// Advance advances the underlying animation.
func (i *AnimationStateInstance) Advance(dt float64) bool {
	return i.anim.Advance(dt)
}

// Apply applies the underlying animation.
func (i *AnimationStateInstance) Apply(a *Artboard, mix float64) {
	i.anim.Apply(a, mix)
}

// AnimationInstance returns the underlying animation instance.
func (i *AnimationStateInstance) AnimationInstance() *LinearAnimationInstance {
	return i.anim
}

// InputType is the kind of value a state machine input holds.
type InputType uint8

const (
	InputNumber InputType = iota
	InputBool
	InputTrigger // true for one advance after Fire, then reset
)

// Input declares a state machine input.
type Input struct {
	Name    string
	Type    InputType
	Default float64
}

// ConditionOp compares an input to a value.
type ConditionOp uint8

const (
	OpEqual ConditionOp = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

// Condition gates a transition on one input.
type Condition struct {
	Input int // index into StateMachine.Inputs
	Op    ConditionOp
	Value float64
}

func (c Condition) eval(v float64) bool {
	switch c.Op {
	case OpEqual:
		return v == c.Value
	case OpNotEqual:
		return v != c.Value
	case OpLess:
		return v < c.Value
	case OpLessOrEqual:
		return v <= c.Value
	case OpGreater:
		return v > c.Value
	case OpGreaterOrEqual:
		return v >= c.Value
	}
	return false
}

// AnyState as a Transition's From matches whatever state is current.
const AnyState = -1

// Transition moves a layer from one state to another once all conditions
// hold. Duration cross-fades the two states, in seconds.
type Transition struct {
	From       int
	To         int
	Duration   float64
	Conditions []Condition
	// ExitTime, when positive, additionally requires the outgoing state to
	// have played for that many seconds.
	ExitTime float64
}

// Layer is an independent set of states. Layers are applied in order, later
// layers blending over earlier ones.
type Layer struct {
	Name        string
	States      []LayerState
	Entry       int
	Transitions []Transition
}

// StateMachine is the definitional form of a state machine.
type StateMachine struct {
	Name   string
	Inputs []Input
	Layers []*Layer
}

// InputIndex returns the index of the named input, or -1.
func (sm *StateMachine) InputIndex(name string) int {
	for i, in := range sm.Inputs {
		if in.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks state and input indices.
func (sm *StateMachine) Validate() error {
	for _, l := range sm.Layers {
		if len(l.States) == 0 {
			return fmt.Errorf("state machine %q layer %q: no states: %w", sm.Name, l.Name, ErrInvalidObject)
		}
		if l.Entry < 0 || l.Entry >= len(l.States) {
			return fmt.Errorf("state machine %q layer %q: entry %d out of range: %w", sm.Name, l.Name, l.Entry, ErrInvalidObject)
		}
		for _, t := range l.Transitions {
			if t.From != AnyState && (t.From < 0 || t.From >= len(l.States)) {
				return fmt.Errorf("state machine %q layer %q: transition from %d out of range: %w", sm.Name, l.Name, t.From, ErrInvalidObject)
			}
			if t.To < 0 || t.To >= len(l.States) {
				return fmt.Errorf("state machine %q layer %q: transition to %d out of range: %w", sm.Name, l.Name, t.To, ErrInvalidObject)
			}
			for _, c := range t.Conditions {
				if c.Input < 0 || c.Input >= len(sm.Inputs) {
					return fmt.Errorf("state machine %q layer %q: condition input %d out of range: %w", sm.Name, l.Name, c.Input, ErrInvalidObject)
				}
			}
		}
	}
	return nil
}

// layerInstance is the playback state of one layer.
type layerInstance struct {
	layer     *Layer
	state     int
	current   StateInstance
	elapsed   float64 // time spent in the current state
	from      StateInstance
	fromState int
	duration  float64
	mix       float64
}

// StateMachineInstance plays a StateMachine. Like every instance it owns its
// own time and inputs.
type StateMachineInstance struct {
	machine *StateMachine
	inputs  []float64
	layers  []layerInstance

	// OnStateChange, when set, is called after a layer enters a new state.
	OnStateChange func(layer, state string)
}

// NewStateMachineInstance creates an instance with every layer in its entry
// state and every input at its default. Panics if sm does not validate.
func NewStateMachineInstance(sm *StateMachine) *StateMachineInstance {
	if err := sm.Validate(); err != nil {
		panic("rig: " + err.Error())
	}
	inst := &StateMachineInstance{
		machine: sm,
		inputs:  make([]float64, len(sm.Inputs)),
		layers:  make([]layerInstance, len(sm.Layers)),
	}
	for i, in := range sm.Inputs {
		inst.inputs[i] = in.Default
	}
	for i, l := range sm.Layers {
		inst.layers[i] = layerInstance{
			layer:     l,
			state:     l.Entry,
			current:   l.States[l.Entry].MakeInstance(),
			fromState: -1,
			mix:       1,
		}
	}
	return inst
}

// StateMachine returns the played definition.
func (inst *StateMachineInstance) StateMachine() *StateMachine {
	return inst.machine
}

// SetNumber sets a numeric input. Reports false for an unknown name.
func (inst *StateMachineInstance) SetNumber(name string, v float64) bool {
	i := inst.machine.InputIndex(name)
	if i < 0 {
		return false
	}
	inst.inputs[i] = v
	return true
}

// SetBool sets a boolean input. Reports false for an unknown name.
func (inst *StateMachineInstance) SetBool(name string, v bool) bool {
	if v {
		return inst.SetNumber(name, 1)
	}
	return inst.SetNumber(name, 0)
}

// Fire sets a trigger input for the next advance.
func (inst *StateMachineInstance) Fire(name string) bool {
	return inst.SetNumber(name, 1)
}

// Input returns the current value of the named input.
func (inst *StateMachineInstance) Input(name string) (float64, bool) {
	i := inst.machine.InputIndex(name)
	if i < 0 {
		return 0, false
	}
	return inst.inputs[i], true
}

// CurrentState returns the name of the layer's current state.
func (inst *StateMachineInstance) CurrentState(layer int) string {
	l := &inst.layers[layer]
	return l.layer.States[l.state].StateName()
}

// Advance evaluates transitions and advances every layer's active states.
// A state machine keeps playing; it never reports done.
func (inst *StateMachineInstance) Advance(dt float64) bool {
	if !validStep(dt) {
		dt = 0
	}
	for i := range inst.layers {
		l := &inst.layers[i]
		inst.evaluate(l)

		l.current.Advance(dt)
		l.elapsed += dt
		if l.from != nil {
			l.from.Advance(dt)
			if l.duration <= 0 {
				l.mix = 1
			} else {
				l.mix = math.Min(1, l.mix+dt/l.duration)
			}
			if l.mix >= 1 {
				l.from = nil
				l.fromState = -1
			}
		}
	}
	for i, in := range inst.machine.Inputs {
		if in.Type == InputTrigger {
			inst.inputs[i] = 0
		}
	}
	return true
}

// evaluate takes the first transition whose conditions all hold.
func (inst *StateMachineInstance) evaluate(l *layerInstance) {
	for _, t := range l.layer.Transitions {
		if t.From != AnyState && t.From != l.state {
			continue
		}
		if t.To == l.state {
			continue
		}
		if t.ExitTime > 0 && l.elapsed < t.ExitTime {
			continue
		}
		ok := true
		for _, c := range t.Conditions {
			if !c.eval(inst.inputs[c.Input]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		l.from = l.current
		l.fromState = l.state
		l.state = t.To
		l.current = l.layer.States[t.To].MakeInstance()
		l.elapsed = 0
		l.duration = t.Duration
		l.mix = 0
		if t.Duration <= 0 {
			l.mix = 1
			l.from = nil
			l.fromState = -1
		}
		if inst.OnStateChange != nil {
			inst.OnStateChange(l.layer.Name, l.layer.States[t.To].StateName())
		}
		return
	}
}

// Apply writes every layer. During a transition the outgoing state is
// applied at mix and the incoming one cross-fades over it.
func (inst *StateMachineInstance) Apply(a *Artboard, mix float64) {
	for i := range inst.layers {
		l := &inst.layers[i]
		if l.from != nil {
			l.from.Apply(a, mix)
		}
		l.current.Apply(a, l.mix*mix)
	}
}
