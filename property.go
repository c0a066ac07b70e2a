package rig

import (
	"sync"
)

// PropertyKey identifies an animatable property.
type PropertyKey uint16

// Built-in property keys. Which keys apply depends on the component type.
const (
	PropX PropertyKey = iota + 1
	PropY
	PropRotation
	PropScaleX
	PropScaleY
	PropOpacity
	PropLength
	PropWidth
	PropHeight
	PropColorR
	PropColorG
	PropColorB
	PropColorA
	PropStrength
	propBuiltinEnd
)

type propertyDef struct {
	name string
	dirt ComponentDirt
}

// propertyRegistry holds definitional data only. Keys are registered up
// front and then read concurrently by independent scenes.
var propertyRegistry = struct {
	sync.RWMutex
	defs   map[PropertyKey]propertyDef
	byName map[string]PropertyKey
	next   PropertyKey
}{
	defs:   make(map[PropertyKey]propertyDef),
	byName: make(map[string]PropertyKey),
	next:   propBuiltinEnd,
}

var builtinPropertyNames = map[string]PropertyKey{
	"x":        PropX,
	"y":        PropY,
	"rotation": PropRotation,
	"scaleX":   PropScaleX,
	"scaleY":   PropScaleY,
	"opacity":  PropOpacity,
	"length":   PropLength,
	"width":    PropWidth,
	"height":   PropHeight,
	"colorR":   PropColorR,
	"colorG":   PropColorG,
	"colorB":   PropColorB,
	"colorA":   PropColorA,
	"strength": PropStrength,
}

// RegisterProperty registers a bag property. Writing it marks dirt on the
// component that owns the value. Registering an existing name returns the
// existing key.
func RegisterProperty(name string, dirt ComponentDirt) PropertyKey {
	if k, ok := builtinPropertyNames[name]; ok {
		return k
	}
	r := &propertyRegistry
	r.Lock()
	defer r.Unlock()
	if k, ok := r.byName[name]; ok {
		return k
	}
	k := r.next
	r.next++
	r.defs[k] = propertyDef{name: name, dirt: dirt}
	r.byName[name] = k
	return k
}

// PropertyByName resolves a built-in or registered property name.
func PropertyByName(name string) (PropertyKey, bool) {
	if k, ok := builtinPropertyNames[name]; ok {
		return k, true
	}
	r := &propertyRegistry
	r.RLock()
	defer r.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

func bagProperty(key PropertyKey) (propertyDef, bool) {
	r := &propertyRegistry
	r.RLock()
	defer r.RUnlock()
	def, ok := r.defs[key]
	return def, ok
}

// field returns the struct field backing key for this component's type and
// the dirt a write causes. onParent reports that the dirt lands on the parent.
func (c *Component) field(key PropertyKey) (f *float64, dirt ComponentDirt, onParent bool) {
	switch c.Type {
	case ComponentTypeNode, ComponentTypeBone:
		switch key {
		case PropX:
			return &c.X, DirtTransform, false
		case PropY:
			return &c.Y, DirtTransform, false
		case PropRotation:
			return &c.Rotation, DirtTransform, false
		case PropScaleX:
			return &c.ScaleX, DirtTransform, false
		case PropScaleY:
			return &c.ScaleY, DirtTransform, false
		case PropOpacity:
			return &c.Opacity, DirtRenderOpacity, false
		case PropLength:
			if c.Type == ComponentTypeBone {
				// Child bones start at the tip, so their world transforms move.
				return &c.Length, DirtTransform, false
			}
		}
	case ComponentTypeMeshVertex:
		switch key {
		case PropX:
			return &c.X, DirtVertices, false
		case PropY:
			return &c.Y, DirtVertices, false
		}
	case ComponentTypeShape:
		switch key {
		case PropWidth:
			return &c.Width, DirtPath, false
		case PropHeight:
			return &c.Height, DirtPath, false
		case PropColorR:
			return &c.Color.R, DirtPaint, false
		case PropColorG:
			return &c.Color.G, DirtPaint, false
		case PropColorB:
			return &c.Color.B, DirtPaint, false
		case PropColorA:
			return &c.Color.A, DirtPaint, false
		}
	case ComponentTypeTranslationConstraint:
		if key == PropStrength {
			return &c.Strength, DirtWorldTransform, true
		}
	}
	return nil, DirtNone, false
}

// Property returns the current value of key. ok is false when the key does
// not apply to this component.
func (c *Component) Property(key PropertyKey) (value float64, ok bool) {
	if f, _, _ := c.field(key); f != nil {
		return *f, true
	}
	if _, ok := bagProperty(key); ok {
		return c.props[key], true
	}
	return 0, false
}

// setProperty stores value and returns the component that must receive dirt.
func (c *Component) setProperty(key PropertyKey, value float64) (target *Component, dirt ComponentDirt, changed bool) {
	if f, d, onParent := c.field(key); f != nil {
		if *f == value {
			return nil, DirtNone, false
		}
		*f = value
		if !onParent {
			return c, d, true
		}
		if c.artboard != nil {
			return c.artboard.Component(c.ParentID), d, true
		}
		return nil, d, true
	}
	def, ok := bagProperty(key)
	if !ok {
		return nil, DirtNone, false
	}
	if cur, exists := c.props[key]; exists && cur == value {
		return nil, DirtNone, false
	}
	if c.props == nil {
		c.props = make(map[PropertyKey]float64)
	}
	c.props[key] = value
	return c, def.dirt, true
}
