package rig

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// KeyFrame is a value at a point in time. Ease shapes the curve toward the
// next frame; a nil Ease holds the value until the next frame. Eased values
// are computed in float32, so values between frames carry float32 precision;
// values at frame times are exact.
type KeyFrame struct {
	Time  float64
	Value float64
	Ease  ease.TweenFunc
}

// KeyedProperty drives one property through a curve. Frames must be sorted by
// Time. Keyed data is immutable after load and may be shared by any number of
// instances and scenes.
type KeyedProperty struct {
	Key    PropertyKey
	Frames []KeyFrame
}

// ValueAt returns the curve's value at time t, clamped to the first and last
// frames.
func (p *KeyedProperty) ValueAt(t float64) float64 {
	n := len(p.Frames)
	if n == 0 {
		return 0
	}
	if t <= p.Frames[0].Time {
		return p.Frames[0].Value
	}
	// First frame strictly after t.
	i := sort.Search(n, func(i int) bool { return p.Frames[i].Time > t })
	if i == n {
		return p.Frames[n-1].Value
	}
	from, to := p.Frames[i-1], p.Frames[i]
	span := to.Time - from.Time
	if from.Ease == nil || span <= 0 || t == from.Time {
		return from.Value
	}
	return float64(from.Ease(float32(t-from.Time), float32(from.Value), float32(to.Value-from.Value), float32(span)))
}

// KeyedObject binds keyed properties to one component by ID.
type KeyedObject struct {
	ObjectID   ID
	Properties []*KeyedProperty
}

// Apply writes every keyed property at time t onto the target component,
// blended by mix. A target that no longer resolves is skipped.
func (o *KeyedObject) Apply(a *Artboard, t, mix float64) {
	c := a.Component(o.ObjectID)
	if c == nil {
		return
	}
	for _, p := range o.Properties {
		mixProperty(c, p.Key, p.ValueAt(t), mix)
	}
}

// mixProperty blends value into the property's current value:
// mix >= 1 replaces it, 0 < mix < 1 interpolates linearly, mix <= 0 leaves it
// untouched. A changed value marks the dirt the property implies.
func mixProperty(c *Component, key PropertyKey, value, mix float64) bool {
	if mix <= 0 {
		return false
	}
	if mix < 1 {
		cur, ok := c.Property(key)
		if !ok {
			return false
		}
		value = cur*(1-mix) + value*mix
	}
	return c.SetProperty(key, value)
}
