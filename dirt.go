package rig

// ComponentDirt is a set of independent flags, each meaning one aspect of a
// component's derived state is stale.
type ComponentDirt uint16

const (
	DirtPath           ComponentDirt = 1 << iota // path geometry must be regenerated
	DirtVertices                                 // mesh vertices must be re-deformed
	DirtPaint                                    // render paint must be resolved
	DirtRenderOpacity                            // inherited opacity changed
	DirtTransform                                // local transform changed
	DirtWorldTransform                           // world transform must be recomposed
	DirtSkin                                     // bone palette must be recomputed
	DirtCustom                                   // user-defined aspect, see OnUpdate
)

const (
	DirtNone   ComponentDirt = 0
	DirtFilthy               = DirtPath | DirtVertices | DirtPaint | DirtRenderOpacity |
		DirtTransform | DirtWorldTransform | DirtSkin | DirtCustom
)

// AddDirt sets flags on the component and reports whether any bit was not
// already set. It does not cascade; see Artboard.MarkDirty.
func (c *Component) AddDirt(flags ComponentDirt) bool {
	if c.dirt&flags == flags {
		return false
	}
	c.dirt |= flags
	return true
}

// HasDirt reports whether every bit in flags is set.
func (c *Component) HasDirt(flags ComponentDirt) bool {
	return c.dirt&flags == flags
}

// ClearDirt clears flags on the component.
func (c *Component) ClearDirt(flags ComponentDirt) {
	c.dirt &^= flags
}

// Dirt returns the pending dirt of the component.
func (c *Component) Dirt() ComponentDirt {
	return c.dirt
}

// dirtRule maps dirt on a dependency to dirt on a dependent: when any bit of
// on was marked on the dependency, add is marked on the dependent.
type dirtRule struct {
	on, add ComponentDirt
}

const anyTransform = DirtTransform | DirtWorldTransform

// dirtCascade is indexed by the dependent's type. Custom components receive
// flags unchanged and are handled in cascadeDirt.
var dirtCascade = [componentTypeCount][]dirtRule{
	ComponentTypeNode: {
		{on: anyTransform, add: DirtWorldTransform},
		{on: DirtRenderOpacity, add: DirtRenderOpacity},
	},
	ComponentTypeBone: {
		{on: anyTransform, add: DirtWorldTransform},
		{on: DirtRenderOpacity, add: DirtRenderOpacity},
	},
	ComponentTypeSkin: {
		{on: anyTransform, add: DirtSkin},
	},
	ComponentTypeMesh: {
		{on: anyTransform, add: DirtWorldTransform},
		{on: DirtRenderOpacity, add: DirtRenderOpacity},
		{on: DirtVertices | DirtSkin, add: DirtVertices},
	},
	ComponentTypeShape: {
		{on: anyTransform, add: DirtWorldTransform},
		{on: DirtRenderOpacity, add: DirtRenderOpacity | DirtPaint},
	},
}

// cascadeDirt translates flags marked on a dependency into the flags its
// dependent of type t must receive.
func cascadeDirt(t ComponentType, flags ComponentDirt) ComponentDirt {
	if t == ComponentTypeCustom {
		return flags
	}
	var out ComponentDirt
	for _, r := range dirtCascade[t] {
		if flags&r.on != 0 {
			out |= r.add
		}
	}
	return out
}
