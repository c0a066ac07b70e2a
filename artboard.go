package rig

import (
	"fmt"

	"go.uber.org/zap"
)

// EventSink receives scene events. Attach one with Artboard.SetEventSink; the
// ecs module provides a Donburi-backed implementation.
type EventSink interface {
	EmitEvent(event SceneEvent)
}

// SceneEvent carries build, update and playback notifications.
type SceneEvent struct {
	Type        EventType
	Artboard    string
	ComponentID ID
	Component   string
	Layer       string
	State       string
	Err         error
}

// Artboard is the graph container. It exclusively owns its components,
// addressed by slot ID, and keeps them in dependency order.
//
// An Artboard is driven by a single goroutine. Independent artboards share no
// mutable state and may be advanced in parallel (see Stage).
type Artboard struct {
	Name string

	root       *Component
	components []*Component // slot 0 is unused so that ID == index
	ordered    []*Component

	needsBuild bool
	dirty      bool
	dirtDepth  int

	buildErrs  []*BuildError
	updateErrs []*UpdateError

	logger *zap.Logger
	sink   EventSink
	debug  bool
}

// NewArtboard creates an artboard with a pre-created root node.
func NewArtboard(name string) *Artboard {
	a := &Artboard{
		Name:       name,
		components: make([]*Component, 1, 64),
		logger:     zap.NewNop(),
	}
	a.root = NewNode("root")
	a.Add(NoID, a.root)
	return a
}

// Root returns the artboard's root node.
func (a *Artboard) Root() *Component {
	return a.root
}

// Add places c into a new slot under parent and returns its ID. parent may be
// NoID for a top-level component. The parent is not checked until the next
// build, so components may be added in any order.
// Panics if c is nil or already belongs to an artboard.
func (a *Artboard) Add(parent ID, c *Component) ID {
	if c == nil {
		panic("rig: cannot add nil component")
	}
	if c.artboard != nil {
		panic(fmt.Sprintf("rig: component %q already belongs to an artboard", c.Name))
	}
	c.ID = ID(len(a.components))
	c.ParentID = parent
	c.artboard = a
	a.components = append(a.components, c)
	a.needsBuild = true
	return c.ID
}

// Remove detaches the component and all of its descendants. Their slots stay
// empty, so stale IDs resolve to nil. Reports false if id is not present.
func (a *Artboard) Remove(id ID) bool {
	c := a.Component(id)
	if c == nil || c == a.root {
		return false
	}
	a.remove(c)
	a.needsBuild = true
	a.dropRemoved()
	return true
}

// dropRemoved takes removed components out of the execution list so Draw
// and Ordered stay consistent until the rebuild.
func (a *Artboard) dropRemoved() {
	kept := make([]*Component, 0, len(a.ordered))
	for _, c := range a.ordered {
		if c.artboard != nil {
			c.graphOrder = len(kept)
			kept = append(kept, c)
		}
	}
	a.ordered = kept
}

func (a *Artboard) remove(c *Component) {
	a.components[c.ID] = nil
	for _, child := range a.components {
		if child != nil && child.ParentID == c.ID {
			a.remove(child)
		}
	}
	c.artboard = nil
	c.dependents = nil
	c.graphOrder = -1
}

// Component resolves an ID. Returns nil for NoID, unknown or removed slots.
func (a *Artboard) Component(id ID) *Component {
	if id == NoID || uint64(id) >= uint64(len(a.components)) {
		return nil
	}
	return a.components[id]
}

// liveComponent resolves an ID to a component that survived the last build.
func (a *Artboard) liveComponent(id ID) *Component {
	c := a.Component(id)
	if !c.isLive() {
		return nil
	}
	return c
}

// Find returns the first component with the given name, or nil.
func (a *Artboard) Find(name string) *Component {
	for _, c := range a.components {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// Ordered returns the execution list of the last build, in graph order.
// The returned slice MUST NOT be mutated by the caller.
func (a *Artboard) Ordered() []*Component {
	return a.ordered
}

// AddDependency declares that dependent must be updated after dependency.
// When the edge already agrees with the current order it takes effect
// immediately; otherwise the graph is rebuilt before the next update pass.
func (a *Artboard) AddDependency(dependency, dependent ID) error {
	from := a.Component(dependency)
	to := a.Component(dependent)
	if from == nil || to == nil {
		return fmt.Errorf("add dependency %d -> %d: %w", dependency, dependent, ErrMissingObject)
	}
	to.extraDeps = append(to.extraDeps, dependency)
	if !a.needsBuild && from.graphOrder >= 0 && to.graphOrder > from.graphOrder {
		from.addDependent(dependent)
		return nil
	}
	a.needsBuild = true
	return nil
}

// NeedsBuild reports whether a structural change is waiting for a rebuild.
func (a *Artboard) NeedsBuild() bool {
	return a.needsBuild
}

// MarkDirty marks flags on the component and cascades them to its
// dependents. Reports whether any new bit was set.
func (a *Artboard) MarkDirty(id ID, flags ComponentDirt) bool {
	c := a.Component(id)
	if c == nil {
		return false
	}
	return a.markDirty(c, flags)
}

// SetProperty writes a property on the component with the given ID.
func (a *Artboard) SetProperty(id ID, key PropertyKey, value float64) bool {
	c := a.Component(id)
	if c == nil {
		return false
	}
	return c.SetProperty(key, value)
}

// SetLogger sets the logger used for build and update errors. nil restores
// the no-op logger.
func (a *Artboard) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	a.logger = l.With(zap.String("artboard", a.Name))
}

// SetEventSink sets the optional event bridge.
func (a *Artboard) SetEventSink(sink EventSink) {
	a.sink = sink
}

// SetDebugMode enables or disables per-pass timing stats, logged at debug
// level.
func (a *Artboard) SetDebugMode(enabled bool) {
	a.debug = enabled
}

func (a *Artboard) emit(e SceneEvent) {
	if a.sink == nil {
		return
	}
	e.Artboard = a.Name
	a.sink.EmitEvent(e)
}
