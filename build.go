package rig

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Build resolves references, collects dependency edges and assigns every
// component its graph order. Components that fail validation or lie on a
// dependency cycle are excluded from the execution list; the rest of the
// artboard stays valid. The returned error joins one *BuildError per
// excluded component.
//
// After a build every ordered component is fully dirty, so the next update
// pass computes everything once.
func (a *Artboard) Build() error {
	var t0 time.Time
	if a.debug {
		t0 = time.Now()
	}

	a.needsBuild = false
	a.buildErrs = nil
	for _, c := range a.components {
		if c == nil {
			continue
		}
		c.buildErr = nil
		c.dependents = c.dependents[:0]
		c.graphOrder = -1
	}

	a.validate()

	live := make([]*Component, 0, len(a.components))
	for _, c := range a.components {
		if c.isLive() {
			live = append(live, c)
		}
	}
	for _, c := range live {
		a.buildDependencies(c)
		if a.debug {
			a.debugCheckDepth(c)
		}
	}

	order, cyclic := a.sortDependencies(live)
	for _, c := range cyclic {
		a.fail(c, fmt.Errorf("%w through %q", ErrCycle, c.Name))
	}

	a.ordered = order
	for i, c := range order {
		c.graphOrder = i
		c.dirt = DirtFilthy
		c.updateFailed = false
	}
	for _, c := range a.components {
		if c != nil && c.buildErr != nil {
			c.dirt = DirtNone
		}
	}
	a.dirty = len(order) > 0
	a.dirtDepth = 0

	errs := make([]error, 0, len(a.buildErrs))
	for _, be := range a.buildErrs {
		a.logger.Warn("component excluded",
			zap.Uint32("id", uint32(be.ID)),
			zap.String("component", be.Name),
			zap.Stringer("type", be.Type),
			zap.Error(be.Err))
		a.emit(SceneEvent{Type: EventBuildError, ComponentID: be.ID, Component: be.Name, Err: be.Err})
		errs = append(errs, be)
	}

	if a.debug {
		a.debugLogBuild(buildStats{
			buildTime: time.Since(t0),
			ordered:   len(order),
			excluded:  len(a.buildErrs),
			orderHash: a.OrderHash(),
		})
	}
	return errors.Join(errs...)
}

// BuildErrors returns the exclusions recorded by the last build. The slice
// is not reused by later builds.
func (a *Artboard) BuildErrors() []*BuildError {
	return a.buildErrs
}

func (a *Artboard) fail(c *Component, err error) {
	c.buildErr = err
	a.buildErrs = append(a.buildErrs, &BuildError{ID: c.ID, Name: c.Name, Type: c.Type, Err: err})
}

// validate excludes components with unresolvable or malformed references.
// Exclusion is contagious (a child of an excluded parent is excluded too), so
// it repeats until no new component fails.
func (a *Artboard) validate() {
	for {
		a.link()
		failed := false
		for _, c := range a.components {
			if !c.isLive() {
				continue
			}
			if err := a.check(c); err != nil {
				a.fail(c, err)
				failed = true
			}
		}
		if !failed {
			return
		}
	}
}

// link rebuilds the owner-side views of children: mesh vertices and skin,
// and node constraints.
func (a *Artboard) link() {
	for _, c := range a.components {
		if c == nil {
			continue
		}
		c.vertexIDs = c.vertexIDs[:0]
		c.skinID = NoID
		c.constraints = c.constraints[:0]
	}
	for _, c := range a.components {
		if !c.isLive() {
			continue
		}
		parent := a.liveComponent(c.ParentID)
		if parent == nil {
			continue
		}
		switch c.Type {
		case ComponentTypeMeshVertex:
			if parent.Type == ComponentTypeMesh {
				parent.vertexIDs = append(parent.vertexIDs, c.ID)
			}
		case ComponentTypeSkin:
			if parent.Type == ComponentTypeMesh && parent.skinID == NoID {
				parent.skinID = c.ID
			}
		case ComponentTypeTranslationConstraint:
			if parent.Type.isTransform() {
				parent.constraints = append(parent.constraints, c.ID)
			}
		}
	}
}

func (a *Artboard) check(c *Component) error {
	parent := a.Component(c.ParentID)
	if c.ParentID != NoID {
		if parent == nil {
			return missingf("parent %d not found", c.ParentID)
		}
		if parent.buildErr != nil {
			return missingf("parent %q was excluded", parent.Name)
		}
	}

	switch c.Type {
	case ComponentTypeNode, ComponentTypeBone, ComponentTypeShape:
		if parent != nil && !parent.Type.isTransform() {
			return missingf("parent %q is a %s, want a transform", parent.Name, parent.Type)
		}
	case ComponentTypeMesh:
		if parent == nil || !parent.Type.isTransform() {
			return missingf("mesh needs a transform parent")
		}
		if len(c.Indices) == 0 || len(c.Indices)%3 != 0 {
			return invalidf("mesh has %d indices, want a non-empty multiple of 3", len(c.Indices))
		}
		for _, idx := range c.Indices {
			if int(idx) >= len(c.vertexIDs) {
				return invalidf("index %d out of range (%d vertices)", idx, len(c.vertexIDs))
			}
		}
	case ComponentTypeMeshVertex:
		if parent == nil || parent.Type != ComponentTypeMesh {
			return missingf("vertex needs a mesh parent")
		}
	case ComponentTypeSkin:
		if parent == nil || parent.Type != ComponentTypeMesh {
			return missingf("skin needs a mesh parent")
		}
		if parent.skinID != c.ID {
			return invalidf("mesh %q already has a skin", parent.Name)
		}
		for i, t := range c.Tendons {
			b := a.Component(t.BoneID)
			if !b.isLive() || b.Type != ComponentTypeBone {
				return missingf("tendon %d bone %d", i, t.BoneID)
			}
		}
	case ComponentTypeTranslationConstraint:
		if parent == nil || !parent.Type.isTransform() {
			return missingf("constraint needs a transform parent")
		}
		target := a.Component(c.TargetID)
		if !target.isLive() || !target.Type.isTransform() {
			return missingf("constraint target %d", c.TargetID)
		}
	}

	for _, d := range c.extraDeps {
		if !a.Component(d).isLive() {
			return missingf("dependency %d", d)
		}
	}
	return nil
}

// buildDependencies registers c as a dependent of everything it reads during
// its update.
func (a *Artboard) buildDependencies(c *Component) {
	parent := a.liveComponent(c.ParentID)
	switch c.Type {
	case ComponentTypeNode, ComponentTypeBone, ComponentTypeShape, ComponentTypeCustom:
		if parent != nil {
			parent.addDependent(c.ID)
		}
	case ComponentTypeMesh:
		parent.addDependent(c.ID)
		if skin := a.liveComponent(c.skinID); skin != nil {
			skin.addDependent(c.ID)
		}
		for _, v := range c.vertexIDs {
			a.components[v].addDependent(c.ID)
		}
	case ComponentTypeSkin:
		for _, t := range c.Tendons {
			a.components[t.BoneID].addDependent(c.ID)
		}
	case ComponentTypeTranslationConstraint:
		// The constrained parent reads the target's world transform.
		a.components[c.TargetID].addDependent(parent.ID)
	}
	for _, d := range c.extraDeps {
		a.components[d].addDependent(c.ID)
	}
}

// sortDependencies orders live components so that every component comes
// after everything it depends on. It is an iterative depth-first visit with
// unvisited/visiting/done marks; a visiting component reached again closes a
// cycle, and the strongly connected component bookkeeping (Tarjan) yields
// exactly the components lying on cycles.
func (a *Artboard) sortDependencies(live []*Component) (order, cyclic []*Component) {
	n := len(a.components)
	index := make([]int, n) // 0 = unvisited
	low := make([]int, n)
	visiting := make([]bool, n)
	stack := make([]ID, 0, len(live))
	finished := make([]*Component, 0, len(live))

	type frame struct {
		id   ID
		next int // dependents are walked from the end
	}
	var call []frame
	counter := 0
	visit := func(id ID) {
		counter++
		index[id], low[id] = counter, counter
		stack = append(stack, id)
		visiting[id] = true
		call = append(call, frame{id: id, next: len(a.components[id].dependents)})
	}

	// Roots and dependents are walked in reverse so that, once the finish
	// order is reversed, independent components keep their slot order.
	for r := len(live) - 1; r >= 0; r-- {
		if index[live[r].ID] != 0 {
			continue
		}
		visit(live[r].ID)
		for len(call) > 0 {
			top := len(call) - 1
			id := call[top].id
			c := a.components[id]
			if call[top].next > 0 {
				call[top].next--
				w := c.dependents[call[top].next]
				if !a.components[w].isLive() {
					continue
				}
				if index[w] == 0 {
					visit(w)
				} else if visiting[w] && index[w] < low[id] {
					low[id] = index[w]
				}
				continue
			}

			call = call[:top]
			if top > 0 {
				if p := call[top-1].id; low[id] < low[p] {
					low[p] = low[id]
				}
			}
			if low[id] != index[id] {
				continue
			}
			// id roots a strongly connected component.
			size := 0
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				visiting[w] = false
				size++
				if w == id {
					break
				}
				cyclic = append(cyclic, a.components[w])
			}
			if size > 1 || slices.Contains(c.dependents, id) {
				cyclic = append(cyclic, c)
			} else {
				finished = append(finished, c)
			}
		}
	}

	slices.Reverse(finished)
	slices.SortFunc(cyclic, func(x, y *Component) int { return cmp.Compare(x.ID, y.ID) })
	return finished, cyclic
}

// OrderHash fingerprints the current execution order. Two artboards with the
// same components in the same order hash equally.
func (a *Artboard) OrderHash() uint64 {
	h := xxhash.New()
	var buf [4]byte
	for _, c := range a.ordered {
		binary.LittleEndian.PutUint32(buf[:], uint32(c.ID))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
