package rig

import (
	"time"

	"go.uber.org/zap"
)

// maxUpdateSteps bounds how often a pass restarts when an update marks a
// component that was already visited.
const maxUpdateSteps = 100

// markDirty sets flags on c and, if any bit was new, cascades the translated
// flags to every dependent. Flags that are already fully set stop the
// cascade, so shared sub-dependencies are walked once.
func (a *Artboard) markDirty(c *Component, flags ComponentDirt) bool {
	if !c.AddDirt(flags) {
		return false
	}
	if c.graphOrder >= 0 {
		a.dirty = true
		if c.graphOrder < a.dirtDepth {
			a.dirtDepth = c.graphOrder
		}
	}
	for _, id := range c.dependents {
		d := a.components[id]
		if d == nil {
			continue
		}
		if mapped := cascadeDirt(d.Type, flags); mapped != DirtNone {
			a.markDirty(d, mapped)
		}
	}
	return true
}

// IsDirty reports whether the next update pass has work to do.
func (a *Artboard) IsDirty() bool {
	return a.dirty || a.needsBuild
}

// RunUpdatePass rebuilds the graph if its structure changed, then visits the
// execution list once in graph order, updating every component with pending
// dirt. Because the list is topologically sorted, each update observes its
// dependencies' already-updated state, and dirt an update hands forward is
// handled later in the same sweep. Only dirt landing behind the cursor
// resumes the sweep from that position. Reports whether any component was
// updated.
//
// A failing update does not stop the pass: the error is logged and recorded
// in UpdateErrors, and the component gets its dirt back once the pass ends so
// it is retried next pass.
func (a *Artboard) RunUpdatePass() bool {
	if a.needsBuild {
		_ = a.Build() // exclusions are recorded in BuildErrors
	}
	a.updateErrs = nil
	if !a.dirty {
		return false
	}

	var t0 time.Time
	if a.debug {
		t0 = time.Now()
	}

	updated := 0
	start := 0
	for step := 0; step < maxUpdateSteps; step++ {
		resume := -1
		for i := start; i < len(a.ordered); i++ {
			c := a.ordered[i]
			a.dirtDepth = i
			d := c.dirt
			if d == DirtNone {
				continue
			}
			c.dirt = DirtNone
			a.updateComponent(c, d)
			updated++
			if a.dirtDepth < i {
				resume = a.dirtDepth
				break
			}
		}
		if resume < 0 {
			break
		}
		start = resume
	}
	a.dirtDepth = len(a.ordered)

	// Residual dirt is restored without cascading so the pass does not spin
	// on it.
	for _, ue := range a.updateErrs {
		if c := a.components[ue.ID]; c != nil {
			c.dirt |= ue.Dirt
		}
	}
	a.dirty = false
	for _, c := range a.ordered {
		if c.dirt != DirtNone {
			a.dirty = true
			break
		}
	}

	if a.debug {
		a.debugLogPass(passStats{
			updateTime: time.Since(t0),
			updated:    updated,
			failed:     len(a.updateErrs),
		})
	}
	return updated > 0
}

// UpdateErrors returns the failures recorded by the last update pass. The
// slice is not reused by later passes.
func (a *Artboard) UpdateErrors() []*UpdateError {
	return a.updateErrs
}

func (a *Artboard) updateComponent(c *Component, dirt ComponentDirt) {
	if err := a.update(c, dirt); err != nil {
		c.updateFailed = true
		ue := &UpdateError{ID: c.ID, Name: c.Name, Dirt: dirt, Err: err}
		a.updateErrs = append(a.updateErrs, ue)
		a.logger.Error("component update failed",
			zap.Uint32("id", uint32(c.ID)),
			zap.String("component", c.Name),
			zap.Uint16("dirt", uint16(dirt)),
			zap.Error(err))
		a.emit(SceneEvent{Type: EventUpdateError, ComponentID: c.ID, Component: c.Name, Err: err})
		return
	}
	if c.updateFailed {
		// Dependents were updated against stale state while this component
		// was failing; hand them the recovered aspects now.
		c.updateFailed = false
		for _, id := range c.dependents {
			if d := a.components[id]; d != nil {
				if mapped := cascadeDirt(d.Type, dirt); mapped != DirtNone {
					a.markDirty(d, mapped)
				}
			}
		}
	}
}

// update dispatches to the built-in behavior of the component's type, then
// to OnUpdate.
func (a *Artboard) update(c *Component, dirt ComponentDirt) error {
	var err error
	switch c.Type {
	case ComponentTypeNode, ComponentTypeBone:
		a.updateTransform(c, dirt)
	case ComponentTypeSkin:
		err = a.updateSkin(c, dirt)
	case ComponentTypeMesh:
		err = a.updateMesh(c, dirt)
	case ComponentTypeShape:
		a.updateShape(c, dirt)
	}
	if err == nil && c.OnUpdate != nil {
		err = c.OnUpdate(c, dirt)
	}
	return err
}
