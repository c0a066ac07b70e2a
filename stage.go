package rig

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage holds independent scenes and advances them in parallel. Scenes never
// share mutable state, so each runs on its own goroutine for the duration of
// one Advance; a single scene is still driven by one goroutine at a time.
//
// A Stage itself is not safe for concurrent use.
type Stage struct {
	// Concurrency limits how many scenes advance at once. Zero or negative
	// means no limit.
	Concurrency int

	scenes map[uuid.UUID]*Scene
	order  []uuid.UUID
	errs   []error
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{scenes: make(map[uuid.UUID]*Scene)}
}

// Add registers a scene and returns its id.
// Panics if s is nil.
func (st *Stage) Add(s *Scene) uuid.UUID {
	if s == nil {
		panic("rig: cannot add nil scene to stage")
	}
	id := uuid.New()
	st.scenes[id] = s
	st.order = append(st.order, id)
	return id
}

// Remove unregisters a scene. Reports false if id is unknown.
func (st *Stage) Remove(id uuid.UUID) bool {
	if _, ok := st.scenes[id]; !ok {
		return false
	}
	delete(st.scenes, id)
	for i, o := range st.order {
		if o == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return true
}

// Scene returns the scene registered under id, or nil.
func (st *Stage) Scene(id uuid.UUID) *Scene {
	return st.scenes[id]
}

// Len returns the number of scenes.
func (st *Stage) Len() int {
	return len(st.order)
}

// IDs returns scene ids in insertion order.
// The returned slice MUST NOT be mutated by the caller.
func (st *Stage) IDs() []uuid.UUID {
	return st.order
}

// Advance advances every scene by dt. Scenes that have not started when ctx
// is cancelled are skipped and the context error is returned. Update errors
// recorded by the scenes' passes are joined into the returned error; they do
// not stop other scenes.
func (st *Stage) Advance(ctx context.Context, dt float64) error {
	g, ctx := errgroup.WithContext(ctx)
	if st.Concurrency > 0 {
		g.SetLimit(st.Concurrency)
	}

	if cap(st.errs) < len(st.order) {
		st.errs = make([]error, len(st.order))
	}
	st.errs = st.errs[:len(st.order)]
	clear(st.errs)

	for i, id := range st.order {
		i, id := i, id
		s := st.scenes[id]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Advance(dt)
			if ue := s.artboard.UpdateErrors(); len(ue) > 0 {
				errs := make([]error, len(ue))
				for j, e := range ue {
					errs[j] = e
				}
				st.errs[i] = fmt.Errorf("scene %s: %w", id, errors.Join(errs...))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(st.errs...)
}
