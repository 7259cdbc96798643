package selection

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/modeler/internal/model"
)

var (
	// ErrStaleReference is returned for references to objects that no longer exist.
	ErrStaleReference = errors.New("stale object reference")
	// ErrIndexOutOfRange is returned for face, edge or vertex indices outside the mesh.
	ErrIndexOutOfRange = errors.New("mesh index out of range")
)

// Validate checks that every reference in sel resolves against m. Editing
// operations assume this holds; callers run it as a debug assertion.
func Validate(sel Selection, m *model.Model) error {
	if sel == nil {
		return nil
	}
	var err error
	mesh := func(ref model.ObjectRef) *model.Mesh {
		o, ok := m.Object(ref)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("object %s: %w", ref, ErrStaleReference))
			return nil
		}
		return o.Mesh()
	}
	sel.Match(
		func(s Objects) {
			for _, r := range s {
				mesh(r)
			}
		},
		func(s Faces) {
			for _, r := range s {
				if me := mesh(r.Object); me != nil && (r.Face < 0 || r.Face >= len(me.Faces)) {
					err = multierr.Append(err, fmt.Errorf("object %s face %d: %w", r.Object, r.Face, ErrIndexOutOfRange))
				}
			}
		},
		func(s Edges) {
			for _, r := range s {
				me := mesh(r.Object)
				if me == nil {
					continue
				}
				for _, p := range []int{r.First, r.Second} {
					if p < 0 || p >= len(me.Pos) {
						err = multierr.Append(err, fmt.Errorf("object %s edge vertex %d: %w", r.Object, p, ErrIndexOutOfRange))
					}
				}
			}
		},
		func(s Vertices) {
			for _, r := range s {
				if me := mesh(r.Object); me != nil && (r.Pos < 0 || r.Pos >= len(me.Pos)) {
					err = multierr.Append(err, fmt.Errorf("object %s vertex %d: %w", r.Object, r.Pos, ErrIndexOutOfRange))
				}
			}
		},
	)
	return err
}
