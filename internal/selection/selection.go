// Package selection describes what the user has picked: whole objects, or
// faces, edges or vertices of object meshes.
package selection

import (
	"slices"

	"github.com/Faultbox/modeler/internal/model"
)

// Kind is the granularity of a selection.
type Kind int

const (
	KindObject Kind = iota
	KindFace
	KindEdge
	KindVertex
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	case KindVertex:
		return "vertex"
	}
	return "unknown"
}

// Selection is one of Objects, Faces, Edges or Vertices. A selection holds
// references only and never owns model data.
type Selection interface {
	Kind() Kind
	Len() int
	// ObjectRefs returns the distinct objects touched, in first-seen order.
	ObjectRefs() []model.ObjectRef
	// Match calls the handler for the selection's kind. Every handler must
	// be supplied.
	Match(objects func(Objects), faces func(Faces), edges func(Edges), vertices func(Vertices))

	sealed()
}

// IsEmpty reports whether sel selects nothing. A nil selection is empty.
func IsEmpty(sel Selection) bool {
	return sel == nil || sel.Len() == 0
}

// Objects selects whole objects.
type Objects []model.ObjectRef

// FaceRef references face Face of an object's mesh.
type FaceRef struct {
	Object model.ObjectRef
	Face   int
}

// Faces selects mesh faces.
type Faces []FaceRef

// EdgeRef references the edge between two position indices of an object's
// mesh. First is always the lower index.
type EdgeRef struct {
	Object        model.ObjectRef
	First, Second int
}

// NewEdgeRef returns the edge a-b with its endpoints ordered.
func NewEdgeRef(obj model.ObjectRef, a, b int) EdgeRef {
	if a > b {
		a, b = b, a
	}
	return EdgeRef{Object: obj, First: a, Second: b}
}

// Edges selects mesh edges.
type Edges []EdgeRef

// VertexRef references a position index of an object's mesh.
type VertexRef struct {
	Object model.ObjectRef
	Pos    int
}

// Vertices selects mesh vertices.
type Vertices []VertexRef

func (s Objects) Kind() Kind { return KindObject }
func (s Faces) Kind() Kind { return KindFace }
func (s Edges) Kind() Kind { return KindEdge }
func (s Vertices) Kind() Kind { return KindVertex }

func (s Objects) Len() int { return len(s) }
func (s Faces) Len() int { return len(s) }
func (s Edges) Len() int { return len(s) }
func (s Vertices) Len() int { return len(s) }

func (s Objects) sealed() {}
func (s Faces) sealed() {}
func (s Edges) sealed() {}
func (s Vertices) sealed() {}

func (s Objects) Match(objects func(Objects), _ func(Faces), _ func(Edges), _ func(Vertices)) {
	objects(s)
}

func (s Faces) Match(_ func(Objects), faces func(Faces), _ func(Edges), _ func(Vertices)) {
	faces(s)
}

func (s Edges) Match(_ func(Objects), _ func(Faces), edges func(Edges), _ func(Vertices)) {
	edges(s)
}

func (s Vertices) Match(_ func(Objects), _ func(Faces), _ func(Edges), vertices func(Vertices)) {
	vertices(s)
}

func (s Objects) ObjectRefs() []model.ObjectRef {
	return distinct(s, func(r model.ObjectRef) model.ObjectRef { return r })
}

func (s Faces) ObjectRefs() []model.ObjectRef {
	return distinct(s, func(r FaceRef) model.ObjectRef { return r.Object })
}

func (s Edges) ObjectRefs() []model.ObjectRef {
	return distinct(s, func(r EdgeRef) model.ObjectRef { return r.Object })
}

func (s Vertices) ObjectRefs() []model.ObjectRef {
	return distinct(s, func(r VertexRef) model.ObjectRef { return r.Object })
}

func distinct[T any](items []T, key func(T) model.ObjectRef) []model.ObjectRef {
	seen := make(map[model.ObjectRef]bool, len(items))
	var out []model.ObjectRef
	for _, it := range items {
		r := key(it)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// Toggle adds ref if absent and removes it otherwise.
func (s Objects) Toggle(ref model.ObjectRef) Objects { return toggle(s, ref) }

// Toggle adds ref if absent and removes it otherwise.
func (s Faces) Toggle(ref FaceRef) Faces { return toggle(s, ref) }

// Toggle adds ref if absent and removes it otherwise.
func (s Edges) Toggle(ref EdgeRef) Edges {
	return toggle(s, NewEdgeRef(ref.Object, ref.First, ref.Second))
}

// Toggle adds ref if absent and removes it otherwise.
func (s Vertices) Toggle(ref VertexRef) Vertices { return toggle(s, ref) }

func toggle[S ~[]T, T comparable](s S, v T) S {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return append(slices.Clone(s), v)
}

// IsSelected reports whether obj is touched by sel.
func IsSelected(sel Selection, obj model.ObjectRef) bool {
	if sel == nil {
		return false
	}
	return slices.Contains(sel.ObjectRefs(), obj)
}

// ForObject keeps only the part of sel that belongs to obj.
func ForObject(sel Selection, obj model.ObjectRef) Selection {
	if sel == nil {
		return nil
	}
	var out Selection
	sel.Match(
		func(s Objects) {
			out = filter(s, func(r model.ObjectRef) bool { return r == obj })
		},
		func(s Faces) {
			out = filter(s, func(r FaceRef) bool { return r.Object == obj })
		},
		func(s Edges) {
			out = filter(s, func(r EdgeRef) bool { return r.Object == obj })
		},
		func(s Vertices) {
			out = filter(s, func(r VertexRef) bool { return r.Object == obj })
		},
	)
	return out
}

// Without drops every reference to the given objects, keeping the kind.
func Without(sel Selection, gone ...model.ObjectRef) Selection {
	if sel == nil {
		return nil
	}
	drop := func(r model.ObjectRef) bool { return slices.Contains(gone, r) }
	var out Selection
	sel.Match(
		func(s Objects) {
			out = filter(s, func(r model.ObjectRef) bool { return !drop(r) })
		},
		func(s Faces) {
			out = filter(s, func(r FaceRef) bool { return !drop(r.Object) })
		},
		func(s Edges) {
			out = filter(s, func(r EdgeRef) bool { return !drop(r.Object) })
		},
		func(s Vertices) {
			out = filter(s, func(r VertexRef) bool { return !drop(r.Object) })
		},
	)
	return out
}

func filter[S ~[]T, T any](s S, keep func(T) bool) S {
	out := make(S, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
