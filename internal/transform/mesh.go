// Package transform applies translate, rotate and scale edits to the part of
// a model picked by a selection, in model space or in texture space. Every
// operation is a pure function returning a new model; objects outside the
// selection are shared with the input.
package transform

import (
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

// TransformMesh returns obj's mesh with mat applied to the positions in
// indices. Other positions, texture coordinates and faces are reused as is.
func TransformMesh(obj model.Object, indices model.IndexSet, mat math.Mat4) *model.Mesh {
	mesh := obj.Mesh()
	pos := make([]math.Vec3, len(mesh.Pos))
	for i, p := range mesh.Pos {
		if indices.Has(i) {
			pos[i] = mat.TransformPoint(p)
		} else {
			pos[i] = p
		}
	}
	return mesh.WithPos(pos)
}

// TransformMeshTexture returns obj's mesh with fn applied to the texture
// coordinates in indices.
func TransformMeshTexture(obj model.Object, indices model.IndexSet, fn func(math.Vec2) math.Vec2) *model.Mesh {
	mesh := obj.Mesh()
	tex := make([]math.Vec2, len(mesh.Tex))
	for i, t := range mesh.Tex {
		if indices.Has(i) {
			tex[i] = fn(t)
		} else {
			tex[i] = t
		}
	}
	return mesh.WithTex(tex)
}

// positionSets groups the position indices touched by a sub-object
// selection by object. Faces contribute their four corners, edges their
// endpoints and vertices themselves.
func positionSets(m *model.Model, sel selection.Selection) map[model.ObjectRef]model.IndexSet {
	sets := make(map[model.ObjectRef]model.IndexSet)
	add := func(ref model.ObjectRef, indices ...int) {
		s, ok := sets[ref]
		if !ok {
			s = model.NewIndexSet()
			sets[ref] = s
		}
		for _, i := range indices {
			s.Add(i)
		}
	}
	sel.Match(
		func(s selection.Objects) {
			for _, ref := range s {
				if o, ok := m.Object(ref); ok {
					sets[ref] = model.AllPositions(o.Mesh())
				}
			}
		},
		func(s selection.Faces) {
			for _, f := range s {
				if o, ok := m.Object(f.Object); ok {
					add(f.Object, o.Mesh().Faces[f.Face].Pos[:]...)
				}
			}
		},
		func(s selection.Edges) {
			for _, e := range s {
				add(e.Object, e.First, e.Second)
			}
		},
		func(s selection.Vertices) {
			for _, v := range s {
				add(v.Object, v.Pos)
			}
		},
	)
	return sets
}

// textureSets groups the texture coordinate indices touched by a selection
// by object. Edges and vertices are resolved through the faces that use
// them, so meshes with per-face texture coordinates move every copy.
func textureSets(m *model.Model, sel selection.Selection) map[model.ObjectRef]model.IndexSet {
	sets := make(map[model.ObjectRef]model.IndexSet)
	get := func(ref model.ObjectRef) model.IndexSet {
		s, ok := sets[ref]
		if !ok {
			s = model.NewIndexSet()
			sets[ref] = s
		}
		return s
	}
	sel.Match(
		func(s selection.Objects) {
			for _, ref := range s {
				if o, ok := m.Object(ref); ok {
					sets[ref] = model.AllTextures(o.Mesh())
				}
			}
		},
		func(s selection.Faces) {
			for _, f := range s {
				if o, ok := m.Object(f.Object); ok {
					set := get(f.Object)
					for _, t := range o.Mesh().Faces[f.Face].Tex {
						set.Add(t)
					}
				}
			}
		},
		func(s selection.Edges) {
			for _, e := range s {
				o, ok := m.Object(e.Object)
				if !ok {
					continue
				}
				set := get(e.Object)
				for _, face := range o.Mesh().Faces {
					for i := 0; i < 4; i++ {
						a, b := face.Pos[i], face.Pos[(i+1)%4]
						if (a == e.First && b == e.Second) || (a == e.Second && b == e.First) {
							set.Add(face.Tex[i])
							set.Add(face.Tex[(i+1)%4])
						}
					}
				}
			}
		},
		func(s selection.Vertices) {
			for _, v := range s {
				o, ok := m.Object(v.Object)
				if !ok {
					continue
				}
				set := get(v.Object)
				for _, face := range o.Mesh().Faces {
					for i, p := range face.Pos {
						if p == v.Pos {
							set.Add(face.Tex[i])
						}
					}
				}
			}
		},
	)
	return sets
}
