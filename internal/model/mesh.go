// Package model holds the editor's scene data: meshes, objects, groups and
// the immutable model aggregate that every edit produces a new version of.
package model

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/Faultbox/modeler/pkg/math"
)

// FaceIndex is a quad. Pos and Tex index the owning mesh's Pos and Tex
// arrays, corner by corner.
type FaceIndex struct {
	Pos [4]int
	Tex [4]int
}

// Edges returns the four position-index edges of the quad in winding order.
func (f FaceIndex) Edges() [4][2]int {
	return [4][2]int{
		{f.Pos[0], f.Pos[1]},
		{f.Pos[1], f.Pos[2]},
		{f.Pos[2], f.Pos[3]},
		{f.Pos[3], f.Pos[0]},
	}
}

// Mesh is an indexed quad mesh. A Mesh is never modified after construction;
// every operation returns a new Mesh and may share unchanged slices.
type Mesh struct {
	Pos   []math.Vec3
	Tex   []math.Vec2
	Faces []FaceIndex
}

// NewMesh builds a mesh from its arrays. The slices are owned by the mesh.
func NewMesh(pos []math.Vec3, tex []math.Vec2, faces []FaceIndex) *Mesh {
	return &Mesh{Pos: pos, Tex: tex, Faces: faces}
}

// WithPos returns a mesh sharing tex and faces with m.
func (m *Mesh) WithPos(pos []math.Vec3) *Mesh {
	return &Mesh{Pos: pos, Tex: m.Tex, Faces: m.Faces}
}

// WithTex returns a mesh sharing positions and faces with m.
func (m *Mesh) WithTex(tex []math.Vec2) *Mesh {
	return &Mesh{Pos: m.Pos, Tex: tex, Faces: m.Faces}
}

// FacePositions returns the corner positions of face i.
func (m *Mesh) FacePositions(i int) [4]math.Vec3 {
	f := m.Faces[i]
	return [4]math.Vec3{m.Pos[f.Pos[0]], m.Pos[f.Pos[1]], m.Pos[f.Pos[2]], m.Pos[f.Pos[3]]}
}

// FaceTexture returns the corner texture coordinates of face i.
func (m *Mesh) FaceTexture(i int) [4]math.Vec2 {
	f := m.Faces[i]
	return [4]math.Vec2{m.Tex[f.Tex[0]], m.Tex[f.Tex[1]], m.Tex[f.Tex[2]], m.Tex[f.Tex[3]]}
}

// Merge appends other's geometry, offsetting its indices.
func (m *Mesh) Merge(other *Mesh) *Mesh {
	pos := make([]math.Vec3, 0, len(m.Pos)+len(other.Pos))
	pos = append(append(pos, m.Pos...), other.Pos...)
	tex := make([]math.Vec2, 0, len(m.Tex)+len(other.Tex))
	tex = append(append(tex, m.Tex...), other.Tex...)

	faces := make([]FaceIndex, 0, len(m.Faces)+len(other.Faces))
	faces = append(faces, m.Faces...)
	for _, f := range other.Faces {
		for i := range f.Pos {
			f.Pos[i] += len(m.Pos)
			f.Tex[i] += len(m.Tex)
		}
		faces = append(faces, f)
	}
	return NewMesh(pos, tex, faces)
}

// Optimize removes duplicated and unreferenced positions and texture
// coordinates. The rendered geometry is unchanged.
func (m *Mesh) Optimize() *Mesh {
	posIndex := make(map[math.Vec3]int)
	texIndex := make(map[math.Vec2]int)
	var pos []math.Vec3
	var tex []math.Vec2

	faces := make([]FaceIndex, len(m.Faces))
	for fi, f := range m.Faces {
		for i := 0; i < 4; i++ {
			p := m.Pos[f.Pos[i]]
			idx, ok := posIndex[p]
			if !ok {
				idx = len(pos)
				posIndex[p] = idx
				pos = append(pos, p)
			}
			faces[fi].Pos[i] = idx

			t := m.Tex[f.Tex[i]]
			tdx, ok := texIndex[t]
			if !ok {
				tdx = len(tex)
				texIndex[t] = tdx
				tex = append(tex, t)
			}
			faces[fi].Tex[i] = tdx
		}
	}
	return NewMesh(pos, tex, faces)
}

// TransformMatrix applies mat to every position.
func (m *Mesh) TransformMatrix(mat math.Mat4) *Mesh {
	pos := make([]math.Vec3, len(m.Pos))
	for i, p := range m.Pos {
		pos[i] = mat.TransformPoint(p)
	}
	return m.WithPos(pos)
}

// Transform applies t to every position.
func (m *Mesh) Transform(t math.TRS) *Mesh {
	return m.TransformMatrix(t.Matrix())
}

// Bounds returns the axis-aligned box containing every position.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Pos) == 0 {
		return lo, hi
	}
	lo, hi = m.Pos[0], m.Pos[0]
	for _, p := range m.Pos[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Edges returns every distinct undirected edge, lower index first.
func (m *Mesh) Edges() [][2]int {
	seen := make(map[[2]int]bool)
	var edges [][2]int
	for _, f := range m.Faces {
		for _, e := range f.Edges() {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// Validate checks that every face index is in range.
func (m *Mesh) Validate() error {
	var err error
	for fi, f := range m.Faces {
		for i := 0; i < 4; i++ {
			if f.Pos[i] < 0 || f.Pos[i] >= len(m.Pos) {
				err = multierr.Append(err, fmt.Errorf("face %d corner %d: pos %d: %w", fi, i, f.Pos[i], ErrInvalidIndex))
			}
			if f.Tex[i] < 0 || f.Tex[i] >= len(m.Tex) {
				err = multierr.Append(err, fmt.Errorf("face %d corner %d: tex %d: %w", fi, i, f.Tex[i], ErrInvalidIndex))
			}
		}
	}
	return err
}

// IndexSet is a set of position or texture coordinate indices.
type IndexSet map[int]struct{}

// NewIndexSet builds a set from indices.
func NewIndexSet(indices ...int) IndexSet {
	s := make(IndexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts i.
func (s IndexSet) Add(i int) { s[i] = struct{}{} }

// Has reports whether i is in the set.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AllPositions returns the index set of every position of m.
func AllPositions(m *Mesh) IndexSet {
	s := make(IndexSet, len(m.Pos))
	for i := range m.Pos {
		s.Add(i)
	}
	return s
}

// AllTextures returns the index set of every texture coordinate of m.
func AllTextures(m *Mesh) IndexSet {
	s := make(IndexSet, len(m.Tex))
	for i := range m.Tex {
		s.Add(i)
	}
	return s
}
