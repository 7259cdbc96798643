package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	stdmath "math"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Faultbox/modeler/pkg/math"
)

var (
	ErrInvalidIndex      = errors.New("index out of range")
	ErrDanglingReference = errors.New("dangling reference")
	ErrCycle             = errors.New("group cycle")
	ErrInvalidTree       = errors.New("invalid group tree")
	ErrUnknownKind       = errors.New("unknown kind")
)

// Animator supplies the animated pose of a group or object. Implementations
// return rest unchanged for nodes they do not animate.
type Animator interface {
	Animate(id uuid.UUID, rest math.TRS) math.TRS
}

// Model is an immutable snapshot of the editable scene. Every edit returns a
// new Model; objects that were not touched are shared between versions.
type Model struct {
	objects   *immutable.Map[ObjectRef, Object]
	order     []ObjectRef
	materials map[MaterialRef]Material
	groups    map[GroupRef]Group
	tree      GroupTree
}

// New creates a model holding objs at the root of the tree.
func New(objs ...Object) *Model {
	m := &Model{
		objects:   newObjectMap(),
		materials: make(map[MaterialRef]Material),
		groups:    make(map[GroupRef]Group),
		tree:      NewTreeBuilder().build(),
	}
	return m.AddObjects(RootGroup, objs...)
}

// Assemble builds a model from fully specified parts, as a loader does.
// The result is checked with Validate.
func Assemble(objs []Object, materials []Material, groups []Group, tree GroupTree) (*Model, error) {
	m := &Model{
		order:     make([]ObjectRef, 0, len(objs)),
		materials: make(map[MaterialRef]Material, len(materials)),
		groups:    make(map[GroupRef]Group, len(groups)),
		tree:      tree,
	}
	b := immutable.NewMapBuilder[ObjectRef, Object](objectRefHasher{})
	for _, o := range objs {
		if _, dup := b.Get(o.Ref()); !dup {
			m.order = append(m.order, o.Ref())
		}
		b.Set(o.Ref(), o)
	}
	m.objects = b.Map()
	for _, mat := range materials {
		m.materials[mat.Ref] = mat
	}
	for _, g := range groups {
		m.groups[g.Ref] = g
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// objectRefHasher hashes the leading bytes of a reference; references are
// random UUIDs.
type objectRefHasher struct{}

func (objectRefHasher) Hash(r ObjectRef) uint32 { return binary.LittleEndian.Uint32(r[:4]) }
func (objectRefHasher) Equal(a, b ObjectRef) bool { return a == b }

func newObjectMap() *immutable.Map[ObjectRef, Object] {
	return immutable.NewMap[ObjectRef, Object](objectRefHasher{})
}

func (m *Model) clone() *Model {
	return &Model{
		objects:   m.objects,
		order:     m.order,
		materials: m.materials,
		groups:    m.groups,
		tree:      m.tree,
	}
}

// Object returns the object with the given reference.
func (m *Model) Object(ref ObjectRef) (Object, bool) {
	return m.objects.Get(ref)
}

// Objects returns the objects in insertion order.
func (m *Model) Objects() []Object {
	out := make([]Object, len(m.order))
	for i, ref := range m.order {
		out[i], _ = m.objects.Get(ref)
	}
	return out
}

// ObjectRefs returns the object references in insertion order.
func (m *Model) ObjectRefs() []ObjectRef {
	return slices.Clone(m.order)
}

// Len returns the number of objects.
func (m *Model) Len() int { return len(m.order) }

// Material returns the material with the given reference.
func (m *Model) Material(ref MaterialRef) (Material, bool) {
	mat, ok := m.materials[ref]
	return mat, ok
}

// Materials returns every material ordered by reference.
func (m *Model) Materials() []Material {
	out := make([]Material, 0, len(m.materials))
	for _, mat := range m.materials {
		out = append(out, mat)
	}
	slices.SortFunc(out, func(a, b Material) int { return bytes.Compare(a.Ref[:], b.Ref[:]) })
	return out
}

// Group returns the group with the given reference.
func (m *Model) Group(ref GroupRef) (Group, bool) {
	g, ok := m.groups[ref]
	return g, ok
}

// Groups returns every group in tree order.
func (m *Model) Groups() []Group {
	refs := m.tree.Groups()
	out := make([]Group, 0, len(refs))
	for _, r := range refs {
		if g, ok := m.groups[r]; ok {
			out = append(out, g)
		}
	}
	return out
}

// Tree returns the group hierarchy.
func (m *Model) Tree() GroupTree { return m.tree }

// ModifyObjects replaces each referenced object with fn's result. The
// object map is persistent, so the cost follows len(refs) rather than the
// model size and objects not in refs are shared with m. Unknown refs are
// ignored and m itself is returned when nothing matched.
func (m *Model) ModifyObjects(refs []ObjectRef, fn func(Object) Object) *Model {
	objects := m.objects
	for _, ref := range refs {
		o, ok := objects.Get(ref)
		if !ok {
			continue
		}
		objects = objects.Set(ref, fn(o))
	}
	if objects == m.objects {
		return m
	}
	out := m.clone()
	out.objects = objects
	return out
}

// AddObjects inserts objs into group g. Objects whose reference already
// exists are replaced in place.
func (m *Model) AddObjects(g GroupRef, objs ...Object) *Model {
	if len(objs) == 0 {
		return m
	}
	out := m.clone()
	out.order = slices.Clone(m.order)
	b := m.tree.Builder()
	for _, o := range objs {
		if _, exists := out.objects.Get(o.Ref()); !exists {
			out.order = append(out.order, o.Ref())
			b.SetObjectParent(o.Ref(), g)
		}
		out.objects = out.objects.Set(o.Ref(), o)
	}
	out.tree = b.build()
	return out
}

// RemoveObjects deletes the referenced objects and detaches them from the tree.
func (m *Model) RemoveObjects(refs ...ObjectRef) *Model {
	drop := make(map[ObjectRef]bool)
	objects := m.objects
	for _, r := range refs {
		if _, ok := objects.Get(r); ok {
			drop[r] = true
			objects = objects.Delete(r)
		}
	}
	if len(drop) == 0 {
		return m
	}
	out := m.clone()
	out.objects = objects
	out.order = slices.DeleteFunc(slices.Clone(m.order), func(r ObjectRef) bool { return drop[r] })
	tree := m.tree
	for r := range drop {
		tree = tree.RemoveObject(r)
	}
	out.tree = tree
	return out
}

// MoveObject places an existing object in group g.
func (m *Model) MoveObject(ref ObjectRef, g GroupRef) *Model {
	if _, ok := m.objects.Get(ref); !ok || !m.tree.HasGroup(g) {
		return m
	}
	out := m.clone()
	out.tree = m.tree.AddObject(ref, g)
	return out
}

// AddMaterial inserts or replaces a material.
func (m *Model) AddMaterial(mat Material) *Model {
	out := m.clone()
	out.materials = make(map[MaterialRef]Material, len(m.materials)+1)
	for k, v := range m.materials {
		out.materials[k] = v
	}
	out.materials[mat.Ref] = mat
	return out
}

// RemoveMaterial deletes a material. Objects using it lose their material.
func (m *Model) RemoveMaterial(ref MaterialRef) *Model {
	if _, ok := m.materials[ref]; !ok {
		return m
	}
	out := m.clone()
	out.materials = make(map[MaterialRef]Material, len(m.materials))
	for k, v := range m.materials {
		if k != ref {
			out.materials[k] = v
		}
	}
	var users []ObjectRef
	for _, r := range m.order {
		if o, _ := m.objects.Get(r); o.Material() == ref {
			users = append(users, r)
		}
	}
	out.objects = out.ModifyObjects(users, func(o Object) Object { return o.WithMaterial(NoMaterial) }).objects
	return out
}

// AddGroup inserts g below parent.
func (m *Model) AddGroup(g Group, parent GroupRef) *Model {
	if !m.tree.HasGroup(parent) {
		return m
	}
	out := m.clone()
	out.groups = m.copyGroups()
	out.groups[g.Ref] = g
	out.tree = m.tree.AddGroup(g.Ref, parent)
	return out
}

// RemoveGroup deletes group g. Its children are re-parented to g's parent.
func (m *Model) RemoveGroup(ref GroupRef) *Model {
	if _, ok := m.groups[ref]; !ok {
		return m
	}
	out := m.clone()
	out.groups = m.copyGroups()
	delete(out.groups, ref)
	out.tree = m.tree.RemoveGroup(ref)
	return out
}

// ModifyGroups replaces each referenced group with fn's result.
func (m *Model) ModifyGroups(refs []GroupRef, fn func(Group) Group) *Model {
	var groups map[GroupRef]Group
	for _, ref := range refs {
		g, ok := m.groups[ref]
		if !ok {
			continue
		}
		if groups == nil {
			groups = m.copyGroups()
		}
		ng := fn(g)
		ng.Ref = ref
		groups[ref] = ng
	}
	if groups == nil {
		return m
	}
	out := m.clone()
	out.groups = groups
	return out
}

// WithTree replaces the group hierarchy.
func (m *Model) WithTree(t GroupTree) *Model {
	out := m.clone()
	out.tree = t
	return out
}

func (m *Model) copyGroups() map[GroupRef]Group {
	groups := make(map[GroupRef]Group, len(m.groups)+1)
	for k, v := range m.groups {
		groups[k] = v
	}
	return groups
}

// ParentGlobalMatrix returns the product of the transformations of every
// group enclosing ref, outermost first. anim may be nil for the rest pose.
func (m *Model) ParentGlobalMatrix(ref ObjectRef, anim Animator) math.Mat4 {
	result := math.Identity()
	ancestors := m.tree.Ancestors(ref)
	for i := len(ancestors) - 1; i >= 0; i-- {
		g, ok := m.groups[ancestors[i]]
		if !ok {
			continue
		}
		t := g.Transformation
		if anim != nil {
			t = anim.Animate(uuid.UUID(g.Ref), t)
		}
		result = result.Mul(t.Matrix())
	}
	return result
}

// GlobalMatrix returns the object's full local-to-world matrix.
func (m *Model) GlobalMatrix(ref ObjectRef, anim Animator) math.Mat4 {
	o, ok := m.objects.Get(ref)
	if !ok {
		return math.Identity()
	}
	t := o.Transformation()
	if anim != nil {
		t = anim.Animate(uuid.UUID(ref), t)
	}
	return m.ParentGlobalMatrix(ref, anim).Mul(t.Matrix())
}

// IsVisible reports whether the object and every enclosing group are visible.
func (m *Model) IsVisible(ref ObjectRef) bool {
	o, ok := m.objects.Get(ref)
	if !ok || !o.Visible() {
		return false
	}
	for _, g := range m.tree.Ancestors(ref) {
		if grp, ok := m.groups[g]; ok && !grp.Visible {
			return false
		}
	}
	return true
}

// Validate checks the model's internal references and every mesh.
func (m *Model) Validate() error {
	var err error
	if len(m.order) != m.objects.Len() {
		err = multierr.Append(err, fmt.Errorf("order lists %d objects, map holds %d: %w", len(m.order), m.objects.Len(), ErrDanglingReference))
	}
	for _, ref := range m.order {
		o, ok := m.objects.Get(ref)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("object %s: %w", ref, ErrDanglingReference))
			continue
		}
		if o.Ref() != ref {
			err = multierr.Append(err, fmt.Errorf("object %s stored under %s: %w", o.Ref(), ref, ErrDanglingReference))
		}
		if p, ok := m.tree.ParentOf(ref); !ok {
			err = multierr.Append(err, fmt.Errorf("object %s not in group tree: %w", ref, ErrDanglingReference))
		} else if !m.tree.HasGroup(p) {
			err = multierr.Append(err, fmt.Errorf("object %s: group %s: %w", ref, p, ErrDanglingReference))
		}
		if mat := o.Material(); mat != NoMaterial {
			if _, ok := m.materials[mat]; !ok {
				err = multierr.Append(err, fmt.Errorf("object %s: material %s: %w", ref, mat, ErrDanglingReference))
			}
		}
		if merr := o.Mesh().Validate(); merr != nil {
			err = multierr.Append(err, fmt.Errorf("object %s: %w", ref, merr))
		}
	}
	for o := range m.tree.objectParent {
		if _, ok := m.objects.Get(o); !ok {
			err = multierr.Append(err, fmt.Errorf("tree object %s: %w", o, ErrDanglingReference))
		}
	}
	for g := range m.tree.groupParent {
		if _, ok := m.groups[g]; !ok {
			err = multierr.Append(err, fmt.Errorf("tree group %s: %w", g, ErrDanglingReference))
		}
	}
	for g := range m.groups {
		if !m.tree.HasGroup(g) {
			err = multierr.Append(err, fmt.Errorf("group %s not in tree: %w", g, ErrDanglingReference))
		}
	}
	return err
}

// Hash returns a content hash usable as a cache key.
func (m *Model) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	f := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], stdmath.Float64bits(v))
		h.Write(buf[:])
	}
	n := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	trs := func(t math.TRS) {
		for _, v := range []float64{
			t.Translation.X, t.Translation.Y, t.Translation.Z,
			t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W,
			t.Scale.X, t.Scale.Y, t.Scale.Z,
		} {
			f(v)
		}
	}
	boolean := func(b bool) {
		if b {
			n(1)
		} else {
			n(0)
		}
	}

	for _, ref := range m.order {
		o, _ := m.objects.Get(ref)
		h.Write(ref[:])
		h.Write([]byte(o.Name()))
		mat := o.Material()
		h.Write(mat[:])
		trs(o.Transformation())
		boolean(o.Visible())
		mesh := o.Mesh()
		n(len(mesh.Pos))
		for _, p := range mesh.Pos {
			f(p.X)
			f(p.Y)
			f(p.Z)
		}
		n(len(mesh.Tex))
		for _, t := range mesh.Tex {
			f(t.X)
			f(t.Y)
		}
		for _, face := range mesh.Faces {
			for i := 0; i < 4; i++ {
				n(face.Pos[i])
				n(face.Tex[i])
			}
		}
		p, _ := m.tree.ParentOf(ref)
		h.Write(p[:])
	}
	for _, g := range m.Groups() {
		h.Write(g.Ref[:])
		h.Write([]byte(g.Name))
		trs(g.Transformation)
		boolean(g.Visible)
		p, _ := m.tree.GroupParent(g.Ref)
		h.Write(p[:])
	}
	for _, mat := range m.Materials() {
		h.Write(mat.Ref[:])
		h.Write([]byte(mat.Path))
		n(int(mat.Kind))
		for _, c := range mat.Color {
			f(c)
		}
	}
	return h.Sum64()
}
