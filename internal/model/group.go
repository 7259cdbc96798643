package model

import (
	"fmt"
	"slices"

	"github.com/Faultbox/modeler/pkg/math"
)

// MaterialKind selects how a material is rendered.
type MaterialKind int

const (
	MaterialNone MaterialKind = iota
	MaterialTexture
	MaterialColor
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialTexture:
		return "texture"
	case MaterialColor:
		return "color"
	default:
		return "none"
	}
}

// ParseMaterialKind maps the textual form back to a kind.
func ParseMaterialKind(s string) (MaterialKind, error) {
	switch s {
	case "none", "":
		return MaterialNone, nil
	case "texture":
		return MaterialTexture, nil
	case "color":
		return MaterialColor, nil
	}
	return MaterialNone, fmt.Errorf("material kind %q: %w", s, ErrUnknownKind)
}

// Material is a texture file or a flat RGBA colour.
type Material struct {
	Ref   MaterialRef
	Name  string
	Kind  MaterialKind
	Path  string
	Color [4]float64
}

// Group is a node of the group tree. Its transformation applies to every
// descendant object.
type Group struct {
	Ref            GroupRef
	Name           string
	Transformation math.TRS
	Visible        bool
}

// NewGroup creates a visible group with a fresh reference.
func NewGroup(name string) Group {
	return Group{Ref: NewGroupRef(), Name: name, Transformation: math.IdentityTRS(), Visible: true}
}

// GroupTree is the immutable hierarchy of groups and objects. The root is
// RootGroup and has no Group value.
type GroupTree struct {
	groupParent    map[GroupRef]GroupRef
	groupChildren  map[GroupRef][]GroupRef
	objectParent   map[ObjectRef]GroupRef
	objectChildren map[GroupRef][]ObjectRef
}

// GroupParent returns the parent of group g.
func (t GroupTree) GroupParent(g GroupRef) (GroupRef, bool) {
	p, ok := t.groupParent[g]
	return p, ok
}

// ParentOf returns the group containing object o.
func (t GroupTree) ParentOf(o ObjectRef) (GroupRef, bool) {
	p, ok := t.objectParent[o]
	return p, ok
}

// HasGroup reports whether g is a node of the tree. The root always is.
func (t GroupTree) HasGroup(g GroupRef) bool {
	if g.IsRoot() {
		return true
	}
	_, ok := t.groupParent[g]
	return ok
}

// ChildGroups returns the direct child groups of g.
func (t GroupTree) ChildGroups(g GroupRef) []GroupRef {
	return slices.Clone(t.groupChildren[g])
}

// ChildObjects returns the objects directly inside g.
func (t GroupTree) ChildObjects(g GroupRef) []ObjectRef {
	return slices.Clone(t.objectChildren[g])
}

// Groups returns every non-root group in depth-first order.
func (t GroupTree) Groups() []GroupRef {
	return t.RecursiveChildGroups(RootGroup)
}

// Ancestors returns the groups enclosing o, innermost first. The root is
// not included.
func (t GroupTree) Ancestors(o ObjectRef) []GroupRef {
	var out []GroupRef
	g, ok := t.objectParent[o]
	for ok && !g.IsRoot() {
		out = append(out, g)
		g, ok = t.groupParent[g]
	}
	return out
}

// RecursiveChildGroups returns every group below g in depth-first order.
func (t GroupTree) RecursiveChildGroups(g GroupRef) []GroupRef {
	var out []GroupRef
	var walk func(GroupRef)
	walk = func(p GroupRef) {
		for _, c := range t.groupChildren[p] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(g)
	return out
}

// RecursiveChildObjects returns every object below g in depth-first order.
func (t GroupTree) RecursiveChildObjects(g GroupRef) []ObjectRef {
	out := slices.Clone(t.objectChildren[g])
	for _, c := range t.RecursiveChildGroups(g) {
		out = append(out, t.objectChildren[c]...)
	}
	return out
}

// AddGroup inserts g below parent.
func (t GroupTree) AddGroup(g, parent GroupRef) GroupTree {
	b := t.Builder()
	b.SetGroupParent(g, parent)
	return b.build()
}

// RemoveGroup removes g. Its children move to g's parent.
func (t GroupTree) RemoveGroup(g GroupRef) GroupTree {
	parent, ok := t.groupParent[g]
	if !ok {
		return t
	}
	b := t.Builder()
	for _, c := range t.groupChildren[g] {
		b.SetGroupParent(c, parent)
	}
	for _, o := range t.objectChildren[g] {
		b.SetObjectParent(o, parent)
	}
	b.removeGroup(g)
	return b.build()
}

// AddObject places o inside g. An object already in the tree is moved.
func (t GroupTree) AddObject(o ObjectRef, g GroupRef) GroupTree {
	b := t.Builder()
	b.SetObjectParent(o, g)
	return b.build()
}

// RemoveObject detaches o from the tree.
func (t GroupTree) RemoveObject(o ObjectRef) GroupTree {
	if _, ok := t.objectParent[o]; !ok {
		return t
	}
	b := t.Builder()
	b.removeObject(o)
	return b.build()
}

// Builder returns a mutable builder seeded with the tree's contents.
func (t GroupTree) Builder() *TreeBuilder {
	b := NewTreeBuilder()
	for _, g := range t.Groups() {
		b.SetGroupParent(g, t.groupParent[g])
	}
	for _, g := range append([]GroupRef{RootGroup}, t.Groups()...) {
		for _, o := range t.objectChildren[g] {
			b.SetObjectParent(o, g)
		}
	}
	return b
}

// TreeBuilder is scratch storage for assembling a GroupTree, typically from
// a file where parents may appear after their children. Build freezes and
// checks it.
type TreeBuilder struct {
	groups      map[GroupRef]GroupRef
	objects     map[ObjectRef]GroupRef
	groupOrder  []GroupRef
	objectOrder []ObjectRef
}

// NewTreeBuilder returns an empty builder.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		groups:  make(map[GroupRef]GroupRef),
		objects: make(map[ObjectRef]GroupRef),
	}
}

// SetGroupParent records parent as the parent of g.
func (b *TreeBuilder) SetGroupParent(g, parent GroupRef) {
	if _, ok := b.groups[g]; !ok {
		b.groupOrder = append(b.groupOrder, g)
	}
	b.groups[g] = parent
}

// SetObjectParent records g as the group containing o.
func (b *TreeBuilder) SetObjectParent(o ObjectRef, g GroupRef) {
	if _, ok := b.objects[o]; !ok {
		b.objectOrder = append(b.objectOrder, o)
	}
	b.objects[o] = g
}

func (b *TreeBuilder) removeGroup(g GroupRef) {
	delete(b.groups, g)
	b.groupOrder = slices.DeleteFunc(b.groupOrder, func(r GroupRef) bool { return r == g })
}

func (b *TreeBuilder) removeObject(o ObjectRef) {
	delete(b.objects, o)
	b.objectOrder = slices.DeleteFunc(b.objectOrder, func(r ObjectRef) bool { return r == o })
}

// Build checks that every parent exists and that groups form no cycle, then
// returns the frozen tree.
func (b *TreeBuilder) Build() (GroupTree, error) {
	for _, g := range b.groupOrder {
		if g.IsRoot() {
			return GroupTree{}, fmt.Errorf("root group cannot have a parent: %w", ErrInvalidTree)
		}
		p := b.groups[g]
		if _, ok := b.groups[p]; !ok && !p.IsRoot() {
			return GroupTree{}, fmt.Errorf("group %s: parent %s: %w", g, p, ErrDanglingReference)
		}
		// Walking up must reach the root within len(groups) steps.
		steps := 0
		for cur := p; !cur.IsRoot(); cur = b.groups[cur] {
			if cur == g || steps > len(b.groups) {
				return GroupTree{}, fmt.Errorf("group %s: %w", g, ErrCycle)
			}
			steps++
		}
	}
	for _, o := range b.objectOrder {
		p := b.objects[o]
		if _, ok := b.groups[p]; !ok && !p.IsRoot() {
			return GroupTree{}, fmt.Errorf("object %s: parent %s: %w", o, p, ErrDanglingReference)
		}
	}
	return b.build(), nil
}

func (b *TreeBuilder) build() GroupTree {
	t := GroupTree{
		groupParent:    make(map[GroupRef]GroupRef, len(b.groups)),
		groupChildren:  make(map[GroupRef][]GroupRef),
		objectParent:   make(map[ObjectRef]GroupRef, len(b.objects)),
		objectChildren: make(map[GroupRef][]ObjectRef),
	}
	for _, g := range b.groupOrder {
		p := b.groups[g]
		t.groupParent[g] = p
		t.groupChildren[p] = append(t.groupChildren[p], g)
	}
	for _, o := range b.objectOrder {
		p := b.objects[o]
		t.objectParent[o] = p
		t.objectChildren[p] = append(t.objectChildren[p], o)
	}
	return t
}
