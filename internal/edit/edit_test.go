package edit

import (
	"testing"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

// scene builds root{a, outer{b, inner{c}}}.
func scene() (m *model.Model, outer, inner model.Group, a, b, c model.Object) {
	a = model.NewCubeObject("a", math.Splat(1), math.Vec3{})
	b = model.NewCubeObject("b", math.Splat(1), math.Vec3{X: 2})
	c = model.NewCubeObject("c", math.Splat(1), math.Vec3{X: 4})
	outer = model.NewGroup("outer")
	inner = model.NewGroup("inner")
	m = model.New(a, b, c).
		AddGroup(outer, model.RootGroup).
		AddGroup(inner, outer.Ref).
		MoveObject(b.Ref(), outer.Ref).
		MoveObject(c.Ref(), inner.Ref)
	return m, outer, inner, a, b, c
}

func TestDelete(t *testing.T) {
	m, _, _, a, b, _ := scene()

	out := Delete(m, selection.Objects{a.Ref(), b.Ref()})
	if out.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", out.Len())
	}
	if _, ok := out.Object(a.Ref()); ok {
		t.Error("a still present")
	}
	if _, ok := out.Tree().ParentOf(b.Ref()); ok {
		t.Error("b still in the tree")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDeleteIgnoresSubObjectSelections(t *testing.T) {
	m, _, _, a, _, _ := scene()
	sels := []selection.Selection{
		nil,
		selection.Objects{},
		selection.Faces{{Object: a.Ref(), Face: 0}},
		selection.Edges{selection.NewEdgeRef(a.Ref(), 0, 1)},
		selection.Vertices{{Object: a.Ref(), Pos: 0}},
	}
	for _, sel := range sels {
		if got := Delete(m, sel); got != m {
			t.Errorf("Delete(%#v) changed the model", sel)
		}
	}
}

func TestSetObjectVisible(t *testing.T) {
	m, _, _, a, _, _ := scene()

	hidden := SetObjectVisible(m, a.Ref(), false)
	if o, _ := hidden.Object(a.Ref()); o.Visible() {
		t.Error("a still visible")
	}
	if again := SetObjectVisible(hidden, a.Ref(), false); again != hidden {
		t.Error("hiding a hidden object should be a no-op")
	}
}

func TestSetGroupVisible(t *testing.T) {
	m, outer, inner, a, b, c := scene()

	out := SetGroupVisible(m, outer.Ref, false)

	for _, g := range []model.GroupRef{outer.Ref, inner.Ref} {
		if gr, _ := out.Group(g); gr.Visible {
			t.Errorf("group %s still visible", gr.Name)
		}
	}
	for _, o := range []model.Object{b, c} {
		if got, _ := out.Object(o.Ref()); got.Visible() {
			t.Errorf("object %s still visible", o.Name())
		}
	}
	if got, _ := out.Object(a.Ref()); got != a {
		t.Error("object outside the group was touched")
	}

	back := SetGroupVisible(out, outer.Ref, true)
	if !back.IsVisible(c.Ref()) {
		t.Error("c hidden after showing the group again")
	}
}

func TestToggleVisibilityFollowsFirst(t *testing.T) {
	m, _, _, a, b, _ := scene()
	m = SetObjectVisible(m, b.Ref(), false)

	// a is visible, so both end up hidden.
	out := ToggleVisibility(m, selection.Objects{a.Ref(), b.Ref()})
	for _, ref := range []model.ObjectRef{a.Ref(), b.Ref()} {
		if o, _ := out.Object(ref); o.Visible() {
			t.Errorf("%s visible after toggle", o.Name())
		}
	}

	// b is hidden, so both end up visible.
	out = ToggleVisibility(m, selection.Faces{{Object: b.Ref()}, {Object: a.Ref()}})
	for _, ref := range []model.ObjectRef{a.Ref(), b.Ref()} {
		if o, _ := out.Object(ref); !o.Visible() {
			t.Errorf("%s hidden after toggle", o.Name())
		}
	}

	if got := ToggleVisibility(m, nil); got != m {
		t.Error("empty toggle changed the model")
	}
}

func TestRemoveGroupReparents(t *testing.T) {
	m, outer, inner, _, b, c := scene()

	out := RemoveGroup(m, outer.Ref)

	if _, ok := out.Group(outer.Ref); ok {
		t.Error("outer still present")
	}
	if p, _ := out.Tree().ParentOf(b.Ref()); p != model.RootGroup {
		t.Errorf("b parent = %s, want root", p)
	}
	if p, _ := out.Tree().GroupParent(inner.Ref); p != model.RootGroup {
		t.Errorf("inner parent = %s, want root", p)
	}
	if p, _ := out.Tree().ParentOf(c.Ref()); p != inner.Ref {
		t.Errorf("c parent = %s, want inner", p)
	}
}

func TestSelectGroup(t *testing.T) {
	m, outer, inner, _, b, c := scene()

	got := SelectGroup(m, outer.Ref)
	if len(got) != 2 || got[0] != b.Ref() || got[1] != c.Ref() {
		t.Errorf("SelectGroup(outer) = %v, want [b c]", got)
	}
	if got := SelectGroup(m, inner.Ref); len(got) != 1 || got[0] != c.Ref() {
		t.Errorf("SelectGroup(inner) = %v, want [c]", got)
	}
}
