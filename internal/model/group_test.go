package model

import (
	"errors"
	"testing"
)

func TestTreeBuilderOutOfOrder(t *testing.T) {
	parent, child := NewGroupRef(), NewGroupRef()
	obj := NewObjectRef()

	b := NewTreeBuilder()
	// Children may be recorded before their parents.
	b.SetObjectParent(obj, child)
	b.SetGroupParent(child, parent)
	b.SetGroupParent(parent, RootGroup)

	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	anc := tree.Ancestors(obj)
	if len(anc) != 2 || anc[0] != child || anc[1] != parent {
		t.Errorf("Ancestors() = %v, want [child parent]", anc)
	}
	if got := tree.RecursiveChildObjects(parent); len(got) != 1 || got[0] != obj {
		t.Errorf("RecursiveChildObjects() = %v", got)
	}
}

func TestTreeBuilderRejects(t *testing.T) {
	a, b := NewGroupRef(), NewGroupRef()

	tests := []struct {
		name  string
		setup func(*TreeBuilder)
		want  error
	}{
		{"cycle", func(tb *TreeBuilder) {
			tb.SetGroupParent(a, b)
			tb.SetGroupParent(b, a)
		}, ErrCycle},
		{"self parent", func(tb *TreeBuilder) {
			tb.SetGroupParent(a, a)
		}, ErrCycle},
		{"dangling group parent", func(tb *TreeBuilder) {
			tb.SetGroupParent(a, b)
		}, ErrDanglingReference},
		{"dangling object parent", func(tb *TreeBuilder) {
			tb.SetObjectParent(NewObjectRef(), b)
		}, ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := NewTreeBuilder()
			tt.setup(tb)
			if _, err := tb.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTreeRemoveGroupReparents(t *testing.T) {
	outer, inner, leaf := NewGroupRef(), NewGroupRef(), NewGroupRef()
	obj := NewObjectRef()

	tree := NewTreeBuilder().build().
		AddGroup(outer, RootGroup).
		AddGroup(inner, outer).
		AddGroup(leaf, inner).
		AddObject(obj, inner)

	removed := tree.RemoveGroup(inner)

	if removed.HasGroup(inner) {
		t.Error("inner still present")
	}
	if p, _ := removed.GroupParent(leaf); p != outer {
		t.Errorf("leaf parent = %v, want outer", p)
	}
	if p, _ := removed.ParentOf(obj); p != outer {
		t.Errorf("object parent = %v, want outer", p)
	}
	// The original tree is untouched.
	if p, _ := tree.ParentOf(obj); p != inner {
		t.Errorf("original object parent = %v, want inner", p)
	}
}

func TestTreeMoveObjectKeepsSingleParent(t *testing.T) {
	g := NewGroupRef()
	obj := NewObjectRef()
	tree := NewTreeBuilder().build().AddGroup(g, RootGroup).AddObject(obj, RootGroup)

	moved := tree.AddObject(obj, g)
	if len(moved.ChildObjects(RootGroup)) != 0 {
		t.Errorf("root still holds %v", moved.ChildObjects(RootGroup))
	}
	if got := moved.ChildObjects(g); len(got) != 1 || got[0] != obj {
		t.Errorf("group children = %v", got)
	}
}
