// Package edit holds the structural model edits that sit beside the
// geometric ones: deleting, hiding and regrouping.
package edit

import (
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
)

// Delete removes the selected objects. Only object selections delete
// anything; faces, edges and vertices leave the model as is.
func Delete(m *model.Model, sel selection.Selection) *model.Model {
	objs, ok := sel.(selection.Objects)
	if !ok || len(objs) == 0 {
		return m
	}
	return m.RemoveObjects(objs...)
}

// SetObjectVisible shows or hides one object.
func SetObjectVisible(m *model.Model, ref model.ObjectRef, visible bool) *model.Model {
	return setVisible(m, []model.ObjectRef{ref}, visible)
}

// SetGroupVisible shows or hides g together with every group and object
// below it.
func SetGroupVisible(m *model.Model, g model.GroupRef, visible bool) *model.Model {
	if _, ok := m.Group(g); !ok {
		return m
	}
	tree := m.Tree()
	groups := append([]model.GroupRef{g}, tree.RecursiveChildGroups(g)...)
	out := m.ModifyGroups(groups, func(gr model.Group) model.Group {
		gr.Visible = visible
		return gr
	})
	return setVisible(out, tree.RecursiveChildObjects(g), visible)
}

// ToggleVisibility flips the visibility of the selected objects. They all
// end up with the opposite of the first object's current state.
func ToggleVisibility(m *model.Model, sel selection.Selection) *model.Model {
	if selection.IsEmpty(sel) {
		return m
	}
	refs := sel.ObjectRefs()
	first, ok := m.Object(refs[0])
	if !ok {
		return m
	}
	return setVisible(m, refs, !first.Visible())
}

func setVisible(m *model.Model, refs []model.ObjectRef, visible bool) *model.Model {
	var changed []model.ObjectRef
	for _, ref := range refs {
		if o, ok := m.Object(ref); ok && o.Visible() != visible {
			changed = append(changed, ref)
		}
	}
	return m.ModifyObjects(changed, func(o model.Object) model.Object {
		return o.WithVisible(visible)
	})
}

// RemoveGroup deletes group g. Its child groups and objects move up to g's
// parent.
func RemoveGroup(m *model.Model, g model.GroupRef) *model.Model {
	return m.RemoveGroup(g)
}

// SelectGroup returns an object selection of everything below g.
func SelectGroup(m *model.Model, g model.GroupRef) selection.Objects {
	return selection.Objects(m.Tree().RecursiveChildObjects(g))
}
