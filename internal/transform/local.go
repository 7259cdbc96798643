package transform

import (
	stdmath "math"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

// apply runs fn on every object touched by sel, handing it the object's
// parent global matrix. An empty selection returns m itself.
func apply(m *model.Model, sel selection.Selection, anim model.Animator, fn func(obj model.Object, parent math.Mat4) model.Object) *model.Model {
	if selection.IsEmpty(sel) {
		return m
	}
	return m.ModifyObjects(sel.ObjectRefs(), func(obj model.Object) model.Object {
		return fn(obj, m.ParentGlobalMatrix(obj.Ref(), anim))
	})
}

// TransformLocal applies the world-space transform t to the selection.
//
// The request is first expressed in the object's parent frame. Whole objects
// then compose it after their own transformation; faces, edges and vertices
// have it applied to their positions in mesh space, so the object's
// transformation is left alone.
func TransformLocal(m *model.Model, sel selection.Selection, anim model.Animator, t math.TRS) *model.Model {
	if selection.IsEmpty(sel) {
		return m
	}
	request := t.Matrix()

	if sel.Kind() == selection.KindObject {
		return apply(m, sel, anim, func(obj model.Object, parent math.Mat4) model.Object {
			local := inverse(parent).Mul(request).Mul(parent)
			next := math.FromMatrix(local.Mul(obj.Transformation().Matrix()))
			return obj.WithTransformation(next)
		})
	}

	sets := positionSets(m, sel)
	return apply(m, sel, anim, func(obj model.Object, parent math.Mat4) model.Object {
		own := meshFrame(obj.Transformation()).Matrix()
		local := inverse(parent).Mul(request).Mul(parent)
		mat := own.Inverse().Mul(local).Mul(own)
		return obj.WithMesh(TransformMesh(obj, sets[obj.Ref()], mat))
	})
}

// ScaleLocal grows the selection along axis by offset. axis is a
// world-space direction; its sign per component picks which side of the
// object stays fixed.
func ScaleLocal(m *model.Model, sel selection.Selection, anim model.Animator, axis math.Vec3, offset float64) *model.Model {
	if selection.IsEmpty(sel) {
		return m
	}

	if sel.Kind() == selection.KindObject {
		return apply(m, sel, anim, func(obj model.Object, parent math.Mat4) model.Object {
			return obj.WithTransformation(scaledTransformation(obj.Transformation(), parent, axis, offset))
		})
	}

	sets := positionSets(m, sel)
	return apply(m, sel, anim, func(obj model.Object, parent math.Mat4) model.Object {
		own := meshFrame(obj.Transformation())
		next := scaledTransformation(own, parent, axis, offset)
		mat := own.Matrix().Inverse().Mul(next.Matrix())
		return obj.WithMesh(TransformMesh(obj, sets[obj.Ref()], mat))
	})
}

// scaledTransformation returns trs after growing it along the world axis.
// Scale magnitudes never drop below zero and mirrored axes keep their sign;
// axes the growth does not touch are left as they are.
func scaledTransformation(trs math.TRS, parent math.Mat4, axis math.Vec3, offset float64) math.TRS {
	inParent := inverse(parent).TransformDirection(axis)
	local := trs.Rotation.Inverse().Rotate(inParent)

	// A mirrored axis runs backwards in mesh space.
	sign := scaleSigns(trs.Scale)
	growth, move := SplitScaleAxis(local.Mul(sign))

	size := trs.Scale.Abs().Add(growth.Scale(offset)).Max(math.Vec3{})
	trs.Scale = size.Mul(sign)
	trs.Translation = trs.Translation.Add(trs.Rotation.Rotate(move.Mul(sign)).Scale(offset))
	return trs
}

// scaleSigns returns ±1 per component of s, keeping the sign of negative
// zero so a collapsed mirrored axis stays mirrored.
func scaleSigns(s math.Vec3) math.Vec3 {
	sign := func(v float64) float64 { return stdmath.Copysign(1, v) }
	return math.Vec3{X: sign(s.X), Y: sign(s.Y), Z: sign(s.Z)}
}

// minScale is the magnitude below which a scale component counts as
// collapsed.
const minScale = 1e-12

// meshFrame returns trs with collapsed scale components replaced by ±1.
// Its matrix is always invertible, so sub-object edits can be expressed in
// mesh space even when the object's own scale flattens an axis.
func meshFrame(trs math.TRS) math.TRS {
	fix := func(v float64) float64 {
		if stdmath.Abs(v) < minScale {
			return stdmath.Copysign(1, v)
		}
		return v
	}
	trs.Scale = math.Vec3{X: fix(trs.Scale.X), Y: fix(trs.Scale.Y), Z: fix(trs.Scale.Z)}
	return trs
}

// SplitScaleAxis classifies v by octant. growth is v with every component
// made non-negative; translation keeps only the negative components of v,
// which are the ones whose far side must move to keep the near side fixed.
// For every v, growth + 2*translation == v.
func SplitScaleAxis(v math.Vec3) (growth, translation math.Vec3) {
	growth = v.Abs()
	if v.X < 0 {
		translation.X = v.X
	}
	if v.Y < 0 {
		translation.Y = v.Y
	}
	if v.Z < 0 {
		translation.Z = v.Z
	}
	return growth, translation
}

// inverse returns the inverse of m, or the identity when m is singular, as
// happens when an enclosing group has a zero scale.
func inverse(m math.Mat4) math.Mat4 {
	if m.Determinant() == 0 {
		return math.Identity()
	}
	return m.Inverse()
}
