package transform

import (
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

// cubeEdit adjusts a cube's texture parameters in place of its mesh. It
// reports false when the edit cannot be expressed that way.
type cubeEdit func(c model.Cube) (model.Cube, bool)

// transformTexture applies fn to the texture coordinates touched by sel.
// Whole cubes are offered to cube first so they stay parametric.
func transformTexture(m *model.Model, sel selection.Selection, fn func(math.Vec2) math.Vec2, cube cubeEdit) *model.Model {
	if selection.IsEmpty(sel) {
		return m
	}
	sets := textureSets(m, sel)
	whole := sel.Kind() == selection.KindObject

	return m.ModifyObjects(sel.ObjectRefs(), func(obj model.Object) model.Object {
		if c, ok := obj.(*model.CubeObject); ok && whole && cube != nil {
			if next, ok := cube(c.Cube()); ok {
				return c.WithCube(next)
			}
		}
		return obj.WithMesh(TransformMeshTexture(obj, sets[obj.Ref()], fn))
	})
}

// TranslateTexture moves the selected texture coordinates by t.
func TranslateTexture(m *model.Model, sel selection.Selection, t math.Vec2) *model.Model {
	fn := func(p math.Vec2) math.Vec2 { return p.Add(t) }
	cube := func(c model.Cube) (model.Cube, bool) {
		c.TextureOffset = c.TextureOffset.Add(t.Mul(c.TextureSize))
		return c, true
	}
	return transformTexture(m, sel, fn, cube)
}

// RotateTexture rotates the selected texture coordinates by degrees around
// pivot. Cubes are converted to mesh objects since their unwrap cannot
// rotate.
func RotateTexture(m *model.Model, sel selection.Selection, pivot math.Vec2, degrees float64) *model.Model {
	q := math.QuatFromAxisAngle(math.AxisZ, math.Radians(degrees))
	mat := math.FromRotationPivot(pivot.ToVec3(0), q).Matrix()
	return transformTexture(m, sel, mat.TransformVec2, nil)
}

// ScaleTexture stretches the selected texture coordinates by dragging one
// side of the rectangle start..end by translation. axis picks the dragged
// sides: a negative component drags the low side, keeping the high side
// fixed.
func ScaleTexture(m *model.Model, sel selection.Selection, start, end, translation, axis math.Vec2) *model.Model {
	size := end.Sub(start)
	offset := translation.Mul(axis).Div(size)
	_, move := SplitScaleAxis(axis.ToVec3(0))
	addition := start.Negate().Add(size.Mul(move.XY()))

	fn := func(p math.Vec2) math.Vec2 {
		return p.Add(p.Add(addition).Mul(offset))
	}
	// p' = k*p + c with k = 1+offset; a cube realises this by dividing its
	// texture size by k and shifting its offset.
	cube := func(c model.Cube) (model.Cube, bool) {
		k := math.Vec2{X: 1 + offset.X, Y: 1 + offset.Y}
		if k.X <= 0 || k.Y <= 0 {
			return c, false
		}
		shift := addition.Mul(offset)
		c.TextureSize = c.TextureSize.Div(k)
		c.TextureOffset = c.TextureOffset.Add(shift.Mul(c.TextureSize))
		return c, true
	}
	return transformTexture(m, sel, fn, cube)
}

// SplitTextures gives every face of the selected objects its own four
// texture coordinates, so faces can be moved apart in texture space.
// Only whole-object selections are affected.
func SplitTextures(m *model.Model, sel selection.Selection) *model.Model {
	objs, ok := sel.(selection.Objects)
	if !ok || len(objs) == 0 {
		return m
	}
	return m.ModifyObjects(objs.ObjectRefs(), func(obj model.Object) model.Object {
		mesh := obj.Mesh()
		tex := make([]math.Vec2, 0, len(mesh.Faces)*4)
		faces := make([]model.FaceIndex, len(mesh.Faces))
		for i, f := range mesh.Faces {
			corners := mesh.FaceTexture(i)
			tex = append(tex, corners[:]...)
			faces[i] = model.FaceIndex{Pos: f.Pos, Tex: [4]int{i * 4, i*4 + 1, i*4 + 2, i*4 + 3}}
		}
		return obj.WithMesh(model.NewMesh(mesh.Pos, tex, faces))
	})
}

// ScaleTextures multiplies every texture coordinate of the selected objects
// by factor. Only whole-object selections are affected.
func ScaleTextures(m *model.Model, sel selection.Selection, factor float64) *model.Model {
	objs, ok := sel.(selection.Objects)
	if !ok || len(objs) == 0 {
		return m
	}
	fn := func(p math.Vec2) math.Vec2 { return p.Scale(factor) }
	cube := func(c model.Cube) (model.Cube, bool) {
		if factor <= 0 {
			return c, false
		}
		c.TextureSize = c.TextureSize.Scale(1 / factor)
		return c, true
	}
	return transformTexture(m, objs, fn, cube)
}
