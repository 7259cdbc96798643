package transform

import (
	"testing"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

func quadObject() *model.MeshObject {
	return model.NewMeshObject("quad", model.NewMesh(
		[]math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		[]math.Vec2{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		[]model.FaceIndex{{Pos: [4]int{0, 1, 2, 3}, Tex: [4]int{0, 1, 2, 3}}},
	))
}

func texOf(t *testing.T, m *model.Model, ref model.ObjectRef) []math.Vec2 {
	t.Helper()
	o, ok := m.Object(ref)
	if !ok {
		t.Fatalf("object %s missing", ref)
	}
	return o.Mesh().Tex
}

func TestTranslateTextureCubeStaysCube(t *testing.T) {
	c := unitCube("c")
	m := model.New(c)
	shift := math.Vec2{X: 0.25, Y: -0.5}

	out := TranslateTexture(m, selection.Objects{c.Ref()}, shift)

	o, _ := out.Object(c.Ref())
	cube, ok := o.(*model.CubeObject)
	if !ok {
		t.Fatalf("got %T, want *model.CubeObject", o)
	}
	if want := shift.Mul(cube.Cube().TextureSize); !cube.Cube().TextureOffset.ApproxEqual(want, eps) {
		t.Errorf("TextureOffset = %v, want %v", cube.Cube().TextureOffset, want)
	}
	before := c.Mesh().Tex
	for i, uv := range cube.Mesh().Tex {
		if want := before[i].Add(shift); !uv.ApproxEqual(want, eps) {
			t.Errorf("tex[%d] = %v, want %v", i, uv, want)
		}
	}
}

func TestTranslateTextureFace(t *testing.T) {
	c := unitCube("c")
	m := model.New(c)
	shift := math.Vec2{X: 1}

	out := TranslateTexture(m, selection.Faces{{Object: c.Ref(), Face: model.FaceNorth}}, shift)

	o, _ := out.Object(c.Ref())
	if _, ok := o.(*model.MeshObject); !ok {
		t.Fatalf("face edit kept %T, want *model.MeshObject", o)
	}
	before := c.Mesh().Tex
	for i, uv := range o.Mesh().Tex {
		want := before[i]
		if i/4 == model.FaceNorth {
			want = want.Add(shift)
		}
		if !uv.ApproxEqual(want, eps) {
			t.Errorf("tex[%d] = %v, want %v", i, uv, want)
		}
	}
}

func TestTextureSetsThroughFaces(t *testing.T) {
	c := unitCube("c")
	m := model.New(c)
	mesh := c.Mesh()

	// Corner 0 belongs to the down, north and west faces.
	sets := textureSets(m, selection.Vertices{{Object: c.Ref(), Pos: 0}})
	if got := len(sets[c.Ref()]); got != 3 {
		t.Errorf("vertex 0 touches %d texture coordinates, want 3", got)
	}
	for ti := range sets[c.Ref()] {
		fi := ti / 4
		if mesh.Faces[fi].Pos[ti%4] != 0 {
			t.Errorf("tex %d does not belong to corner 0", ti)
		}
	}

	// Edge 0-1 is shared by the down and north faces.
	sets = textureSets(m, selection.Edges{selection.NewEdgeRef(c.Ref(), 1, 0)})
	if got := len(sets[c.Ref()]); got != 4 {
		t.Errorf("edge 0-1 touches %d texture coordinates, want 4", got)
	}
}

func TestRotateTexture(t *testing.T) {
	q := quadObject()
	m := model.New(q)

	out := RotateTexture(m, selection.Objects{q.Ref()}, math.Vec2{X: 0.5, Y: 0.5}, 90)

	want := []math.Vec2{{X: 1}, {X: 1, Y: 1}, {Y: 1}, {}}
	for i, uv := range texOf(t, out, q.Ref()) {
		if !uv.ApproxEqual(want[i], eps) {
			t.Errorf("tex[%d] = %v, want %v", i, uv, want[i])
		}
	}
}

func TestRotateTextureConvertsCube(t *testing.T) {
	c := unitCube("c")
	out := RotateTexture(model.New(c), selection.Objects{c.Ref()}, math.Vec2{}, 180)
	o, _ := out.Object(c.Ref())
	if _, ok := o.(*model.MeshObject); !ok {
		t.Errorf("got %T, want *model.MeshObject", o)
	}
}

func TestScaleTexture(t *testing.T) {
	tests := []struct {
		name        string
		translation math.Vec2
		axis        math.Vec2
		want        []math.Vec2
	}{
		{"drag high x", math.Vec2{X: 1}, math.Vec2{X: 1}, []math.Vec2{{}, {X: 2}, {X: 2, Y: 1}, {Y: 1}}},
		{"drag low x", math.Vec2{X: -1}, math.Vec2{X: -1}, []math.Vec2{{X: -1}, {X: 1}, {X: 1, Y: 1}, {X: -1, Y: 1}}},
		{"drag high y", math.Vec2{Y: 0.5}, math.Vec2{Y: 1}, []math.Vec2{{}, {X: 1}, {X: 1, Y: 1.5}, {Y: 1.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quadObject()
			out := ScaleTexture(model.New(q), selection.Objects{q.Ref()}, math.Vec2{}, math.Vec2{X: 1, Y: 1}, tt.translation, tt.axis)
			for i, uv := range texOf(t, out, q.Ref()) {
				if !uv.ApproxEqual(tt.want[i], eps) {
					t.Errorf("tex[%d] = %v, want %v", i, uv, tt.want[i])
				}
			}
		})
	}
}

func TestScaleTextureCubeMatchesMesh(t *testing.T) {
	c := unitCube("c")
	m := model.New(c)
	start, end := math.Vec2{X: 0.1, Y: 0.2}, math.Vec2{X: 0.4, Y: 0.6}
	translation, axis := math.Vec2{X: -0.15, Y: 0.1}, math.Vec2{X: -1, Y: 1}

	viaCube := ScaleTexture(m, selection.Objects{c.Ref()}, start, end, translation, axis)
	o, _ := viaCube.Object(c.Ref())
	if _, ok := o.(*model.CubeObject); !ok {
		t.Fatalf("got %T, want *model.CubeObject", o)
	}

	asMesh := model.New(c.WithMesh(c.Mesh()))
	viaMesh := ScaleTexture(asMesh, selection.Objects{c.Ref()}, start, end, translation, axis)

	got, want := texOf(t, viaCube, c.Ref()), texOf(t, viaMesh, c.Ref())
	for i := range want {
		if !got[i].ApproxEqual(want[i], 1e-9) {
			t.Errorf("tex[%d] = %v, mesh path gives %v", i, got[i], want[i])
		}
	}
}

func TestSplitTextures(t *testing.T) {
	shared := model.NewMeshObject("shared", model.NewMesh(
		[]math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {X: 2}, {X: 2, Y: 1}},
		[]math.Vec2{{}, {X: 0.5}, {X: 0.5, Y: 1}, {Y: 1}, {X: 1}, {X: 1, Y: 1}},
		[]model.FaceIndex{
			{Pos: [4]int{0, 1, 2, 3}, Tex: [4]int{0, 1, 2, 3}},
			{Pos: [4]int{1, 4, 5, 2}, Tex: [4]int{1, 4, 5, 2}},
		},
	))
	m := model.New(shared)

	if got := SplitTextures(m, selection.Faces{{Object: shared.Ref()}}); got != m {
		t.Error("face selection changed the model")
	}

	out := SplitTextures(m, selection.Objects{shared.Ref()})
	o, _ := out.Object(shared.Ref())
	mesh := o.Mesh()
	if len(mesh.Tex) != 8 {
		t.Fatalf("len(Tex) = %d, want 8", len(mesh.Tex))
	}
	for fi := range mesh.Faces {
		if mesh.FaceTexture(fi) != shared.Mesh().FaceTexture(fi) {
			t.Errorf("face %d texture = %v, want %v", fi, mesh.FaceTexture(fi), shared.Mesh().FaceTexture(fi))
		}
		if mesh.Faces[fi].Pos != shared.Mesh().Faces[fi].Pos {
			t.Errorf("face %d positions changed", fi)
		}
	}

	// Faces no longer share coordinates, so moving one leaves the other.
	moved := TranslateTexture(out, selection.Faces{{Object: shared.Ref(), Face: 0}}, math.Vec2{Y: 1})
	o, _ = moved.Object(shared.Ref())
	if got := o.Mesh().FaceTexture(1); got != shared.Mesh().FaceTexture(1) {
		t.Errorf("face 1 texture moved to %v", got)
	}
}

func TestScaleTextures(t *testing.T) {
	c := unitCube("c")
	q := quadObject()
	m := model.New(c, q)

	out := ScaleTextures(m, selection.Objects{c.Ref(), q.Ref()}, 2)

	for _, obj := range []model.Object{c, q} {
		before := obj.Mesh().Tex
		for i, uv := range texOf(t, out, obj.Ref()) {
			if want := before[i].Scale(2); !uv.ApproxEqual(want, eps) {
				t.Errorf("%s tex[%d] = %v, want %v", obj.Name(), i, uv, want)
			}
		}
	}
	if o, _ := out.Object(c.Ref()); !isCube(o) {
		t.Errorf("cube became %T", o)
	}
}

func isCube(o model.Object) bool {
	_, ok := o.(*model.CubeObject)
	return ok
}
