package selection

import (
	"testing"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/math"
)

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: -1, Y: -1, Z: -1})

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float64
	}{
		{"front", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, true, 4},
		{"inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, true, 1},
		{"miss", Ray{Origin: math.Vec3{X: 3, Z: 5}, Direction: math.Vec3{Z: -1}}, false, 0},
		{"behind", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func downRay(x, z float64) Ray {
	return Ray{Origin: math.Vec3{X: x, Y: 5, Z: z}, Direction: math.Vec3{Y: -1}}
}

func TestPickFaceClosest(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	m := model.New(cube)

	sel := PickFace(downRay(0.5, 0.5), m, nil)
	faces, ok := sel.(Faces)
	if !ok || len(faces) != 1 {
		t.Fatalf("PickFace() = %v", sel)
	}
	if faces[0].Face != model.FaceUp {
		t.Errorf("picked face %d, want top face", faces[0].Face)
	}

	if sel := PickObject(downRay(3, 3), m, nil); sel != nil {
		t.Errorf("PickObject() on miss = %v, want nil", sel)
	}
}

func TestPickSkipsHidden(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	m := model.New(cube.WithVisible(false))
	if sel := PickObject(downRay(0.5, 0.5), m, nil); sel != nil {
		t.Errorf("hidden object picked: %v", sel)
	}
}

func TestPickUsesObjectTransform(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	moved := cube.WithTransformation(math.TRSFromTranslation(math.Vec3{X: 10}))
	m := model.New(moved)

	if sel := PickObject(downRay(0.5, 0.5), m, nil); sel != nil {
		t.Errorf("picked at the untransformed location: %v", sel)
	}
	if sel := PickObject(downRay(10.5, 0.5), m, nil); sel == nil {
		t.Error("missed the transformed object")
	}
}

func TestPickVertexAndEdge(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	m := model.New(cube)

	v, ok := PickVertex(downRay(0.95, 0.95), m, nil, 0.2).(Vertices)
	if !ok || len(v) != 1 || v[0].Pos != 7 {
		t.Errorf("PickVertex() = %v, want corner 7", v)
	}
	if sel := PickVertex(downRay(0.5, 0.5), m, nil, 0.2); sel != nil {
		t.Errorf("PickVertex() far from corners = %v, want nil", sel)
	}

	e, ok := PickEdge(downRay(0.5, 0.98), m, nil, 0.1).(Edges)
	if !ok || len(e) != 1 || e[0].First != 6 || e[0].Second != 7 {
		t.Errorf("PickEdge() = %v, want 6-7", e)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
