package selection

import (
	gomath "math"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float64, hit bool) {
	tmin := -gomath.MaxFloat64
	tmax := gomath.MaxFloat64

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance along the ray to triangle abc.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (float64, bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if gomath.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectQuad intersects the ray with a quad split along its 0-2 diagonal.
func (r Ray) IntersectQuad(q [4]math.Vec3) (float64, bool) {
	t1, ok1 := r.IntersectTriangle(q[0], q[1], q[2])
	t2, ok2 := r.IntersectTriangle(q[0], q[2], q[3])
	switch {
	case ok1 && ok2:
		return min(t1, t2), true
	case ok1:
		return t1, true
	case ok2:
		return t2, true
	}
	return 0, false
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Hit is the closest face struck by a ray.
type Hit struct {
	Object   model.ObjectRef
	Face     int
	Distance float64
	Point    math.Vec3
	// Corners are the world-space face corners, in face order.
	Corners [4]math.Vec3
}

// Cast finds the closest visible face hit by r. anim may be nil.
func Cast(r Ray, m *model.Model, anim model.Animator) (Hit, bool) {
	best := Hit{Distance: gomath.MaxFloat64}
	found := false
	for _, o := range m.Objects() {
		if !m.IsVisible(o.Ref()) {
			continue
		}
		world := o.Mesh().TransformMatrix(m.GlobalMatrix(o.Ref(), anim))
		lo, hi := world.Bounds()
		if _, ok := r.IntersectAABB(NewAABB(lo, hi)); !ok {
			continue
		}
		for fi := range world.Faces {
			corners := world.FacePositions(fi)
			t, ok := r.IntersectQuad(corners)
			if ok && t < best.Distance {
				best = Hit{Object: o.Ref(), Face: fi, Distance: t, Point: r.At(t), Corners: corners}
				found = true
			}
		}
	}
	return best, found
}

// PickObject returns the object under the ray, or nil.
func PickObject(r Ray, m *model.Model, anim model.Animator) Selection {
	h, ok := Cast(r, m, anim)
	if !ok {
		return nil
	}
	return Objects{h.Object}
}

// PickFace returns the face under the ray, or nil.
func PickFace(r Ray, m *model.Model, anim model.Animator) Selection {
	h, ok := Cast(r, m, anim)
	if !ok {
		return nil
	}
	return Faces{{Object: h.Object, Face: h.Face}}
}

// PickVertex returns the corner of the hit face nearest to the hit point,
// provided it lies within radius.
func PickVertex(r Ray, m *model.Model, anim model.Animator, radius float64) Selection {
	h, ok := Cast(r, m, anim)
	if !ok {
		return nil
	}
	bestCorner, bestDist := -1, radius
	for i, c := range h.Corners {
		if d := c.Distance(h.Point); d <= bestDist {
			bestCorner, bestDist = i, d
		}
	}
	if bestCorner < 0 {
		return nil
	}
	o, _ := m.Object(h.Object)
	return Vertices{{Object: h.Object, Pos: o.Mesh().Faces[h.Face].Pos[bestCorner]}}
}

// PickEdge returns the edge of the hit face nearest to the hit point,
// provided it lies within radius.
func PickEdge(r Ray, m *model.Model, anim model.Animator, radius float64) Selection {
	h, ok := Cast(r, m, anim)
	if !ok {
		return nil
	}
	bestEdge, bestDist := -1, radius
	for i := 0; i < 4; i++ {
		a, b := h.Corners[i], h.Corners[(i+1)%4]
		if d := segmentDistance(h.Point, a, b); d <= bestDist {
			bestEdge, bestDist = i, d
		}
	}
	if bestEdge < 0 {
		return nil
	}
	o, _ := m.Object(h.Object)
	e := o.Mesh().Faces[h.Face].Edges()[bestEdge]
	return Edges{NewEdgeRef(h.Object, e[0], e[1])}
}

func segmentDistance(p, a, b math.Vec3) float64 {
	ab := b.Sub(a)
	l := ab.Dot(ab)
	if l == 0 {
		return p.Distance(a)
	}
	t := min(max(p.Sub(a).Dot(ab)/l, 0), 1)
	return p.Distance(a.Add(ab.Scale(t)))
}
