package math

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestTRSScalePivot(t *testing.T) {
	// Moving to the origin, scaling and moving back equals a pivot scale.
	composed := TRSFromTranslation(Vec3{-3, 0, 0}).
		Plus(TRSFromScale(Vec3{2, 1, 1})).
		Plus(TRSFromTranslation(Vec3{3, 0, 0}))
	pivot := FromScalePivot(Vec3{3, 0, 0}, Vec3{2, 1, 1})

	if !composed.ApproxEqual(pivot, eps) {
		t.Errorf("composed = %+v, want %+v", composed, pivot)
	}

	tests := []struct {
		in, want Vec3
	}{
		{Vec3{-1, 0, 0}, Vec3{-5, 0, 0}},
		{Vec3{3, 0, 0}, Vec3{3, 0, 0}},
		{Vec3{4, 2, 1}, Vec3{5, 2, 1}},
	}
	for _, tt := range tests {
		got := pivot.Matrix().TransformPoint(tt.in)
		if !got.ApproxEqual(tt.want, eps) {
			t.Errorf("pivot scale of %v = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTRSRotationPivot(t *testing.T) {
	r := FromRotationPivot(Vec3{1, 0, 0}, QuatFromAxisAngle(AxisY, math.Pi/2))
	got := r.Matrix().TransformPoint(Vec3{2, 0, 0})
	if want := (Vec3{1, 0, -1}); !got.ApproxEqual(want, eps) {
		t.Errorf("rotation around pivot = %v, want %v", got, want)
	}
	if p := r.Matrix().TransformPoint(Vec3{1, 0, 0}); !p.ApproxEqual(Vec3{1, 0, 0}, eps) {
		t.Errorf("pivot moved to %v", p)
	}
}

func TestTRSPlusIsSequential(t *testing.T) {
	a := TRSFromTranslation(Vec3{1, 0, 0})
	b := TRSFromRotation(QuatFromAxisAngle(AxisZ, math.Pi/2))

	p := Vec3{1, 0, 0}
	want := b.Matrix().TransformPoint(a.Matrix().TransformPoint(p))
	got := a.Plus(b).Matrix().TransformPoint(p)
	if !got.ApproxEqual(want, eps) {
		t.Errorf("(a+b)(p) = %v, want b(a(p)) = %v", got, want)
	}

	// a+b and b+a differ for a translation and a rotation.
	if a.Plus(b).ApproxEqual(b.Plus(a), 1e-6) {
		t.Error("a+b should not equal b+a")
	}
}

func TestTRSTimesIsMatrixOrder(t *testing.T) {
	a := TRSFromTranslation(Vec3{0, 2, 0})
	b := TRSFromScale(Vec3{3, 3, 3})
	got := a.Times(b).Matrix()
	want := a.Matrix().Mul(b.Matrix())
	if !got.ApproxEqual(want, eps) {
		t.Errorf("Times matrix = %v, want %v", got, want)
	}
	if !a.Times(b).ApproxEqual(b.Plus(a), eps) {
		t.Error("a*b should equal b+a")
	}
}

func TestTRSAssociative(t *testing.T) {
	a := TRS{Translation: Vec3{1, 2, 3}, Rotation: QuatFromAxisAngle(AxisX, 0.3), Scale: Splat(2)}
	b := TRS{Translation: Vec3{-1, 0, 4}, Rotation: QuatFromAxisAngle(AxisY, 1.1), Scale: Splat(0.5)}
	c := TRS{Translation: Vec3{0, 5, 0}, Rotation: QuatFromAxisAngle(AxisZ, -0.4), Scale: Splat(3)}

	left := a.Plus(b).Plus(c)
	right := a.Plus(b.Plus(c))
	if !left.ApproxEqual(right, 1e-9) {
		t.Errorf("(a+b)+c = %+v, a+(b+c) = %+v", left, right)
	}
}

func TestTRSCommutingMerges(t *testing.T) {
	t1 := TRSFromTranslation(Vec3{1, 2, 3})
	t2 := TRSFromTranslation(Vec3{-4, 0, 1})
	if !t1.Plus(t2).ApproxEqual(t2.Plus(t1), eps) {
		t.Error("translations should commute")
	}

	r1 := TRSFromRotation(QuatFromAxisAngle(AxisY, 0.5))
	r2 := TRSFromRotation(QuatFromAxisAngle(AxisY, 1.2))
	if !r1.Plus(r2).ApproxEqual(r2.Plus(r1), eps) {
		t.Error("same-axis rotations should commute")
	}
}

func TestTRSInvert(t *testing.T) {
	tests := []struct {
		name string
		trs  TRS
	}{
		{"identity", IdentityTRS()},
		{"translation", TRSFromTranslation(Vec3{3, -1, 2})},
		{"uniform", TRS{Translation: Vec3{1, 2, 3}, Rotation: QuatFromEulerDegrees(20, 40, 60), Scale: Splat(2.5)}},
		{"axis aligned", TRS{Translation: Vec3{0, 1, 0}, Rotation: QuatFromAxisAngle(AxisY, math.Pi/2), Scale: Vec3{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			round := tt.trs.Plus(tt.trs.Invert())
			if !round.ApproxEqual(IdentityTRS(), 1e-9) {
				t.Errorf("t + t^-1 = %+v, want identity", round)
			}
			back := tt.trs.Invert().Invert()
			if !back.ApproxEqual(tt.trs, 1e-9) {
				t.Errorf("invert twice = %+v, want %+v", back, tt.trs)
			}
		})
	}
}

func TestFromMatrixDecomposes(t *testing.T) {
	want := TRS{Translation: Vec3{4, 5, 6}, Rotation: QuatFromEulerDegrees(10, 80, -30), Scale: Vec3{1, 2, 3}}
	got := FromMatrix(want.Matrix())

	if !got.Translation.ApproxEqual(want.Translation, eps) {
		t.Errorf("Translation = %v, want %v", got.Translation, want.Translation)
	}
	if !got.Scale.ApproxEqual(want.Scale, 1e-9) {
		t.Errorf("Scale = %v, want %v", got.Scale, want.Scale)
	}
	if !got.Rotation.ApproxEqual(want.Rotation, 1e-9) {
		t.Errorf("Rotation = %v, want %v", got.Rotation, want.Rotation)
	}
}

func TestFromMatrixZeroScale(t *testing.T) {
	src := TRS{Translation: Vec3{1, 0, 0}, Rotation: QuatFromAxisAngle(AxisZ, 0.5), Scale: Vec3{0, 1, 1}}
	got := FromMatrix(src.Matrix())

	for _, f := range []float64{got.Rotation.X, got.Rotation.Y, got.Rotation.Z, got.Rotation.W} {
		if math.IsNaN(f) {
			t.Fatalf("rotation contains NaN: %v", got.Rotation)
		}
	}
	if !got.ApproxEqual(src, 1e-9) {
		t.Errorf("FromMatrix = %+v, want %+v", got, src)
	}

	all := FromMatrix(Scale(Vec3{}))
	if all.Rotation != QuatIdentity() || all.Scale != (Vec3{}) {
		t.Errorf("zero matrix decomposed to %+v", all)
	}
}

func TestFromMatrixMirror(t *testing.T) {
	m := Scale(Vec3{-1, 1, 1})
	got := FromMatrix(m)
	if !got.Matrix().ApproxEqual(m, eps) {
		t.Errorf("mirror round trip = %v, want %v", got.Matrix(), m)
	}
}
