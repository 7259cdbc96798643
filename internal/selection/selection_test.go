package selection

import (
	"errors"
	"testing"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/math"
)

func TestObjectRefsDistinctInOrder(t *testing.T) {
	a, b := model.NewObjectRef(), model.NewObjectRef()
	sel := Faces{{Object: b, Face: 0}, {Object: a, Face: 1}, {Object: b, Face: 2}}

	got := sel.ObjectRefs()
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Errorf("ObjectRefs() = %v, want [b a]", got)
	}
}

func TestMatchDispatch(t *testing.T) {
	tests := []struct {
		sel  Selection
		want Kind
	}{
		{Objects{model.NewObjectRef()}, KindObject},
		{Faces{{}}, KindFace},
		{Edges{{}}, KindEdge},
		{Vertices{{}}, KindVertex},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			var got Kind = -1
			tt.sel.Match(
				func(Objects) { got = KindObject },
				func(Faces) { got = KindFace },
				func(Edges) { got = KindEdge },
				func(Vertices) { got = KindVertex },
			)
			if got != tt.want || tt.sel.Kind() != tt.want {
				t.Errorf("dispatched %v, Kind() %v, want %v", got, tt.sel.Kind(), tt.want)
			}
		})
	}
}

func TestToggle(t *testing.T) {
	obj := model.NewObjectRef()
	var s Edges
	s = s.Toggle(EdgeRef{Object: obj, First: 3, Second: 1})
	if len(s) != 1 || s[0].First != 1 || s[0].Second != 3 {
		t.Fatalf("Toggle() = %v, want one ordered edge", s)
	}
	// The same edge in the other direction toggles it off.
	s = s.Toggle(EdgeRef{Object: obj, First: 1, Second: 3})
	if len(s) != 0 {
		t.Errorf("Toggle() = %v, want empty", s)
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) || !IsEmpty(Objects{}) || !IsEmpty(Vertices(nil)) {
		t.Error("empty selections not reported empty")
	}
	if IsEmpty(Objects{model.NewObjectRef()}) {
		t.Error("non-empty selection reported empty")
	}
}

func TestForObjectAndWithout(t *testing.T) {
	a, b := model.NewObjectRef(), model.NewObjectRef()
	sel := Vertices{{Object: a, Pos: 0}, {Object: b, Pos: 1}, {Object: a, Pos: 2}}

	only := ForObject(sel, a).(Vertices)
	if len(only) != 2 || only[1].Pos != 2 {
		t.Errorf("ForObject() = %v", only)
	}
	rest := Without(sel, a).(Vertices)
	if len(rest) != 1 || rest[0].Object != b {
		t.Errorf("Without() = %v", rest)
	}
	if !IsSelected(sel, b) || IsSelected(sel, model.NewObjectRef()) {
		t.Error("IsSelected() wrong")
	}
}

func TestValidate(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	m := model.New(cube)
	ref := cube.Ref()

	tests := []struct {
		name string
		sel  Selection
		want error
	}{
		{"valid faces", Faces{{Object: ref, Face: 5}}, nil},
		{"valid edge", Edges{NewEdgeRef(ref, 0, 1)}, nil},
		{"face out of range", Faces{{Object: ref, Face: 6}}, ErrIndexOutOfRange},
		{"vertex out of range", Vertices{{Object: ref, Pos: 8}}, ErrIndexOutOfRange},
		{"edge out of range", Edges{NewEdgeRef(ref, 0, 100)}, ErrIndexOutOfRange},
		{"stale object", Objects{model.NewObjectRef()}, ErrStaleReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sel, m)
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateAfterDeletion(t *testing.T) {
	cube := model.NewCubeObject("c", math.Splat(1), math.Vec3{})
	m := model.New(cube)
	sel := Faces{{Object: cube.Ref(), Face: 0}}

	m = m.RemoveObjects(cube.Ref())
	if err := Validate(sel, m); !errors.Is(err, ErrStaleReference) {
		t.Errorf("Validate() = %v, want ErrStaleReference", err)
	}
}
