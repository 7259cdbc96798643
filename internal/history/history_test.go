package history

import (
	"errors"
	"fmt"
	"runtime"
	"testing"
	"weak"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/math"
)

// chain returns n+1 successive snapshots, each with one more cube.
func chain(n int) []*model.Model {
	out := []*model.Model{model.New()}
	for i := 0; i < n; i++ {
		cube := model.NewCubeObject(fmt.Sprintf("cube%d", i), math.Splat(1), math.Vec3{})
		out = append(out, out[i].AddObjects(model.RootGroup, cube))
	}
	return out
}

func TestEmpty(t *testing.T) {
	r := New(0)
	if _, err := r.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if _, err := r.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
	if r.CanUndo() || r.CanRedo() {
		t.Error("empty record reports available steps")
	}
}

func TestUndoRedo(t *testing.T) {
	m := chain(2)
	r := New(10)
	r.Do(Action{Name: "add", Before: m[0], After: m[1]})
	r.Do(Action{Name: "add", Before: m[1], After: m[2]})

	a, err := r.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if a.Before != m[1] {
		t.Error("undo did not return the exact prior snapshot")
	}
	a, _ = r.Undo()
	if a.Before != m[0] {
		t.Error("second undo did not reach the first snapshot")
	}
	if !r.CanRedo() || r.CanUndo() {
		t.Errorf("CanUndo=%v CanRedo=%v after undoing everything", r.CanUndo(), r.CanRedo())
	}

	a, err = r.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if a.After != m[1] {
		t.Error("redo did not return the undone snapshot")
	}
}

func TestDoClearsRedo(t *testing.T) {
	m := chain(2)
	r := New(10)
	r.Do(Action{Before: m[0], After: m[1]})
	r.Undo()
	r.Do(Action{Before: m[0], After: m[2]})
	if r.CanRedo() {
		t.Error("new edit should clear redo")
	}
}

func TestDoDropsNoop(t *testing.T) {
	m := chain(0)
	r := New(10)
	if r.Do(Action{Before: m[0], After: m[0]}) {
		t.Error("no-op edit was recorded")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestLimit(t *testing.T) {
	m := chain(5)
	r := New(3)
	for i := 0; i < 5; i++ {
		r.Do(Action{Before: m[i], After: m[i+1]})
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	var last Action
	for r.CanUndo() {
		last, _ = r.Undo()
	}
	if last.Before != m[2] {
		t.Error("oldest kept step should start at snapshot 2")
	}
}

func TestLimitReleasesTrimmedSnapshots(t *testing.T) {
	r := New(2)
	first := model.New()
	released := weak.Make(first)

	prev := first
	for i := 0; i < 3; i++ {
		next := prev.AddObjects(model.RootGroup, model.NewCubeObject(fmt.Sprintf("cube%d", i), math.Splat(1), math.Vec3{}))
		r.Do(Action{Before: prev, After: next})
		prev = next
	}
	first, prev = nil, nil

	runtime.GC()
	runtime.GC()
	if released.Value() != nil {
		t.Error("trimmed snapshot is still reachable")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}
