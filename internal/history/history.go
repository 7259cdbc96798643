// Package history records model snapshots for undo and redo.
package history

import (
	"errors"
	"slices"

	"github.com/Faultbox/modeler/internal/model"
)

// DefaultLimit is the number of undo steps kept when none is configured.
const DefaultLimit = 128

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Action is one recorded edit. Models are immutable, so keeping both
// snapshots is enough to move either way.
type Action struct {
	Name   string
	Before *model.Model
	After  *model.Model
}

// Record holds undo and redo stacks. The zero value is not usable; create
// records with New.
type Record struct {
	undo  []Action
	redo  []Action
	limit int
}

// New creates a record keeping at most limit undo steps. A limit below 1
// selects DefaultLimit.
func New(limit int) *Record {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Record{limit: limit}
}

// Do records an edit and clears the redo stack. Edits whose After is the
// same snapshot as Before are dropped; Do reports whether a was recorded.
func (r *Record) Do(a Action) bool {
	if a.Before == a.After {
		return false
	}
	r.undo = append(r.undo, a)
	if len(r.undo) > r.limit {
		// Copy so trimmed snapshots can be collected.
		r.undo = slices.Clone(r.undo[len(r.undo)-r.limit:])
	}
	clear(r.redo)
	r.redo = r.redo[:0]
	return true
}

// Undo pops the last edit and returns the model to restore.
func (r *Record) Undo() (Action, error) {
	if len(r.undo) == 0 {
		return Action{}, ErrNothingToUndo
	}
	a := r.undo[len(r.undo)-1]
	r.undo = r.undo[:len(r.undo)-1]
	r.redo = append(r.redo, a)
	return a, nil
}

// Redo re-applies the last undone edit.
func (r *Record) Redo() (Action, error) {
	if len(r.redo) == 0 {
		return Action{}, ErrNothingToRedo
	}
	a := r.redo[len(r.redo)-1]
	r.redo = r.redo[:len(r.redo)-1]
	r.undo = append(r.undo, a)
	return a, nil
}

func (r *Record) CanUndo() bool { return len(r.undo) > 0 }
func (r *Record) CanRedo() bool { return len(r.redo) > 0 }

// Len returns the number of undo steps available.
func (r *Record) Len() int { return len(r.undo) }

// Clear forgets every recorded edit.
func (r *Record) Clear() {
	r.undo = nil
	r.redo = nil
}
