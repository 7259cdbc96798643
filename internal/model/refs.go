package model

import "github.com/google/uuid"

// ObjectRef identifies an object within a model.
type ObjectRef uuid.UUID

// GroupRef identifies a group node in the group tree.
type GroupRef uuid.UUID

// MaterialRef identifies a material.
type MaterialRef uuid.UUID

// RootGroup is the implicit root of every group tree.
var RootGroup = GroupRef(uuid.Nil)

// NoMaterial marks an object without material.
var NoMaterial = MaterialRef(uuid.Nil)

// NewObjectRef returns a fresh random object reference.
func NewObjectRef() ObjectRef { return ObjectRef(uuid.New()) }

// NewGroupRef returns a fresh random group reference.
func NewGroupRef() GroupRef { return GroupRef(uuid.New()) }

// NewMaterialRef returns a fresh random material reference.
func NewMaterialRef() MaterialRef { return MaterialRef(uuid.New()) }

func (r ObjectRef) String() string { return uuid.UUID(r).String() }
func (r GroupRef) String() string { return uuid.UUID(r).String() }
func (r MaterialRef) String() string { return uuid.UUID(r).String() }

// IsRoot reports whether r is the tree root.
func (r GroupRef) IsRoot() bool { return r == RootGroup }

// ParseObjectRef parses the textual form of an object reference.
func ParseObjectRef(s string) (ObjectRef, error) {
	id, err := uuid.Parse(s)
	return ObjectRef(id), err
}

// ParseGroupRef parses the textual form of a group reference.
func ParseGroupRef(s string) (GroupRef, error) {
	id, err := uuid.Parse(s)
	return GroupRef(id), err
}

// ParseMaterialRef parses the textual form of a material reference.
func ParseMaterialRef(s string) (MaterialRef, error) {
	id, err := uuid.Parse(s)
	return MaterialRef(id), err
}
