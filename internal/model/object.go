package model

import (
	"sync"

	"github.com/Faultbox/modeler/pkg/math"
)

// Object is a mesh-bearing scene element. There are exactly two kinds:
// *MeshObject stores its mesh, *CubeObject derives it from box parameters.
// Objects are immutable; the With methods return modified copies.
type Object interface {
	Ref() ObjectRef
	Name() string
	Material() MaterialRef
	Transformation() math.TRS
	Visible() bool
	Info() ObjectInfo

	// Mesh returns the object-local mesh.
	Mesh() *Mesh
	// TransformedMesh returns the mesh with the object transformation applied.
	TransformedMesh() *Mesh

	WithName(name string) Object
	WithMaterial(ref MaterialRef) Object
	WithTransformation(t math.TRS) Object
	WithVisible(visible bool) Object
	// WithMesh replaces the geometry. Cubes become mesh objects.
	WithMesh(mesh *Mesh) Object

	sealed()
}

// ObjectInfo holds the properties shared by every object kind.
type ObjectInfo struct {
	Ref            ObjectRef
	Name           string
	Material       MaterialRef
	Transformation math.TRS
	Visible        bool
}

func newInfo(name string) ObjectInfo {
	return ObjectInfo{
		Ref:            NewObjectRef(),
		Name:           name,
		Material:       NoMaterial,
		Transformation: math.IdentityTRS(),
		Visible:        true,
	}
}

// MeshObject is an object with explicit geometry.
type MeshObject struct {
	info ObjectInfo
	mesh *Mesh
}

// NewMeshObject creates a visible mesh object with a fresh reference.
func NewMeshObject(name string, mesh *Mesh) *MeshObject {
	return &MeshObject{info: newInfo(name), mesh: mesh}
}

// NewMeshObjectFrom creates a mesh object with the given properties.
func NewMeshObjectFrom(info ObjectInfo, mesh *Mesh) *MeshObject {
	return &MeshObject{info: info, mesh: mesh}
}

func (o *MeshObject) Ref() ObjectRef { return o.info.Ref }
func (o *MeshObject) Name() string { return o.info.Name }
func (o *MeshObject) Material() MaterialRef { return o.info.Material }
func (o *MeshObject) Transformation() math.TRS { return o.info.Transformation }
func (o *MeshObject) Visible() bool { return o.info.Visible }
func (o *MeshObject) Info() ObjectInfo { return o.info }
func (o *MeshObject) Mesh() *Mesh { return o.mesh }
func (o *MeshObject) TransformedMesh() *Mesh { return o.mesh.Transform(o.info.Transformation) }
func (o *MeshObject) WithMesh(mesh *Mesh) Object { return &MeshObject{info: o.info, mesh: mesh} }
func (o *MeshObject) sealed() {}

func (o *MeshObject) withInfo(info ObjectInfo) *MeshObject {
	return &MeshObject{info: info, mesh: o.mesh}
}

func (o *MeshObject) WithName(name string) Object {
	info := o.info
	info.Name = name
	return o.withInfo(info)
}

func (o *MeshObject) WithMaterial(ref MaterialRef) Object {
	info := o.info
	info.Material = ref
	return o.withInfo(info)
}

func (o *MeshObject) WithTransformation(t math.TRS) Object {
	info := o.info
	info.Transformation = t
	return o.withInfo(info)
}

func (o *MeshObject) WithVisible(visible bool) Object {
	info := o.info
	info.Visible = visible
	return o.withInfo(info)
}

// Cube holds the parameters a CubeObject generates its mesh from. Size and
// Pos are in model units; TextureOffset is in pixels of a TextureSize texture.
type Cube struct {
	Size          math.Vec3
	Pos           math.Vec3
	Rotation      math.Quat
	RotationPivot math.Vec3
	TextureOffset math.Vec2
	TextureSize   math.Vec2
	Mirrored      bool
}

// DefaultCube returns a box of the given size at pos with the default texture size.
func DefaultCube(size, pos math.Vec3) Cube {
	return Cube{
		Size:        size,
		Pos:         pos,
		Rotation:    math.QuatIdentity(),
		TextureSize: DefaultTextureSize,
	}
}

// Mesh generates the box geometry: corners from Pos to Pos+Size rotated
// around RotationPivot, texture coordinates from the box unwrap.
func (c Cube) Mesh() *Mesh {
	base := NewCubeMesh(c.Size, c.Pos)
	uvs := CubeUVs(c.Size, c.TextureOffset, c.TextureSize, c.Mirrored)
	return base.WithTex(uvs).Transform(math.FromRotationPivot(c.RotationPivot, c.Rotation))
}

type meshCell struct {
	once sync.Once
	mesh *Mesh
}

// CubeObject is a box whose mesh is computed on first use and then reused
// for the lifetime of the value.
type CubeObject struct {
	info ObjectInfo
	cube Cube
	cell *meshCell
}

// NewCubeObject creates a visible cube with a fresh reference.
func NewCubeObject(name string, size, pos math.Vec3) *CubeObject {
	return NewCubeObjectFrom(newInfo(name), DefaultCube(size, pos))
}

// NewCubeObjectFrom creates a cube object with the given properties.
func NewCubeObjectFrom(info ObjectInfo, cube Cube) *CubeObject {
	return &CubeObject{info: info, cube: cube, cell: &meshCell{}}
}

func (o *CubeObject) Ref() ObjectRef { return o.info.Ref }
func (o *CubeObject) Name() string { return o.info.Name }
func (o *CubeObject) Material() MaterialRef { return o.info.Material }
func (o *CubeObject) Transformation() math.TRS { return o.info.Transformation }
func (o *CubeObject) Visible() bool { return o.info.Visible }
func (o *CubeObject) Info() ObjectInfo { return o.info }
func (o *CubeObject) Cube() Cube { return o.cube }
func (o *CubeObject) sealed() {}

func (o *CubeObject) Mesh() *Mesh {
	o.cell.once.Do(func() {
		o.cell.mesh = o.cube.Mesh()
	})
	return o.cell.mesh
}

func (o *CubeObject) TransformedMesh() *Mesh {
	return o.Mesh().Transform(o.info.Transformation)
}

// WithCube returns a cube with new box parameters.
func (o *CubeObject) WithCube(c Cube) *CubeObject {
	return NewCubeObjectFrom(o.info, c)
}

func (o *CubeObject) WithSize(size math.Vec3) *CubeObject {
	c := o.cube
	c.Size = size
	return o.WithCube(c)
}

func (o *CubeObject) WithPos(pos math.Vec3) *CubeObject {
	c := o.cube
	c.Pos = pos
	return o.WithCube(c)
}

// WithRotation rotates the box around its rotation pivot.
func (o *CubeObject) WithRotation(q math.Quat) *CubeObject {
	c := o.cube
	c.Rotation = q
	return o.WithCube(c)
}

func (o *CubeObject) WithRotationPivot(pivot math.Vec3) *CubeObject {
	c := o.cube
	c.RotationPivot = pivot
	return o.WithCube(c)
}

// WithTextureOffset moves the unwrap on the texture, in pixels.
func (o *CubeObject) WithTextureOffset(offset math.Vec2) *CubeObject {
	c := o.cube
	c.TextureOffset = offset
	return o.WithCube(c)
}

func (o *CubeObject) WithTextureSize(size math.Vec2) *CubeObject {
	c := o.cube
	c.TextureSize = size
	return o.WithCube(c)
}

func (o *CubeObject) WithMirrored(mirrored bool) *CubeObject {
	c := o.cube
	c.Mirrored = mirrored
	return o.WithCube(c)
}

// WithMesh converts the cube into a mesh object carrying the given geometry.
func (o *CubeObject) WithMesh(mesh *Mesh) Object {
	return NewMeshObjectFrom(o.info, mesh)
}

func (o *CubeObject) withInfo(info ObjectInfo) *CubeObject {
	// The cached mesh does not depend on info, so the cell is shared.
	return &CubeObject{info: info, cube: o.cube, cell: o.cell}
}

func (o *CubeObject) WithName(name string) Object {
	info := o.info
	info.Name = name
	return o.withInfo(info)
}

func (o *CubeObject) WithMaterial(ref MaterialRef) Object {
	info := o.info
	info.Material = ref
	return o.withInfo(info)
}

func (o *CubeObject) WithTransformation(t math.TRS) Object {
	info := o.info
	info.Transformation = t
	return o.withInfo(info)
}

func (o *CubeObject) WithVisible(visible bool) Object {
	info := o.info
	info.Visible = visible
	return o.withInfo(info)
}
