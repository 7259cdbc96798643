package model

import "github.com/Faultbox/modeler/pkg/math"

// Cube face order. Texture coordinate i*4..i*4+3 belongs to face i.
const (
	FaceDown = iota
	FaceUp
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

// DefaultTextureSize is the texture resolution cubes map their UVs against.
var DefaultTextureSize = math.Vec2{X: 64, Y: 64}

// cubeFaces lists the corner indices (x + 2y + 4z) of each face.
var cubeFaces = [6][4]int{
	{4, 0, 1, 5}, // -Y
	{6, 7, 3, 2}, // +Y
	{2, 3, 1, 0}, // -Z
	{5, 7, 6, 4}, // +Z
	{4, 6, 2, 0}, // -X
	{3, 7, 5, 1}, // +X
}

// NewCubeMesh builds an axis-aligned box spanning pos to pos+size. The eight
// corners are shared between faces and every face gets the unit square as
// texture coordinates.
func NewCubeMesh(size, pos math.Vec3) *Mesh {
	corners := make([]math.Vec3, 8)
	for i := range corners {
		b := math.Vec3{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)}
		corners[i] = pos.Add(size.Mul(b))
	}

	unit := [4]math.Vec2{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	tex := make([]math.Vec2, 0, 24)
	faces := make([]FaceIndex, 6)
	for fi, c := range cubeFaces {
		faces[fi].Pos = c
		for i := 0; i < 4; i++ {
			faces[fi].Tex[i] = fi*4 + i
		}
		tex = append(tex, unit[:]...)
	}
	return NewMesh(corners, tex, faces)
}

// CubeUVs returns the 24 texture coordinates of the standard box unwrap for
// a cube of the given size. offset is in pixels; the result is normalised
// by textureSize.
func CubeUVs(size math.Vec3, offset, textureSize math.Vec2, mirrored bool) []math.Vec2 {
	w, h, l := size.X, size.Y, size.Z

	px := [6][4]math.Vec2{
		{{X: l + 2*w, Y: l}, {X: l + 2*w, Y: 0}, {X: l + w, Y: 0}, {X: l + w, Y: l}},
		{{X: l, Y: l}, {X: l + w, Y: l}, {X: l + w, Y: 0}, {X: l, Y: 0}},
		{{X: 2*l + 2*w, Y: l}, {X: 2*l + w, Y: l}, {X: 2*l + w, Y: l + h}, {X: 2*l + 2*w, Y: l + h}},
		{{X: l + w, Y: l + h}, {X: l + w, Y: l}, {X: l, Y: l}, {X: l, Y: l + h}},
		{{X: l, Y: l + h}, {X: l, Y: l}, {X: 0, Y: l}, {X: 0, Y: l + h}},
		{{X: 2*l + w, Y: l}, {X: l + w, Y: l}, {X: l + w, Y: l + h}, {X: 2*l + w, Y: l + h}},
	}

	uvs := make([]math.Vec2, 0, 24)
	for _, face := range px {
		if mirrored {
			lo, hi := face[0].X, face[0].X
			for _, p := range face[1:] {
				lo = min(lo, p.X)
				hi = max(hi, p.X)
			}
			for i := range face {
				face[i].X = lo + hi - face[i].X
			}
		}
		for _, p := range face {
			uvs = append(uvs, p.Add(offset).Div(textureSize))
		}
	}
	return uvs
}
