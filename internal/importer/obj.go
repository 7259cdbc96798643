// Package importer converts between models and interchange files: OBJ
// meshes in both directions, and UV template images out.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/modeler/internal/logger"
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/formats"
	"github.com/Faultbox/modeler/pkg/math"
)

// DefaultExportScale converts model units (texture pixels) to blocks.
const DefaultExportScale = 0.0625

// ImportOptions controls OBJ import.
type ImportOptions struct {
	// FlipUV mirrors V, for files authored with a bottom-left origin.
	FlipUV bool
	// Materials resolves usemtl names to model materials.
	Materials []formats.MTLMaterial
}

// ExportOptions controls OBJ export.
type ExportOptions struct {
	Scale       float64
	MaterialLib string
}

// DefaultExportOptions returns the export settings used when none are
// configured.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Scale: DefaultExportScale}
}

// ImportOBJ builds a model with one mesh object per OBJ group. Groups
// naming a known material get a material of the same name.
func ImportOBJ(obj *formats.OBJ, opts ImportOptions) *model.Model {
	log := logger.Named("importer")

	byName := make(map[string]model.Material)
	for _, mtl := range opts.Materials {
		byName[mtl.Name] = toMaterial(mtl)
	}

	m := model.New()
	used := make(map[string]bool)
	for _, g := range obj.Groups {
		o := model.NewMeshObject(g.Name, groupMesh(obj, g, opts.FlipUV).Optimize())
		if mat, ok := byName[g.Material]; ok {
			if !used[g.Material] {
				m = m.AddMaterial(mat)
				used[g.Material] = true
			}
			o = o.WithMaterial(mat.Ref).(*model.MeshObject)
		}
		m = m.AddObjects(model.RootGroup, o)
	}

	log.Debug("imported OBJ",
		zap.Int("groups", len(obj.Groups)),
		zap.Int("faces", obj.FaceCount()),
		zap.Int("materials", len(used)))
	return m
}

// ImportOBJFile parses the OBJ file at path and imports it. When opts
// carries no materials, the material library the file names is read from
// beside it.
func ImportOBJFile(path string, opts ImportOptions) (*model.Model, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	if obj.MaterialLib != "" && opts.Materials == nil {
		mtlPath := filepath.Join(filepath.Dir(path), obj.MaterialLib)
		data, err := os.ReadFile(mtlPath)
		if err != nil {
			logger.Named("importer").Warn("material library not readable",
				zap.String("path", mtlPath),
				zap.Error(err))
		} else if opts.Materials, err = formats.ParseMTL(data); err != nil {
			return nil, fmt.Errorf("importing %s: %w", mtlPath, err)
		}
	}
	return ImportOBJ(obj, opts), nil
}

// ImportOBJAsMesh merges every group of obj into a single mesh.
func ImportOBJAsMesh(obj *formats.OBJ, opts ImportOptions) *model.Mesh {
	if len(obj.Groups) == 0 {
		return model.NewMesh(nil, nil, nil)
	}
	mesh := groupMesh(obj, obj.Groups[0], opts.FlipUV)
	for _, g := range obj.Groups[1:] {
		mesh = mesh.Merge(groupMesh(obj, g, opts.FlipUV))
	}
	return mesh.Optimize()
}

// groupMesh returns a mesh with all of obj's vertex data and g's faces.
// Corners without a texture coordinate use (0, 0).
func groupMesh(obj *formats.OBJ, g formats.OBJGroup, flipUV bool) *model.Mesh {
	pos := make([]math.Vec3, len(obj.Vertices))
	for i, v := range obj.Vertices {
		pos[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	tex := make([]math.Vec2, len(obj.TexCoords), len(obj.TexCoords)+1)
	for i, t := range obj.TexCoords {
		tex[i] = math.Vec2{X: t[0], Y: t[1]}
		if flipUV {
			tex[i].Y = 1 - t[1]
		}
	}

	origin := -1
	faces := make([]model.FaceIndex, len(g.Faces))
	for fi, f := range g.Faces {
		faces[fi].Pos = f.Vertex
		for i, t := range f.TexCoord {
			if t == formats.NoIndex {
				if origin < 0 {
					origin = len(tex)
					tex = append(tex, math.Vec2{})
				}
				t = origin
			}
			faces[fi].Tex[i] = t
		}
	}
	return model.NewMesh(pos, tex, faces)
}

func toMaterial(mtl formats.MTLMaterial) model.Material {
	mat := model.Material{Ref: model.NewMaterialRef(), Name: mtl.Name}
	if mtl.Texture != "" {
		mat.Kind = model.MaterialTexture
		mat.Path = mtl.Texture
	} else {
		mat.Kind = model.MaterialColor
		mat.Color = [4]float64{mtl.Diffuse[0], mtl.Diffuse[1], mtl.Diffuse[2], 1}
	}
	return mat
}

// ExportOBJ flattens the visible objects of m into an OBJ with one group per
// object. Positions are in world space scaled by opts.Scale; identical
// positions and texture coordinates are written once.
func ExportOBJ(m *model.Model, opts ExportOptions) *formats.OBJ {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultExportScale
	}

	obj := &formats.OBJ{MaterialLib: opts.MaterialLib}
	posIndex := make(map[math.Vec3]int)
	texIndex := make(map[math.Vec2]int)

	for _, o := range m.Objects() {
		if !m.IsVisible(o.Ref()) {
			continue
		}
		mesh := o.Mesh().TransformMatrix(m.GlobalMatrix(o.Ref(), nil))

		g := formats.OBJGroup{Name: o.Name(), Faces: make([]formats.OBJFace, 0, len(mesh.Faces))}
		if mat, ok := m.Material(o.Material()); ok {
			g.Material = mat.Name
		}
		for _, f := range mesh.Faces {
			face := formats.OBJFace{Normal: [4]int{formats.NoIndex, formats.NoIndex, formats.NoIndex, formats.NoIndex}}
			for i := 0; i < 4; i++ {
				p := mesh.Pos[f.Pos[i]].Scale(scale)
				idx, ok := posIndex[p]
				if !ok {
					idx = len(obj.Vertices)
					posIndex[p] = idx
					obj.Vertices = append(obj.Vertices, [3]float64{p.X, p.Y, p.Z})
				}
				face.Vertex[i] = idx

				t := mesh.Tex[f.Tex[i]]
				tdx, ok := texIndex[t]
				if !ok {
					tdx = len(obj.TexCoords)
					texIndex[t] = tdx
					obj.TexCoords = append(obj.TexCoords, [2]float64{t.X, t.Y})
				}
				face.TexCoord[i] = tdx
			}
			g.Faces = append(g.Faces, face)
		}
		obj.Groups = append(obj.Groups, g)
	}
	return obj
}
