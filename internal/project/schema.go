package project

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Faultbox/modeler/internal/animation"
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/pkg/math"
)

// JSON documents stored inside a project archive. Vectors are written as
// arrays: [x, y], [x, y, z] and quaternions as [x, y, z, w].

type vec2 [2]float64
type vec3 [3]float64
type quat [4]float64

func fromVec2(v math.Vec2) vec2 { return vec2{v.X, v.Y} }
func fromVec3(v math.Vec3) vec3 { return vec3{v.X, v.Y, v.Z} }
func fromQuat(q math.Quat) quat { return quat{q.X, q.Y, q.Z, q.W} }

func (v vec2) toVec2() math.Vec2 { return math.Vec2{X: v[0], Y: v[1]} }
func (v vec3) toVec3() math.Vec3 { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }
func (q quat) toQuat() math.Quat { return math.Quat{X: q[0], Y: q[1], Z: q[2], W: q[3]} }

type trsDoc struct {
	Translation vec3 `json:"translation"`
	Rotation    quat `json:"rotation"`
	Scale       vec3 `json:"scale"`
}

func fromTRS(t math.TRS) trsDoc {
	return trsDoc{Translation: fromVec3(t.Translation), Rotation: fromQuat(t.Rotation), Scale: fromVec3(t.Scale)}
}

func (d trsDoc) toTRS() math.TRS {
	return math.TRS{Translation: d.Translation.toVec3(), Rotation: d.Rotation.toQuat(), Scale: d.Scale.toVec3()}
}

// meshDoc stores faces as lists of [pos, tex] index pairs.
type meshDoc struct {
	Pos   []vec3     `json:"pos"`
	Tex   []vec2     `json:"tex"`
	Faces [][][2]int `json:"faces"`
}

func fromMesh(m *model.Mesh) meshDoc {
	d := meshDoc{
		Pos:   make([]vec3, len(m.Pos)),
		Tex:   make([]vec2, len(m.Tex)),
		Faces: make([][][2]int, len(m.Faces)),
	}
	for i, p := range m.Pos {
		d.Pos[i] = fromVec3(p)
	}
	for i, t := range m.Tex {
		d.Tex[i] = fromVec2(t)
	}
	for i, f := range m.Faces {
		corners := make([][2]int, 4)
		for c := range corners {
			corners[c] = [2]int{f.Pos[c], f.Tex[c]}
		}
		d.Faces[i] = corners
	}
	return d
}

func (d meshDoc) toMesh() (*model.Mesh, error) {
	pos := make([]math.Vec3, len(d.Pos))
	for i, p := range d.Pos {
		pos[i] = p.toVec3()
	}
	tex := make([]math.Vec2, len(d.Tex))
	for i, t := range d.Tex {
		tex[i] = t.toVec2()
	}
	faces := make([]model.FaceIndex, len(d.Faces))
	for i, corners := range d.Faces {
		if len(corners) == 0 || len(corners) > 4 {
			return nil, fmt.Errorf("face %d has %d corners: %w", i, len(corners), ErrInvalidDocument)
		}
		// Triangles repeat their last corner.
		for c := 0; c < 4; c++ {
			pair := corners[min(c, len(corners)-1)]
			faces[i].Pos[c] = pair[0]
			faces[i].Tex[c] = pair[1]
		}
	}
	return model.NewMesh(pos, tex, faces), nil
}

const (
	classMesh = "Object"
	classCube = "ObjectCube"
)

type objectDoc struct {
	Class          string    `json:"class"`
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Material       uuid.UUID `json:"material"`
	Visible        bool      `json:"visible"`
	Transformation trsDoc    `json:"transformation"`

	// Object
	Mesh *meshDoc `json:"mesh,omitempty"`

	// ObjectCube
	Size          *vec3 `json:"size,omitempty"`
	Pos           *vec3 `json:"pos,omitempty"`
	Rotation      *quat `json:"rotation,omitempty"`
	RotationPivot *vec3 `json:"rotationPivot,omitempty"`
	TextureOffset *vec2 `json:"textureOffset,omitempty"`
	TextureSize   *vec2 `json:"textureSize,omitempty"`
	Mirrored      bool  `json:"mirrored,omitempty"`
}

func fromObject(o model.Object) objectDoc {
	d := objectDoc{
		ID:             uuid.UUID(o.Ref()),
		Name:           o.Name(),
		Material:       uuid.UUID(o.Material()),
		Visible:        o.Visible(),
		Transformation: fromTRS(o.Transformation()),
	}
	switch obj := o.(type) {
	case *model.CubeObject:
		c := obj.Cube()
		size, pos, pivot := fromVec3(c.Size), fromVec3(c.Pos), fromVec3(c.RotationPivot)
		rot := fromQuat(c.Rotation)
		off, ts := fromVec2(c.TextureOffset), fromVec2(c.TextureSize)
		d.Class = classCube
		d.Size, d.Pos, d.RotationPivot, d.Rotation = &size, &pos, &pivot, &rot
		d.TextureOffset, d.TextureSize = &off, &ts
		d.Mirrored = c.Mirrored
	default:
		mesh := fromMesh(o.Mesh())
		d.Class = classMesh
		d.Mesh = &mesh
	}
	return d
}

func (d objectDoc) toObject() (model.Object, error) {
	info := model.ObjectInfo{
		Ref:            model.ObjectRef(d.ID),
		Name:           d.Name,
		Material:       model.MaterialRef(d.Material),
		Transformation: d.Transformation.toTRS(),
		Visible:        d.Visible,
	}
	switch d.Class {
	case classCube:
		c := model.DefaultCube(math.Splat(1), math.Vec3{})
		if d.Size != nil {
			c.Size = d.Size.toVec3()
		}
		if d.Pos != nil {
			c.Pos = d.Pos.toVec3()
		}
		if d.Rotation != nil {
			c.Rotation = d.Rotation.toQuat()
		}
		if d.RotationPivot != nil {
			c.RotationPivot = d.RotationPivot.toVec3()
		}
		if d.TextureOffset != nil {
			c.TextureOffset = d.TextureOffset.toVec2()
		}
		if d.TextureSize != nil {
			c.TextureSize = d.TextureSize.toVec2()
		}
		c.Mirrored = d.Mirrored
		return model.NewCubeObjectFrom(info, c), nil
	case classMesh:
		if d.Mesh == nil {
			return nil, fmt.Errorf("object %s: no mesh: %w", d.ID, ErrInvalidDocument)
		}
		mesh, err := d.Mesh.toMesh()
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", d.ID, err)
		}
		return model.NewMeshObjectFrom(info, mesh), nil
	}
	return nil, fmt.Errorf("object %s: class %q: %w", d.ID, d.Class, ErrInvalidDocument)
}

type materialDoc struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Path  string     `json:"path,omitempty"`
	Color [4]float64 `json:"color"`
}

type groupDoc struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Transformation trsDoc    `json:"transformation"`
	Visible        bool      `json:"visible"`
}

type childEntry struct {
	Key   uuid.UUID   `json:"key"`
	Value []uuid.UUID `json:"value"`
}

type parentEntry struct {
	Key   uuid.UUID `json:"key"`
	Value uuid.UUID `json:"value"`
}

// treeDoc mirrors the group tree. childMap is informational; parentMap and
// objectParents are what loading rebuilds the tree from.
type treeDoc struct {
	ChildMap      []childEntry  `json:"childMap"`
	ParentMap     []parentEntry `json:"parentMap"`
	ObjectParents []parentEntry `json:"objectParents"`
}

type modelDoc struct {
	Objects   []objectDoc   `json:"objectMap"`
	Materials []materialDoc `json:"materialMap"`
	Groups    []groupDoc    `json:"groupMap"`
	Tree      treeDoc       `json:"groupTree"`
}

func fromModel(m *model.Model) modelDoc {
	d := modelDoc{
		Objects:   make([]objectDoc, 0, m.Len()),
		Materials: []materialDoc{},
		Groups:    []groupDoc{},
	}
	for _, o := range m.Objects() {
		d.Objects = append(d.Objects, fromObject(o))
	}
	for _, mat := range m.Materials() {
		d.Materials = append(d.Materials, materialDoc{
			ID:    uuid.UUID(mat.Ref),
			Name:  mat.Name,
			Type:  mat.Kind.String(),
			Path:  mat.Path,
			Color: mat.Color,
		})
	}

	tree := m.Tree()
	for _, ref := range tree.Groups() {
		g, _ := m.Group(ref)
		d.Groups = append(d.Groups, groupDoc{
			ID:             uuid.UUID(g.Ref),
			Name:           g.Name,
			Transformation: fromTRS(g.Transformation),
			Visible:        g.Visible,
		})
	}
	for _, g := range append([]model.GroupRef{model.RootGroup}, tree.Groups()...) {
		if children := tree.ChildGroups(g); len(children) > 0 {
			e := childEntry{Key: uuid.UUID(g)}
			for _, c := range children {
				e.Value = append(e.Value, uuid.UUID(c))
			}
			d.Tree.ChildMap = append(d.Tree.ChildMap, e)
		}
		if !g.IsRoot() {
			p, _ := tree.GroupParent(g)
			d.Tree.ParentMap = append(d.Tree.ParentMap, parentEntry{Key: uuid.UUID(g), Value: uuid.UUID(p)})
		}
		for _, o := range tree.ChildObjects(g) {
			d.Tree.ObjectParents = append(d.Tree.ObjectParents, parentEntry{Key: uuid.UUID(o), Value: uuid.UUID(g)})
		}
	}
	return d
}

func (d modelDoc) toModel() (*model.Model, error) {
	objs := make([]model.Object, 0, len(d.Objects))
	for _, od := range d.Objects {
		o, err := od.toObject()
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}

	materials := make([]model.Material, 0, len(d.Materials))
	for _, md := range d.Materials {
		kind, err := model.ParseMaterialKind(md.Type)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", md.ID, err)
		}
		materials = append(materials, model.Material{
			Ref:   model.MaterialRef(md.ID),
			Name:  md.Name,
			Kind:  kind,
			Path:  md.Path,
			Color: md.Color,
		})
	}

	groups := make([]model.Group, 0, len(d.Groups))
	for _, gd := range d.Groups {
		groups = append(groups, model.Group{
			Ref:            model.GroupRef(gd.ID),
			Name:           gd.Name,
			Transformation: gd.Transformation.toTRS(),
			Visible:        gd.Visible,
		})
	}

	b := model.NewTreeBuilder()
	for _, e := range d.Tree.ParentMap {
		b.SetGroupParent(model.GroupRef(e.Key), model.GroupRef(e.Value))
	}
	placed := make(map[uuid.UUID]bool, len(d.Tree.ObjectParents))
	for _, e := range d.Tree.ObjectParents {
		b.SetObjectParent(model.ObjectRef(e.Key), model.GroupRef(e.Value))
		placed[e.Key] = true
	}
	// Objects missing from the tree go to the root.
	for _, o := range objs {
		if !placed[uuid.UUID(o.Ref())] {
			b.SetObjectParent(o.Ref(), model.RootGroup)
		}
	}
	tree, err := b.Build()
	if err != nil {
		return nil, err
	}
	return model.Assemble(objs, materials, groups, tree)
}

type keyframeDoc struct {
	Time  float64 `json:"time"`
	Value trsDoc  `json:"value"`
}

type channelDoc struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Target        uuid.UUID     `json:"target"`
	Interpolation string        `json:"interpolation"`
	Enabled       bool          `json:"enabled"`
	Keyframes     []keyframeDoc `json:"keyframes"`
}

type animationDoc struct {
	Channels   []channelDoc `json:"channels"`
	TimeLength float64      `json:"timeLength"`
}

func fromAnimation(a *animation.Animation) animationDoc {
	d := animationDoc{Channels: []channelDoc{}, TimeLength: a.Length}
	for _, c := range a.SortedChannels() {
		cd := channelDoc{
			ID:            uuid.UUID(c.Ref),
			Name:          c.Name,
			Target:        c.Target,
			Interpolation: c.Interpolation.String(),
			Enabled:       c.Enabled,
			Keyframes:     make([]keyframeDoc, len(c.Keyframes)),
		}
		for i, k := range c.Keyframes {
			cd.Keyframes[i] = keyframeDoc{Time: k.Time, Value: fromTRS(k.Value)}
		}
		d.Channels = append(d.Channels, cd)
	}
	return d
}

func (d animationDoc) toAnimation() (*animation.Animation, error) {
	a := animation.New(d.TimeLength)
	for _, cd := range d.Channels {
		interp, err := animation.ParseInterpolation(cd.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", cd.ID, err)
		}
		c := animation.Channel{
			Ref:           animation.ChannelRef(cd.ID),
			Name:          cd.Name,
			Target:        cd.Target,
			Interpolation: interp,
			Enabled:       cd.Enabled,
			Keyframes:     make([]animation.Keyframe, len(cd.Keyframes)),
		}
		for i, k := range cd.Keyframes {
			c.Keyframes[i] = animation.Keyframe{Time: k.Time, Value: k.Value.toTRS()}
		}
		a = a.WithChannel(c)
	}
	return a, nil
}
