// Package formats provides readers and writers for the interchange formats
// the modeler imports and exports.
// OBJ (Wavefront) format parser and writer.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJFace    = errors.New("invalid OBJ face")
	ErrTruncatedOBJLine  = errors.New("truncated OBJ line")
	ErrInvalidOBJNumber  = errors.New("invalid OBJ number")
	ErrMissingOBJMtlName = errors.New("material statement before newmtl")
)

// NoIndex marks an absent texture coordinate or normal in an OBJFace.
const NoIndex = -1

// DefaultGroupName names the group collecting faces that appear before any
// g or o statement.
const DefaultGroupName = "noGroup"

// OBJFace is a quad. Indices are zero-based; triangles repeat their last
// corner.
type OBJFace struct {
	Vertex   [4]int
	TexCoord [4]int // NoIndex when absent
	Normal   [4]int // NoIndex when absent
}

// OBJGroup is a named set of faces sharing a material.
type OBJGroup struct {
	Name     string
	Material string
	Faces    []OBJFace
}

// OBJ is a parsed Wavefront OBJ file. Vertex data is shared by all groups.
type OBJ struct {
	MaterialLib string
	Vertices    [][3]float64
	TexCoords   [][2]float64
	Normals     [][3]float64
	Groups      []OBJGroup
}

// FaceCount returns the number of faces over every group.
func (o *OBJ) FaceCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Faces)
	}
	return n
}

// ParseOBJ parses an OBJ file from raw bytes. Polygons with more than four
// corners are split into a fan of triangles.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	fallback := OBJGroup{Name: DefaultGroupName}
	current := &fallback
	material := ""

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		args := fields[1:]

		var err error
		switch fields[0] {
		case "v":
			var v [3]float64
			err = parseFloats(args, v[:])
			obj.Vertices = append(obj.Vertices, v)
		case "vt", "vtc":
			var t [2]float64
			err = parseFloats(args, t[:])
			obj.TexCoords = append(obj.TexCoords, t)
		case "vn":
			var n [3]float64
			err = parseFloats(args, n[:])
			obj.Normals = append(obj.Normals, n)
		case "f":
			var faces []OBJFace
			faces, err = obj.parseFace(args)
			current.Faces = append(current.Faces, faces...)
		case "g", "o":
			name := DefaultGroupName
			if len(args) > 0 {
				name = strings.Join(args, " ")
			}
			obj.Groups = append(obj.Groups, OBJGroup{Name: name, Material: material})
			current = &obj.Groups[len(obj.Groups)-1]
		case "usemtl":
			if len(args) == 0 {
				err = ErrTruncatedOBJLine
				break
			}
			material = args[0]
			current.Material = material
			fallback.Material = material
		case "mtllib":
			if len(args) == 0 {
				err = ErrTruncatedOBJLine
				break
			}
			obj.MaterialLib = args[0]
		default:
			// s, l and other statements carry nothing the modeler keeps
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if len(fallback.Faces) > 0 {
		obj.Groups = append(obj.Groups, fallback)
	}
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

func parseFloats(args []string, out []float64) error {
	if len(args) < len(out) {
		return ErrTruncatedOBJLine
	}
	for i := range out {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidOBJNumber, args[i])
		}
		out[i] = f
	}
	return nil
}

// parseFace reads the corners of an f statement and returns them as quads.
func (o *OBJ) parseFace(args []string) ([]OBJFace, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: %d corners", ErrInvalidOBJFace, len(args))
	}

	type corner struct{ v, t, n int }
	corners := make([]corner, len(args))
	for i, arg := range args {
		parts := strings.Split(arg, "/")
		if len(parts) > 3 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJFace, arg)
		}
		c := corner{v: NoIndex, t: NoIndex, n: NoIndex}
		var err error
		if c.v, err = resolveIndex(parts[0], len(o.Vertices)); err != nil {
			return nil, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.t, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
				return nil, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.n, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return nil, err
			}
		}
		corners[i] = c
	}

	quad := func(cs ...corner) OBJFace {
		var f OBJFace
		for i := 0; i < 4; i++ {
			c := cs[min(i, len(cs)-1)]
			f.Vertex[i], f.TexCoord[i], f.Normal[i] = c.v, c.t, c.n
		}
		return f
	}

	if len(corners) <= 4 {
		return []OBJFace{quad(corners...)}, nil
	}
	faces := make([]OBJFace, 0, len(corners)-2)
	for i := 1; i+1 < len(corners); i++ {
		faces = append(faces, quad(corners[0], corners[i], corners[i+1]))
	}
	return faces, nil
}

// resolveIndex converts a one-based or negative (relative) OBJ index into a
// zero-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidOBJFace, s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("%w: index %d outside 1..%d", ErrInvalidOBJFace, i, n)
}

// Write encodes o as OBJ text. Group and material names have spaces
// replaced with underscores.
func (o *OBJ) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if o.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", o.MaterialLib)
	}
	for _, v := range o.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}
	bw.WriteByte('\n')
	for _, t := range o.TexCoords {
		fmt.Fprintf(bw, "vt %s %s\n", formatFloat(t[0]), formatFloat(t[1]))
	}
	if len(o.Normals) > 0 {
		bw.WriteByte('\n')
		for _, n := range o.Normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(n[0]), formatFloat(n[1]), formatFloat(n[2]))
		}
	}

	for _, g := range o.Groups {
		bw.WriteByte('\n')
		if g.Material != "" {
			fmt.Fprintf(bw, "usemtl %s\n", strings.ReplaceAll(g.Material, " ", "_"))
		}
		fmt.Fprintf(bw, "g %s\n", strings.ReplaceAll(g.Name, " ", "_"))
		for _, f := range g.Faces {
			bw.WriteString("f")
			for i := 0; i < 4; i++ {
				bw.WriteByte(' ')
				bw.WriteString(formatCorner(f.Vertex[i], f.TexCoord[i], f.Normal[i]))
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func formatCorner(v, t, n int) string {
	switch {
	case t == NoIndex && n == NoIndex:
		return strconv.Itoa(v + 1)
	case n == NoIndex:
		return fmt.Sprintf("%d/%d", v+1, t+1)
	case t == NoIndex:
		return fmt.Sprintf("%d//%d", v+1, n+1)
	}
	return fmt.Sprintf("%d/%d/%d", v+1, t+1, n+1)
}

// MTLMaterial is one newmtl entry of a material library.
type MTLMaterial struct {
	Name    string
	Diffuse [3]float64
	Texture string // map_Kd, or map_Ka when no map_Kd is given
}

// ParseMTL parses a material library.
func ParseMTL(data []byte) ([]MTLMaterial, error) {
	var out []MTLMaterial
	var cur *MTLMaterial

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		key, args := fields[0], fields[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrTruncatedOBJLine)
			}
			out = append(out, MTLMaterial{Name: args[0], Diffuse: [3]float64{1, 1, 1}})
			cur = &out[len(out)-1]
			continue
		}

		switch key {
		case "Kd", "map_Kd", "map_Ka":
			if cur == nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMissingOBJMtlName)
			}
		default:
			continue
		}
		switch key {
		case "Kd":
			if err := parseFloats(args, cur.Diffuse[:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case "map_Kd":
			if len(args) > 0 {
				cur.Texture = args[len(args)-1]
			}
		case "map_Ka":
			if len(args) > 0 && cur.Texture == "" {
				cur.Texture = args[len(args)-1]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return out, nil
}
