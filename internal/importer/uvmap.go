package importer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/bmp"
	"golang.org/x/image/vector"

	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/selection"
)

// goldenAngle spreads successive face hues around the colour wheel.
const goldenAngle = 137.50776

// RenderUVTemplate paints the texture-space quad of every face onto a
// width x height image, one translucent colour per face. A non-empty sel
// limits the template to the selected objects, or to the selected faces
// for a face selection. Hidden objects are skipped.
func RenderUVTemplate(m *model.Model, sel selection.Selection, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r := vector.NewRasterizer(width, height)
	r.DrawOp = draw.Over

	include := faceFilter(sel)
	w, h := float32(width), float32(height)
	n := 0
	for _, o := range m.Objects() {
		if !m.IsVisible(o.Ref()) {
			continue
		}
		mesh := o.Mesh()
		for fi := range mesh.Faces {
			if !include(o.Ref(), fi) {
				continue
			}
			uv := mesh.FaceTexture(fi)

			r.Reset(width, height)
			r.MoveTo(float32(uv[0].X)*w, float32(uv[0].Y)*h)
			for _, p := range uv[1:] {
				r.LineTo(float32(p.X)*w, float32(p.Y)*h)
			}
			r.ClosePath()
			r.Draw(img, img.Bounds(), image.NewUniform(faceColor(n)), image.Point{})
			n++
		}
	}
	return img
}

func faceFilter(sel selection.Selection) func(model.ObjectRef, int) bool {
	if selection.IsEmpty(sel) {
		return func(model.ObjectRef, int) bool { return true }
	}
	if faces, ok := sel.(selection.Faces); ok {
		set := make(map[selection.FaceRef]bool, len(faces))
		for _, f := range faces {
			set[f] = true
		}
		return func(ref model.ObjectRef, fi int) bool {
			return set[selection.FaceRef{Object: ref, Face: fi}]
		}
	}
	objs := make(map[model.ObjectRef]bool)
	for _, ref := range sel.ObjectRefs() {
		objs[ref] = true
	}
	return func(ref model.ObjectRef, _ int) bool { return objs[ref] }
}

func faceColor(i int) color.Color {
	hue := float64(i) * goldenAngle
	hue -= 360 * float64(int(hue/360))
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xC0}
}

// WriteImage encodes img to path as BMP for a .bmp extension and PNG
// otherwise.
func WriteImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing image %s: %w", path, err)
	}
	return nil
}
