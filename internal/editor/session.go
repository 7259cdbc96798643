// Package editor owns an editing session: the current model, the selection
// and the undo history. Every mutation goes through a Session, which
// serialises them and records each one.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/modeler/internal/animation"
	"github.com/Faultbox/modeler/internal/config"
	"github.com/Faultbox/modeler/internal/edit"
	"github.com/Faultbox/modeler/internal/history"
	"github.com/Faultbox/modeler/internal/importer"
	"github.com/Faultbox/modeler/internal/logger"
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/project"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/internal/transform"
	"github.com/Faultbox/modeler/pkg/math"
)

// ErrInvalidSelection wraps validation failures of the current selection.
var ErrInvalidSelection = errors.New("invalid selection")

// Options configures a session.
type Options struct {
	HistoryLimit       int
	ValidateSelections bool
	TextureSize        float64
	Import             importer.ImportOptions
}

// OptionsFromConfig maps the user configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		HistoryLimit:       cfg.History.Limit,
		ValidateSelections: cfg.Editor.ValidateSelections,
		TextureSize:        float64(cfg.Editor.TextureSize),
		Import:             importer.ImportOptions{FlipUV: cfg.Export.FlipUV},
	}
}

// Session is the single owner of an open project.
type Session struct {
	props     project.Properties
	model     *model.Model
	anim      *animation.Animation
	time      float64
	selection selection.Selection
	history   *history.Record
	opts      Options
	log       *zap.Logger
	mu        sync.RWMutex
}

// New opens a session on p.
func New(p *project.Project, opts Options) *Session {
	s := &Session{
		opts:    opts,
		history: history.New(opts.HistoryLimit),
		log:     logger.Named("editor"),
	}
	s.reset(p)
	return s
}

func (s *Session) reset(p *project.Project) {
	s.props = p.Properties
	s.model = p.Model
	s.anim = p.Animation
	if s.anim == nil {
		s.anim = animation.New(1)
	}
	s.time = 0
	s.selection = nil
	s.history.Clear()
}

// Model returns the current model snapshot.
func (s *Session) Model() *model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Selection returns the current selection, nil when nothing is selected.
func (s *Session) Selection() selection.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Project returns the session's contents as a project.
func (s *Session) Project() *project.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &project.Project{Properties: s.props, Model: s.model, Animation: s.anim}
}

// Animator returns the pose used to resolve group transforms.
func (s *Session) Animator() model.Animator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animator()
}

func (s *Session) animator() model.Animator {
	return animation.Animator{Animation: s.anim, Time: s.time}
}

// SetAnimationTime moves the pose edits are made against.
func (s *Session) SetAnimationTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.time = max(0, min(t, s.anim.Length))
}

// Select replaces the selection.
func (s *Session) Select(sel selection.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.ValidateSelections {
		if err := selection.Validate(sel, s.model); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}
	}
	s.selection = sel
	return nil
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// edit applies fn to the current model and selection and records the
// result. Edits that leave the model untouched are not recorded.
func (s *Session) edit(name string, fn func(m *model.Model, sel selection.Selection, anim model.Animator) *model.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(name); err != nil {
		return err
	}
	s.commit(name, fn(s.model, s.selection, s.animator()))
	return nil
}

// update records an edit that does not depend on the selection.
func (s *Session) update(name string, fn func(m *model.Model) *model.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(name, fn(s.model))
}

func (s *Session) validate(name string) error {
	if !s.opts.ValidateSelections {
		return nil
	}
	if err := selection.Validate(s.selection, s.model); err != nil {
		return fmt.Errorf("%s: %w: %w", name, ErrInvalidSelection, err)
	}
	return nil
}

func (s *Session) commit(name string, next *model.Model) bool {
	if !s.history.Do(history.Action{Name: name, Before: s.model, After: next}) {
		return false
	}
	s.model = next
	s.log.Debug("edit applied",
		zap.String("action", name),
		zap.Int("objects", next.Len()),
		zap.Int("undo", s.history.Len()))
	return true
}

// Translate moves the selection by v in world space.
func (s *Session) Translate(v math.Vec3) error {
	return s.edit("translate", func(m *model.Model, sel selection.Selection, anim model.Animator) *model.Model {
		return transform.TransformLocal(m, sel, anim, math.TRSFromTranslation(v))
	})
}

// Rotate turns the selection by q around the world-space pivot.
func (s *Session) Rotate(pivot math.Vec3, q math.Quat) error {
	return s.edit("rotate", func(m *model.Model, sel selection.Selection, anim model.Animator) *model.Model {
		return transform.TransformLocal(m, sel, anim, math.FromRotationPivot(pivot, q))
	})
}

// Scale grows the selection along the world-space axis by offset.
func (s *Session) Scale(axis math.Vec3, offset float64) error {
	return s.edit("scale", func(m *model.Model, sel selection.Selection, anim model.Animator) *model.Model {
		return transform.ScaleLocal(m, sel, anim, axis, offset)
	})
}

// TranslateTexture moves the selection's texture coordinates.
func (s *Session) TranslateTexture(t math.Vec2) error {
	return s.edit("translate texture", func(m *model.Model, sel selection.Selection, _ model.Animator) *model.Model {
		return transform.TranslateTexture(m, sel, t)
	})
}

// RotateTexture rotates the selection's texture coordinates around pivot.
func (s *Session) RotateTexture(pivot math.Vec2, degrees float64) error {
	return s.edit("rotate texture", func(m *model.Model, sel selection.Selection, _ model.Animator) *model.Model {
		return transform.RotateTexture(m, sel, pivot, degrees)
	})
}

// ScaleTexture drags one side of the selection's texture rectangle.
func (s *Session) ScaleTexture(start, end, translation, axis math.Vec2) error {
	return s.edit("scale texture", func(m *model.Model, sel selection.Selection, _ model.Animator) *model.Model {
		return transform.ScaleTexture(m, sel, start, end, translation, axis)
	})
}

// SplitTextures gives the selected faces texture coordinates of their own.
func (s *Session) SplitTextures() error {
	return s.edit("split textures", func(m *model.Model, sel selection.Selection, _ model.Animator) *model.Model {
		return transform.SplitTextures(m, sel)
	})
}

// Delete removes the selected objects and clears the selection.
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate("delete"); err != nil {
		return err
	}
	s.commit("delete", edit.Delete(s.model, s.selection))
	s.selection = nil
	return nil
}

// ToggleVisibility flips the visibility of the selected objects.
func (s *Session) ToggleVisibility() error {
	return s.edit("toggle visibility", func(m *model.Model, sel selection.Selection, _ model.Animator) *model.Model {
		return edit.ToggleVisibility(m, sel)
	})
}

// SetObjectVisible shows or hides one object.
func (s *Session) SetObjectVisible(ref model.ObjectRef, visible bool) {
	s.update("set visibility", func(m *model.Model) *model.Model {
		return edit.SetObjectVisible(m, ref, visible)
	})
}

// SetGroupVisible shows or hides a group and everything below it.
func (s *Session) SetGroupVisible(g model.GroupRef, visible bool) {
	s.update("set group visibility", func(m *model.Model) *model.Model {
		return edit.SetGroupVisible(m, g, visible)
	})
}

// AddCube adds a cube to the root group and selects it.
func (s *Session) AddCube(name string, size, pos math.Vec3) model.ObjectRef {
	obj := model.NewCubeObject(name, size, pos)
	if s.opts.TextureSize > 0 {
		obj = obj.WithTextureSize(math.Vec2{X: s.opts.TextureSize, Y: s.opts.TextureSize})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit("add cube", s.model.AddObjects(model.RootGroup, obj))
	s.selection = selection.Objects{obj.Ref()}
	return obj.Ref()
}

// Undo restores the model before the last edit.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.restore(a.Before)
	s.log.Debug("undo", zap.String("action", a.Name))
	return nil
}

// Redo re-applies the last undone edit.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.restore(a.After)
	s.log.Debug("redo", zap.String("action", a.Name))
	return nil
}

// restore switches to m and drops selected objects m does not contain.
func (s *Session) restore(m *model.Model) {
	s.model = m
	if s.selection == nil {
		return
	}
	var gone []model.ObjectRef
	for _, ref := range s.selection.ObjectRefs() {
		if _, ok := m.Object(ref); !ok {
			gone = append(gone, ref)
		}
	}
	if len(gone) > 0 {
		s.selection = selection.Without(s.selection, gone...)
	}
}

// Load replaces the session's contents with the project at path. History
// and selection are cleared.
func (s *Session) Load(path string) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(p)
	return nil
}

// Save writes the session's contents to path.
func (s *Session) Save(path string) error {
	return project.Save(path, s.Project())
}

// ImportOBJ reads the OBJ file at path and adds its objects and materials
// to the model as one edit. Parsing runs on its own goroutine; a cancelled
// ctx abandons the import.
func (s *Session) ImportOBJ(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	type result struct {
		m   *model.Model
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := importer.ImportOBJFile(path, s.opts.Import)
		done <- result{m, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return fmt.Errorf("importing %s: %w", path, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return res.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.model
	for _, mat := range res.m.Materials() {
		next = next.AddMaterial(mat)
	}
	next = next.AddObjects(model.RootGroup, res.m.Objects()...)
	s.commit("import", next)
	s.selection = selection.Objects(res.m.ObjectRefs())

	s.log.Info("OBJ imported",
		zap.String("path", path),
		zap.Int("objects", res.m.Len()))
	return nil
}
