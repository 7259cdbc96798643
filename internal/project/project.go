// Package project reads and writes project files: zip archives holding the
// project properties, the model and its animation as JSON documents.
package project

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/modeler/internal/animation"
	"github.com/Faultbox/modeler/internal/logger"
	"github.com/Faultbox/modeler/internal/model"
)

// Version is the schema version written to and accepted from project.json.
const Version = "1.2"

// Archive entry names.
const (
	EntryProject   = "project.json"
	EntryModel     = "model.json"
	EntryAnimation = "animation.json"
)

var (
	ErrMissingEntry       = errors.New("missing archive entry")
	ErrUnsupportedVersion = errors.New("unsupported project version")
	ErrInvalidDocument    = errors.New("invalid project document")
)

// Properties describes a project.
type Properties struct {
	Name    string    `json:"name"`
	Author  string    `json:"author"`
	Created time.Time `json:"creationTime"`
	Version string    `json:"version"`
}

// Project is everything stored in a project file.
type Project struct {
	Properties Properties
	Model      *model.Model
	Animation  *animation.Animation
}

// New creates a project around m with an empty animation.
func New(name, author string, m *model.Model) *Project {
	return &Project{
		Properties: Properties{Name: name, Author: author, Created: time.Now().UTC(), Version: Version},
		Model:      m,
		Animation:  animation.New(1),
	}
}

// Encode writes p as a project archive.
func Encode(w io.Writer, p *Project) error {
	zw := zip.NewWriter(w)

	props := p.Properties
	props.Version = Version
	anim := p.Animation
	if anim == nil {
		anim = animation.New(1)
	}

	entries := []struct {
		name string
		doc  any
	}{
		{EntryProject, props},
		{EntryModel, fromModel(p.Model)},
		{EntryAnimation, fromAnimation(anim)},
	}
	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", e.name, err)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e.doc); err != nil {
			return fmt.Errorf("encoding %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// Decode reads a project archive of the given size.
func Decode(r io.ReaderAt, size int64) (*Project, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	var props Properties
	if err := readEntry(zr, EntryProject, &props); err != nil {
		return nil, err
	}
	if props.Version != Version {
		return nil, fmt.Errorf("version %q: %w", props.Version, ErrUnsupportedVersion)
	}

	var md modelDoc
	if err := readEntry(zr, EntryModel, &md); err != nil {
		return nil, err
	}
	m, err := md.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryModel, err)
	}

	var ad animationDoc
	if err := readEntry(zr, EntryAnimation, &ad); err != nil {
		return nil, err
	}
	anim, err := ad.toAnimation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryAnimation, err)
	}

	return &Project{Properties: props, Model: m, Animation: anim}, nil
}

func readEntry(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, ErrMissingEntry)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// Save writes p to path. The file is written to a temporary sibling first
// and renamed into place.
func Save(path string, p *Project) error {
	log := logger.Named("project")

	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return fmt.Errorf("saving project %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("saving project %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("saving project %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving project %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving project %s: %w", path, err)
	}

	log.Info("project saved",
		zap.String("path", path),
		zap.Int("objects", p.Model.Len()),
		zap.Int("bytes", buf.Len()))
	return nil
}

// Load reads the project file at path.
func Load(path string) (*Project, error) {
	log := logger.Named("project")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}
	p, err := Decode(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}

	log.Info("project loaded",
		zap.String("path", path),
		zap.String("name", p.Properties.Name),
		zap.Int("objects", p.Model.Len()),
		zap.Int("groups", len(p.Model.Groups())),
		zap.Int("channels", len(p.Animation.Channels)))
	return p, nil
}
