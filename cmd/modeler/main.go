// modeler is a command-line tool for cuboid model projects.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/modeler/internal/config"
	"github.com/Faultbox/modeler/internal/editor"
	"github.com/Faultbox/modeler/internal/importer"
	"github.com/Faultbox/modeler/internal/logger"
	"github.com/Faultbox/modeler/internal/model"
	"github.com/Faultbox/modeler/internal/project"
	"github.com/Faultbox/modeler/internal/selection"
	"github.com/Faultbox/modeler/pkg/math"
)

var errUsage = errors.New("invalid arguments")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "import":
		err = cmdImport(ctx, cfg, args)
	case "export":
		err = cmdExport(cfg, args)
	case "uvmap":
		err = cmdUVMap(cfg, args)
	case "new":
		err = cmdNew(cfg, args)
	case "edit":
		err = cmdEdit(cfg, args)
	case "watch":
		err = cmdWatch(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage()
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeler - cuboid model project utility

Usage:
  modeler [flags] <command> [options]

Commands:
  info <project>                          Show project contents
  import <file.obj> <project>             Create a project from an OBJ file
  export <project> <file.obj> [uv.png]    Write an OBJ file and optional UV template
  uvmap [-size N] <project> <uv.png>      Render the UV template
  new [-name N] [-author A] <project>     Create a project holding one cube
  edit <project> <op> <object> <args...>  Transform objects by name and save
      translate <object> <x> <y> <z>
      rotate    <object> <x> <y> <z>      Euler degrees around the object centre
      scale     <object> <x> <y> <z> <offset>
  watch <project>                         Print a summary whenever the project changes

Flags:
  -config <file>        Config file (YAML or TOML)
  -debug                Debug logging and selection checks
  -log-file <file>      Also log to a rotating file
  -texture-size <n>     Texture size for new cubes
  -history <n>          Undo steps to keep

Examples:
  modeler info steve.pmf
  modeler export steve.pmf steve.obj steve_uv.png
  modeler edit steve.pmf translate head 0 2 0`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: info <project>", errUsage)
	}

	p, err := project.Load(args[0])
	if err != nil {
		return err
	}
	printSummary(os.Stdout, args[0], p)
	return nil
}

// printSummary writes the project's properties and an object listing.
func printSummary(w io.Writer, path string, p *project.Project) {
	m := p.Model
	fmt.Fprintf(w, "Project:   %s\n", path)
	fmt.Fprintf(w, "Name:      %s\n", p.Properties.Name)
	fmt.Fprintf(w, "Author:    %s\n", p.Properties.Author)
	fmt.Fprintf(w, "Created:   %s\n", p.Properties.Created.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Objects:   %d\n", m.Len())
	fmt.Fprintf(w, "Groups:    %d\n", len(m.Groups()))
	fmt.Fprintf(w, "Materials: %d\n", len(m.Materials()))
	fmt.Fprintf(w, "Channels:  %d\n", len(p.Animation.Channels))
	fmt.Fprintln(w)

	objs := m.Objects()
	sort.SliceStable(objs, func(i, j int) bool { return objs[i].Name() < objs[j].Name() })
	for _, o := range objs {
		kind := "mesh"
		if _, ok := o.(*model.CubeObject); ok {
			kind = "cube"
		}
		hidden := ""
		if !m.IsVisible(o.Ref()) {
			hidden = " (hidden)"
		}
		lo, hi := o.Mesh().TransformMatrix(m.GlobalMatrix(o.Ref(), nil)).Bounds()
		fmt.Fprintf(w, "  %-20s %-4s %3d faces  %v .. %v%s\n", o.Name(), kind, len(o.Mesh().Faces), lo, hi, hidden)
	}
}

func cmdImport(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: import <file.obj> <project>", errUsage)
	}

	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	s := editor.New(project.New(name, "", model.New()), editor.OptionsFromConfig(cfg))
	if err := s.ImportOBJ(ctx, args[0]); err != nil {
		return err
	}
	if err := s.Save(args[1]); err != nil {
		return err
	}
	fmt.Printf("Imported %d objects into %s\n", s.Model().Len(), args[1])
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: export <project> <file.obj> [uv.png]", errUsage)
	}

	p, err := project.Load(args[0])
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		return writeOBJ(args[1], p.Model, importer.ExportOptions{Scale: cfg.Export.Scale})
	})
	if len(args) > 2 {
		g.Go(func() error {
			size := 4 * cfg.Editor.TextureSize
			return importer.WriteImage(args[2], importer.RenderUVTemplate(p.Model, nil, size, size))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Exported %d objects to %s\n", p.Model.Len(), args[1])
	return nil
}

func writeOBJ(path string, m *model.Model, opts importer.ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	err = importer.ExportOBJ(m, opts).Write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func cmdUVMap(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("uvmap", flag.ExitOnError)
	size := fs.Int("size", 4*cfg.Editor.TextureSize, "Image width and height in pixels")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("%w: uvmap [-size N] <project> <uv.png>", errUsage)
	}

	p, err := project.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	return importer.WriteImage(fs.Arg(1), importer.RenderUVTemplate(p.Model, nil, *size, *size))
}

func cmdNew(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	name := fs.String("name", "", "Project name (default: file name)")
	author := fs.String("author", "", "Project author")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("%w: new [-name N] [-author A] <project>", errUsage)
	}
	path := fs.Arg(0)
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s := editor.New(project.New(*name, *author, model.New()), editor.OptionsFromConfig(cfg))
	s.AddCube("cube", math.Splat(16), math.Vec3{X: -8, Z: -8})
	return s.Save(path)
}

func cmdEdit(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: edit <project> <op> <object> <args...>", errUsage)
	}
	path, op, name := args[0], args[1], args[2]
	nums, err := parseFloats(args[3:])
	if err != nil {
		return err
	}

	s := editor.New(project.New("", "", model.New()), editor.OptionsFromConfig(cfg))
	if err := s.Load(path); err != nil {
		return err
	}

	var refs selection.Objects
	for _, o := range s.Model().Objects() {
		if o.Name() == name {
			refs = append(refs, o.Ref())
		}
	}
	if len(refs) == 0 {
		return fmt.Errorf("no object named %q in %s", name, path)
	}
	if err := s.Select(refs); err != nil {
		return err
	}

	switch {
	case op == "translate" && len(nums) == 3:
		err = s.Translate(math.Vec3{X: nums[0], Y: nums[1], Z: nums[2]})
	case op == "rotate" && len(nums) == 3:
		q := math.QuatFromEulerDegrees(nums[0], nums[1], nums[2])
		err = s.Rotate(center(s.Model(), refs), q)
	case op == "scale" && len(nums) == 4:
		err = s.Scale(math.Vec3{X: nums[0], Y: nums[1], Z: nums[2]}, nums[3])
	default:
		return fmt.Errorf("%w: edit %s with %d numbers", errUsage, op, len(nums))
	}
	if err != nil {
		return err
	}

	logger.Named("edit").Debug("objects edited",
		zap.String("op", op),
		zap.String("object", name),
		zap.Int("count", len(refs)))
	return s.Save(path)
}

// center returns the middle of the world-space bounds of refs.
func center(m *model.Model, refs []model.ObjectRef) math.Vec3 {
	var lo, hi math.Vec3
	for i, ref := range refs {
		o, _ := m.Object(ref)
		l, h := o.Mesh().TransformMatrix(m.GlobalMatrix(ref, nil)).Bounds()
		if i == 0 {
			lo, hi = l, h
			continue
		}
		lo, hi = lo.Min(l), hi.Max(h)
	}
	return lo.Add(hi).Scale(0.5)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, a)
		}
		out[i] = f
	}
	return out, nil
}
