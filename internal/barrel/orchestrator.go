package barrel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"barrelgen/internal/classify"
	"barrelgen/internal/config"
	"barrelgen/internal/match"
)

// DefaultOutputFile is the conventional typed barrel filename.
const DefaultOutputFile = "index.ts"

// Options configures one orchestrator run.
type Options struct {
	OutputFile string // barrel filename; DefaultOutputFile when empty
	Recursive  bool   // process subdirectories leaf-first
	Wildcard   bool   // blanket re-exports instead of named
	NoSubdirs  bool   // skip subdirectories entirely
	DryRun     bool   // print barrels to Stdout instead of writing

	// Stdout receives dry-run previews; defaults to os.Stdout.
	Stdout io.Writer
}

// Orchestrator walks directories, classifies their source files, and writes
// barrel files. The filesystem is abstracted behind afero so tests can run
// against an in-memory tree; on-disk barrel files double as the completion
// markers consulted by parent directories during recursive runs.
type Orchestrator struct {
	fs     afero.Fs
	reg    *classify.Registry
	log    *zap.Logger
	opts   Options
	render RenderOptions
}

// New returns an Orchestrator over fs using the given classifier registry.
func New(fs afero.Fs, reg *classify.Registry, log *zap.Logger, opts Options) *Orchestrator {
	if opts.OutputFile == "" {
		opts.OutputFile = DefaultOutputFile
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Orchestrator{
		fs:   fs,
		reg:  reg,
		log:  log,
		opts: opts,
		render: RenderOptions{
			Wildcard:    opts.Wildcard,
			TypedTarget: TypedTarget(opts.OutputFile),
		},
	}
}

// Process generates the barrel for dir (and, in recursive mode, for every
// descendant first, leaf-first). It returns the number of re-export sources
// contributing to dir's own barrel. A missing or non-directory target is the
// only fatal condition.
func (o *Orchestrator) Process(dir string) (int, error) {
	info, err := o.fs.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("target directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("target %s is not a directory", dir)
	}
	return o.processDir(dir)
}

func (o *Orchestrator) processDir(dir string) (int, error) {
	excludes := config.Load(o.fs, dir, o.log)

	entries, err := afero.ReadDir(o.fs, dir)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", dir, err)
	}

	// Partition the snapshot into candidate files and subdirectories,
	// applying exclusions to both. The output file and the sidecar config
	// are never inputs.
	var files, subdirs []string
	for _, e := range entries {
		name := e.Name()
		if match.Matches(name, excludes.Patterns) {
			continue
		}
		if e.IsDir() {
			if !o.opts.NoSubdirs {
				subdirs = append(subdirs, name)
			}
			continue
		}
		if name == o.opts.OutputFile || name == config.SidecarName {
			continue
		}
		if o.reg.Handles(name) {
			files = append(files, name)
		}
	}

	// Leaf-first: descendants must have written their barrels before this
	// directory checks for them. Excluded subdirectories are not visited.
	if o.opts.Recursive {
		for _, sub := range subdirs {
			if _, err := o.processDir(filepath.Join(dir, sub)); err != nil {
				return 0, err
			}
		}
	}

	if len(files) == 0 && len(subdirs) == 0 {
		o.log.Warn("nothing to export, skipping", zap.String("dir", dir))
		return 0, nil
	}

	// A subdirectory contributes only if it already carries a barrel.
	var withBarrel []string
	for _, sub := range subdirs {
		marker := filepath.Join(dir, sub, o.opts.OutputFile)
		if ok, _ := afero.Exists(o.fs, marker); ok {
			withBarrel = append(withBarrel, sub)
		}
	}

	planFiles := make([]File, 0, len(files))
	for _, name := range files {
		path := filepath.Join(dir, name)
		set := o.classifyFile(path)
		module := strings.TrimSuffix(name, filepath.Ext(name))
		planFiles = append(planFiles, File{Module: module, Set: set})
	}

	lines := Assemble(withBarrel, planFiles, o.render)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	out := filepath.Join(dir, o.opts.OutputFile)
	if o.opts.DryRun {
		fmt.Fprintf(o.opts.Stdout, "// %s\n%s", out, content)
	} else {
		if err := afero.WriteFile(o.fs, out, []byte(content), 0644); err != nil {
			return 0, fmt.Errorf("writing %s: %w", out, err)
		}
	}

	count := len(planFiles) + len(withBarrel)
	o.log.Info("barrel generated",
		zap.String("path", out),
		zap.Int("sources", count),
		zap.Bool("dry_run", o.opts.DryRun))
	return count, nil
}

// classifyFile reads and classifies one source file. Any failure degrades to
// a nil set, which renders as the wildcard fallback; it never aborts the
// directory.
func (o *Orchestrator) classifyFile(path string) *classify.ExportSet {
	src, err := afero.ReadFile(o.fs, path)
	if err != nil {
		o.log.Warn("could not read source, using wildcard fallback",
			zap.String("file", path), zap.Error(err))
		return nil
	}
	set, err := o.reg.Classify(path, src)
	if err != nil {
		o.log.Warn("parse failed, using wildcard fallback",
			zap.String("file", path), zap.Error(err))
		return nil
	}
	return set
}
