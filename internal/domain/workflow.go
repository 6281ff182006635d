package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/schemata/internal/adapter"
	"gooze.dev/pkg/schemata/internal/controller"
	m "gooze.dev/pkg/schemata/internal/model"
	"gooze.dev/pkg/schemata/pkg/activation"
)

var (
	// ErrNoModule is returned when the loaded packages belong to no module.
	ErrNoModule = errors.New("packages do not belong to a module")
	// ErrMultipleModules is returned when the loaded packages span modules.
	ErrMultipleModules = errors.New("packages span more than one module")
	// ErrUnknownMutant is returned by View for ids missing from the manifest.
	ErrUnknownMutant = errors.New("unknown mutant")
)

const (
	// DefaultOutput is the directory receiving the injection artefacts.
	DefaultOutput = ".schemata"

	runtimePackage = "schemataactivation"
	runtimeDir     = "internal/" + runtimePackage
	runtimeFile    = "state.go"
	shadowDir      = "files"
	manifestFile   = "mutants.yaml"
	overlayFile    = "overlay.json"

	defaultDebounce = 300 * time.Millisecond
)

// ListArgs selects the packages and mutation types to consider.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Types   []m.MutationType
}

// InjectArgs configures an injection session.
type InjectArgs struct {
	ListArgs
	Output  m.Path
	Threads int
}

// ViewArgs selects the mutants to show from a manifest.
type ViewArgs struct {
	Manifest m.Path
	IDs      []int
}

// Workflow drives the orchestrator over whole Go modules.
type Workflow interface {
	// List reports the mutants the given packages would receive.
	List(ctx context.Context, args ListArgs) error
	// Inject writes instrumented copies of the packages, a go build overlay
	// and a manifest describing every mutant.
	Inject(ctx context.Context, args InjectArgs) error
	// View shows the source diff of mutants recorded in a manifest.
	View(ctx context.Context, args ViewArgs) error
	// Watch injects, then injects again whenever a source file changes,
	// until ctx is done.
	Watch(ctx context.Context, args InjectArgs) error
}

type workflow struct {
	adapter.PackageLoader
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.Watcher
	controller.UI

	debounce time.Duration
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	loader adapter.PackageLoader,
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	watcher adapter.Watcher,
	ui controller.UI,
) Workflow {
	return &workflow{
		PackageLoader:   loader,
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		Watcher:         watcher,
		UI:              ui,
		debounce:        defaultDebounce,
	}
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	p, err := w.plan(ctx, args)

	var records []m.Record
	if err == nil {
		records = p.records()
	}

	if displayErr := w.DisplayMutants(ctx, records, err); displayErr != nil {
		return fmt.Errorf("list: %w", displayErr)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) Inject(ctx context.Context, args InjectArgs) error {
	_, err := w.runInject(ctx, args)
	return err
}

func (w *workflow) runInject(ctx context.Context, args InjectArgs) (m.Manifest, error) {
	if err := w.Start(ctx, controller.WithInjectMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return m.Manifest{}, err
	}

	defer w.Close(ctx)

	manifest, err := w.inject(ctx, args)
	if err != nil {
		slog.Error("Injection failed", "error", err)
		return m.Manifest{}, err
	}

	w.DisplayInjected(ctx, manifest)
	w.Wait(ctx)

	return manifest, nil
}

func (w *workflow) inject(ctx context.Context, args InjectArgs) (m.Manifest, error) {
	p, err := w.plan(ctx, args.ListArgs)
	if err != nil {
		return m.Manifest{}, err
	}

	output, err := w.AbsPath(outputDir(args.Output))
	if err != nil {
		return m.Manifest{}, fmt.Errorf("resolve output: %w", err)
	}

	shadowRoot := w.JoinPath(string(output), shadowDir)
	if err := w.RemoveAll(shadowRoot); err != nil {
		return m.Manifest{}, fmt.Errorf("clean %s: %w", shadowRoot, err)
	}

	files, err := w.writeShadows(ctx, p, shadowRoot, args.Threads)
	if err != nil {
		return m.Manifest{}, fmt.Errorf("write instrumented files: %w", err)
	}

	runtimeShadow := w.JoinPath(string(output), "runtime", runtimeFile)
	if err := w.WriteFile(runtimeShadow, RuntimeSource(runtimePackage), 0o600); err != nil {
		return m.Manifest{}, fmt.Errorf("write runtime: %w", err)
	}

	overlay := m.Overlay{Replace: make(map[string]string, len(files)+1)}
	for i, f := range p.files {
		overlay.Replace[string(f.abs)] = string(files[i].Shadow)
	}

	overlay.Replace[string(w.JoinPath(string(p.moduleDir), runtimeDir, runtimeFile))] = string(runtimeShadow)

	overlayPath := w.JoinPath(string(output), overlayFile)
	if err := w.SaveOverlay(overlayPath, overlay); err != nil {
		return m.Manifest{}, fmt.Errorf("save overlay: %w", err)
	}

	manifest := m.Manifest{
		Version:       m.ManifestVersion,
		Session:       uuid.NewString(),
		Module:        p.module,
		ModuleDir:     p.moduleDir,
		RuntimeImport: p.runtimeImport,
		EnvVar:        activation.EnvVar,
		Overlay:       overlayPath,
		Files:         files,
		Mutants:       p.records(),
	}

	if err := w.SaveManifest(w.JoinPath(string(output), manifestFile), manifest); err != nil {
		return m.Manifest{}, fmt.Errorf("save manifest: %w", err)
	}

	slog.Info("Injected mutants", "session", manifest.Session, "files", len(files), "mutants", len(manifest.Mutants))

	return manifest, nil
}

// writeShadows renders the instrumented files in parallel. Output trees are
// never modified after Mutate returns, so concurrent printing is safe.
func (w *workflow) writeShadows(ctx context.Context, p plan, shadowRoot m.Path, threads int) ([]m.InstrumentedFile, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	files := make([]m.InstrumentedFile, len(p.files))

	var done atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, f := range p.files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			src, err := renderFile(f.tree.Fset, f.file)
			if err != nil {
				return fmt.Errorf("render %s: %w", f.tree.Path, err)
			}

			shadow := w.JoinPath(string(shadowRoot), string(f.tree.Path))
			if err := w.WriteFile(shadow, src, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", shadow, err)
			}

			hash, err := w.HashFile(f.abs)
			if err != nil {
				return fmt.Errorf("hash %s: %w", f.abs, err)
			}

			files[i] = m.InstrumentedFile{
				Path:    f.tree.Path,
				Shadow:  shadow,
				Hash:    hash,
				Alias:   f.alias,
				Mutants: len(f.mutants),
			}

			w.DisplayProgress(ctx, int(done.Add(1)), len(p.files), f.tree.Path)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func renderFile(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// RuntimeSource returns the activation runtime renamed to package name.
func RuntimeSource(name string) []byte {
	src := bytes.Replace(activation.Source, []byte("\npackage activation\n"), []byte("\npackage "+name+"\n"), 1)

	return bytes.Replace(src, []byte("// Package activation "), []byte("// Package "+name+" "), 1)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	manifest, err := w.LoadManifest(args.Manifest)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	ids := args.IDs
	if len(ids) == 0 {
		for _, r := range manifest.Mutants {
			ids = append(ids, r.ID)
		}
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	shadows := make(map[m.Path]shadowSource)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, ok := manifest.Record(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownMutant, id)
		}

		diff, err := w.diff(manifest, record, shadows)
		if err != nil {
			return fmt.Errorf("mutant %d: %w", id, err)
		}

		w.DisplayDiff(ctx, record, diff)
	}

	w.Wait(ctx)

	return nil
}

type shadowSource struct {
	file     m.InstrumentedFile
	src      []byte
	original []byte
}

func (w *workflow) diff(manifest m.Manifest, record m.Record, cache map[m.Path]shadowSource) (string, error) {
	shadow, ok := cache[record.File]
	if !ok {
		file, found := manifest.File(record.File)
		if !found {
			return "", fmt.Errorf("%w: no instrumented file %s", ErrUnknownMutant, record.File)
		}

		src, err := w.ReadFile(file.Shadow)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file.Shadow, err)
		}

		original, err := Materialize(src, file.Alias, manifest.RuntimeImport, NoActiveMutant)
		if err != nil {
			return "", err
		}

		shadow = shadowSource{file: file, src: src, original: original}
		cache[record.File] = shadow
	}

	mutated, err := Materialize(shadow.src, shadow.file.Alias, manifest.RuntimeImport, record.ID)
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(shadow.original)),
		B:        difflib.SplitLines(string(mutated)),
		FromFile: "a/" + string(record.File),
		ToFile:   "b/" + string(record.File),
		Context:  3,
	})
}

func (w *workflow) Watch(ctx context.Context, args InjectArgs) error {
	manifest, err := w.runInject(ctx, args)
	if err != nil {
		return err
	}

	output, err := w.AbsPath(outputDir(args.Output))
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}

	changes, err := w.Watcher.Watch(ctx, []m.Path{manifest.ModuleDir}, output)
	if err != nil {
		return fmt.Errorf("watch %s: %w", manifest.ModuleDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}

			w.settle(ctx, changes)

			if ctx.Err() != nil {
				return nil
			}

			slog.Info("Re-injecting after change", "path", path)

			if _, err := w.runInject(ctx, args); err != nil {
				slog.Error("Re-injection failed", "path", path, "error", err)
			}
		}
	}
}

// settle absorbs further changes until none arrives for the debounce delay.
func (w *workflow) settle(ctx context.Context, changes <-chan m.Path) {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case _, ok := <-changes:
			if !ok {
				return
			}

			timer.Reset(w.debounce)
		}
	}
}

// ManifestPath returns the manifest location inside an output directory.
func ManifestPath(output m.Path) m.Path {
	return m.Path(filepath.Join(string(outputDir(output)), manifestFile))
}

func outputDir(output m.Path) m.Path {
	if output == "" {
		return DefaultOutput
	}

	return output
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		out = append(out, re)
	}

	return out, nil
}
