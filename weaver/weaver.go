// Package weaver rewrites Go sources so that injection runs before any
// other code sees a new object.
//
// Types with `inject` tagged fields get an Inject call at the top of their
// activation method (Awake for scene objects, OnEnable for assets) or, for
// plain types, around every allocation in their constructors. Each package
// also gets a generated file registering its service and injectable types
// with the runtime injector.
package weaver

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KOMKZ/go-yogan-inject/config"
	"github.com/KOMKZ/go-yogan-inject/errcode"
	"github.com/KOMKZ/go-yogan-inject/logger"
)

// Weaver runs over package patterns. It is safe to reuse across runs.
type Weaver struct {
	config  Config
	dir     string
	log     *logger.CtxZapLogger
	metrics *Metrics
}

// Report summarizes a run. Written lists files that were (or, in a dry
// run, would have been) written.
type Report struct {
	Packages   int
	Written    []string
	Removed    []string
	Registered int
	Woven      int
	Warnings   []string
	DryRun     bool
}

// Option configures New.
type Option func(*Weaver)

func WithConfig(cfg Config) Option {
	return func(w *Weaver) { w.config = cfg }
}

// WithDir resolves patterns relative to dir instead of the working directory.
func WithDir(dir string) Option {
	return func(w *Weaver) { w.dir = dir }
}

func WithLogger(log *logger.CtxZapLogger) Option {
	return func(w *Weaver) { w.log = log }
}

// WithMeter enables run metrics on meter.
func WithMeter(meter metric.Meter) Option {
	return func(w *Weaver) {
		if m, err := newMetrics(meter); err == nil {
			w.metrics = m
		}
	}
}

func New(opts ...Option) (*Weaver, error) {
	w := &Weaver{config: DefaultConfig()}
	for _, opt := range opts {
		opt(w)
	}
	if err := config.ValidateAll(w.config); err != nil {
		return nil, err
	}
	if w.log == nil {
		w.log = logger.GetLogger("weaver")
	}
	return w, nil
}

func (w *Weaver) Config() Config {
	return w.config
}

// output is a file produced by planning.
type output struct {
	path string
	data []byte
}

// result is the outcome of planning one package.
type result struct {
	plan    *plan
	outputs []output
	stale   string
}

// Run loads patterns, plans every package and then writes the results.
// A planning error in any package fails the run before anything is written.
func (w *Weaver) Run(ctx context.Context, patterns ...string) (report *Report, err error) {
	start := time.Now()
	defer func() { w.metrics.recordRun(ctx, time.Since(start), err) }()

	if len(patterns) == 0 {
		patterns = []string{"./..."}
		if w.config.Mode == ModeSyntax {
			patterns = []string{"."}
		}
	}

	var pkgs []*Package
	if w.config.Mode == ModeSyntax {
		pkgs, err = w.loadSyntax(ctx, w.dir, patterns)
	} else {
		pkgs, err = w.loadTypes(ctx, w.dir, patterns)
	}
	if err != nil {
		return nil, err
	}

	results := make([]*result, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)
	for i, p := range pkgs {
		if p.Path == w.config.InjectImport {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := w.weavePackage(p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report = &Report{DryRun: w.config.DryRun}
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := w.commit(ctx, r, report); err != nil {
			return report, err
		}
	}
	sort.Strings(report.Written)
	w.metrics.recordReport(ctx, report)
	w.log.InfoCtx(ctx, "weaver finished",
		zap.Int("packages", report.Packages),
		zap.Int("files", len(report.Written)),
		zap.Int("registered", report.Registered),
		zap.Int("woven", report.Woven),
		zap.Bool("dry_run", report.DryRun),
	)
	return report, nil
}

// weavePackage plans p and renders every changed file in memory.
func (w *Weaver) weavePackage(p *Package) (*result, error) {
	pl, err := w.planPackage(p)
	if err != nil {
		return nil, wrapPackage(err, p)
	}
	r := &result{plan: pl}

	for _, f := range p.Files {
		edits := pl.edits[f]
		if len(edits) == 0 {
			continue
		}
		data, err := w.splice(f, edits, pl.imports[f])
		if err != nil {
			return nil, wrapPackage(err, p)
		}
		if !bytes.Equal(data, f.Src) {
			r.outputs = append(r.outputs, output{path: f.Path, data: data})
		}
	}

	gen, err := w.generate(pl)
	if err != nil {
		return nil, wrapPackage(err, p)
	}
	genPath := filepath.Join(p.Dir, w.config.Output)
	var existing *File
	for _, f := range p.Files {
		if f.Output {
			existing = f
		}
	}
	switch {
	case gen == nil && existing != nil:
		r.stale = genPath
	case gen != nil && (existing == nil || !bytes.Equal(gen, existing.Src)):
		r.outputs = append(r.outputs, output{path: genPath, data: gen})
	}
	return r, nil
}

func (w *Weaver) commit(ctx context.Context, r *result, report *Report) error {
	pl := r.plan
	report.Packages++
	report.Registered += len(pl.register)
	report.Woven += len(pl.woven)
	for _, msg := range pl.warnings {
		w.log.WarnCtx(ctx, msg, zap.String("package", pl.pkg.Path))
		report.Warnings = append(report.Warnings, msg)
	}

	for _, out := range r.outputs {
		if !w.config.DryRun {
			if err := writeFileAtomic(out.path, out.data); err != nil {
				return err
			}
		}
		w.log.InfoCtx(ctx, "woven file", zap.String("file", out.path), zap.Bool("dry_run", w.config.DryRun))
		report.Written = append(report.Written, out.path)
	}

	if r.stale != "" {
		removed := true
		if !w.config.DryRun {
			var err error
			if removed, err = removeIfExists(r.stale); err != nil {
				return err
			}
		}
		if removed {
			w.log.InfoCtx(ctx, "removed stale generated file", zap.String("file", r.stale))
			report.Removed = append(report.Removed, r.stale)
		}
	}
	return nil
}

func wrapPackage(err error, p *Package) error {
	var le *errcode.LayeredError
	if errors.As(err, &le) {
		return le.WithData("package", p.Path)
	}
	return err
}
