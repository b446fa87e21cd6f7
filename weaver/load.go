package weaver

import (
	"context"
	"errors"
	"go/build"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// loadTypes loads patterns with go/packages.
func (w *Weaver) loadTypes(ctx context.Context, dir string, patterns []string) ([]*Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
	}
	loaded, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	var errs []error
	var out []*Package
	for _, lp := range loaded {
		failed := false
		for _, e := range lp.Errors {
			// A stale generated file must not block its own regeneration.
			if w.inOutput(e.Pos) {
				continue
			}
			errs = append(errs, e)
			failed = true
		}
		if failed || lp.Types == nil {
			continue
		}
		p, err := w.fromPackages(lp)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(errs) > 0 {
		return nil, ErrLoad.Wrap(errors.Join(errs...))
	}
	return out, nil
}

// inOutput reports whether a "file:line:col" position is in a generated file
// of the weaver.
func (w *Weaver) inOutput(pos string) bool {
	file := pos
	for range 3 {
		if filepath.Base(file) == w.config.Output {
			return true
		}
		i := strings.LastIndexByte(file, ':')
		if i <= 0 {
			break
		}
		file = file[:i]
	}
	return false
}

func (w *Weaver) fromPackages(lp *packages.Package) (*Package, error) {
	p := &Package{Path: lp.PkgPath, Name: lp.Name, Fset: lp.Fset}
	goFiles := make(map[string]bool, len(lp.GoFiles))
	for _, name := range lp.GoFiles {
		goFiles[name] = true
		if p.Dir == "" {
			p.Dir = filepath.Dir(name)
		}
	}
	for _, f := range lp.Syntax {
		name := lp.Fset.Position(f.Package).Filename
		if !goFiles[name] {
			continue
		}
		src, err := os.ReadFile(name)
		if err != nil {
			return nil, ErrLoad.Wrap(err)
		}
		p.Files = append(p.Files, &File{Path: name, Src: src, AST: f})
	}

	scope := lp.Types.Scope()
	p.named = func(name string) *types.Named {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			return nil
		}
		named, _ := types.Unalias(tn.Type()).(*types.Named)
		return named
	}

	p.index(w.config.Output)
	for _, ti := range p.Types {
		if named := p.named(ti.Name); named != nil {
			ti.Def = typesDef{named: named}
		} else {
			ti.Def = opaqueDef(p.Path + "." + ti.Name)
		}
	}
	return p, nil
}

// loadSyntax parses directories without type checking. A pattern ending in
// "/..." includes every package below it.
func (w *Weaver) loadSyntax(ctx context.Context, dir string, patterns []string) ([]*Package, error) {
	var dirs []string
	for _, pattern := range patterns {
		root, recursive := strings.CutSuffix(pattern, "/...")
		if pattern == "..." {
			root, recursive = ".", true
		}
		if !filepath.IsAbs(root) {
			root = filepath.Join(dir, root)
		}
		if !recursive {
			dirs = append(dirs, root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != root && (name == "testdata" || name == "vendor" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, ErrLoad.Wrap(err)
		}
	}
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)

	var out []*Package
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := w.parseDir(d, len(dirs) == 1)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// parseDir returns nil for a directory without Go files.
func (w *Weaver) parseDir(dir string, single bool) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}
	p := &Package{Dir: dir, Fset: token.NewFileSet()}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if ok, err := build.Default.MatchFile(dir, name); err != nil || !ok {
			continue
		}
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, ErrLoad.Wrap(err)
		}
		f, err := parser.ParseFile(p.Fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, ErrLoad.Wrap(err)
		}
		if p.Name == "" {
			p.Name = f.Name.Name
		} else if p.Name != f.Name.Name {
			return nil, ErrLoad.WithMsgf("directory %s mixes packages %s and %s", dir, p.Name, f.Name.Name)
		}
		p.Files = append(p.Files, &File{Path: path, Src: src, AST: f})
	}
	if len(p.Files) == 0 {
		return nil, nil
	}

	if single && w.config.ImportPath != "" {
		p.Path = w.config.ImportPath
	} else if p.Path, err = modulePackagePath(dir); err != nil {
		return nil, err
	}

	p.index(w.config.Output)
	for _, ti := range p.Types {
		ti.Def = &syntaxDef{pkg: p, info: ti}
	}
	return p, nil
}

// modulePackagePath derives an import path from the nearest go.mod.
func modulePackagePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", ErrLoad.Wrap(err)
	}
	for root := abs; ; {
		data, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err == nil {
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", ErrLoad.WithMsgf("%s/go.mod has no module directive", root)
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return "", ErrLoad.Wrap(err)
			}
			if rel == "." {
				return mod, nil
			}
			return mod + "/" + filepath.ToSlash(rel), nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", ErrLoad.WithMsgf("no go.mod above %s; set an import path", dir)
		}
		root = parent
	}
}
