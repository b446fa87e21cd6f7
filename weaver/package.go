package weaver

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// Package is one loaded Go package.
type Package struct {
	Path  string
	Name  string
	Dir   string
	Fset  *token.FileSet
	Files []*File
	// Types lists declared struct types in source order.
	Types []*TypeInfo

	byName   map[string]*TypeInfo
	declared map[string]bool // every top-level type name
	scope    map[string]bool // other top-level names
	methods  map[string][]*FuncInfo
	funcs    []*FuncInfo

	// named is set in types mode.
	named func(name string) *types.Named
}

// File is a source file of a package.
type File struct {
	Path      string
	Src       []byte
	AST       *ast.File
	Generated bool // never woven; covers the weaver's own output
	Output    bool // the weaver's own output file
}

// TypeInfo is a declared struct type.
type TypeInfo struct {
	Name    string
	File    *File
	Spec    *ast.TypeSpec
	Struct  *ast.StructType
	Def     TypeDef
	Generic bool
}

// FuncInfo is a top-level function or method declaration.
type FuncInfo struct {
	Decl *ast.FuncDecl
	File *File
}

// index collects types, methods and functions. Declarations in the
// weaver's own output file are ignored since that file is regenerated.
func (p *Package) index(output string) {
	p.byName = make(map[string]*TypeInfo)
	p.declared = make(map[string]bool)
	p.scope = make(map[string]bool)
	p.methods = make(map[string][]*FuncInfo)

	for _, f := range p.Files {
		f.Output = filepath.Base(f.Path) == output
		f.Generated = f.Output || ast.IsGenerated(f.AST)
		if f.Output {
			continue
		}
		for _, decl := range f.AST.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					for _, spec := range d.Specs {
						if vs, ok := spec.(*ast.ValueSpec); ok {
							for _, name := range vs.Names {
								p.scope[name.Name] = true
							}
						}
					}
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					p.declared[ts.Name.Name] = true
					st, ok := ts.Type.(*ast.StructType)
					if !ok || ts.Assign.IsValid() {
						continue
					}
					ti := &TypeInfo{
						Name:    ts.Name.Name,
						File:    f,
						Spec:    ts,
						Struct:  st,
						Generic: ts.TypeParams != nil && len(ts.TypeParams.List) > 0,
					}
					p.Types = append(p.Types, ti)
					p.byName[ti.Name] = ti
				}
			case *ast.FuncDecl:
				fi := &FuncInfo{Decl: d, File: f}
				if d.Recv == nil {
					p.scope[d.Name.Name] = true
					p.funcs = append(p.funcs, fi)
					continue
				}
				if name, _ := receiverType(d); name != "" {
					p.methods[name] = append(p.methods[name], fi)
				}
			}
		}
	}
}

// method returns the declaration of name on the type called typeName.
func (p *Package) method(typeName, name string) *FuncInfo {
	for _, m := range p.methods[typeName] {
		if m.Decl.Name.Name == name {
			return m
		}
	}
	return nil
}

// receiverType returns the base type name of a method receiver and whether
// the receiver is a pointer.
func receiverType(d *ast.FuncDecl) (string, bool) {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return "", false
	}
	expr := d.Recv.List[0].Type
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name, pointer
	case *ast.IndexExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}

// hasTag reports whether any field of st carries the struct tag key.
func hasTag(st *ast.StructType, key string) bool {
	for _, f := range st.Fields.List {
		if f.Tag == nil {
			continue
		}
		raw, err := strconv.Unquote(f.Tag.Value)
		if err != nil {
			continue
		}
		if _, ok := reflect.StructTag(raw).Lookup(key); ok {
			return true
		}
	}
	return false
}

// importName returns the local name under which f imports path, or "" if
// it does not. Dot and blank imports are returned as is.
func importName(f *ast.File, path string) string {
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != path {
			continue
		}
		if spec.Name != nil {
			return spec.Name.Name
		}
		return guessPackageName(p)
	}
	return ""
}

// importPathOf resolves a package qualifier used in f.
func importPathOf(f *ast.File, qualifier string) (string, bool) {
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := guessPackageName(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == qualifier {
			return p, true
		}
	}
	return "", false
}

// guessPackageName applies the usual conventions: last element, skipping a
// major version suffix and dropping ".vN" and "go-" decorations.
func guessPackageName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
