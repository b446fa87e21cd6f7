package weaver

import (
	"go/ast"
	"go/types"
)

// opaqueDef is a type the weaver knows only by name.
type opaqueDef string

func (d opaqueDef) FullName() string          { return string(d) }
func (d opaqueDef) Bases() ([]TypeDef, error) { return nil, nil }

// typesDef is backed by go/types.
type typesDef struct {
	named *types.Named
}

func fullNameOf(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

func (d typesDef) FullName() string { return fullNameOf(d.named.Obj()) }

func (d typesDef) Bases() ([]TypeDef, error) {
	under := d.named.Underlying()
	if b, ok := under.(*types.Basic); ok && b.Kind() == types.Invalid {
		return nil, ErrUnresolvedType.WithMsgf("type %s has invalid metadata", d.FullName())
	}
	st, ok := under.(*types.Struct)
	if !ok {
		return nil, nil
	}
	var bases []TypeDef
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		t := types.Unalias(f.Type())
		if ptr, ok := t.(*types.Pointer); ok {
			t = types.Unalias(ptr.Elem())
		}
		switch nt := t.(type) {
		case *types.Named:
			bases = append(bases, typesDef{named: nt.Origin()})
		case *types.Basic:
			if nt.Kind() == types.Invalid {
				return nil, ErrUnresolvedType.WithMsgf("embedded field %s of %s has invalid metadata", f.Name(), d.FullName())
			}
		}
	}
	return bases, nil
}

// syntaxDef is backed by the AST of a single package.
type syntaxDef struct {
	pkg  *Package
	info *TypeInfo
}

func (d *syntaxDef) FullName() string { return d.pkg.Path + "." + d.info.Name }

func (d *syntaxDef) Bases() ([]TypeDef, error) {
	var bases []TypeDef
	for _, f := range d.info.Struct.Fields.List {
		if len(f.Names) != 0 {
			continue
		}
		def, err := d.pkg.resolveExpr(d.info.File, f.Type)
		if err != nil {
			return nil, err
		}
		if def != nil {
			bases = append(bases, def)
		}
	}
	return bases, nil
}

// resolveExpr names the type an embedded field expression refers to.
// Predeclared types resolve to nil.
func (p *Package) resolveExpr(f *File, expr ast.Expr) (TypeDef, error) {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return p.resolveExpr(f, e.X)
	case *ast.ParenExpr:
		return p.resolveExpr(f, e.X)
	case *ast.IndexExpr:
		return p.resolveExpr(f, e.X)
	case *ast.IndexListExpr:
		return p.resolveExpr(f, e.X)
	case *ast.Ident:
		if ti, ok := p.byName[e.Name]; ok {
			return ti.Def, nil
		}
		if p.declared[e.Name] {
			return opaqueDef(p.Path + "." + e.Name), nil
		}
		if types.Universe.Lookup(e.Name) != nil {
			return nil, nil
		}
		return nil, ErrUnresolvedType.WithMsgf("identifier %s is not declared in package %s", e.Name, p.Path)
	case *ast.SelectorExpr:
		x, ok := e.X.(*ast.Ident)
		if !ok {
			break
		}
		path, ok := importPathOf(f.AST, x.Name)
		if !ok {
			return nil, ErrUnresolvedType.WithMsgf("package qualifier %s is not imported in %s", x.Name, f.Path)
		}
		return opaqueDef(path + "." + e.Sel.Name), nil
	}
	return nil, ErrUnresolvedType.WithMsgf("unsupported embedded field in %s", f.Path)
}
