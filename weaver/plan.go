package weaver

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"
)

// class is how a type gets its injection call.
type class int

const (
	classPlain class = iota
	classObject
	classAsset
)

// plan is everything the weaver will change in one package.
type plan struct {
	pkg         *Package
	edits       map[*File][]edit
	imports     map[*File]string // inject import alias to add
	register    []string
	activations []activation
	woven       []string
	warnings    []string
}

// activation is a method synthesized in the generated file.
type activation struct {
	Type   string
	Method string
	Chain  string // embedded field whose activation is called after injecting
}

func (pl *plan) add(f *File, e edit) {
	if pl.edits == nil {
		pl.edits = make(map[*File][]edit)
	}
	e.seq = len(pl.edits[f])
	pl.edits[f] = append(pl.edits[f], e)
}

func (pl *plan) warn(format string, args ...any) {
	pl.warnings = append(pl.warnings, fmt.Sprintf(format, args...))
}

// planPackage decides the edits for p. It never writes.
func (w *Weaver) planPackage(p *Package) (*plan, error) {
	pl := &plan{pkg: p}
	synth := make(map[string]bool) // types whose activation is generated

	for _, ti := range p.Types {
		if ti.File.Generated {
			continue
		}
		tagged := hasTag(ti.Struct, w.config.Tag)
		service, err := embeds(ti.Def, w.config.ServiceMarker)
		if err != nil {
			return nil, err
		}
		if !tagged && !service {
			continue
		}
		if ti.Generic {
			pl.warn("generic type %s.%s is not woven", p.Path, ti.Name)
			continue
		}
		pl.register = append(pl.register, ti.Name)
		if !tagged {
			continue
		}

		cls, err := w.classify(ti)
		if err != nil {
			return nil, err
		}
		switch cls {
		case classPlain:
			n, err := w.planConstructors(pl, ti)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				pl.warn("type %s.%s has no constructor returning *%s; callers must inject it", p.Path, ti.Name, ti.Name)
				continue
			}
		default:
			method := w.config.ObjectActivation
			if cls == classAsset {
				method = w.config.AssetActivation
			}
			existing := p.method(ti.Name, method)
			if existing == nil {
				synth[ti.Name] = true
				pl.activations = append(pl.activations, activation{Type: ti.Name, Method: method})
				break
			}
			if err := w.planMethod(pl, ti, existing); err != nil {
				return nil, err
			}
		}
		pl.woven = append(pl.woven, ti.Name)
	}

	for i := range pl.activations {
		a := &pl.activations[i]
		a.Chain = w.chainField(p, p.byName[a.Type], a.Method, synth)
	}
	return pl, nil
}

// classify checks the asset base first: an asset is never treated as an
// object even when both are embedded.
func (w *Weaver) classify(ti *TypeInfo) (class, error) {
	ok, err := InheritsFrom(ti.Def, w.config.AssetType)
	if err != nil || ok {
		return classAsset, err
	}
	ok, err = InheritsFrom(ti.Def, w.config.ObjectType)
	if err != nil || ok {
		return classObject, err
	}
	return classPlain, nil
}

// planMethod puts the injection call in front of an existing activation method.
func (w *Weaver) planMethod(pl *plan, ti *TypeInfo, fi *FuncInfo) error {
	decl := fi.Decl
	if fi.File.Generated {
		return ErrSplice.WithMsgf("%s.%s is declared in generated file %s", ti.Name, decl.Name.Name, fi.File.Path)
	}
	if _, pointer := receiverType(decl); !pointer {
		return ErrValueReceiver.WithMsgf("%s.%s must have a pointer receiver to be woven", ti.Name, decl.Name.Name).
			WithData("file", fi.File.Path)
	}
	if decl.Body == nil {
		return ErrSplice.WithMsgf("%s.%s has no body", ti.Name, decl.Name.Name)
	}

	field := decl.Recv.List[0]
	recv := ""
	if len(field.Names) > 0 && field.Names[0].Name != "_" {
		recv = field.Names[0].Name
	}
	if recv != "" && w.alreadyInjects(decl.Body, fi.File, recv) {
		return nil
	}
	prefix := w.qualifier(pl, fi.File)

	fset := pl.pkg.Fset
	if recv == "" {
		recv = freshName(decl, "woven")
		if len(field.Names) > 0 {
			name := field.Names[0]
			pl.add(fi.File, edit{pos: offset(fset, name.Pos()), end: offset(fset, name.End()), text: recv})
		} else {
			pos := offset(fset, field.Type.Pos())
			pl.add(fi.File, edit{pos: pos, end: pos, text: recv + " "})
		}
	}

	call := prefix + "Inject(" + recv + ")"
	if len(decl.Body.List) == 0 {
		pos := offset(fset, decl.Body.Lbrace) + 1
		pl.add(fi.File, edit{pos: pos, end: pos, text: "\n" + call + "\n"})
	} else {
		pos := offset(fset, decl.Body.List[0].Pos())
		pl.add(fi.File, edit{pos: pos, end: pos, text: call + "\n"})
	}
	return nil
}

// alreadyInjects reports whether the first statement is Inject(recv).
func (w *Weaver) alreadyInjects(body *ast.BlockStmt, f *File, recv string) bool {
	if len(body.List) == 0 {
		return false
	}
	stmt, ok := body.List[0].(*ast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 || !w.isInjectFunc(call.Fun, f, "Inject") {
		return false
	}
	arg, ok := call.Args[0].(*ast.Ident)
	return ok && arg.Name == recv
}

// isInjectFunc reports whether fun names the function name of the inject
// package as imported by f.
func (w *Weaver) isInjectFunc(fun ast.Expr, f *File, name string) bool {
	local := importName(f.AST, w.config.InjectImport)
	switch e := fun.(type) {
	case *ast.Ident:
		return local == "." && e.Name == name
	case *ast.SelectorExpr:
		x, ok := e.X.(*ast.Ident)
		return ok && local != "" && x.Name == local && e.Sel.Name == name
	}
	return false
}

// planConstructors wraps every allocation of ti inside functions whose first
// result is *ti. An address-of expression returned directly, such as
// "return &s", is wrapped as well. A constructor left with nothing wrapped,
// already woven or delegated to another constructor fails the run. It returns
// the number of constructors found.
func (w *Weaver) planConstructors(pl *plan, ti *TypeInfo) (int, error) {
	p := pl.pkg
	ctors := make(map[string]bool)
	for _, fi := range p.funcs {
		if returnsPointerTo(fi.Decl, ti.Name) {
			ctors[fi.Decl.Name.Name] = true
		}
	}

	found := 0
	for _, fi := range p.funcs {
		decl := fi.Decl
		if decl.Type.Results == nil || len(decl.Type.Results.List) == 0 || decl.Body == nil {
			continue
		}
		first := decl.Type.Results.List[0].Type
		if fi.File.Generated {
			if ctors[decl.Name.Name] {
				pl.warn("constructor %s of %s.%s is in a generated file and is not woven", decl.Name.Name, p.Path, ti.Name)
			}
			continue
		}
		if isTypeRef(first, ti.Name) {
			return found, ErrValueConstructor.WithMsgf("%s returns %s by value; return *%s so it can be injected",
				decl.Name.Name, ti.Name, ti.Name).WithData("file", fi.File.Path)
		}
		if !ctors[decl.Name.Name] {
			continue
		}
		found++

		covered := 0
		skip := make(map[ast.Node]bool)
		for _, ret := range topLevelReturns(decl.Body) {
			if len(ret.Results) == 0 {
				continue
			}
			switch e := ret.Results[0].(type) {
			case *ast.UnaryExpr:
				if _, lit := e.X.(*ast.CompositeLit); e.Op == token.AND && !lit {
					w.wrap(pl, fi.File, e)
					skip[e] = true
					covered++
				}
			case *ast.CallExpr:
				if id, ok := e.Fun.(*ast.Ident); ok && id.Name != decl.Name.Name && ctors[id.Name] {
					covered++
				}
			}
		}
		ast.Inspect(decl.Body, func(n ast.Node) bool {
			switch e := n.(type) {
			case *ast.CallExpr:
				if len(e.Args) == 1 && w.isInjectFunc(e.Fun, fi.File, "Woven") {
					skip[e.Args[0]] = true
					covered++
					return true
				}
				if skip[e] || !isNewOf(e, ti.Name) {
					return true
				}
				w.wrap(pl, fi.File, e)
				covered++
			case *ast.UnaryExpr:
				if skip[e] || e.Op != token.AND {
					return true
				}
				lit, ok := e.X.(*ast.CompositeLit)
				if !ok || !isTypeRef(lit.Type, ti.Name) {
					return true
				}
				w.wrap(pl, fi.File, e)
				covered++
			}
			return true
		})
		if covered == 0 {
			return found, ErrSplice.WithMsgf("constructor %s allocates no %s the weaver can wrap; return &%s{...}, new(%s) or &v",
				decl.Name.Name, ti.Name, ti.Name, ti.Name).WithData("file", fi.File.Path)
		}
	}
	return found, nil
}

func returnsPointerTo(decl *ast.FuncDecl, name string) bool {
	if decl.Type.Results == nil || len(decl.Type.Results.List) == 0 {
		return false
	}
	star, ok := decl.Type.Results.List[0].Type.(*ast.StarExpr)
	return ok && isTypeRef(star.X, name)
}

// topLevelReturns lists the return statements of body, skipping those of
// nested function literals.
func topLevelReturns(body *ast.BlockStmt) []*ast.ReturnStmt {
	var out []*ast.ReturnStmt
	ast.Inspect(body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			out = append(out, s)
		}
		return true
	})
	return out
}

func (w *Weaver) wrap(pl *plan, f *File, n ast.Node) {
	fset := pl.pkg.Fset
	start, end := offset(fset, n.Pos()), offset(fset, n.End())
	pl.add(f, edit{pos: start, end: start, text: w.qualifier(pl, f) + "Woven("})
	pl.add(f, edit{pos: end, end: end, text: ")"})
}

// chainField returns the embedded field whose activation method the
// synthesized one must keep calling, or "".
func (w *Weaver) chainField(p *Package, ti *TypeInfo, method string, synth map[string]bool) string {
	for _, f := range ti.Struct.Fields.List {
		if len(f.Names) != 0 {
			continue
		}
		name := embeddedName(f.Type)
		if isLocalRef(f.Type) && (synth[name] || p.method(name, method) != nil) {
			return name
		}
	}
	if p.named == nil {
		return ""
	}
	named := p.named(ti.Name)
	if named == nil {
		return ""
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return ""
	}
	// Methods declared in the output file are being regenerated and do not count.
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Embedded() {
			continue
		}
		ft := field.Type()
		if _, ok := ft.(*types.Pointer); !ok {
			ft = types.NewPointer(ft)
		}
		obj, _, _ := types.LookupFieldOrMethod(ft, true, named.Obj().Pkg(), method)
		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		if fn.Pkg() == named.Obj().Pkg() && filepath.Base(p.Fset.Position(fn.Pos()).Filename) == w.config.Output {
			continue
		}
		return field.Name()
	}
	return ""
}

// qualifier returns the prefix for calls into the inject package in f and
// records the import to add when f lacks one.
func (w *Weaver) qualifier(pl *plan, f *File) string {
	switch name := importName(f.AST, w.config.InjectImport); name {
	case ".":
		return ""
	case "", "_":
		if alias, ok := pl.imports[f]; ok {
			return alias + "."
		}
		alias := freeAlias(pl.pkg, f, w.config.InjectAlias)
		if pl.imports == nil {
			pl.imports = make(map[*File]string)
		}
		pl.imports[f] = alias
		return alias + "."
	default:
		return name + "."
	}
}

// freeAlias returns base, or base followed by a number, usable as an
// import name in f. f may be nil for a file that does not exist yet.
func freeAlias(p *Package, f *File, base string) string {
	alias := base
	for i := 2; ; i++ {
		clash := p.declared[alias] || p.scope[alias]
		if f != nil {
			_, imported := importPathOf(f.AST, alias)
			clash = clash || imported
		}
		if !clash {
			return alias
		}
		alias = base + strconv.Itoa(i)
	}
}

func isTypeRef(expr ast.Expr, name string) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name == name
	case *ast.IndexExpr:
		return isTypeRef(e.X, name)
	case *ast.IndexListExpr:
		return isTypeRef(e.X, name)
	case *ast.ParenExpr:
		return isTypeRef(e.X, name)
	}
	return false
}

func isNewOf(call *ast.CallExpr, name string) bool {
	fun, ok := call.Fun.(*ast.Ident)
	return ok && fun.Name == "new" && len(call.Args) == 1 && isTypeRef(call.Args[0], name)
}

// embeddedName is the implicit field name of an embedded type expression.
func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	}
	return ""
}

func isLocalRef(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return isLocalRef(e.X)
	case *ast.Ident:
		return true
	case *ast.IndexExpr:
		return isLocalRef(e.X)
	case *ast.IndexListExpr:
		return isLocalRef(e.X)
	}
	return false
}

// freshName returns base, or base followed by a number, unused in decl.
func freshName(decl *ast.FuncDecl, base string) string {
	used := make(map[string]bool)
	ast.Inspect(decl, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			used[id.Name] = true
		}
		return true
	})
	name := base
	for i := 2; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	return name
}

func offset(fset *token.FileSet, pos token.Pos) int {
	return fset.File(pos).Offset(pos)
}
