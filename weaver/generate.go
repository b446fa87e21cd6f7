package weaver

import (
	"bytes"
	"go/format"
	"text/template"
)

var genTemplate = template.Must(template.New("gen").Parse(`// Code generated by injweave. DO NOT EDIT.

package {{.Package}}

import (
	{{if ne .Reflect "reflect"}}{{.Reflect}} {{end}}"reflect"

	{{.ImportName}}"{{.InjectImport}}"
)

func init() {
	{{.Inject}}.Register(
{{- range .Types}}
		{{$.Reflect}}.TypeFor[{{.}}](),
{{- end}}
	)
}
{{range .Activations}}
func (woven *{{.Type}}) {{.Method}}() {
	{{$.Inject}}.Inject(woven)
{{- if .Chain}}
	woven.{{.Chain}}.{{.Method}}()
{{- end}}
}
{{end}}`))

type genData struct {
	Package      string
	Reflect      string
	Inject       string
	InjectImport string
	ImportName   string // explicit import name, with a trailing space
	Types        []string
	Activations  []activation
}

// generate renders the registration file for pl, or nil when the package
// needs none.
func (w *Weaver) generate(pl *plan) ([]byte, error) {
	if len(pl.register) == 0 && len(pl.activations) == 0 {
		return nil, nil
	}
	data := genData{
		Package:      pl.pkg.Name,
		Reflect:      freeAlias(pl.pkg, nil, "reflect"),
		Inject:       freeAlias(pl.pkg, nil, w.config.InjectAlias),
		InjectImport: w.config.InjectImport,
		Types:        pl.register,
		Activations:  pl.activations,
	}

	if data.Inject != guessPackageName(data.InjectImport) {
		data.ImportName = data.Inject + " "
	}

	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, data); err != nil {
		return nil, ErrGenerate.Wrap(err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, ErrGenerate.Wrap(err).WithData("package", pl.pkg.Path)
	}
	return out, nil
}
