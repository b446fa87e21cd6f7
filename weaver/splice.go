package weaver

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"sort"

	"golang.org/x/tools/go/ast/astutil"
)

// edit replaces src[pos:end] with text. pos == end inserts.
type edit struct {
	pos, end int
	text     string
	seq      int
}

// applyEdits works back to front so earlier offsets stay valid. Insertions
// at the same offset keep the order they were planned in.
func applyEdits(src []byte, edits []edit) ([]byte, error) {
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].pos != sorted[j].pos {
			return sorted[i].pos > sorted[j].pos
		}
		return sorted[i].seq > sorted[j].seq
	})

	out := append([]byte(nil), src...)
	limit := len(src)
	for _, e := range sorted {
		if e.pos < 0 || e.end < e.pos || e.end > limit {
			return nil, fmt.Errorf("edit [%d,%d) overlaps another edit or is out of range", e.pos, e.end)
		}
		var buf bytes.Buffer
		buf.Grow(len(out) + len(e.text))
		buf.Write(out[:e.pos])
		buf.WriteString(e.text)
		buf.Write(out[e.end:])
		out = buf.Bytes()
		limit = e.pos
	}
	return out, nil
}

// splice applies edits to f, adds the inject import under alias when alias
// is set, and formats the result.
func (w *Weaver) splice(f *File, edits []edit, alias string) ([]byte, error) {
	src, err := applyEdits(f.Src, edits)
	if err != nil {
		return nil, ErrSplice.Wrap(err).WithData("file", f.Path)
	}

	fset := token.NewFileSet()
	file, perr := parser.ParseFile(fset, f.Path, src, parser.ParseComments)
	if perr != nil {
		return nil, ErrSplice.Wrap(perr).WithData("file", f.Path)
	}
	if alias != "" {
		name := alias
		if alias == guessPackageName(w.config.InjectImport) {
			name = ""
		}
		astutil.AddNamedImport(fset, file, name, w.config.InjectImport)
	}

	var buf bytes.Buffer
	if ferr := format.Node(&buf, fset, file); ferr != nil {
		return nil, ErrSplice.Wrap(ferr).WithData("file", f.Path)
	}
	return buf.Bytes(), nil
}
