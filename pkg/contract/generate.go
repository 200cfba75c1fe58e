package contract

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
)

var clientTemplate = template.Must(template.New("client").Parse(`// Code generated by {{.Command}}. DO NOT EDIT.

package {{.Package}}

import (
{{- range .StdImports}}
	{{printf "%q" .}}
{{- end}}
{{if .ModImports}}
{{range .ModImports}}	{{printf "%q" .}}
{{end}}{{end}})
{{range .Methods}}
// {{.Name}} calls {{.Method}} {{.Path}}.
{{- if .Summary}}
// {{.Summary}}
{{- end}}
func (c *Client) {{.Name}}(ctx context.Context
	{{- range .Params}}, {{.}} string{{end}}
	{{- if .QueryType}}, q {{.QueryType}}{{end}}
	{{- if .InputType}}, in {{.InputType}}{{end}}
	{{- if .Upload}}, filename string, file io.Reader{{end}}) ({{if .OutputType}}{{.OutputType}}, {{end}}error) {
	{{- if .QueryType}}
	v := url.Values{}
	{{- range .QueryLines}}
	{{.}}
	{{- end}}
	{{- end}}
	{{- if .OutputType}}
	var out {{.OutputType}}
	{{- end}}
	{{- if .Upload}}
	err := c.upload(ctx, {{.MethodExpr}}, {{.PathExpr}}, {{printf "%q" .Upload}}, filename, file, {{if .OutputType}}&out{{else}}nil{{end}})
	{{- else}}
	err := c.do(ctx, {{.MethodExpr}}, {{.PathExpr}}, {{if .QueryType}}v{{else}}nil{{end}}, {{if .InputType}}in{{else}}nil{{end}}, {{if .OutputType}}&out{{else}}nil{{end}})
	{{- end}}
	return {{if .OutputType}}out, {{end}}err
}
{{end}}`))

type fileData struct {
	Package    string
	Command    string
	StdImports []string
	ModImports []string
	Methods    []methodData
}

type methodData struct {
	Name       string
	Method     string
	Path       string
	Summary    string
	MethodExpr string
	PathExpr   string
	Params     []string
	QueryType  string
	QueryLines []string
	InputType  string
	OutputType string
	Upload     string
}

// Generate writes gofmt-ed Go source declaring one *Client method per
// endpoint. The target package must provide Client with do and upload.
func Generate(w io.Writer, opts Options, eps []Endpoint) error {
	if len(eps) == 0 {
		return ErrNoEndpoints
	}
	if opts.Package == "" {
		opts.Package = "client"
	}
	if opts.Command == "" {
		opts.Command = "contractgen"
	}

	imports := map[string]struct{}{"context": {}}
	seen := make(map[string]struct{}, len(eps))
	data := fileData{Package: opts.Package, Command: opts.Command}
	var errs []error

	for _, ep := range eps {
		if !token.IsIdentifier(ep.Name) || !token.IsExported(ep.Name) {
			errs = append(errs, fmt.Errorf("%w: %q (%s %s)", ErrInvalidName, ep.Name, ep.Method, ep.Path))
			continue
		}
		if _, dup := seen[ep.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateName, ep.Name))
			continue
		}
		seen[ep.Name] = struct{}{}

		m, err := buildMethod(ep, imports)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ep.Name, err))
			continue
		}
		data.Methods = append(data.Methods, m)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for p := range imports {
		if isStdlib(p) {
			data.StdImports = append(data.StdImports, p)
		} else {
			data.ModImports = append(data.ModImports, p)
		}
	}
	slices.Sort(data.StdImports)
	slices.Sort(data.ModImports)

	var buf bytes.Buffer
	if err := clientTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("contract: render: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	_, err = w.Write(src)
	return err
}

// isStdlib reports whether the first element of an import path lacks a dot,
// as goimports does when grouping.
func isStdlib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func buildMethod(ep Endpoint, imports map[string]struct{}) (methodData, error) {
	m := methodData{
		Name:       ep.Name,
		Method:     ep.Method,
		Path:       ep.Path,
		Summary:    strings.ReplaceAll(ep.Summary, "\n", " "),
		MethodExpr: methodExpr(ep.Method),
		Upload:     ep.Upload,
	}

	if strings.HasPrefix(m.MethodExpr, "http.") {
		imports["net/http"] = struct{}{}
	}

	var err error
	m.PathExpr, m.Params, err = pathExpr(ep.Path, imports)
	if err != nil {
		return m, err
	}
	if ep.Query != nil {
		imports["net/url"] = struct{}{}
		m.QueryType = typeExpr(ep.Query.Type, imports)
		for _, f := range ep.Query.Fields {
			line, err := queryLine(f, imports)
			if err != nil {
				return m, err
			}
			m.QueryLines = append(m.QueryLines, line)
		}
	}
	if ep.Input != nil {
		m.InputType = typeExpr(ep.Input.Type, imports)
	}
	if ep.Output != nil {
		m.OutputType = typeExpr(ep.Output, imports)
	}
	if ep.Upload != "" {
		imports["io"] = struct{}{}
	}
	return m, nil
}

func methodExpr(method string) string {
	switch method {
	case http.MethodGet:
		return "http.MethodGet"
	case http.MethodPost:
		return "http.MethodPost"
	case http.MethodPut:
		return "http.MethodPut"
	case http.MethodPatch:
		return "http.MethodPatch"
	case http.MethodDelete:
		return "http.MethodDelete"
	}
	return fmt.Sprintf("%q", method)
}

// reserved are the identifiers generated methods already use.
var reserved = map[string]bool{
	"c": true, "ctx": true, "q": true, "in": true, "v": true,
	"out": true, "err": true, "file": true, "filename": true,
}

// pathExpr turns "/posts/{id}/schedule" into
// "/posts/" + url.PathEscape(id) + "/schedule".
func pathExpr(p string, imports map[string]struct{}) (string, []string, error) {
	var (
		parts  []string
		params []string
		lit    strings.Builder
	)
	for {
		start := strings.IndexByte(p, '{')
		if start < 0 {
			lit.WriteString(p)
			break
		}
		end := strings.IndexByte(p[start:], '}')
		if end < 0 {
			return "", nil, fmt.Errorf("contract: unbalanced braces in %q", p)
		}
		lit.WriteString(p[:start])
		if lit.Len() > 0 {
			parts = append(parts, fmt.Sprintf("%q", lit.String()))
			lit.Reset()
		}
		name, _, _ := strings.Cut(p[start+1:start+end], ":")
		ident := paramIdent(name)
		params = append(params, ident)
		parts = append(parts, "url.PathEscape("+ident+")")
		imports["net/url"] = struct{}{}
		p = p[start+end+1:]
	}
	if lit.Len() > 0 {
		parts = append(parts, fmt.Sprintf("%q", lit.String()))
	}
	if len(parts) == 0 {
		return `"/"`, nil, nil
	}
	return strings.Join(parts, " + "), params, nil
}

func paramIdent(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = b.Len() > 0
			continue
		}
		if b.Len() == 0 {
			r = unicode.ToLower(r)
		} else if upper {
			r = unicode.ToUpper(r)
		}
		upper = false
		b.WriteRune(r)
	}
	ident := b.String()
	if ident == "" || !token.IsIdentifier(ident) || reserved[ident] {
		ident += "Param"
	}
	if !unicode.IsLetter([]rune(ident)[0]) {
		ident = "p" + ident
	}
	return ident
}

var timeType = reflect.TypeFor[time.Time]()

// queryLine emits the statement that adds one field to v. Zero values of
// non-pointer fields are skipped so server-side defaults apply.
func queryLine(f schema.Field, imports map[string]struct{}) (string, error) {
	name := fmt.Sprintf("%q", f.Name)
	sel := "q." + f.GoName

	if f.Optional() {
		enc, err := encodeExpr("*"+sel, f.Base(), imports)
		if err != nil {
			return "", fmt.Errorf("%w: %s %s", err, f.GoName, f.Type)
		}
		return fmt.Sprintf("if %s != nil {\n\t\tv.Set(%s, %s)\n\t}", sel, name, enc), nil
	}

	t := f.Type
	if t.Kind() == reflect.Slice && t != timeType {
		enc, err := encodeExpr("item", t.Elem(), imports)
		if err != nil {
			return "", fmt.Errorf("%w: %s %s", err, f.GoName, t)
		}
		return fmt.Sprintf("for _, item := range %s {\n\t\tv.Add(%s, %s)\n\t}", sel, name, enc), nil
	}

	enc, err := encodeExpr(sel, t, imports)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s", err, f.GoName, t)
	}
	var cond string
	switch {
	case t == timeType:
		cond = "!" + sel + ".IsZero()"
	case t.Kind() == reflect.String:
		cond = sel + ` != ""`
	case t.Kind() == reflect.Bool:
		cond = sel
	default:
		cond = sel + " != 0"
	}
	return fmt.Sprintf("if %s {\n\t\tv.Set(%s, %s)\n\t}", cond, name, enc), nil
}

func encodeExpr(expr string, t reflect.Type, imports map[string]struct{}) (string, error) {
	if t == timeType {
		imports["time"] = struct{}{}
		return "(" + expr + ").Format(time.RFC3339)", nil
	}
	switch t.Kind() {
	case reflect.String:
		if t.PkgPath() == "" {
			return expr, nil
		}
		return "string(" + expr + ")", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		imports["strconv"] = struct{}{}
		return "strconv.FormatInt(int64(" + expr + "), 10)", nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		imports["strconv"] = struct{}{}
		return "strconv.FormatUint(uint64(" + expr + "), 10)", nil
	case reflect.Float32, reflect.Float64:
		imports["strconv"] = struct{}{}
		return "strconv.FormatFloat(float64(" + expr + "), 'f', -1, 64)", nil
	case reflect.Bool:
		imports["strconv"] = struct{}{}
		return "strconv.FormatBool(bool(" + expr + "))", nil
	}
	return "", ErrUnsupported
}

// typeExpr renders t as package-qualified Go and records its imports.
func typeExpr(t reflect.Type, imports map[string]struct{}) string {
	collectImports(t, imports)
	return t.String()
}

func collectImports(t reflect.Type, imports map[string]struct{}) {
	if t.Name() != "" {
		if t.PkgPath() != "" {
			imports[t.PkgPath()] = struct{}{}
		}
		return
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		collectImports(t.Elem(), imports)
	case reflect.Map:
		collectImports(t.Key(), imports)
		collectImports(t.Elem(), imports)
	}
}
