// Package codegen emits the Go source through which a kernel build embeds
// its boot payload and opens the application registry over it.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"path/filepath"
	"strings"
	"text/template"
)

var ErrInvalidOptions = errors.New("invalid codegen options")

const sourceTemplate = `// Code generated by bootpack gen. DO NOT EDIT.

package {{.Package}}

import (
	_ "embed"

	"github.com/microkern/bootpack/lib/registry"
)

//go:embed {{.PayloadPath}}
var {{.Var}} []byte

// {{.Func}} parses the embedded boot payload into the application registry.
func {{.Func}}() (*registry.Registry, error) {
	return registry.FromBytes({{.Var}})
}
`

var tmpl = template.Must(template.New("embed").Parse(sourceTemplate))

// Options configure the generated source file.
type Options struct {
	Package     string // package clause, required
	PayloadPath string // go:embed pattern relative to the generated file, required
	Var         string // embedded variable name, "bootPayload" when empty
	Func        string // accessor function name, "LoadRegistry" when empty
}

// Generate writes the embedding source described by opts to out. The output
// is gofmt-formatted; generation fails if the options would not produce
// compilable Go.
func Generate(out io.Writer, opts Options) error {
	if opts.Var == "" {
		opts.Var = "bootPayload"
	}
	if opts.Func == "" {
		opts.Func = "LoadRegistry"
	}
	if err := validate(opts); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	if _, err := out.Write(src); err != nil {
		return fmt.Errorf("write generated source: %w", err)
	}
	return nil
}

func validate(opts Options) error {
	if !token.IsIdentifier(opts.Package) {
		return fmt.Errorf("%w: package %q is not an identifier", ErrInvalidOptions, opts.Package)
	}
	if !token.IsIdentifier(opts.Var) {
		return fmt.Errorf("%w: var %q is not an identifier", ErrInvalidOptions, opts.Var)
	}
	if !token.IsIdentifier(opts.Func) {
		return fmt.Errorf("%w: func %q is not an identifier", ErrInvalidOptions, opts.Func)
	}
	if opts.PayloadPath == "" || filepath.IsAbs(opts.PayloadPath) || strings.Contains(opts.PayloadPath, "..") {
		return fmt.Errorf("%w: embed path %q must be relative to the generated file", ErrInvalidOptions, opts.PayloadPath)
	}
	return nil
}
