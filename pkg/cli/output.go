package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/compiler"
	"github.com/funvibe/rectype/internal/config"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/pipeline"
	"github.com/funvibe/rectype/internal/typesystem"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiBold  = "\033[1m"
)

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, color: colorEnabled(w)}
}

// colorEnabled reports whether w is a terminal that accepts ANSI colors.
func colorEnabled(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) diagnostics(errs []*diagnostics.DiagnosticError) {
	for _, e := range errs {
		fmt.Fprintf(p.w, "%s: %s %s\n", e.Pos, p.paint(ansiRed, "["+string(e.Code)+"]"), e.Msg)
	}
}

func (p *printer) published(m *modules.Module) {
	fmt.Fprintf(p.w, "published %s@%s (build %s): %d types, %d functions\n",
		m.ID, m.Version, m.BuildID, len(m.Types), len(m.Methods))
}

func (p *printer) ok(projects int) {
	noun := "project"
	if projects != 1 {
		noun += "s"
	}
	fmt.Fprintln(p.w, p.paint(ansiGreen, fmt.Sprintf("ok: %d %s checked", projects, noun)))
}

// dump prints the expanded terms, published types and function signatures
// of a compiled project, each sorted by name.
func (p *printer) dump(proj *config.Project, ctx *pipeline.PipelineContext) {
	fmt.Fprintln(p.w, p.paint(ansiBold, "# "+proj.Name))

	if len(ctx.Terms) > 0 {
		fmt.Fprintln(p.w, "terms:")
		names := make([]string, 0, len(ctx.Terms))
		for name := range ctx.Terms {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(p.w, "  %s = %s\n", name, ctx.Terms[name])
		}
	}

	if len(ctx.Published) > 0 {
		fmt.Fprintln(p.w, "types:")
		keys := make([]ast.NameID, 0, len(ctx.Published))
		for key := range ctx.Published {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, key := range keys {
			fmt.Fprintf(p.w, "  %s = %s\n", key, typesystem.Readable(ctx.Published[key]))
		}
	}

	mods := compiler.Modules(ctx, proj.Version)
	var sigs []string
	for _, m := range mods {
		for _, name := range m.MethodNames() {
			for _, fn := range m.Methods[name] {
				sigs = append(sigs, fmt.Sprintf("  %s:%s %s", m.ID, name, typesystem.Readable(fn)))
			}
		}
	}
	if len(sigs) > 0 {
		fmt.Fprintln(p.w, "functions:")
		fmt.Fprintln(p.w, strings.Join(sigs, "\n"))
	}
}
