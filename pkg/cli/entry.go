package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/rectype/internal/compiler"
	"github.com/funvibe/rectype/internal/config"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/pipeline"
	"github.com/funvibe/rectype/internal/watch"
)

const usage = `usage: rectype <command> [flags] [project...]

Commands:
  check     type check each project and report diagnostics
  dump      check, then print expanded terms, published types and signatures
  publish   check, then write the modules of each project to its store
  watch     check, then check again whenever a source file changes
  version   print the rectype version

A project is a directory containing rectype.yaml (or below one), or the
path of a rectype.yaml file. Without projects the current directory is used.

Flags:
  -log-level string   override the log level of the project files
`

// Run executes the command line and exits.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Main runs one command and returns the process exit code: 0 on success,
// 1 when diagnostics were reported and 2 on usage or I/O errors.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "-v", "-version", "--version", "version":
		fmt.Fprintln(stdout, "rectype "+config.Version)
		return 0
	case "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	case "check", "dump", "publish", "watch":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "", "override the log level of the project files")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	projects, err := loadProjects(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}
	logger, err := newLogger(stderr, *logLevel, projects[0].LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}

	out := newPrinter(stdout)
	switch cmd {
	case "check":
		return report(out, stderr, runAll(ctx, projects, logger, false))
	case "dump":
		results := runAll(ctx, projects, logger, false)
		for _, r := range results {
			if r.ctx != nil {
				out.dump(r.project, r.ctx)
			}
		}
		return report(out, stderr, results)
	case "publish":
		return report(out, stderr, runAll(ctx, projects, logger, true))
	case "watch":
		return watchProjects(ctx, out, stderr, projects, logger)
	}
	return 2
}

func loadProjects(args []string) ([]*config.Project, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var projects []*config.Project
	for _, arg := range args {
		path := arg
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			found, err := config.FindConfig(arg)
			if err != nil {
				return nil, err
			}
			if found == "" {
				return nil, fmt.Errorf("no %s found in %s or its parents", config.ConfigFileNames[0], arg)
			}
			path = found
		}
		p, err := config.LoadProject(path)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func newLogger(w io.Writer, override, fromProject string) (*slog.Logger, error) {
	name := fromProject
	if override != "" {
		name = override
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// result is the outcome of one project.
type result struct {
	project *config.Project
	ctx     *pipeline.PipelineContext
	mods    []*modules.Module
	err     error
}

// runAll checks every project concurrently, one goroutine per compilation
// unit. Results are in project order.
func runAll(ctx context.Context, projects []*config.Project, logger *slog.Logger, publish bool) []result {
	results := make([]result, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range projects {
		g.Go(func() error {
			results[i] = runProject(gctx, p, logger.With("project", p.Name), publish)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runProject(ctx context.Context, p *config.Project, logger *slog.Logger, publish bool) result {
	r := result{project: p}
	store, err := compiler.OpenStore(p, logger)
	if err != nil {
		r.err = err
		return r
	}
	defer store.Close()

	unit, err := compiler.LoadUnit(p, logger)
	if err != nil {
		r.err = err
		return r
	}
	r.ctx = compiler.New(modules.NewCachingLoader(store), logger).Compile(unit)
	if publish && !r.ctx.HasErrors() {
		r.mods, r.err = compiler.Publish(ctx, store, r.ctx, p.Version)
	}
	return r
}

// report prints diagnostics and published modules and computes the exit
// code of a batch of results.
func report(out *printer, stderr io.Writer, results []result) int {
	code := 0
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(stderr, "Error (%s): %s\n", r.project.Name, r.err)
			code = 2
			continue
		}
		out.diagnostics(r.ctx.Errors)
		if r.ctx.HasErrors() {
			if code == 0 {
				code = 1
			}
			continue
		}
		for _, m := range r.mods {
			out.published(m)
		}
	}
	if code == 0 {
		out.ok(len(results))
	}
	return code
}

func watchProjects(ctx context.Context, out *printer, stderr io.Writer, projects []*config.Project, logger *slog.Logger) int {
	code := report(out, stderr, runAll(ctx, projects, logger, false))

	var dirs []string
	for _, p := range projects {
		files, err := p.SourceFiles()
		if err == nil {
			specs, serr := p.SpecFiles()
			if serr == nil {
				files = append(files, specs...)
			}
		}
		for _, f := range files {
			dirs = append(dirs, filepath.Dir(f))
		}
		dirs = append(dirs, p.Dir)
	}
	sort.Strings(dirs)

	w, err := watch.New(dirs, watch.DefaultDebounce, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}
	defer w.Close()

	err = w.Run(ctx, func(changed []string) {
		logger.Info("sources changed", "files", len(changed))
		code = report(out, stderr, runAll(ctx, projects, logger, false))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}
	return code
}
