package compiler

import (
	"fmt"
	"log/slog"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/config"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/frontend/yamlsrc"
	"github.com/funvibe/rectype/internal/modules"
)

// Unit is a decoded compilation unit. Errors holds front-end diagnostics;
// declarations that failed to decode are absent from Files and Specs.
type Unit struct {
	Files  []*ast.File
	Specs  []*ast.SpecFile
	Errors []*diagnostics.DiagnosticError
}

// LoadUnit reads the sources and specs listed by p. Unit files without a
// module key belong to the module named after the project.
func LoadUnit(p *config.Project, logger *slog.Logger) (*Unit, error) {
	sources, err := p.SourceFiles()
	if err != nil {
		return nil, err
	}
	specFiles, err := p.SpecFiles()
	if err != nil {
		return nil, err
	}

	var (
		unit Unit
		errs diagnostics.Set
	)
	for _, path := range sources {
		f, ferrs, err := yamlsrc.LoadUnit(path, ast.ModuleID(p.Name))
		if err != nil {
			return nil, err
		}
		errs.AddAll(ferrs)
		unit.Files = append(unit.Files, f)
	}

	specs := yamlsrc.NewSpecLoader(logger)
	for _, path := range specFiles {
		s, err := specs.Load(path)
		if err != nil {
			return nil, err
		}
		unit.Specs = append(unit.Specs, s)
	}
	errs.AddAll(specs.Errors())
	unit.Errors = errs.Sorted()
	return &unit, nil
}

// OpenStore opens the project's module store and registers its version
// requirements.
func OpenStore(p *config.Project, logger *slog.Logger) (*modules.Store, error) {
	store, err := modules.OpenStore(p.Path(p.Store), logger)
	if err != nil {
		return nil, err
	}
	for id, constraint := range p.Requires {
		if err := store.Require(ast.ModuleID(id), constraint); err != nil {
			store.Close()
			return nil, fmt.Errorf("requires[%s]: %w", id, err)
		}
	}
	return store, nil
}
