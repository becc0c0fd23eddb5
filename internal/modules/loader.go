package modules

import (
	"fmt"

	"github.com/funvibe/rectype/internal/ast"
)

// Loader provides previously compiled modules. Types it returns are fully
// resolved and finite.
type Loader interface {
	LoadModule(id ast.ModuleID) (*Module, error)
}

// ResolveError reports that a module could not be loaded.
type ResolveError struct {
	Module ast.ModuleID
	Err    error
}

func (e *ResolveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unable to resolve module %s", e.Module)
	}
	return fmt.Sprintf("unable to resolve module %s: %v", e.Module, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// MemoryLoader serves modules held in memory.
type MemoryLoader struct {
	modules map[ast.ModuleID]*Module
}

func NewMemoryLoader(mods ...*Module) *MemoryLoader {
	l := &MemoryLoader{modules: make(map[ast.ModuleID]*Module)}
	for _, m := range mods {
		l.Add(m)
	}
	return l
}

func (l *MemoryLoader) Add(m *Module) { l.modules[m.ID] = m }

func (l *MemoryLoader) LoadModule(id ast.ModuleID) (*Module, error) {
	if m, ok := l.modules[id]; ok {
		return m, nil
	}
	return nil, &ResolveError{Module: id}
}

// CachingLoader memoizes the modules (and failures) of another loader, so
// repeated loads within one compilation return the same value.
type CachingLoader struct {
	next   Loader
	loaded map[ast.ModuleID]*Module
	failed map[ast.ModuleID]error
}

func NewCachingLoader(next Loader) *CachingLoader {
	return &CachingLoader{
		next:   next,
		loaded: make(map[ast.ModuleID]*Module),
		failed: make(map[ast.ModuleID]error),
	}
}

func (l *CachingLoader) LoadModule(id ast.ModuleID) (*Module, error) {
	if m, ok := l.loaded[id]; ok {
		return m, nil
	}
	if err, ok := l.failed[id]; ok {
		return nil, err
	}
	m, err := l.next.LoadModule(id)
	if err != nil {
		l.failed[id] = err
		return nil, err
	}
	l.loaded[id] = m
	return m, nil
}

// ChainLoader tries each loader in turn and returns the first module found.
type ChainLoader []Loader

func (c ChainLoader) LoadModule(id ast.ModuleID) (*Module, error) {
	var last error = &ResolveError{Module: id}
	for _, l := range c {
		m, err := l.LoadModule(id)
		if err == nil {
			return m, nil
		}
		last = err
	}
	return nil, last
}
