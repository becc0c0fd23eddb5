package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Project represents a rectype.yaml compilation unit description.
type Project struct {
	// Name is the unit name; it is the module ID under which the unit is published.
	Name string `yaml:"name"`

	// Version of the unit when written to the module store. Defaults to 0.0.0.
	Version string `yaml:"version,omitempty"`

	// Sources are glob patterns (relative to the project file) of unit files
	// holding type, constant and function declarations.
	Sources []string `yaml:"sources,omitempty"`

	// Specs are glob patterns of term/class spec files.
	Specs []string `yaml:"specs,omitempty"`

	// Store is the module store database used to resolve external modules
	// and to publish this unit.
	Store string `yaml:"store,omitempty"`

	// Requires maps external module IDs to semver constraints
	// (e.g. ">=1.0.0, <2.0.0"). Modules not listed load their newest version.
	Requires map[string]string `yaml:"requires,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Dir is the directory containing the project file. Not read from YAML.
	Dir string `yaml:"-"`
}

// LoadProject reads and parses a rectype.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	p, err := ParseProject(data, path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}
	p.Dir = abs
	return p, nil
}

// ParseProject parses rectype.yaml content from bytes.
// The path argument is used only for error messages.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.validate(path); err != nil {
		return nil, err
	}
	p.setDefaults()
	return &p, nil
}

// FindConfig searches for rectype.yaml starting from dir and walking up
// to parent directories. It returns an empty path and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (p *Project) validate(path string) error {
	if p.Name == "" {
		return fmt.Errorf("%s: name is required", path)
	}
	if strings.ContainsAny(p.Name, " \t") {
		return fmt.Errorf("%s: name %q must not contain whitespace", path, p.Name)
	}
	if len(p.Sources) == 0 && len(p.Specs) == 0 {
		return fmt.Errorf("%s: no sources or specs defined", path)
	}
	if p.Version != "" {
		if _, err := semver.NewVersion(p.Version); err != nil {
			return fmt.Errorf("%s: version %q: %w", path, p.Version, err)
		}
	}
	for mod, expr := range p.Requires {
		if mod == p.Name {
			return fmt.Errorf("%s: requires: unit cannot require itself", path)
		}
		if _, err := semver.NewConstraint(expr); err != nil {
			return fmt.Errorf("%s: requires[%s]: %w", path, mod, err)
		}
	}
	if p.LogLevel != "" {
		if _, err := ParseLevel(p.LogLevel); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (p *Project) setDefaults() {
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	if p.Store == "" {
		p.Store = DefaultStorePath
	}
	if p.LogLevel == "" {
		p.LogLevel = DefaultLogLevel
	}
}

// Path resolves a project-relative path.
func (p *Project) Path(rel string) string {
	if filepath.IsAbs(rel) || p.Dir == "" {
		return rel
	}
	return filepath.Join(p.Dir, rel)
}

// SourceFiles expands the Sources globs, in pattern order, without duplicates.
func (p *Project) SourceFiles() ([]string, error) {
	return p.expand(p.Sources)
}

// SpecFiles expands the Specs globs.
func (p *Project) SpecFiles() ([]string, error) {
	return p.expand(p.Specs)
}

func (p *Project) expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(p.Path(pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
