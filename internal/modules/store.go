package modules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/typesystem"
)

const schema = `
CREATE TABLE IF NOT EXISTS modules (
	id           TEXT NOT NULL,
	version      TEXT NOT NULL,
	build_id     TEXT NOT NULL,
	published_at INTEGER NOT NULL,
	PRIMARY KEY (id, version)
);
CREATE TABLE IF NOT EXISTS types (
	module  TEXT NOT NULL,
	version TEXT NOT NULL,
	name    TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (module, version, name)
);
CREATE TABLE IF NOT EXISTS methods (
	module  TEXT NOT NULL,
	version TEXT NOT NULL,
	name    TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (module, version, name, seq)
);`

// Store persists published modules in a SQLite database. Each module may be
// published in several versions; loads pick the highest version allowed by
// the constraint registered with Require.
type Store struct {
	db       *sql.DB
	requires map[ast.ModuleID]*semver.Constraints
	logger   *slog.Logger
}

// OpenStore opens (creating if needed) the store at path.
func OpenStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store %s: %w", path, err)
	}
	return &Store{
		db:       db,
		requires: make(map[ast.ModuleID]*semver.Constraints),
		logger:   logger.With("section", "store"),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Require restricts the versions of id that LoadModule may return.
func (s *Store) Require(id ast.ModuleID, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("constraint %q for %s: %w", constraint, id, err)
	}
	s.requires[id] = c
	return nil
}

// Publish writes m under its version, replacing an earlier publication of
// the same version, and returns the new build ID.
func (s *Store) Publish(ctx context.Context, m *Module) (string, error) {
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return "", fmt.Errorf("module %s: invalid version %q: %w", m.ID, m.Version, err)
	}
	version := v.String()
	buildID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for _, table := range []string{"types", "methods"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE module = ? AND version = ?", string(m.ID), version); err != nil {
			return "", err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO modules (id, version, build_id, published_at) VALUES (?, ?, ?, ?)",
		string(m.ID), version, buildID, time.Now().Unix()); err != nil {
		return "", err
	}
	for _, name := range m.TypeNames() {
		payload, err := typesystem.Marshal(m.Types[name].Type)
		if err != nil {
			return "", fmt.Errorf("type %s:%s: %w", m.ID, name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO types (module, version, name, payload) VALUES (?, ?, ?, ?)",
			string(m.ID), version, name, payload); err != nil {
			return "", err
		}
	}
	for _, name := range m.MethodNames() {
		for seq, fn := range m.Methods[name] {
			payload, err := typesystem.Marshal(fn)
			if err != nil {
				return "", fmt.Errorf("function %s:%s: %w", m.ID, name, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO methods (module, version, name, seq, payload) VALUES (?, ?, ?, ?, ?)",
				string(m.ID), version, name, seq, payload); err != nil {
				return "", err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	m.BuildID = buildID
	s.logger.Debug("published module", "module", m.ID, "version", version, "build", buildID)
	return buildID, nil
}

// Versions lists the published versions of id in ascending order.
func (s *Store) Versions(ctx context.Context, id ast.ModuleID) ([]*semver.Version, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM modules WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var versions []*semver.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Sort(semver.Collection(versions))
	return versions, nil
}

func (s *Store) LoadModule(id ast.ModuleID) (*Module, error) {
	return s.LoadModuleContext(context.Background(), id)
}

// LoadModuleContext loads the highest acceptable version of id.
func (s *Store) LoadModuleContext(ctx context.Context, id ast.ModuleID) (*Module, error) {
	versions, err := s.Versions(ctx, id)
	if err != nil {
		return nil, &ResolveError{Module: id, Err: err}
	}
	var chosen *semver.Version
	for i := len(versions) - 1; i >= 0; i-- {
		if c, ok := s.requires[id]; ok && !c.Check(versions[i]) {
			continue
		}
		chosen = versions[i]
		break
	}
	if chosen == nil {
		if len(versions) == 0 {
			return nil, &ResolveError{Module: id}
		}
		return nil, &ResolveError{Module: id, Err: errors.New("no published version satisfies the requirement")}
	}

	version := chosen.String()
	m := NewModule(id)
	m.Version = version
	if err := s.db.QueryRowContext(ctx,
		"SELECT build_id FROM modules WHERE id = ? AND version = ?",
		string(id), version).Scan(&m.BuildID); err != nil {
		return nil, &ResolveError{Module: id, Err: err}
	}
	if err := s.loadTypes(ctx, m); err != nil {
		return nil, &ResolveError{Module: id, Err: err}
	}
	if err := s.loadMethods(ctx, m); err != nil {
		return nil, &ResolveError{Module: id, Err: err}
	}
	s.logger.Debug("loaded module", "module", id, "version", version)
	return m, nil
}

func (s *Store) loadTypes(ctx context.Context, m *Module) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, payload FROM types WHERE module = ? AND version = ?",
		string(m.ID), m.Version)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return err
		}
		t, err := typesystem.Unmarshal(payload)
		if err != nil {
			return fmt.Errorf("type %s: %w", name, err)
		}
		m.AddType(name, t, nil)
	}
	return rows.Err()
}

func (s *Store) loadMethods(ctx context.Context, m *Module) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, payload FROM methods WHERE module = ? AND version = ? ORDER BY name, seq",
		string(m.ID), m.Version)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return err
		}
		t, err := typesystem.Unmarshal(payload)
		if err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
		fn, ok := t.(typesystem.Fun)
		if !ok {
			return fmt.Errorf("function %s: stored type %s is not a function", name, t)
		}
		m.AddMethod(name, fn)
	}
	return rows.Err()
}
