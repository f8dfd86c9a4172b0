// Package migrations ships the PostgreSQL schema as versioned SQL files.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const rollbackSuffix = "_rollback.sql"

//go:embed *.sql
var files embed.FS

// Migration is one forward step and, when present, its rollback.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// List returns every embedded migration ordered by version.
func List() ([]Migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded migrations")
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, errors.Errorf("migration %s has no version prefix", name)
		}

		up, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", name)
		}
		m := Migration{Version: version, Name: name, Up: string(up)}

		down, err := fs.ReadFile(files, strings.TrimSuffix(name, ".sql")+rollbackSuffix)
		if err == nil {
			m.Down = string(down)
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Find returns the migration with the given version.
func Find(version string) (Migration, bool, error) {
	all, err := List()
	if err != nil {
		return Migration{}, false, err
	}
	for _, m := range all {
		if m.Version == version {
			return m, true, nil
		}
	}
	return Migration{}, false, nil
}
