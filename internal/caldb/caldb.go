// Package caldb resolves calibration component names (GEOM, DETMAP, ...)
// to file paths via the CALDB index file (CIF extension), and caches
// the resolution in a modernc.org/sqlite database so repeated lookups
// across many CLI invocations against the same CALDB tree become O(1)
// reads instead of re-scanning the CIF table every run.
package caldb

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a cache of resolved (tm, component) -> file path lookups,
// backed by a migrated sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path and
// brings its schema up to the latest migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pipeerr.IO("opening caldb cache", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, pipeerr.IO("setting WAL mode on caldb cache", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, pipeerr.IO("setting busy_timeout on caldb cache", err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, pipeerr.IO("loading embedded caldb migrations", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, pipeerr.IO("creating caldb migration source", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, pipeerr.IO("creating caldb migration driver", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, pipeerr.IO("creating caldb migrator", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, pipeerr.IO("migrating caldb cache", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns a cached file path for (tm, component), if present.
func (s *Store) Lookup(tm int, component string) (path string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT file_path FROM cif_cache WHERE tm = ? AND component = ?`, tm, component)
	if err := row.Scan(&path); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, pipeerr.IO("querying caldb cache", err)
	}
	return path, true, nil
}

// Put records a resolved (tm, component) -> file path mapping,
// replacing any prior entry.
func (s *Store) Put(tm int, component, path string) error {
	_, err := s.db.Exec(
		`INSERT INTO cif_cache (tm, component, file_path) VALUES (?, ?, ?)
		 ON CONFLICT(tm, component) DO UPDATE SET file_path = excluded.file_path`,
		tm, component, path,
	)
	if err != nil {
		return pipeerr.IO("writing caldb cache entry", err)
	}
	return nil
}

// IndexPath returns the conventional location of a telescope module's
// CALDB index file: CALDB/data/erosita/tm<N>/caldb.indx.
func IndexPath(caldbRoot string, tm int) string {
	return filepath.Join(caldbRoot, "data", "erosita", fmt.Sprintf("tm%d", tm), "caldb.indx")
}

// ResolveCIF reads the CIF extension of r and returns the file path of
// the first row whose CAL_CNAM matches component and whose CAL_QUAL is
// zero. r must already be positioned to read the CIF file in question
// (callers typically open a fresh ColumnReader per index file).
func ResolveCIF(r fitscol.ColumnReader, component string) (string, error) {
	if err := r.MoveHDU("CIF"); err != nil {
		return "", pipeerr.IO("moving to CIF extension", err)
	}
	n, err := r.NumRows()
	if err != nil {
		return "", pipeerr.IO("reading CIF row count", err)
	}

	var names, files []string
	var quals []int32
	if err := r.ReadColumn("CAL_CNAM", &names); err != nil {
		return "", pipeerr.IO("reading CAL_CNAM", err)
	}
	if err := r.ReadColumn("CAL_FILE", &files); err != nil {
		return "", pipeerr.IO("reading CAL_FILE", err)
	}
	if err := r.ReadColumn("CAL_QUAL", &quals); err != nil {
		return "", pipeerr.IO("reading CAL_QUAL", err)
	}

	for i := 0; i < n; i++ {
		if names[i] == component && quals[i] == 0 {
			return files[i], nil
		}
	}
	return "", pipeerr.Domain(fmt.Sprintf("no CIF row for component %q with CAL_QUAL=0", component), nil)
}

// Resolve returns the file path for (tm, component), consulting the
// cache first and falling back to scanning r's CIF extension, caching
// the result for subsequent calls.
func (s *Store) Resolve(r fitscol.ColumnReader, tm int, component string) (string, error) {
	if path, ok, err := s.Lookup(tm, component); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}

	path, err := ResolveCIF(r, component)
	if err != nil {
		return "", err
	}
	if err := s.Put(tm, component, path); err != nil {
		return "", err
	}
	return path, nil
}
