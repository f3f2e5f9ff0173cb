package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrRunNotFound = errors.New("run not found")

// Index is a queryable table of run metadata backed by SQLite. The caller
// opens the database with a SQLite driver, e.g.
//
//	import _ "modernc.org/sqlite"
type Index struct {
	db *sql.DB
}

// RunFilter narrows List. Zero values match everything.
type RunFilter struct {
	Solver   string
	Particle int // exact particle count
	Since    time.Time
	Limit    int
}

func NewIndex(db *sql.DB) (*Index, error) {
	idx := &Index{db: db}
	if err := idx.initSchema(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) initSchema() error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			solver TEXT NOT NULL,
			created_ns INTEGER NOT NULL,
			nx INTEGER NOT NULL,
			ny INTEGER NOT NULL,
			np INTEGER NOT NULL,
			max_speed REAL,
			metadata BLOB NOT NULL
		);`,
	)
	return err
}

const insertRun = `
	INSERT OR REPLACE INTO runs (id, solver, created_ns, nx, ny, np, max_speed, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putRun(ex execer, meta *RunMetadata) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	_, err = ex.Exec(insertRun,
		meta.ID,
		meta.Solver,
		meta.Timestamp.UnixNano(),
		meta.Nx,
		meta.Ny,
		len(meta.Particles),
		meta.Metrics["max_speed"],
		blob,
	)
	return err
}

// Put inserts or replaces the row for meta.ID.
func (idx *Index) Put(meta *RunMetadata) error {
	return putRun(idx.db, meta)
}

func (idx *Index) Get(id string) (*RunMetadata, error) {
	var blob []byte
	err := idx.db.QueryRow(`SELECT metadata FROM runs WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return decodeMetadata(blob)
}

func (idx *Index) Delete(id string) error {
	res, err := idx.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// List returns matching runs, oldest first.
func (idx *Index) List(filter RunFilter) ([]RunMetadata, error) {
	query := `SELECT metadata FROM runs`
	var args []any
	var clauses []string

	if filter.Solver != "" {
		clauses = append(clauses, "solver = ?")
		args = append(args, filter.Solver)
	}
	if filter.Particle > 0 {
		clauses = append(clauses, "np = ?")
		args = append(args, filter.Particle)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_ns >= ?")
		args = append(args, filter.Since.UnixNano())
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_ns ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		meta, err := decodeMetadata(blob)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Rebuild replaces the index contents with the runs found in st.
func (idx *Index) Rebuild(st *Store) (int, error) {
	runs, err := st.scan()
	if err != nil {
		return 0, err
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM runs`); err != nil {
		return 0, err
	}
	for i := range runs {
		if err := putRun(tx, &runs[i]); err != nil {
			return 0, err
		}
	}

	return len(runs), tx.Commit()
}

func decodeMetadata(blob []byte) (*RunMetadata, error) {
	var meta RunMetadata
	if err := json.Unmarshal(blob, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
