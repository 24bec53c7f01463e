// Package store keeps the records served by the record service in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *sql.DB
}

// Record is one searchable entry
type Record struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Kind       string            `json:"kind" yaml:"kind"`
	Email      string            `json:"email,omitempty" yaml:"email,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Query selects a page of records. Term matches names case-insensitively,
// names starting with the term first. A zero Limit means no limit.
type Query struct {
	Term   string
	Kind   string
	Limit  int
	Offset int
}

// Page is one page of search results and the size of the whole match set
type Page struct {
	Records []Record
	Total   int
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			attributes_json TEXT NOT NULL DEFAULT '{}',
			updated_utc TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_kind_name ON records(kind, name);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces records in one transaction
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("upsert record %q: id is required", r.Name)
		}
		attrs := r.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrsJSON, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("encode attributes of %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, name, kind, email, attributes_json, updated_utc)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				kind = excluded.kind,
				email = excluded.email,
				attributes_json = excluded.attributes_json,
				updated_utc = excluded.updated_utc
		`, r.ID, r.Name, r.Kind, r.Email, string(attrsJSON), now); err != nil {
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, email, attributes_json FROM records WHERE id = ?
	`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) Search(ctx context.Context, q Query) (Page, error) {
	where, args := searchClause(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count records: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	prefix := escapeLike(strings.TrimSpace(q.Term)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, email, attributes_json FROM records`+where+`
		ORDER BY CASE WHEN name LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name COLLATE NOCASE, id
		LIMIT ? OFFSET ?
	`, append(args, prefix, limit, offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	page := Page{Total: total, Records: []Record{}}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return Page{}, fmt.Errorf("scan record: %w", err)
		}
		page.Records = append(page.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate records: %w", err)
	}
	return page, nil
}

func searchClause(q Query) (string, []any) {
	var conds []string
	var args []any
	if kind := strings.TrimSpace(q.Kind); kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, kind)
	}
	if term := strings.TrimSpace(q.Term); term != "" {
		conds = append(conds, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var attrsJSON string
	if err := row.Scan(&r.ID, &r.Name, &r.Kind, &r.Email, &attrsJSON); err != nil {
		return Record{}, err
	}
	if attrsJSON != "" && attrsJSON != "{}" {
		if err := json.Unmarshal([]byte(attrsJSON), &r.Attributes); err != nil {
			return Record{}, fmt.Errorf("decode attributes of %s: %w", r.ID, err)
		}
	}
	return r, nil
}
