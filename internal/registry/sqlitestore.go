package registry

import (
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the registry document in a SQLite database, for
// deployments where many processes share one registry file and JSON
// rewrite churn becomes a problem.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS links (
	url           TEXT PRIMARY KEY,
	script        TEXT NOT NULL,
	registered_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS registry_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// NewSQLiteStore opens (or creates) the registry database at the given
// path and configures WAL mode.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "registry: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "registry: migrate sqlite")
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the whole registry into a document.
func (s *SQLiteStore) Load() (*Document, error) {
	doc := newDocument()

	rows, err := s.db.Query("SELECT url, script, registered_at FROM links")
	if err != nil {
		return nil, eris.Wrap(err, "registry: query links")
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		var entry Entry
		if err := rows.Scan(&url, &entry.Script, &entry.Timestamp); err != nil {
			return nil, eris.Wrap(err, "registry: scan link")
		}
		doc.Links[url] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "registry: iterate links")
	}

	metaRows, err := s.db.Query("SELECT key, value FROM registry_meta")
	if err != nil {
		return nil, eris.Wrap(err, "registry: query meta")
	}
	defer metaRows.Close()

	for metaRows.Next() {
		var key, value string
		if err := metaRows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "registry: scan meta")
		}
		switch key {
		case "created":
			doc.Metadata.Created = value
		case "last_updated":
			doc.Metadata.LastUpdated = value
		}
	}
	return doc, metaRows.Err()
}

// Save replaces the stored registry with the document contents in one
// transaction.
func (s *SQLiteStore) Save(doc *Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return eris.Wrap(err, "registry: begin save")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM links"); err != nil {
		return eris.Wrap(err, "registry: clear links")
	}
	for url, entry := range doc.Links {
		if _, err := tx.Exec(
			"INSERT INTO links (url, script, registered_at) VALUES (?, ?, ?)",
			url, entry.Script, entry.Timestamp,
		); err != nil {
			return eris.Wrap(err, "registry: insert link")
		}
	}

	for key, value := range map[string]string{
		"created":      doc.Metadata.Created,
		"last_updated": doc.Metadata.LastUpdated,
	} {
		if _, err := tx.Exec(
			"INSERT INTO registry_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		); err != nil {
			return eris.Wrap(err, "registry: upsert meta")
		}
	}

	return eris.Wrap(tx.Commit(), "registry: commit save")
}
