// Package sqlkv keeps a storage.Store in a single SQLite table.
package sqlkv

import (
	"database/sql"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/zond/charsheet"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	k TEXT PRIMARY KEY NOT NULL,
	v TEXT NOT NULL
) WITHOUT ROWID;`

type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at path. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	// A second connection to ":memory:" would be a second, empty database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, charsheet.WithStack(err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return charsheet.WithStack(s.db.Close())
}

func (s *Store) Get(key string) (string, error) {
	var v string
	if err := s.db.Get(&v, "SELECT v FROM kv WHERE k = ?", key); errors.Is(err, sql.ErrNoRows) {
		return "", charsheet.WithStack(os.ErrNotExist)
	} else if err != nil {
		return "", charsheet.WithStack(err)
	}
	return v, nil
}

func (s *Store) Set(key string, value string) error {
	_, err := s.db.Exec("INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT (k) DO UPDATE SET v = excluded.v", key, value)
	return charsheet.WithStack(err)
}

func (s *Store) Del(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE k = ?", key)
	return charsheet.WithStack(err)
}

func (s *Store) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Queryx("SELECT k FROM kv WHERE k >= ? ORDER BY k", prefix)
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	defer rows.Close()
	result := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, charsheet.WithStack(err)
		}
		if !strings.HasPrefix(k, prefix) {
			break
		}
		result = append(result, k)
	}
	return result, charsheet.WithStack(rows.Err())
}
