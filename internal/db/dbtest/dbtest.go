// Package dbtest builds throwaway climate databases for tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"surfsup-api/internal/db"

	_ "github.com/mattn/go-sqlite3"
)

// Open returns an in-memory database with the climate schema applied.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every :memory: connection is a separate database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if _, err := conn.Exec(db.Schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return conn
}

// File writes a database with the climate schema to a temp dir and returns its path.
// seed statements run after the schema.
func File(t *testing.T, seed ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	conn, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open db file: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db file: %v", err)
		}
	}()
	if _, err := conn.Exec(db.Schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	for _, s := range seed {
		if _, err := conn.Exec(s); err != nil {
			t.Fatalf("exec seed %q: %v", abbreviate(s), err)
		}
	}
	return path
}

// Station inserts a station row.
func Station(t *testing.T, conn *sql.DB, id int64, name string, lat, lng float64) {
	t.Helper()
	if _, err := conn.Exec(
		`INSERT INTO station (id, name, latitude, longitude) VALUES (?, ?, ?, ?)`,
		id, name, lat, lng,
	); err != nil {
		t.Fatalf("insert station %d: %v", id, err)
	}
}

// Temperatures inserts one temperature row per date for stationID, cycling through values.
func Temperatures(t *testing.T, conn *sql.DB, stationID int64, dates []string, values ...float64) {
	t.Helper()
	if len(values) == 0 {
		t.Fatal("Temperatures: no values")
	}
	for i, d := range dates {
		if _, err := conn.Exec(
			`INSERT INTO temperature (station_id, date, temperature) VALUES (?, ?, ?)`,
			stationID, d, values[i%len(values)],
		); err != nil {
			t.Fatalf("insert temperature %d/%s: %v", stationID, d, err)
		}
	}
}

// Precipitation inserts a precipitation row; a nil amount stores NULL.
func Precipitation(t *testing.T, conn *sql.DB, date string, amount *float64) {
	t.Helper()
	var v any
	if amount != nil {
		v = *amount
	}
	if _, err := conn.Exec(`INSERT INTO precipitation (date, prcp) VALUES (?, ?)`, date, v); err != nil {
		t.Fatalf("insert precipitation %s: %v", date, err)
	}
}

// Days returns n consecutive YYYY-MM-DD dates starting at first.
func Days(t *testing.T, first string, n int) []string {
	t.Helper()
	var y, m, d int
	if _, err := fmt.Sscanf(first, "%d-%d-%d", &y, &m, &d); err != nil {
		t.Fatalf("Days(%q): %v", first, err)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, time.Date(y, time.Month(m), d+i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly))
	}
	return out
}

func abbreviate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
