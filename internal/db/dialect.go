package db

import (
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported stores.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// ParseDialect maps a config value to a Dialect.
func ParseDialect(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, true
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, true
	}
	return DialectSQLite, false
}

// Rebind rewrites '?' placeholders to '$n' for Postgres. Queries in this
// module never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
