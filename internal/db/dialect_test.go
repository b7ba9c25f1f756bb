package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT id FROM project_items WHERE project_id = ? AND parent_id = ?`

	assert.Equal(t, q, DialectSQLite.Rebind(q))
	assert.Equal(t,
		`SELECT id FROM project_items WHERE project_id = $1 AND parent_id = $2`,
		DialectPostgres.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
		ok   bool
	}{
		{"", DialectSQLite, true},
		{"sqlite", DialectSQLite, true},
		{"Postgres", DialectPostgres, true},
		{"pgx", DialectPostgres, true},
		{"mysql", DialectSQLite, false},
	}
	for _, tt := range tests {
		got, ok := ParseDialect(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "pgx", DialectPostgres.DriverName())
	assert.Equal(t, "sqlite", DialectSQLite.String())
}
