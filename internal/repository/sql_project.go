package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
)

// SQLProjectRepo implements ProjectRepo for every supported dialect.
type SQLProjectRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLProjectRepo creates a project repo issuing queries in the given dialect.
func NewSQLProjectRepo(conn db.DBTX, dialect db.Dialect) *SQLProjectRepo {
	return &SQLProjectRepo{db: conn, dialect: dialect}
}

// NewSQLiteProjectRepo creates a new SQLProjectRepo for SQLite.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLProjectRepo {
	return NewSQLProjectRepo(conn, db.DialectSQLite)
}

func (r *SQLProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		p.ID,
		p.Name,
		p.Description,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM projects ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Delete removes the project; its items go with it through ON DELETE CASCADE.
func (r *SQLProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
