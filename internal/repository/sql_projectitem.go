package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
)

// projectItemColumns is the canonical SELECT column list for project_items.
const projectItemColumns = `id, project_id, parent_id, type, name, order_index,
		attributes, created_at, updated_at`

// SQLProjectItemRepo implements ProjectItemRepo over SQLite or Postgres.
type SQLProjectItemRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

var _ ProjectItemRepo = (*SQLProjectItemRepo)(nil)

// NewSQLProjectItemRepo creates an item repo issuing queries in the given dialect.
// Pass a *sql.Tx as conn to scope the repo to a transaction.
func NewSQLProjectItemRepo(conn db.DBTX, dialect db.Dialect) *SQLProjectItemRepo {
	return &SQLProjectItemRepo{db: conn, dialect: dialect}
}

// NewSQLiteProjectItemRepo creates a new SQLProjectItemRepo for SQLite.
func NewSQLiteProjectItemRepo(conn db.DBTX) *SQLProjectItemRepo {
	return NewSQLProjectItemRepo(conn, db.DialectSQLite)
}

// NewPostgresProjectItemRepo creates a new SQLProjectItemRepo for Postgres.
func NewPostgresProjectItemRepo(conn db.DBTX) *SQLProjectItemRepo {
	return NewSQLProjectItemRepo(conn, db.DialectPostgres)
}

func (r *SQLProjectItemRepo) GetAll(ctx context.Context, projectID string) ([]*domain.ProjectItem, error) {
	query := `SELECT ` + projectItemColumns + ` FROM project_items
		WHERE project_id = ? ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project items: %w", err)
	}
	defer rows.Close()

	var items []*domain.ProjectItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project items: %w", err)
	}
	return items, nil
}

func (r *SQLProjectItemRepo) GetByID(ctx context.Context, id string) (*domain.ProjectItem, error) {
	query := `SELECT ` + projectItemColumns + ` FROM project_items WHERE id = ?`
	item, err := scanItem(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *SQLProjectItemRepo) Add(ctx context.Context, item *domain.ProjectItem) (*domain.ProjectItem, error) {
	stored := prepareForAdd(item)
	attrs, err := encodeAttributes(stored.Attributes)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO project_items (id, project_id, parent_id, type, name, order_index,
		attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		stored.ID,
		stored.ProjectID,
		stored.ParentID, // *string: nil becomes SQL NULL
		string(stored.Type),
		stored.Name,
		stored.OrderIndex,
		attrs,
		formatTime(stored.CreatedAt),
		formatTime(stored.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("inserting project item: %w", err)
	}
	if n == 0 {
		return nil, duplicateIdentity(stored.ID)
	}
	return stored, nil
}

func (r *SQLProjectItemRepo) Update(ctx context.Context, item *domain.ProjectItem) error {
	attrs, err := encodeAttributes(item.Attributes)
	if err != nil {
		return err
	}
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = nowUTC()
	}
	query := `UPDATE project_items SET name = ?, order_index = ?, attributes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		item.Name,
		item.OrderIndex,
		attrs,
		formatTime(updatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project item: %w", err)
	}
	if n == 0 {
		return itemNotFound(item.ID)
	}
	return nil
}

func (r *SQLProjectItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM project_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting project item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project item: %w", err)
	}
	if n == 0 {
		return itemNotFound(id)
	}
	return nil
}

// scanItem scans one project item from a *sql.Row or *sql.Rows.
func scanItem(s scanner) (*domain.ProjectItem, error) {
	var item domain.ProjectItem
	var typeStr, attrs, createdAtStr, updatedAtStr string
	var parentID sql.NullString

	err := s.Scan(
		&item.ID, &item.ProjectID, &parentID, &typeStr, &item.Name, &item.OrderIndex,
		&attrs, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project item: %w", err)
	}

	item.Type = domain.ItemType(typeStr)
	if parentID.Valid {
		item.ParentID = &parentID.String
	}
	if item.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, fmt.Errorf("project item %s: %w", item.ID, err)
	}
	if item.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &item, nil
}
