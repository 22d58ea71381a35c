package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// DepartmentRepository handles database operations for departments.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a new DepartmentRepository.
func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// GetByID retrieves a department by ID.
func (r *DepartmentRepository) GetByID(ctx context.Context, departmentID string) (*domain.Department, error) {
	query, args, err := psql.
		Select("id", "name", "created_at").
		From("departments").
		Where(sq.Eq{"id": departmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for department: %w", err)
	}

	var dept domain.Department
	err = r.pool.QueryRow(ctx, query, args...).Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("query department: %w", err)
	}

	return &dept, nil
}

// List retrieves all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	query, args, err := psql.
		Select("id", "name", "created_at").
		From("departments").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for departments: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var departments []*domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, &dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return departments, nil
}

// Create inserts a new department. ID and CreatedAt are populated on return.
func (r *DepartmentRepository) Create(ctx context.Context, dept *domain.Department) (*domain.Department, error) {
	query, args, err := psql.
		Insert("departments").
		Columns("name").
		Values(dept.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for department: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&dept.ID, &dept.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}

	return dept, nil
}

// UpdateName renames a department.
func (r *DepartmentRepository) UpdateName(ctx context.Context, departmentID, name string) error {
	query, args, err := psql.
		Update("departments").
		Set("name", name).
		Where(sq.Eq{"id": departmentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateName query for department %s: %w", departmentID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("rename department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDepartmentNotFound
	}

	return nil
}

// Delete removes a department. Foreign keys from tasks and profiles are left
// to the database: a referenced department cannot be deleted.
func (r *DepartmentRepository) Delete(ctx context.Context, departmentID string) error {
	query, args, err := psql.
		Delete("departments").
		Where(sq.Eq{"id": departmentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for department %s: %w", departmentID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: department still has tasks or members", domain.ErrConflict)
		}
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDepartmentNotFound
	}

	return nil
}
