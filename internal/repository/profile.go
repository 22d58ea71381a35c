package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
)

var profileColumns = []string{"id", "email", "full_name", "role", "department_id", "created_at"}

// ProfileRepository handles database operations for user profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.DepartmentID,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &profile, nil
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, profileID string) (*domain.Profile, error) {
	query, args, err := psql.
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for profile: %w", err)
	}

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}

// ListEmployees retrieves profiles with the EMPLOYEE role, optionally
// narrowed to one department, ordered by name.
func (r *ProfileRepository) ListEmployees(ctx context.Context, departmentID *string) ([]*domain.Profile, error) {
	qb := psql.
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"role": domain.RoleEmployee}).
		OrderBy("full_name ASC")
	if departmentID != nil {
		qb = qb.Where(sq.Eq{"department_id": *departmentID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListEmployees query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return profiles, nil
}

// Create inserts a new profile. ID and CreatedAt are populated on return.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	query, args, err := psql.
		Insert("profiles").
		Columns("email", "full_name", "role", "department_id").
		Values(profile.Email, profile.FullName, profile.Role, profile.DepartmentID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for profile: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

// UpdateRole changes a profile's role. Returns ErrProfileNotFound if the
// profile does not exist.
func (r *ProfileRepository) UpdateRole(ctx context.Context, profileID string, role domain.Role) error {
	query, args, err := psql.
		Update("profiles").
		Set("role", role).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateRole query for profile %s: %w", profileID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}
