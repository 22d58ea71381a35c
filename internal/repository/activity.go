package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// ActivityRepository handles database operations for task activity records.
// Only create and read are exposed; records are immutable by contract.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Create appends an activity record within the caller's transaction.
func (r *ActivityRepository) Create(
	ctx context.Context,
	tx pgx.Tx,
	record *domain.ActivityRecord,
) error {
	query, args, err := psql.
		Insert("task_activities").
		Columns("task_id", "actor_id", "activity_type", "content",
			"field_name", "old_value", "new_value", "file_url", "file_name").
		Values(record.TaskID, record.ActorID, record.Type, record.Content,
			record.FieldName, record.OldValue, record.NewValue,
			record.FileURL, record.FileName).
		Suffix("RETURNING id, seq, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&record.ID, &record.Seq, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("create activity record: %w", err)
	}

	return nil
}

// GetByTaskID retrieves the full timeline for a task in creation order,
// with ties broken by insertion sequence.
func (r *ActivityRepository) GetByTaskID(ctx context.Context, taskID string) ([]*domain.ActivityRecord, error) {
	query, args, err := psql.
		Select("a.id", "a.task_id", "a.actor_id", "a.activity_type", "a.content",
			"a.field_name", "a.old_value", "a.new_value", "a.file_url", "a.file_name",
			"a.seq", "a.created_at", "p.full_name").
		From("task_activities a").
		Join("profiles p ON p.id = a.actor_id").
		Where(sq.Eq{"a.task_id": taskID}).
		OrderBy("a.created_at ASC", "a.seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task activities: %w", err)
	}
	defer rows.Close()

	var records []*domain.ActivityRecord
	for rows.Next() {
		var record domain.ActivityRecord
		err := rows.Scan(
			&record.ID,
			&record.TaskID,
			&record.ActorID,
			&record.Type,
			&record.Content,
			&record.FieldName,
			&record.OldValue,
			&record.NewValue,
			&record.FileURL,
			&record.FileName,
			&record.Seq,
			&record.CreatedAt,
			&record.ActorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}
