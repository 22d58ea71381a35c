package repository

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// AuditLogRepository handles the system-wide audit trail. Append-only: no
// update or delete is exposed.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates a new AuditLogRepository.
func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

// Append writes an audit log entry. Runs on the pool, not the primary
// transaction: the primary write must already be committed when this is
// called, and a failure here must surface to the caller.
func (r *AuditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	oldData, err := marshalSnapshot(entry.OldData)
	if err != nil {
		return fmt.Errorf("marshal old_data: %w", err)
	}
	newData, err := marshalSnapshot(entry.NewData)
	if err != nil {
		return fmt.Errorf("marshal new_data: %w", err)
	}

	query, args, err := psql.
		Insert("audit_logs").
		Columns("actor_id", "action", "entity_type", "entity_id", "old_data", "new_data").
		Values(entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, oldData, newData).
		Suffix("RETURNING id, seq, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.Seq, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}

	return nil
}

// List retrieves audit log entries newest first.
func (r *AuditLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLogEntry, error) {
	query, args, err := psql.
		Select("id", "actor_id", "action", "entity_type", "entity_id",
			"old_data", "new_data", "seq", "created_at").
		From("audit_logs").
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var oldData, newData []byte
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&oldData,
			&newData,
			&entry.Seq,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log entry: %w", err)
		}
		if entry.OldData, err = unmarshalSnapshot(oldData); err != nil {
			return nil, fmt.Errorf("parse old_data: %w", err)
		}
		if entry.NewData, err = unmarshalSnapshot(newData); err != nil {
			return nil, fmt.Errorf("parse new_data: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// CountByEntity returns the number of audit entries recorded for one entity.
func (r *AuditLogRepository) CountByEntity(ctx context.Context, entityType domain.EntityType, entityID string) (int, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("audit_logs").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return count, nil
}

func marshalSnapshot(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}

func unmarshalSnapshot(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
