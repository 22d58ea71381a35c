package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// VisibilityFilter is the explicit value object computed from a principal's
// role and department. It is never inferred from ambient request state.
type VisibilityFilter struct {
	All bool // SUPER_ADMIN: no restriction

	// HEAD: tasks in their department OR created by them, plus global history.
	// EMPLOYEE: tasks assigned to them, plus global history.
	DepartmentID *string
	CreatorID    *string
	AssigneeID   *string

	// HistoryStatuses are globally visible regardless of scope (closed tasks
	// stay queryable for reporting).
	HistoryStatuses []domain.TaskStatus

	// ExternalOnly narrows a HEAD's view to tasks they created that are
	// routed to a different department.
	ExternalOnly bool
}

// apply adds the visibility predicate to a select builder.
func (f VisibilityFilter) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	if f.All {
		return qb
	}

	if f.ExternalOnly {
		return qb.Where(sq.And{
			sq.Eq{"creator_id": f.CreatorID},
			sq.NotEq{"department_id": f.DepartmentID},
		})
	}

	or := sq.Or{}
	if f.DepartmentID != nil {
		or = append(or, sq.Eq{"department_id": *f.DepartmentID})
	}
	if f.CreatorID != nil {
		or = append(or, sq.Eq{"creator_id": *f.CreatorID})
	}
	if f.AssigneeID != nil {
		or = append(or, sq.Eq{"assignee_id": *f.AssigneeID})
	}
	if len(f.HistoryStatuses) > 0 {
		or = append(or, sq.Eq{"status": f.HistoryStatuses})
	}
	if len(or) == 0 {
		// A filter with no scope matches nothing.
		return qb.Where("FALSE")
	}
	return qb.Where(or)
}

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	Visibility   VisibilityFilter
	DepartmentID *string  // Optional: narrow to one department
	Statuses     []string // Optional: filter by status
	Priorities   []string // Optional: filter by priority
	Search       string   // Optional: substring match on title/description
	Overdue      bool     // Optional: show only tasks past their due date
	Limit        int      // Required: page size
	Offset       int      // Required: page offset
}

// List retrieves tasks visible to the caller, newest first.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	build := func(qb sq.SelectBuilder) sq.SelectBuilder {
		qb = filters.Visibility.apply(qb)
		if filters.DepartmentID != nil {
			qb = qb.Where(sq.Eq{"department_id": *filters.DepartmentID})
		}
		if len(filters.Statuses) > 0 {
			qb = qb.Where(sq.Eq{"status": filters.Statuses})
		}
		if len(filters.Priorities) > 0 {
			qb = qb.Where(sq.Eq{"priority": filters.Priorities})
		}
		if filters.Search != "" {
			pattern := "%" + filters.Search + "%"
			qb = qb.Where(sq.Or{
				sq.ILike{"title": pattern},
				sq.ILike{"description": pattern},
			})
		}
		if filters.Overdue {
			qb = qb.Where("due_date < NOW()").
				Where(sq.NotEq{"status": []domain.TaskStatus{
					domain.TaskStatusApproved,
					domain.TaskStatusCancelled,
				}})
		}
		return qb
	}

	qb := build(psql.Select(taskColumns...).From("tasks")).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := build(psql.Select("COUNT(*)").From("tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}
