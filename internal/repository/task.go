package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "status", "priority", "creator_id",
	"department_id", "assignee_id", "due_date", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.CreatorID,
		&task.DepartmentID,
		&task.AssigneeID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Create creates a new task within a transaction. ID, CreatedAt and UpdatedAt
// are populated on return.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("title", "description", "status", "priority", "creator_id",
			"department_id", "assignee_id", "due_date").
		Values(
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.CreatorID,
			task.DepartmentID,
			task.AssigneeID,
			task.DueDate,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// TaskEdit carries the field edits of an update. Nil fields are left as-is;
// ClearDueDate removes the due date.
type TaskEdit struct {
	Title        *string
	Description  *string
	Priority     *domain.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateFields applies field edits with a compare-and-swap on the status the
// caller authorized against. Returns ErrConflict if the row no longer matches.
func (r *TaskRepository) UpdateFields(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	edit TaskEdit,
) error {
	qb := psql.
		Update("tasks").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		})

	if edit.Title != nil {
		qb = qb.Set("title", *edit.Title)
	}
	if edit.Description != nil {
		qb = qb.Set("description", *edit.Description)
	}
	if edit.Priority != nil {
		qb = qb.Set("priority", *edit.Priority)
	}
	if edit.ClearDueDate {
		qb = qb.Set("due_date", nil)
	} else if edit.DueDate != nil {
		qb = qb.Set("due_date", *edit.DueDate)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateFields query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task fields: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	return nil
}

// UpdateStatus updates the task status with a compare-and-swap on the status
// read by the authorizer. Returns ErrConflict if the row no longer matches.
func (r *TaskRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	newStatus domain.TaskStatus,
	assigneeID *string,
) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", newStatus).
		Set("assignee_id", assigneeID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	return nil
}

// UpdateAssignee sets a new assignee with a compare-and-swap on both the
// status and the previous assignee. Returns ErrConflict on a lost race.
func (r *TaskRepository) UpdateAssignee(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	oldAssigneeID *string,
	newAssigneeID string,
) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", domain.TaskStatusAssigned).
		Set("assignee_id", newAssigneeID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":          taskID,
			"status":      oldStatus,
			"assignee_id": oldAssigneeID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateAssignee query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task assignee: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	return nil
}

// Transfer moves the task to another department, clearing the assignee and
// resetting the status to CREATED so the receiving head must re-accept it.
// The swap is conditioned on the status read by the authorizer.
func (r *TaskRepository) Transfer(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	departmentID string,
) error {
	query, args, err := psql.
		Update("tasks").
		Set("department_id", departmentID).
		Set("assignee_id", nil).
		Set("status", domain.TaskStatusCreated).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Transfer query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transfer task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	return nil
}
