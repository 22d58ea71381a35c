package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// TaskService coordinates task operations: every mutation runs the same
// pipeline of visibility check, authorization, compare-and-swap write,
// activity record, and audit entry.
type TaskService struct {
	pool        *pgxpool.Pool
	taskRepo    *repository.TaskRepository
	profileRepo *repository.ProfileRepository
	deptRepo    *repository.DepartmentRepository
	recorder    *Recorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	profileRepo *repository.ProfileRepository,
	deptRepo *repository.DepartmentRepository,
	recorder *Recorder,
) *TaskService {
	return &TaskService{
		pool:        pool,
		taskRepo:    taskRepo,
		profileRepo: profileRepo,
		deptRepo:    deptRepo,
		recorder:    recorder,
	}
}

// hiddenTask is returned for both nonexistent and out-of-scope tasks so the
// response cannot leak which tasks exist outside the caller's visibility.
func hiddenTask(taskID string) error {
	return fmt.Errorf("%w: task %s is not accessible", domain.ErrPermissionDenied, taskID)
}

// lockVisibleTask fetches a task FOR UPDATE and enforces the visibility
// predicate before any rule is evaluated.
func (s *TaskService) lockVisibleTask(ctx context.Context, tx pgx.Tx, p domain.Principal, taskID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, hiddenTask(taskID)
		}
		return nil, err
	}
	if !CanSee(p, task) {
		return nil, hiddenTask(taskID)
	}
	return task, nil
}

func (s *TaskService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// CreateTaskParams are parameters for creating a task.
type CreateTaskParams struct {
	Title        string
	Description  string
	Priority     domain.TaskPriority
	DepartmentID *string
	AssigneeID   *string
	DueDate      *time.Time
}

// CreateTask opens a new task. Any authenticated principal may create one;
// the creator is fixed for the task's lifetime. Supplying an assignee at
// creation time starts the task in ASSIGNED, subject to the same
// department check as the assign operation.
func (s *TaskService) CreateTask(ctx context.Context, p domain.Principal, params CreateTaskParams) (*domain.Task, error) {
	task := &domain.Task{
		Title:        params.Title,
		Description:  params.Description,
		Status:       domain.TaskStatusCreated,
		Priority:     params.Priority,
		CreatorID:    p.ID,
		DepartmentID: params.DepartmentID,
		DueDate:      params.DueDate,
	}

	if params.DepartmentID != nil {
		if _, err := s.deptRepo.GetByID(ctx, *params.DepartmentID); err != nil {
			return nil, err
		}
	}

	if params.AssigneeID != nil {
		if params.DepartmentID == nil {
			return nil, domain.ErrWrongDepartment
		}
		assignee, err := s.profileRepo.GetByID(ctx, *params.AssigneeID)
		if err != nil {
			return nil, err
		}
		if assignee.Role != domain.RoleEmployee {
			return nil, domain.ErrNotEmployee
		}
		if !assignee.InDepartment(*params.DepartmentID) {
			return nil, domain.ErrWrongDepartment
		}
		task.AssigneeID = params.AssigneeID
		task.Status = domain.TaskStatusAssigned
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"creator_id", p.ID,
		"status", task.Status,
	)

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditTaskCreate, domain.EntityTask, task.ID,
		nil, taskSnapshot(task)); err != nil {
		return task, err
	}

	return task, nil
}

// RequestTransition drives a task to the target status on behalf of the
// principal. The commit is all-or-nothing: status, updated_at and the
// STATUS_CHANGE activity land in one transaction, conditioned on the status
// the authorizer saw. The audit entry follows the commit; its failure is
// surfaced as ErrAuditIncomplete alongside the updated task.
func (s *TaskService) RequestTransition(
	ctx context.Context,
	p domain.Principal,
	taskID string,
	target domain.TaskStatus,
	comment string,
) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	task, err := s.lockVisibleTask(ctx, tx, p, taskID)
	if err != nil {
		return nil, err
	}

	decision, err := AuthorizeTransition(p, task, target)
	if err != nil {
		return nil, err
	}

	if decision.RequiresComment && comment == "" {
		return nil, domain.ErrCommentRequired
	}

	oldStatus := task.Status

	if err := s.taskRepo.UpdateStatus(ctx, tx, taskID, oldStatus, target, task.AssigneeID); err != nil {
		return nil, err
	}

	if err := s.recorder.RecordStatusChange(ctx, tx, taskID, p.ID, oldStatus, target); err != nil {
		return nil, err
	}

	if comment != "" {
		if err := s.recorder.RecordComment(ctx, tx, taskID, p.ID, decisionFeedback(target, comment)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task status changed",
		"task_id", taskID,
		"actor_id", p.ID,
		"old_status", oldStatus,
		"new_status", target,
	)

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditTaskStatusUpdate, domain.EntityTask, taskID,
		taskSnapshot(task), taskSnapshot(updated)); err != nil {
		return updated, err
	}

	return updated, nil
}

// decisionFeedback prefixes approval/rejection comments so the timeline
// reads as reviewer feedback; other transition comments pass through.
func decisionFeedback(target domain.TaskStatus, comment string) string {
	switch target {
	case domain.TaskStatusRejected:
		return "REJECTED FEEDBACK: " + comment
	case domain.TaskStatusApproved:
		return "APPROVAL FEEDBACK: " + comment
	default:
		return comment
	}
}

// UpdateTask edits the task's descriptive fields. Status, assignee and
// department are out of reach here; they move through their own operations.
func (s *TaskService) UpdateTask(ctx context.Context, p domain.Principal, taskID string, edit repository.TaskEdit) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	task, err := s.lockVisibleTask(ctx, tx, p, taskID)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeEdit(p, task); err != nil {
		return nil, err
	}

	if edit.Priority != nil && !edit.Priority.IsValid() {
		return nil, domain.ErrInvalidPriority
	}

	if err := s.taskRepo.UpdateFields(ctx, tx, taskID, task.Status, edit); err != nil {
		return nil, err
	}

	if err := s.recorder.RecordEdit(ctx, tx, taskID, p.ID, "Updated task details", "details", nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task updated", "task_id", taskID, "actor_id", p.ID)

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditTaskUpdate, domain.EntityTask, taskID,
		taskSnapshot(task), taskSnapshot(updated)); err != nil {
		return updated, err
	}

	return updated, nil
}

// Assign sets or replaces the task's assignee and moves it to ASSIGNED.
// Reassignment of an already ASSIGNED task is the permitted self-loop.
func (s *TaskService) Assign(ctx context.Context, p domain.Principal, taskID, assigneeID string) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	task, err := s.lockVisibleTask(ctx, tx, p, taskID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.profileRepo.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeAssign(p, task, assignee); err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldAssignee := task.AssigneeID

	if err := s.taskRepo.UpdateAssignee(ctx, tx, taskID, oldStatus, oldAssignee, assigneeID); err != nil {
		return nil, err
	}

	content := fmt.Sprintf("Task assigned to %s", assignee.FullName)
	if err := s.recorder.RecordEdit(ctx, tx, taskID, p.ID, content, "assignee_id", oldAssignee, &assigneeID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task assigned",
		"task_id", taskID,
		"actor_id", p.ID,
		"assignee_id", assigneeID,
	)

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditTaskAssign, domain.EntityTask, taskID,
		taskSnapshot(task), taskSnapshot(updated)); err != nil {
		return updated, err
	}

	return updated, nil
}

// Transfer routes the task to another department. The assignee is cleared
// and the status resets to CREATED so the receiving department's head must
// explicitly re-accept: a transfer never silently inherits acceptance.
func (s *TaskService) Transfer(ctx context.Context, p domain.Principal, taskID, departmentID string) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	task, err := s.lockVisibleTask(ctx, tx, p, taskID)
	if err != nil {
		return nil, err
	}

	if err := AuthorizeTransfer(p, task); err != nil {
		return nil, err
	}

	dept, err := s.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldDept := task.DepartmentID

	if err := s.taskRepo.Transfer(ctx, tx, taskID, oldStatus, departmentID); err != nil {
		return nil, err
	}

	content := fmt.Sprintf("Task transferred to %s", dept.Name)
	if err := s.recorder.RecordEdit(ctx, tx, taskID, p.ID, content, "department_id", oldDept, &departmentID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task transferred",
		"task_id", taskID,
		"actor_id", p.ID,
		"department_id", departmentID,
	)

	updated, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditTaskTransfer, domain.EntityTask, taskID,
		taskSnapshot(task), taskSnapshot(updated)); err != nil {
		return updated, err
	}

	return updated, nil
}

// Comment appends a COMMENT activity to a visible task. Comments never
// change task state, so no audit entry is written.
func (s *TaskService) Comment(ctx context.Context, p domain.Principal, taskID, content string) (*domain.ActivityRecord, error) {
	return s.appendActivity(ctx, p, taskID, func(tx pgx.Tx) error {
		return s.recorder.RecordComment(ctx, tx, taskID, p.ID, content)
	})
}

// Attach records attachment metadata on a visible task.
func (s *TaskService) Attach(ctx context.Context, p domain.Principal, taskID, fileName, fileURL string) (*domain.ActivityRecord, error) {
	return s.appendActivity(ctx, p, taskID, func(tx pgx.Tx) error {
		return s.recorder.RecordAttachment(ctx, tx, taskID, p.ID, fileName, fileURL)
	})
}

// appendActivity runs a visibility-gated, transactional activity append and
// returns the newest record of the task's timeline.
func (s *TaskService) appendActivity(
	ctx context.Context,
	p domain.Principal,
	taskID string,
	record func(tx pgx.Tx) error,
) (*domain.ActivityRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if _, err := s.lockVisibleTask(ctx, tx, p, taskID); err != nil {
		return nil, err
	}

	if err := record(tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	records, err := s.recorder.activityRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("activity record missing after commit")
	}
	return records[len(records)-1], nil
}

// GetTask retrieves a visible task together with its activity timeline.
func (s *TaskService) GetTask(ctx context.Context, p domain.Principal, taskID string) (*domain.Task, []*domain.ActivityRecord, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, nil, hiddenTask(taskID)
		}
		return nil, nil, err
	}
	if !CanSee(p, task) {
		return nil, nil, hiddenTask(taskID)
	}

	activities, err := s.recorder.activityRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	return task, activities, nil
}

// ListTasksParams are the caller-controlled filters for listing tasks.
type ListTasksParams struct {
	View         string
	DepartmentID *string
	Statuses     []string
	Priorities   []string
	Search       string
	Overdue      bool
	Limit        int
	Offset       int
}

// ListTasks retrieves tasks visible to the principal, newest first.
func (s *TaskService) ListTasks(ctx context.Context, p domain.Principal, params ListTasksParams) ([]*domain.Task, int, error) {
	return s.taskRepo.List(ctx, repository.TaskListFilters{
		Visibility:   VisibilityFor(p, params.View),
		DepartmentID: params.DepartmentID,
		Statuses:     params.Statuses,
		Priorities:   params.Priorities,
		Search:       params.Search,
		Overdue:      params.Overdue,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
}
