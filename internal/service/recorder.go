package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// Recorder is the single choke point for activity and audit writes, so that
// ordering and failure semantics are enforced once instead of per call site.
//
// Activity records ride the primary transaction and commit atomically with
// the status change. The audit log entry is appended only after the primary
// commit; a failure there must surface as ErrAuditIncomplete because the
// state did change and the trail is a first-class guarantee, not telemetry.
type Recorder struct {
	activityRepo *repository.ActivityRepository
	auditRepo    *repository.AuditLogRepository
}

// NewRecorder creates a new Recorder.
func NewRecorder(activityRepo *repository.ActivityRepository, auditRepo *repository.AuditLogRepository) *Recorder {
	return &Recorder{
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
	}
}

// RecordStatusChange appends a STATUS_CHANGE activity within the transaction.
func (r *Recorder) RecordStatusChange(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	actorID string,
	oldStatus domain.TaskStatus,
	newStatus domain.TaskStatus,
) error {
	field := "status"
	oldValue := string(oldStatus)
	newValue := string(newStatus)
	record := &domain.ActivityRecord{
		TaskID:    taskID,
		ActorID:   actorID,
		Type:      domain.ActivityTypeStatusChange,
		Content:   fmt.Sprintf("Changed status from %s to %s", oldStatus, newStatus),
		FieldName: &field,
		OldValue:  &oldValue,
		NewValue:  &newValue,
	}
	if err := r.activityRepo.Create(ctx, tx, record); err != nil {
		return fmt.Errorf("record status change: %w", err)
	}
	return nil
}

// RecordEdit appends an EDIT activity (assignment, transfer) within the transaction.
func (r *Recorder) RecordEdit(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	actorID string,
	content string,
	fieldName string,
	oldValue *string,
	newValue *string,
) error {
	record := &domain.ActivityRecord{
		TaskID:    taskID,
		ActorID:   actorID,
		Type:      domain.ActivityTypeEdit,
		Content:   content,
		FieldName: &fieldName,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
	if err := r.activityRepo.Create(ctx, tx, record); err != nil {
		return fmt.Errorf("record edit: %w", err)
	}
	return nil
}

// RecordComment appends a COMMENT activity within the transaction.
func (r *Recorder) RecordComment(ctx context.Context, tx pgx.Tx, taskID, actorID, content string) error {
	record := &domain.ActivityRecord{
		TaskID:  taskID,
		ActorID: actorID,
		Type:    domain.ActivityTypeComment,
		Content: content,
	}
	if err := r.activityRepo.Create(ctx, tx, record); err != nil {
		return fmt.Errorf("record comment: %w", err)
	}
	return nil
}

// RecordAttachment appends an ATTACHMENT activity within the transaction.
// Only metadata is recorded; blob storage is an external collaborator.
func (r *Recorder) RecordAttachment(ctx context.Context, tx pgx.Tx, taskID, actorID, fileName, fileURL string) error {
	record := &domain.ActivityRecord{
		TaskID:   taskID,
		ActorID:  actorID,
		Type:     domain.ActivityTypeAttachment,
		Content:  fmt.Sprintf("Uploaded %s", fileName),
		FileName: &fileName,
		FileURL:  &fileURL,
	}
	if err := r.activityRepo.Create(ctx, tx, record); err != nil {
		return fmt.Errorf("record attachment: %w", err)
	}
	return nil
}

// Audit appends a system-wide audit log entry after the primary commit.
// A failure is surfaced as ErrAuditIncomplete and additionally logged so an
// operator can remediate the missing record.
func (r *Recorder) Audit(
	ctx context.Context,
	actorID string,
	action domain.AuditAction,
	entityType domain.EntityType,
	entityID string,
	oldData map[string]any,
	newData map[string]any,
) error {
	entry := &domain.AuditLogEntry{
		ActorID:    &actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		OldData:    oldData,
		NewData:    newData,
	}
	if err := r.auditRepo.Append(ctx, entry); err != nil {
		slog.Error("audit log write failed after primary commit",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"actor_id", actorID,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrAuditIncomplete, err)
	}
	return nil
}

// taskSnapshot builds the old_data/new_data representation audited with task
// mutations.
func taskSnapshot(t *domain.Task) map[string]any {
	if t == nil {
		return nil
	}
	snap := map[string]any{
		"title":      t.Title,
		"status":     string(t.Status),
		"priority":   string(t.Priority),
		"creator_id": t.CreatorID,
		"updated_at": t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DepartmentID != nil {
		snap["department_id"] = *t.DepartmentID
	}
	if t.AssigneeID != nil {
		snap["assignee_id"] = *t.AssigneeID
	}
	return snap
}
