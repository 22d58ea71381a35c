package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("task was modified concurrently")

	// Permission errors
	ErrPermissionDenied = errors.New("not permitted")

	// Lookup errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrDepartmentNotFound = errors.New("department not found")

	// Validation errors
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidPriority  = errors.New("invalid task priority")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCommentRequired  = errors.New("comment is required for rejection")
	ErrAssigneeRequired = errors.New("assignee_id is required")
	ErrWrongDepartment  = errors.New("assignee must belong to the task's department")
	ErrNotEmployee      = errors.New("assignee must have the employee role")
	ErrAssignViaOp      = errors.New("assignment must use the assign operation")

	// Auth errors
	ErrInvalidToken = errors.New("invalid authentication token")

	// Store errors
	// ErrAuditIncomplete signals the primary write committed but the audit
	// log entry did not; the state changed and the record is not fully
	// traceable.
	ErrAuditIncomplete = errors.New("state changed but audit log write failed")
)
