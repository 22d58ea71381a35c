package domain

import "time"

// AuditAction identifies the mutation recorded by an audit log entry.
type AuditAction string

const (
	AuditTaskCreate       AuditAction = "TASK_CREATE"
	AuditTaskUpdate       AuditAction = "TASK_UPDATE"
	AuditTaskStatusUpdate AuditAction = "TASK_STATUS_UPDATE"
	AuditTaskAssign       AuditAction = "TASK_ASSIGN"
	AuditTaskTransfer     AuditAction = "TASK_TRANSFER"
	AuditDeptCreate       AuditAction = "DEPT_CREATE"
	AuditDeptUpdate       AuditAction = "DEPT_UPDATE"
	AuditDeptDelete       AuditAction = "DEPT_DELETE"
	AuditUserCreate       AuditAction = "USER_CREATE"
	AuditRoleChange       AuditAction = "ROLE_CHANGE"
)

// EntityType classifies what an audit log entry is about.
type EntityType string

const (
	EntityTask       EntityType = "Task"
	EntityDepartment EntityType = "Department"
	EntityProfile    EntityType = "Profile"
	EntitySystem     EntityType = "System"
)

// AuditLogEntry is a system-wide, append-only compliance record. ActorID is
// nil for system actions. OldData/NewData hold JSON snapshots of the entity
// around the mutation.
type AuditLogEntry struct {
	ID         string
	ActorID    *string
	Action     AuditAction
	EntityType EntityType
	EntityID   *string
	OldData    map[string]any
	NewData    map[string]any
	Seq        int64
	CreatedAt  time.Time
}
