package domain

import "time"

// TaskStatus represents the status of a task in the approval workflow.
type TaskStatus string

const (
	TaskStatusCreated         TaskStatus = "CREATED"
	TaskStatusAccepted        TaskStatus = "ACCEPTED"
	TaskStatusAssigned        TaskStatus = "ASSIGNED"
	TaskStatusInProgress      TaskStatus = "IN_PROGRESS"
	TaskStatusSubmitted       TaskStatus = "SUBMITTED"
	TaskStatusApproved        TaskStatus = "APPROVED"
	TaskStatusRejected        TaskStatus = "REJECTED"
	TaskStatusCancelled       TaskStatus = "CANCELLED"
	TaskStatusCancelRequested TaskStatus = "CANCEL_REQUESTED"
)

// statusTransitions is the canonical lifecycle graph. Role legality is layered
// on top by the authorizer; assignment and transfer are separate operations and
// are not edges here.
var statusTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusCreated:         {TaskStatusAccepted, TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusAccepted:        {TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusAssigned:        {TaskStatusInProgress, TaskStatusCancelled, TaskStatusCancelRequested},
	TaskStatusInProgress:      {TaskStatusSubmitted, TaskStatusCancelled, TaskStatusCancelRequested},
	TaskStatusSubmitted:       {TaskStatusApproved, TaskStatusRejected},
	TaskStatusRejected:        {TaskStatusInProgress},
	TaskStatusApproved:        {},
	TaskStatusCancelled:       {},
	TaskStatusCancelRequested: {TaskStatusCancelled, TaskStatusAssigned},
}

// CanTransition reports whether the lifecycle graph permits from -> to,
// independent of who is asking.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status has no outbound transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusApproved || s == TaskStatusCancelled
}

// IsActive returns true for statuses from which a task can still be cancelled
// directly (work has not reached the review stage).
func (s TaskStatus) IsActive() bool {
	switch s {
	case TaskStatusCreated, TaskStatusAccepted, TaskStatusAssigned, TaskStatusInProgress:
		return true
	default:
		return false
	}
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusCreated, TaskStatusAccepted, TaskStatusAssigned,
		TaskStatusInProgress, TaskStatusSubmitted, TaskStatusApproved,
		TaskStatusRejected, TaskStatusCancelled, TaskStatusCancelRequested:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is the central entity routed between departments.
type Task struct {
	ID           string
	Title        string
	Description  string
	Status       TaskStatus
	Priority     TaskPriority
	CreatorID    string
	DepartmentID *string
	AssigneeID   *string
	DueDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAssignedTo checks if the task is currently assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// IsCreatedBy checks if the task was opened by the given user.
func (t *Task) IsCreatedBy(userID string) bool {
	return t.CreatorID == userID
}

// InDepartment checks if the task is currently routed to the given department.
func (t *Task) InDepartment(departmentID string) bool {
	return t.DepartmentID != nil && *t.DepartmentID == departmentID
}

// IsOverdue returns true if the advisory due date has passed. The state
// machine never acts on this; it only drives dashboard indicators.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Status.IsTerminal()
}
