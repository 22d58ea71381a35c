package service

import (
	"fmt"

	"github.com/mtlprog/taskdesk/internal/domain"
)

// Decision carries the side requirements of an allowed transition.
type Decision struct {
	// RequiresComment forces a non-empty comment before the transition may
	// commit. Rejection feedback is the single mandatory input in the
	// workflow and applies to every role, SUPER_ADMIN included.
	RequiresComment bool
}

// transitionRule is one entry of the priority-ordered authorization table.
// First match wins; a request matching no rule is denied.
type transitionRule struct {
	name  string
	match func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool
}

// transitionRules is the single source of truth for who may request which
// transition. Rule order is the precedence order.
var transitionRules = []transitionRule{
	{
		name: "super-admin",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return p.IsSuperAdmin()
		},
	},
	{
		name: "department-head-accepts",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return target == domain.TaskStatusAccepted && p.IsHeadOf(t.DepartmentID)
		},
	},
	{
		name: "assignee-starts-work",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return target == domain.TaskStatusInProgress && t.IsAssignedTo(p.ID)
		},
	},
	{
		name: "assignee-submits",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return target == domain.TaskStatusSubmitted && t.IsAssignedTo(p.ID)
		},
	},
	{
		name: "creator-decides-submission",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return (target == domain.TaskStatusApproved || target == domain.TaskStatusRejected) &&
				t.IsCreatedBy(p.ID)
		},
	},
	{
		name: "creator-cancels",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return target == domain.TaskStatusCancelled && t.Status.IsActive() && t.IsCreatedBy(p.ID)
		},
	},
	{
		name: "creator-resolves-cancel-request",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			return t.Status == domain.TaskStatusCancelRequested && t.IsCreatedBy(p.ID)
		},
	},
	{
		name: "head-requests-cancellation",
		match: func(p domain.Principal, t *domain.Task, target domain.TaskStatus) bool {
			// Heads cannot unilaterally kill a task they did not open; the
			// request escalates to the creator instead.
			return target == domain.TaskStatusCancelRequested &&
				p.Role == domain.RoleHead && !t.IsCreatedBy(p.ID)
		},
	},
}

// AuthorizeTransition decides whether the principal may move the task to the
// target status. Lifecycle legality is checked first, then the role table.
func AuthorizeTransition(p domain.Principal, task *domain.Task, target domain.TaskStatus) (Decision, error) {
	if !target.IsValid() {
		return Decision{}, domain.ErrInvalidStatus
	}

	if task.Status.IsTerminal() {
		return Decision{}, fmt.Errorf("%w: task %s is in terminal status %s",
			domain.ErrInvalidTransition, task.ID, task.Status)
	}

	// A request for the status the task already holds means another request
	// got there first; the graph has no self-loops.
	if task.Status == target {
		return Decision{}, fmt.Errorf("%w: task %s is already %s",
			domain.ErrConflict, task.ID, target)
	}

	if !domain.CanTransition(task.Status, target) {
		return Decision{}, fmt.Errorf("%w: %s -> %s",
			domain.ErrInvalidTransition, task.Status, target)
	}

	// A task leaves CREATED only once it is routed to a department. Direct
	// cancellation is the one exit that needs no routing.
	if task.DepartmentID == nil && target != domain.TaskStatusCancelled {
		return Decision{}, fmt.Errorf("%w: task %s is not routed to a department",
			domain.ErrInvalidTransition, task.ID)
	}

	// ASSIGNED is only a plain transition target when a cancellation request
	// is resolved back to the existing assignee. Everything else goes through
	// the assign operation so a task can never be ASSIGNED without one.
	if target == domain.TaskStatusAssigned && task.Status != domain.TaskStatusCancelRequested {
		return Decision{}, domain.ErrAssignViaOp
	}

	for _, rule := range transitionRules {
		if rule.match(p, task, target) {
			return Decision{RequiresComment: target == domain.TaskStatusRejected}, nil
		}
	}

	return Decision{}, fmt.Errorf("%w: illegal transition for role", domain.ErrPermissionDenied)
}

// AuthorizeEdit decides whether the principal may change a task's descriptive
// fields. Only the creator shapes what the task asks for; status, assignee and
// department move through their dedicated operations.
func AuthorizeEdit(p domain.Principal, task *domain.Task) error {
	if task.Status.IsTerminal() {
		return fmt.Errorf("%w: task %s is in terminal status %s",
			domain.ErrInvalidTransition, task.ID, task.Status)
	}

	if !p.IsSuperAdmin() && !task.IsCreatedBy(p.ID) {
		return fmt.Errorf("%w: only the creator may edit a task", domain.ErrPermissionDenied)
	}

	return nil
}

// AuthorizeAssign decides whether the principal may set the given profile as
// the task's assignee. Cross-department assignment is rejected outright,
// never silently corrected.
func AuthorizeAssign(p domain.Principal, task *domain.Task, assignee *domain.Profile) error {
	if task.Status.IsTerminal() {
		return fmt.Errorf("%w: task %s is in terminal status %s",
			domain.ErrInvalidTransition, task.ID, task.Status)
	}

	switch task.Status {
	case domain.TaskStatusCreated, domain.TaskStatusAccepted, domain.TaskStatusAssigned:
	default:
		return fmt.Errorf("%w: cannot assign from %s", domain.ErrInvalidTransition, task.Status)
	}

	if !p.IsSuperAdmin() && !p.IsHeadOf(task.DepartmentID) {
		return fmt.Errorf("%w: only the task department's head may assign", domain.ErrPermissionDenied)
	}

	if assignee.Role != domain.RoleEmployee {
		return domain.ErrNotEmployee
	}
	if task.DepartmentID == nil || !assignee.InDepartment(*task.DepartmentID) {
		return domain.ErrWrongDepartment
	}

	return nil
}

// AuthorizeTransfer decides whether the principal may route the task to
// another department. A transfer never inherits acceptance: the service
// resets the task to CREATED for the receiving head.
func AuthorizeTransfer(p domain.Principal, task *domain.Task) error {
	if task.Status.IsTerminal() {
		return fmt.Errorf("%w: task %s is in terminal status %s",
			domain.ErrInvalidTransition, task.ID, task.Status)
	}

	if !p.IsSuperAdmin() && !p.IsHeadOf(task.DepartmentID) {
		return fmt.Errorf("%w: only the current department's head may transfer", domain.ErrPermissionDenied)
	}

	return nil
}
