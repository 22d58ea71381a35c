package service

import (
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// ViewExternal narrows a HEAD's listing to tasks they created that are routed
// to another department.
const ViewExternal = "external"

// historyStatuses are globally visible: closed tasks stay queryable for
// reporting regardless of role or department.
var historyStatuses = []domain.TaskStatus{
	domain.TaskStatusApproved,
	domain.TaskStatusCancelled,
}

// VisibilityFor computes the listing predicate for a principal. The same
// predicate gates direct single-task reads via CanSee; the two must never
// drift apart.
func VisibilityFor(p domain.Principal, view string) repository.VisibilityFilter {
	if p.IsSuperAdmin() {
		return repository.VisibilityFilter{All: true}
	}

	switch p.Role {
	case domain.RoleHead:
		if view == ViewExternal {
			return repository.VisibilityFilter{
				CreatorID:    &p.ID,
				DepartmentID: &p.DepartmentID,
				ExternalOnly: true,
			}
		}
		return repository.VisibilityFilter{
			DepartmentID:    &p.DepartmentID,
			CreatorID:       &p.ID,
			HistoryStatuses: historyStatuses,
		}
	default:
		return repository.VisibilityFilter{
			AssigneeID:      &p.ID,
			HistoryStatuses: historyStatuses,
		}
	}
}

// CanSee reports whether the principal may read the task at all. Client ids
// are never trusted alone: every direct fetch re-checks this predicate.
func CanSee(p domain.Principal, task *domain.Task) bool {
	if p.IsSuperAdmin() {
		return true
	}

	for _, s := range historyStatuses {
		if task.Status == s {
			return true
		}
	}

	switch p.Role {
	case domain.RoleHead:
		return task.InDepartment(p.DepartmentID) || task.IsCreatedBy(p.ID)
	default:
		return task.IsAssignedTo(p.ID)
	}
}
