package service

import (
	"testing"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestVisibilityFor(t *testing.T) {
	t.Run("super admin sees everything", func(t *testing.T) {
		f := VisibilityFor(adminPrincipal(), "")
		assert.True(t, f.All)
	})

	t.Run("head sees department, own tasks and history", func(t *testing.T) {
		p := headPrincipal()
		f := VisibilityFor(p, "")
		assert.False(t, f.All)
		assert.Equal(t, deptSales, *f.DepartmentID)
		assert.Equal(t, p.ID, *f.CreatorID)
		assert.ElementsMatch(t,
			[]domain.TaskStatus{domain.TaskStatusApproved, domain.TaskStatusCancelled},
			f.HistoryStatuses)
	})

	t.Run("head external view narrows to tasks sent elsewhere", func(t *testing.T) {
		p := headPrincipal()
		f := VisibilityFor(p, ViewExternal)
		assert.True(t, f.ExternalOnly)
		assert.Equal(t, p.ID, *f.CreatorID)
		assert.Equal(t, deptSales, *f.DepartmentID)
	})

	t.Run("employee sees assigned tasks and history", func(t *testing.T) {
		p := workerPrincipal()
		f := VisibilityFor(p, "")
		assert.False(t, f.All)
		assert.Nil(t, f.DepartmentID)
		assert.Nil(t, f.CreatorID)
		assert.Equal(t, p.ID, *f.AssigneeID)
		assert.NotEmpty(t, f.HistoryStatuses)
	})

	t.Run("external view is ignored for employees", func(t *testing.T) {
		f := VisibilityFor(workerPrincipal(), ViewExternal)
		assert.False(t, f.ExternalOnly)
	})
}

func TestCanSee(t *testing.T) {
	worker := userWorker

	tests := []struct {
		name      string
		principal domain.Principal
		task      *domain.Task
		want      bool
	}{
		{
			name:      "super admin sees any task",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			want:      true,
		},
		{
			name:      "head sees task in their department",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			want:      true,
		},
		{
			name:      "creator head sees task routed elsewhere",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			want:      true,
		},
		{
			name:      "foreign head cannot see an active task",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleHead, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusInProgress, &worker),
			want:      false,
		},
		{
			name:      "assignee sees their task",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusAssigned, &worker),
			want:      true,
		},
		{
			name:      "employee cannot see unassigned department task",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			want:      false,
		},
		{
			name:      "approved task is global history",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleEmployee, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusApproved, &worker),
			want:      true,
		},
		{
			name:      "cancelled task is global history",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleEmployee, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusCancelled, nil),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSee(tt.principal, tt.task))
		})
	}
}
