package service

import (
	"testing"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deptSales = "00000000-0000-0000-0000-00000000d001"
	deptOps   = "00000000-0000-0000-0000-00000000d002"

	userCreator  = "00000000-0000-0000-0000-00000000a001"
	userHead     = "00000000-0000-0000-0000-00000000a002"
	userWorker   = "00000000-0000-0000-0000-00000000a003"
	userAdmin    = "00000000-0000-0000-0000-00000000a004"
	userOutsider = "00000000-0000-0000-0000-00000000a005"
)

func creatorPrincipal() domain.Principal {
	return domain.Principal{ID: userCreator, Role: domain.RoleHead, DepartmentID: deptOps}
}

func headPrincipal() domain.Principal {
	return domain.Principal{ID: userHead, Role: domain.RoleHead, DepartmentID: deptSales}
}

func workerPrincipal() domain.Principal {
	return domain.Principal{ID: userWorker, Role: domain.RoleEmployee, DepartmentID: deptSales}
}

func adminPrincipal() domain.Principal {
	return domain.Principal{ID: userAdmin, Role: domain.RoleSuperAdmin}
}

func testTask(status domain.TaskStatus, assigneeID *string) *domain.Task {
	dept := deptSales
	return &domain.Task{
		ID:           "00000000-0000-0000-0000-00000000t001",
		Status:       status,
		CreatorID:    userCreator,
		DepartmentID: &dept,
		AssigneeID:   assigneeID,
	}
}

func deptlessTask(status domain.TaskStatus) *domain.Task {
	task := testTask(status, nil)
	task.DepartmentID = nil
	return task
}

func TestAuthorizeTransition(t *testing.T) {
	worker := userWorker

	tests := []struct {
		name      string
		principal domain.Principal
		task      *domain.Task
		target    domain.TaskStatus
		wantErr   error
	}{
		{
			name:      "head accepts task routed to their department",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatusAccepted,
		},
		{
			name:      "employee cannot accept",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatusAccepted,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "head of another department cannot accept",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleHead, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatusAccepted,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "assignee starts work",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusAssigned, &worker),
			target:    domain.TaskStatusInProgress,
		},
		{
			name:      "non-assignee cannot start work",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAssigned, &worker),
			target:    domain.TaskStatusInProgress,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "assignee submits",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			target:    domain.TaskStatusSubmitted,
		},
		{
			name:      "creator approves submission",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusApproved,
		},
		{
			name:      "creator rejects submission",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusRejected,
		},
		{
			name:      "department head cannot approve someone else's submission",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusApproved,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "assignee cannot approve own work",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusApproved,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "creator cancels active task",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			target:    domain.TaskStatusCancelled,
		},
		{
			name:      "creator cannot cancel submitted task directly",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusCancelled,
			wantErr:   domain.ErrInvalidTransition,
		},
		{
			name:      "head requests cancellation of task they did not open",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			target:    domain.TaskStatusCancelRequested,
		},
		{
			name:      "creator confirms cancel request",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusCancelRequested, &worker),
			target:    domain.TaskStatusCancelled,
		},
		{
			name:      "creator declines cancel request back to assigned",
			principal: creatorPrincipal(),
			task:      testTask(domain.TaskStatusCancelRequested, &worker),
			target:    domain.TaskStatusAssigned,
		},
		{
			name:      "employee cannot resolve cancel request",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusCancelRequested, &worker),
			target:    domain.TaskStatusCancelled,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "super admin may drive any legal edge",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusSubmitted, &worker),
			target:    domain.TaskStatusApproved,
		},
		{
			name:      "super admin still bound by the lifecycle graph",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatusApproved,
			wantErr:   domain.ErrInvalidTransition,
		},
		{
			name:      "terminal task rejects everything",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusApproved, &worker),
			target:    domain.TaskStatusCancelled,
			wantErr:   domain.ErrInvalidTransition,
		},
		{
			name:      "assigned is not a plain transition target",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatusAssigned,
			wantErr:   domain.ErrAssignViaOp,
		},
		{
			name:      "unknown status is a validation error",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			target:    domain.TaskStatus("DONE"),
			wantErr:   domain.ErrInvalidStatus,
		},
		{
			name:      "super admin cannot advance a task with no department",
			principal: adminPrincipal(),
			task:      deptlessTask(domain.TaskStatusCreated),
			target:    domain.TaskStatusAccepted,
			wantErr:   domain.ErrInvalidTransition,
		},
		{
			name:      "creator cancels a task with no department",
			principal: creatorPrincipal(),
			task:      deptlessTask(domain.TaskStatusCreated),
			target:    domain.TaskStatusCancelled,
		},
		{
			name:      "requesting the current status reads as a lost race",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			target:    domain.TaskStatusAccepted,
			wantErr:   domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AuthorizeTransition(tt.principal, tt.task, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAuthorizeTransition_RejectRequiresComment(t *testing.T) {
	worker := userWorker
	task := testTask(domain.TaskStatusSubmitted, &worker)

	decision, err := AuthorizeTransition(creatorPrincipal(), task, domain.TaskStatusRejected)
	require.NoError(t, err)
	assert.True(t, decision.RequiresComment)

	// The comment requirement is validation, not authorization: it binds the
	// super admin too.
	decision, err = AuthorizeTransition(adminPrincipal(), task, domain.TaskStatusRejected)
	require.NoError(t, err)
	assert.True(t, decision.RequiresComment)

	decision, err = AuthorizeTransition(creatorPrincipal(), task, domain.TaskStatusApproved)
	require.NoError(t, err)
	assert.False(t, decision.RequiresComment)
}

func TestAuthorizeAssign(t *testing.T) {
	worker := userWorker
	employee := &domain.Profile{ID: userWorker, Role: domain.RoleEmployee, DepartmentID: strPtr(deptSales)}
	outsider := &domain.Profile{ID: userOutsider, Role: domain.RoleEmployee, DepartmentID: strPtr(deptOps)}
	head := &domain.Profile{ID: userHead, Role: domain.RoleHead, DepartmentID: strPtr(deptSales)}

	tests := []struct {
		name      string
		principal domain.Principal
		task      *domain.Task
		assignee  *domain.Profile
		wantErr   error
	}{
		{
			name:      "head assigns employee of their department",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  employee,
		},
		{
			name:      "head assigns straight from created",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusCreated, nil),
			assignee:  employee,
		},
		{
			name:      "reassignment of an assigned task",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAssigned, &worker),
			assignee:  employee,
		},
		{
			name:      "super admin assigns",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  employee,
		},
		{
			name:      "employee cannot assign",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  employee,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "head of another department cannot assign",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleHead, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  employee,
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "assignee must be an employee",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  head,
			wantErr:   domain.ErrNotEmployee,
		},
		{
			name:      "assignee must belong to the task department",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			assignee:  outsider,
			wantErr:   domain.ErrWrongDepartment,
		},
		{
			name:      "cannot assign in-flight work",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
			assignee:  employee,
			wantErr:   domain.ErrInvalidTransition,
		},
		{
			name:      "cannot assign a terminal task",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusCancelled, nil),
			assignee:  employee,
			wantErr:   domain.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeAssign(tt.principal, tt.task, tt.assignee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAuthorizeTransfer(t *testing.T) {
	worker := userWorker

	tests := []struct {
		name      string
		principal domain.Principal
		task      *domain.Task
		wantErr   error
	}{
		{
			name:      "current department head transfers",
			principal: headPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
		},
		{
			name:      "super admin transfers",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusInProgress, &worker),
		},
		{
			name:      "employee cannot transfer",
			principal: workerPrincipal(),
			task:      testTask(domain.TaskStatusAccepted, nil),
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "foreign head cannot transfer",
			principal: domain.Principal{ID: userOutsider, Role: domain.RoleHead, DepartmentID: deptOps},
			task:      testTask(domain.TaskStatusAccepted, nil),
			wantErr:   domain.ErrPermissionDenied,
		},
		{
			name:      "terminal task cannot be transferred",
			principal: adminPrincipal(),
			task:      testTask(domain.TaskStatusApproved, &worker),
			wantErr:   domain.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeTransfer(tt.principal, tt.task)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
