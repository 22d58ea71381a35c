package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{"created to accepted", TaskStatusCreated, TaskStatusAccepted, true},
		{"created to assigned", TaskStatusCreated, TaskStatusAssigned, true},
		{"created to cancelled", TaskStatusCreated, TaskStatusCancelled, true},
		{"created to in_progress skips assignment", TaskStatusCreated, TaskStatusInProgress, false},
		{"created to approved", TaskStatusCreated, TaskStatusApproved, false},
		{"accepted to assigned", TaskStatusAccepted, TaskStatusAssigned, true},
		{"accepted to in_progress", TaskStatusAccepted, TaskStatusInProgress, false},
		{"assigned to in_progress", TaskStatusAssigned, TaskStatusInProgress, true},
		{"assigned to cancel_requested", TaskStatusAssigned, TaskStatusCancelRequested, true},
		{"assigned to submitted", TaskStatusAssigned, TaskStatusSubmitted, false},
		{"in_progress to submitted", TaskStatusInProgress, TaskStatusSubmitted, true},
		{"in_progress to cancelled", TaskStatusInProgress, TaskStatusCancelled, true},
		{"in_progress to approved", TaskStatusInProgress, TaskStatusApproved, false},
		{"submitted to approved", TaskStatusSubmitted, TaskStatusApproved, true},
		{"submitted to rejected", TaskStatusSubmitted, TaskStatusRejected, true},
		{"submitted to cancelled", TaskStatusSubmitted, TaskStatusCancelled, false},
		{"rejected back to in_progress", TaskStatusRejected, TaskStatusInProgress, true},
		{"rejected to approved", TaskStatusRejected, TaskStatusApproved, false},
		{"cancel_requested to cancelled", TaskStatusCancelRequested, TaskStatusCancelled, true},
		{"cancel_requested back to assigned", TaskStatusCancelRequested, TaskStatusAssigned, true},
		{"cancel_requested to in_progress", TaskStatusCancelRequested, TaskStatusInProgress, false},
		{"approved is terminal", TaskStatusApproved, TaskStatusInProgress, false},
		{"cancelled is terminal", TaskStatusCancelled, TaskStatusCreated, false},
		{"no self loop", TaskStatusInProgress, TaskStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[TaskStatus]bool{
		TaskStatusApproved:  true,
		TaskStatusCancelled: true,
	}
	all := []TaskStatus{
		TaskStatusCreated, TaskStatusAccepted, TaskStatusAssigned,
		TaskStatusInProgress, TaskStatusSubmitted, TaskStatusApproved,
		TaskStatusRejected, TaskStatusCancelled, TaskStatusCancelRequested,
	}
	for _, status := range all {
		if got := status.IsTerminal(); got != terminal[status] {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, terminal[status])
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	all := []TaskStatus{
		TaskStatusCreated, TaskStatusAccepted, TaskStatusAssigned,
		TaskStatusInProgress, TaskStatusSubmitted, TaskStatusApproved,
		TaskStatusRejected, TaskStatusCancelled, TaskStatusCancelRequested,
	}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s has outgoing edge to %s", from, to)
			}
		}
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  TaskStatus
		want    bool
	}{
		{"no due date", nil, TaskStatusInProgress, false},
		{"future due date", &future, TaskStatusInProgress, false},
		{"past due date active", &past, TaskStatusInProgress, true},
		{"past due date approved", &past, TaskStatusApproved, false},
		{"past due date cancelled", &past, TaskStatusCancelled, false},
		{"past due date submitted", &past, TaskStatusSubmitted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Status: tt.status, DueDate: tt.dueDate}
			if got := task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}
