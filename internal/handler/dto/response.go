package dto

import (
	"time"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// TaskResponse represents a task in list and detail views.
type TaskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	CreatorID    string     `json:"creator_id"`
	DepartmentID *string    `json:"department_id"`
	AssigneeID   *string    `json:"assignee_id"`
	DueDate      *time.Time `json:"due_date"`
	IsOverdue    bool       `json:"is_overdue"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// TaskDetailResponse represents full task details with its activity timeline.
type TaskDetailResponse struct {
	Task       TaskResponse       `json:"task"`
	Activities []ActivityResponse `json:"activities"`
}

// ActivityResponse represents one entry of a task's activity timeline.
type ActivityResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	FieldName *string   `json:"field_name,omitempty"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	FileName  *string   `json:"file_name,omitempty"`
	FileURL   *string   `json:"file_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentResponse represents a department.
type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse represents a user profile.
type ProfileResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	DepartmentID *string   `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogResponse represents one audit log entry.
type AuditLogResponse struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	OldData    map[string]any `json:"old_data,omitempty"`
	NewData    map[string]any `json:"new_data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// StatsResponse represents the response for GET /stats.
type StatsResponse struct {
	ByStatus    map[string]int            `json:"by_status"`
	Overdue     int                       `json:"overdue"`
	Total       int                       `json:"total"`
	Departments []DepartmentStatsResponse `json:"departments,omitempty"`
}

// DepartmentStatsResponse represents one department tile on the dashboard.
type DepartmentStatsResponse struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Open           int    `json:"open"`
	Approved       int    `json:"approved"`
	Overdue        int    `json:"overdue"`
	Total          int    `json:"total"`
}

// NewTaskResponse creates a TaskResponse from a domain task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		CreatorID:    t.CreatorID,
		DepartmentID: t.DepartmentID,
		AssigneeID:   t.AssigneeID,
		DueDate:      t.DueDate,
		IsOverdue:    t.IsOverdue(time.Now()),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTasksListResponse creates a TasksListResponse with pagination info.
func NewTasksListResponse(tasks []*domain.Task, total, limit, offset int) TasksListResponse {
	items := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, NewTaskResponse(t))
	}
	return TasksListResponse{
		Tasks:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}

// NewTaskDetailResponse creates a TaskDetailResponse with the activity timeline.
func NewTaskDetailResponse(t *domain.Task, activities []*domain.ActivityRecord) TaskDetailResponse {
	items := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, NewActivityResponse(a))
	}
	return TaskDetailResponse{
		Task:       NewTaskResponse(t),
		Activities: items,
	}
}

// NewActivityResponse creates an ActivityResponse from a domain activity record.
func NewActivityResponse(a *domain.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		Content:   a.Content,
		ActorID:   a.ActorID,
		ActorName: a.ActorName,
		FieldName: a.FieldName,
		OldValue:  a.OldValue,
		NewValue:  a.NewValue,
		FileName:  a.FileName,
		FileURL:   a.FileURL,
		CreatedAt: a.CreatedAt,
	}
}

// NewDepartmentResponse creates a DepartmentResponse from a domain department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

// NewProfileResponse creates a ProfileResponse from a domain profile.
func NewProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         string(p.Role),
		DepartmentID: p.DepartmentID,
		CreatedAt:    p.CreatedAt,
	}
}

// NewAuditLogResponse creates an AuditLogResponse from a domain audit entry.
func NewAuditLogResponse(e *domain.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		OldData:    e.OldData,
		NewData:    e.NewData,
		CreatedAt:  e.CreatedAt,
	}
}

// NewStatsResponse creates a StatsResponse from repository stats results.
func NewStatsResponse(stats *repository.DashboardStatsResult, perDept []repository.DepartmentStatsResult) StatsResponse {
	resp := StatsResponse{
		ByStatus: stats.TasksByStatus,
		Overdue:  stats.OverdueCount,
		Total:    stats.TotalTasks,
	}
	for _, d := range perDept {
		resp.Departments = append(resp.Departments, DepartmentStatsResponse{
			DepartmentID:   d.DepartmentID,
			DepartmentName: d.DepartmentName,
			Open:           d.OpenTasks,
			Approved:       d.ApprovedTasks,
			Overdue:        d.OverdueTasks,
			Total:          d.TotalTasks,
		})
	}
	return resp
}
