package dto

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Priority     string  `json:"priority,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	DueDate      *string `json:"due_date,omitempty"` // RFC 3339
}

// UpdateTaskRequest represents the request body for PATCH /tasks/{id}.
// Absent fields are left unchanged; an empty due_date clears it.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"` // RFC 3339, "" to clear
}

// TransitionStatusRequest represents the request body for PATCH /tasks/{id}/status.
type TransitionStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// AssignTaskRequest represents the request body for POST /tasks/{id}/assign.
type AssignTaskRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TransferTaskRequest represents the request body for POST /tasks/{id}/transfer.
type TransferTaskRequest struct {
	DepartmentID string `json:"department_id"`
}

// CommentTaskRequest represents the request body for POST /tasks/{id}/comments.
type CommentTaskRequest struct {
	Content string `json:"content"`
}

// AttachFileRequest represents the request body for POST /tasks/{id}/attachments.
type AttachFileRequest struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// CreateDepartmentRequest represents the request body for POST /departments.
type CreateDepartmentRequest struct {
	Name string `json:"name"`
}

// UpdateDepartmentRequest represents the request body for PATCH /departments/{id}.
type UpdateDepartmentRequest struct {
	Name string `json:"name"`
}

// CreateProfileRequest represents the request body for POST /profiles.
type CreateProfileRequest struct {
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// ChangeRoleRequest represents the request body for PATCH /profiles/{id}/role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ListTasksFilters represents query parameters for GET /tasks.
type ListTasksFilters struct {
	View         string   // ?view=external
	DepartmentID *string  // ?department=<uuid>
	Status       []string // Multiple statuses: ?status=CREATED,ASSIGNED
	Priority     []string // ?priority=HIGH
	Search       string   // ?q=<text>, matches title and description
	Overdue      bool     // ?overdue=true
	Limit        int      // ?limit=50
	Offset       int      // ?offset=0
}
