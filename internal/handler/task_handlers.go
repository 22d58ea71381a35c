package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
)

// handleCreateTask creates a new task.
// @Summary Create a new task
// @Description Creates a new task. If assignee_id is provided, the task starts in ASSIGNED.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title == "" || len(req.Title) > 200 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title must be between 1 and 200 characters")
		return
	}

	priority := domain.TaskPriorityMedium
	if req.Priority != "" {
		priority = domain.TaskPriority(req.Priority)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority must be 'LOW', 'MEDIUM', or 'HIGH'")
			return
		}
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "due_date must be an RFC 3339 timestamp")
			return
		}
		dueDate = &parsed
	}

	task, err := h.taskService.CreateTask(ctx, p, service.CreateTaskParams{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     priority,
		DepartmentID: req.DepartmentID,
		AssigneeID:   req.AssigneeID,
		DueDate:      dueDate,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewTaskResponse(task))
}

// handleGetTask retrieves task details with its activity timeline.
// @Summary Get task details
// @Description Get full task details including the activity timeline
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	task, activities, err := h.taskService.GetTask(ctx, p, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskDetailResponse(task, activities))
}

// handleUpdateTask edits a task's descriptive fields.
// @Summary Update task
// @Description Edit title, description, priority or due date. Creator or super admin only.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Task update request"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	edit := repository.TaskEdit{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 200) {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title must be between 1 and 200 characters")
		return
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority must be 'LOW', 'MEDIUM', or 'HIGH'")
			return
		}
		edit.Priority = &priority
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			edit.ClearDueDate = true
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "due_date must be an RFC 3339 timestamp")
				return
			}
			edit.DueDate = &parsed
		}
	}

	task, err := h.taskService.UpdateTask(ctx, p, taskID, edit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleListTasks lists tasks visible to the caller.
// @Summary List tasks
// @Description List tasks within the caller's visibility scope, newest first
// @Tags tasks
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	filters := parseListFilters(r)

	for _, s := range filters.Status {
		if !domain.TaskStatus(s).IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown status: "+s)
			return
		}
	}
	for _, pr := range filters.Priority {
		if !domain.TaskPriority(pr).IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown priority: "+pr)
			return
		}
	}

	tasks, total, err := h.taskService.ListTasks(ctx, p, service.ListTasksParams{
		View:         filters.View,
		DepartmentID: filters.DepartmentID,
		Statuses:     filters.Status,
		Priorities:   filters.Priority,
		Search:       filters.Search,
		Overdue:      filters.Overdue,
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTasksListResponse(tasks, total, filters.Limit, filters.Offset))
}

// handleTransitionStatus moves a task to a new lifecycle status.
// @Summary Transition task status
// @Description Request a status transition. REJECTED requires a comment.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.TransitionStatusRequest true "Transition request"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/status [patch]
func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.TransitionStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status is required")
		return
	}

	task, err := h.taskService.RequestTransition(ctx, p, taskID, domain.TaskStatus(req.Status), strings.TrimSpace(req.Comment))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleAssignTask assigns the task to an employee.
// @Summary Assign task
// @Description Assign or reassign the task to an employee of its department
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.AssignTaskRequest true "Assignment request"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/assign [post]
func (h *Handler) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AssigneeID == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "assignee_id is required")
		return
	}

	task, err := h.taskService.Assign(ctx, p, taskID, req.AssigneeID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleTransferTask routes the task to another department.
// @Summary Transfer task
// @Description Transfer the task to another department; the assignee is cleared and the status resets to CREATED
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.TransferTaskRequest true "Transfer request"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/transfer [post]
func (h *Handler) handleTransferTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.TransferTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DepartmentID == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "department_id is required")
		return
	}

	task, err := h.taskService.Transfer(ctx, p, taskID, req.DepartmentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleCommentTask adds a comment to the task's timeline.
// @Summary Comment on task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.CommentTaskRequest true "Comment request"
// @Success 201 {object} dto.ActivityResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/comments [post]
func (h *Handler) handleCommentTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.CommentTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required")
		return
	}

	record, err := h.taskService.Comment(ctx, p, taskID, req.Content)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewActivityResponse(record))
}

// handleAttachFile records attachment metadata on the task's timeline.
// @Summary Attach file to task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.AttachFileRequest true "Attachment request"
// @Success 201 {object} dto.ActivityResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/attachments [post]
func (h *Handler) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.AttachFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FileName == "" || req.FileURL == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "file_name and file_url are required")
		return
	}

	record, err := h.taskService.Attach(ctx, p, taskID, req.FileName, req.FileURL)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewActivityResponse(record))
}

// parseListFilters parses GET /tasks query parameters.
func parseListFilters(r *http.Request) dto.ListTasksFilters {
	q := r.URL.Query()

	filters := dto.ListTasksFilters{
		View:    q.Get("view"),
		Search:  q.Get("q"),
		Overdue: q.Get("overdue") == "true",
		Limit:   50,
		Offset:  0,
	}

	if dept := q.Get("department"); dept != "" {
		filters.DepartmentID = &dept
	}
	filters.Status = splitParam(q.Get("status"), ",")
	filters.Priority = splitParam(q.Get("priority"), ",")

	if limitParam := q.Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 200 {
			filters.Limit = n
		}
	}
	if offsetParam := q.Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	return filters
}

// splitParam splits a comma-separated query value, dropping empty entries.
func splitParam(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
