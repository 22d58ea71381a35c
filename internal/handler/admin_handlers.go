package handler

import (
	"net/http"
	"strconv"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
)

// handleListDepartments lists all departments.
// @Summary List departments
// @Tags admin
// @Produce json
// @Success 200 {array} dto.DepartmentResponse
// @Security BearerAuth
// @Router /departments [get]
func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	depts, err := h.adminService.ListDepartments(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	items := make([]dto.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		items = append(items, dto.NewDepartmentResponse(d))
	}
	respondJSON(w, http.StatusOK, items)
}

// handleCreateDepartment creates a department. SUPER_ADMIN only.
// @Summary Create department
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateDepartmentRequest true "Department creation request"
// @Success 201 {object} dto.DepartmentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /departments [post]
func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required")
		return
	}

	dept, err := h.adminService.CreateDepartment(ctx, p, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewDepartmentResponse(dept))
}

// handleUpdateDepartment renames a department. SUPER_ADMIN only.
// @Summary Rename department
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param request body dto.UpdateDepartmentRequest true "Department update request"
// @Success 200 {object} dto.DepartmentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /departments/{id} [patch]
func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	departmentID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required")
		return
	}

	dept, err := h.adminService.RenameDepartment(ctx, p, departmentID, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewDepartmentResponse(dept))
}

// handleDeleteDepartment removes an empty department. SUPER_ADMIN only.
// @Summary Delete department
// @Tags admin
// @Param id path string true "Department ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /departments/{id} [delete]
func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	departmentID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.DeleteDepartment(ctx, p, departmentID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListEmployees lists the employee directory.
// @Summary List employees
// @Description Heads see their own department; a super admin may scope with ?department=
// @Tags admin
// @Produce json
// @Success 200 {array} dto.ProfileResponse
// @Security BearerAuth
// @Router /employees [get]
func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var departmentID *string
	if dept := r.URL.Query().Get("department"); dept != "" {
		departmentID = &dept
	}

	profiles, err := h.adminService.ListEmployees(ctx, p, departmentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	items := make([]dto.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, dto.NewProfileResponse(profile))
	}
	respondJSON(w, http.StatusOK, items)
}

// handleGetProfile retrieves a single profile.
// @Summary Get profile
// @Tags admin
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{id} [get]
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	profileID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	profile, err := h.adminService.GetProfile(ctx, profileID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(profile))
}

// handleCreateProfile registers a profile. SUPER_ADMIN only.
// @Summary Create profile
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateProfileRequest true "Profile creation request"
// @Success 201 {object} dto.ProfileResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /profiles [post]
func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.CreateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.FullName == "" || req.Role == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email, full_name and role are required")
		return
	}

	profile, err := h.adminService.CreateProfile(ctx, p, &domain.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         domain.Role(req.Role),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewProfileResponse(profile))
}

// handleChangeRole updates a profile's role. SUPER_ADMIN only.
// @Summary Change profile role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body dto.ChangeRoleRequest true "Role change request"
// @Success 200 {object} dto.ProfileResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{id}/role [patch]
func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	profileID, ok := extractPathID(w, r)
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "role is required")
		return
	}

	profile, err := h.adminService.ChangeRole(ctx, p, profileID, domain.Role(req.Role))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(profile))
}

// handleListAuditLogs returns the audit trail, newest first. SUPER_ADMIN only.
// @Summary List audit logs
// @Tags admin
// @Produce json
// @Success 200 {array} dto.AuditLogResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *Handler) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	limit := 50
	offset := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			offset = n
		}
	}

	entries, err := h.adminService.ListAuditLogs(ctx, p, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewAuditLogResponse(e))
	}
	respondJSON(w, http.StatusOK, items)
}
