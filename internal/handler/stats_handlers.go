package handler

import (
	"net/http"

	"github.com/mtlprog/taskdesk/internal/handler/dto"
)

// handleGetStats returns dashboard counters for the caller's scope.
// @Summary Get dashboard stats
// @Description Heads get their department's counters; a super admin gets the whole board with per-department tiles
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	stats, perDept, err := h.adminService.DashboardStats(ctx, p)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewStatsResponse(stats, perDept))
}
