package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/handler/dto"
	"github.com/mtlprog/taskdesk/internal/middleware"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/mtlprog/taskdesk/internal/service"
	"github.com/mtlprog/taskdesk/internal/static"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool           *pgxpool.Pool
	taskService    *service.TaskService
	adminService   *service.AdminService
	authMiddleware *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, jwtSecret string) *Handler {
	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	deptRepo := repository.NewDepartmentRepository(pool)

	// Create services
	recorder := service.NewRecorder(activityRepo, auditRepo)
	taskService := service.NewTaskService(pool, taskRepo, profileRepo, deptRepo, recorder)
	adminService := service.NewAdminService(profileRepo, deptRepo, taskRepo, recorder)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret, profileRepo)

	return &Handler{
		pool:           pool,
		taskService:    taskService,
		adminService:   adminService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Landing page
	mux.HandleFunc("GET /{$}", h.handleIndex)

	// API v1 routes with authentication
	mux.Handle("GET /api/v1/tasks", h.auth(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", h.auth(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks/{id}", h.auth(h.handleGetTask))
	mux.Handle("PATCH /api/v1/tasks/{id}", h.auth(h.handleUpdateTask))
	mux.Handle("PATCH /api/v1/tasks/{id}/status", h.auth(h.handleTransitionStatus))
	mux.Handle("POST /api/v1/tasks/{id}/assign", h.auth(h.handleAssignTask))
	mux.Handle("POST /api/v1/tasks/{id}/transfer", h.auth(h.handleTransferTask))
	mux.Handle("POST /api/v1/tasks/{id}/comments", h.auth(h.handleCommentTask))
	mux.Handle("POST /api/v1/tasks/{id}/attachments", h.auth(h.handleAttachFile))

	mux.Handle("GET /api/v1/departments", h.auth(h.handleListDepartments))
	mux.Handle("POST /api/v1/departments", h.auth(h.handleCreateDepartment))
	mux.Handle("PATCH /api/v1/departments/{id}", h.auth(h.handleUpdateDepartment))
	mux.Handle("DELETE /api/v1/departments/{id}", h.auth(h.handleDeleteDepartment))
	mux.Handle("GET /api/v1/employees", h.auth(h.handleListEmployees))
	mux.Handle("GET /api/v1/profiles/{id}", h.auth(h.handleGetProfile))
	mux.Handle("POST /api/v1/profiles", h.auth(h.handleCreateProfile))
	mux.Handle("PATCH /api/v1/profiles/{id}/role", h.auth(h.handleChangeRole))

	mux.Handle("GET /api/v1/audit-logs", h.auth(h.handleListAuditLogs))
	mux.Handle("GET /api/v1/stats", h.auth(h.handleGetStats))
}

func (h *Handler) auth(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes the response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractPathID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractPathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return "", false
	}

	return id, true
}

// decodeBody decodes the JSON request body into dst.
// Returns false if decoding failed (error already sent to client).
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return false
	}
	return true
}

// requirePrincipal pulls the authenticated principal out of the context.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, err := middleware.GetPrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "authentication required")
		return domain.Principal{}, false
	}
	return p, true
}
