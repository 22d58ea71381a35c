package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

// AdminService covers the organizational surface around tasks: departments,
// the employee directory, role management, and the audit trail. Mutations
// are restricted to SUPER_ADMIN.
type AdminService struct {
	profileRepo *repository.ProfileRepository
	deptRepo    *repository.DepartmentRepository
	taskRepo    *repository.TaskRepository
	recorder    *Recorder
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	profileRepo *repository.ProfileRepository,
	deptRepo *repository.DepartmentRepository,
	taskRepo *repository.TaskRepository,
	recorder *Recorder,
) *AdminService {
	return &AdminService{
		profileRepo: profileRepo,
		deptRepo:    deptRepo,
		taskRepo:    taskRepo,
		recorder:    recorder,
	}
}

// ListDepartments returns all departments; visible to every authenticated
// principal so tasks can be routed.
func (s *AdminService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return s.deptRepo.List(ctx)
}

// CreateDepartment creates a department.
func (s *AdminService) CreateDepartment(ctx context.Context, p domain.Principal, name string) (*domain.Department, error) {
	if !p.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: only a super admin can manage departments", domain.ErrPermissionDenied)
	}

	dept, err := s.deptRepo.Create(ctx, &domain.Department{Name: name})
	if err != nil {
		return nil, err
	}

	slog.Info("department created", "department_id", dept.ID, "actor_id", p.ID)

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditDeptCreate, domain.EntityDepartment, dept.ID,
		nil, map[string]any{"name": dept.Name}); err != nil {
		return dept, err
	}

	return dept, nil
}

// RenameDepartment changes a department's name.
func (s *AdminService) RenameDepartment(ctx context.Context, p domain.Principal, departmentID, name string) (*domain.Department, error) {
	if !p.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: only a super admin can manage departments", domain.ErrPermissionDenied)
	}

	before, err := s.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	if err := s.deptRepo.UpdateName(ctx, departmentID, name); err != nil {
		return nil, err
	}

	slog.Info("department renamed", "department_id", departmentID, "actor_id", p.ID)

	after, err := s.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditDeptUpdate, domain.EntityDepartment, departmentID,
		map[string]any{"name": before.Name}, map[string]any{"name": after.Name}); err != nil {
		return after, err
	}

	return after, nil
}

// DeleteDepartment removes an empty department. One still referenced by tasks
// or profiles is refused with a conflict.
func (s *AdminService) DeleteDepartment(ctx context.Context, p domain.Principal, departmentID string) error {
	if !p.IsSuperAdmin() {
		return fmt.Errorf("%w: only a super admin can manage departments", domain.ErrPermissionDenied)
	}

	dept, err := s.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}

	if err := s.deptRepo.Delete(ctx, departmentID); err != nil {
		return err
	}

	slog.Info("department deleted", "department_id", departmentID, "actor_id", p.ID)

	return s.recorder.Audit(ctx, p.ID, domain.AuditDeptDelete, domain.EntityDepartment, departmentID,
		map[string]any{"name": dept.Name}, nil)
}

// ListEmployees returns the employee directory. Heads see their own
// department; a super admin may scope to any department or list all.
func (s *AdminService) ListEmployees(ctx context.Context, p domain.Principal, departmentID *string) ([]*domain.Profile, error) {
	if p.Role == domain.RoleHead {
		departmentID = &p.DepartmentID
	}
	return s.profileRepo.ListEmployees(ctx, departmentID)
}

// GetProfile returns a single profile.
func (s *AdminService) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	return s.profileRepo.GetByID(ctx, profileID)
}

// CreateProfile registers a profile.
func (s *AdminService) CreateProfile(ctx context.Context, p domain.Principal, profile *domain.Profile) (*domain.Profile, error) {
	if !p.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: only a super admin can manage profiles", domain.ErrPermissionDenied)
	}

	if !profile.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if profile.DepartmentID != nil {
		if _, err := s.deptRepo.GetByID(ctx, *profile.DepartmentID); err != nil {
			return nil, err
		}
	}

	created, err := s.profileRepo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}

	slog.Info("profile created", "profile_id", created.ID, "role", created.Role, "actor_id", p.ID)

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditUserCreate, domain.EntityProfile, created.ID,
		nil, map[string]any{"email": created.Email, "role": string(created.Role)}); err != nil {
		return created, err
	}

	return created, nil
}

// ChangeRole updates a profile's role.
func (s *AdminService) ChangeRole(ctx context.Context, p domain.Principal, profileID string, role domain.Role) (*domain.Profile, error) {
	if !p.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: only a super admin can change roles", domain.ErrPermissionDenied)
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	before, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateRole(ctx, profileID, role); err != nil {
		return nil, err
	}

	slog.Info("role changed",
		"profile_id", profileID,
		"old_role", before.Role,
		"new_role", role,
		"actor_id", p.ID,
	)

	after, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Audit(ctx, p.ID, domain.AuditRoleChange, domain.EntityProfile, profileID,
		map[string]any{"role": string(before.Role)}, map[string]any{"role": string(role)}); err != nil {
		return after, err
	}

	return after, nil
}

// ListAuditLogs returns the audit trail, newest first. SUPER_ADMIN only.
func (s *AdminService) ListAuditLogs(ctx context.Context, p domain.Principal, limit, offset int) ([]*domain.AuditLogEntry, error) {
	if !p.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: only a super admin can read the audit log", domain.ErrPermissionDenied)
	}
	return s.recorder.auditRepo.List(ctx, limit, offset)
}

// DashboardStats returns status/overdue counters scoped to what the
// principal can see: heads get their department, a super admin gets the
// whole board plus per-department tiles.
func (s *AdminService) DashboardStats(ctx context.Context, p domain.Principal) (*repository.DashboardStatsResult, []repository.DepartmentStatsResult, error) {
	switch p.Role {
	case domain.RoleSuperAdmin:
		stats, err := s.taskRepo.GetDashboardStats(ctx, nil)
		if err != nil {
			return nil, nil, err
		}
		perDept, err := s.taskRepo.GetDepartmentStats(ctx)
		if err != nil {
			return nil, nil, err
		}
		return stats, perDept, nil
	case domain.RoleHead:
		stats, err := s.taskRepo.GetDashboardStats(ctx, &p.DepartmentID)
		if err != nil {
			return nil, nil, err
		}
		return stats, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: dashboard stats require a head or super admin role", domain.ErrPermissionDenied)
	}
}
