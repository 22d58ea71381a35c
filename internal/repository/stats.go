package repository

import (
	"context"
	"fmt"
)

// DepartmentStatsResult holds per-department task counts for dashboard tiles.
type DepartmentStatsResult struct {
	DepartmentID   string
	DepartmentName string
	TotalTasks     int
	OpenTasks      int
	ApprovedTasks  int
	OverdueTasks   int
}

// DashboardStatsResult holds system-wide task counts.
type DashboardStatsResult struct {
	TotalTasks    int
	TasksByStatus map[string]int
	OverdueCount  int
}

// GetDashboardStats retrieves overall task counts, optionally scoped to one
// department (nil means all departments).
func (r *TaskRepository) GetDashboardStats(ctx context.Context, departmentID *string) (*DashboardStatsResult, error) {
	query := `
		SELECT
			status,
			COUNT(*),
			COUNT(CASE WHEN due_date < NOW() AND status NOT IN ('APPROVED', 'CANCELLED') THEN 1 END)
		FROM tasks
		WHERE ($1::uuid IS NULL OR department_id = $1)
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("query dashboard stats: %w", err)
	}
	defer rows.Close()

	result := &DashboardStatsResult{
		TasksByStatus: make(map[string]int),
	}
	for rows.Next() {
		var status string
		var count, overdue int
		if err := rows.Scan(&status, &count, &overdue); err != nil {
			return nil, fmt.Errorf("scan dashboard stats: %w", err)
		}
		result.TasksByStatus[status] = count
		result.TotalTasks += count
		result.OverdueCount += overdue
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// GetDepartmentStats retrieves task counts broken down by department.
func (r *TaskRepository) GetDepartmentStats(ctx context.Context) ([]DepartmentStatsResult, error) {
	query := `
		SELECT
			d.id,
			d.name,
			COUNT(t.id),
			COUNT(CASE WHEN t.status NOT IN ('APPROVED', 'CANCELLED') THEN 1 END),
			COUNT(CASE WHEN t.status = 'APPROVED' THEN 1 END),
			COUNT(CASE WHEN t.due_date < NOW() AND t.status NOT IN ('APPROVED', 'CANCELLED') THEN 1 END)
		FROM departments d
		LEFT JOIN tasks t ON t.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query department stats: %w", err)
	}
	defer rows.Close()

	var results []DepartmentStatsResult
	for rows.Next() {
		var result DepartmentStatsResult
		err := rows.Scan(
			&result.DepartmentID,
			&result.DepartmentName,
			&result.TotalTasks,
			&result.OpenTasks,
			&result.ApprovedTasks,
			&result.OverdueTasks,
		)
		if err != nil {
			return nil, fmt.Errorf("scan department stats: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}
