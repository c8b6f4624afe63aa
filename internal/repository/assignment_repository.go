package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/training-tracker/internal/domain"
)

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	EmployeeID *string
}

// AssignmentRepository encapsulates assignment persistence. Create relies
// on the (employee_id, training_id) unique constraint: a concurrent
// duplicate insert fails with a unique violation even when the caller's
// pre-check passed.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	GetByEmployeeAndTraining(ctx context.Context, employeeID, trainingID string) (*domain.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus, completedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	ProgressSummary(ctx context.Context) ([]domain.ProgressRow, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `
        a.id, a.employee_id, a.training_id, a.assigned_by, a.status, a.completed_at,
        a.created_at, a.updated_at,
        e.id, e.name, e.email,
        t.id, t.title, t.category, t.duration_hours,
        b.id, b.name, b.email`

const assignmentJoins = `
        FROM assignments a
        JOIN users e ON e.id = a.employee_id
        JOIN trainings t ON t.id = a.training_id
        JOIN users b ON b.id = a.assigned_by`

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (employee_id, training_id, assigned_by, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		assignment.EmployeeID,
		assignment.TrainingID,
		assignment.AssignedBy,
		assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT` + assignmentColumns + assignmentJoins + ` WHERE a.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanAssignment(row)
}

func (r *assignmentRepository) GetByEmployeeAndTraining(ctx context.Context, employeeID, trainingID string) (*domain.Assignment, error) {
	query := `SELECT` + assignmentColumns + assignmentJoins + ` WHERE a.employee_id=$1 AND a.training_id=$2`
	row := r.pool.QueryRow(ctx, query, employeeID, trainingID)
	return scanAssignment(row)
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	query := `SELECT` + assignmentColumns + assignmentJoins
	args := []any{}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += ` WHERE a.employee_id=$1`
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *assignment)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus, completedAt *time.Time) error {
	const query = `
        UPDATE assignments SET status=$1, completed_at=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, completedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) ProgressSummary(ctx context.Context) ([]domain.ProgressRow, error) {
	const query = `
        SELECT a.employee_id, u.name, u.email,
               COUNT(*) AS total,
               COUNT(*) FILTER (WHERE a.status = 'completed') AS completed,
               COUNT(*) FILTER (WHERE a.status = 'in_progress') AS in_progress,
               COUNT(*) FILTER (WHERE a.status = 'pending') AS pending
        FROM assignments a
        JOIN users u ON u.id = a.employee_id
        GROUP BY a.employee_id, u.name, u.email
        ORDER BY u.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProgressRow
	for rows.Next() {
		var row domain.ProgressRow
		if err := rows.Scan(
			&row.EmployeeID,
			&row.EmployeeName,
			&row.EmployeeEmail,
			&row.Total,
			&row.Completed,
			&row.InProgress,
			&row.Pending,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var (
		assignment domain.Assignment
		employee   domain.UserSummary
		training   domain.TrainingSummary
		assignedBy domain.UserSummary
	)
	if err := row.Scan(
		&assignment.ID,
		&assignment.EmployeeID,
		&assignment.TrainingID,
		&assignment.AssignedBy,
		&assignment.Status,
		&assignment.CompletedAt,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&training.ID,
		&training.Title,
		&training.Category,
		&training.DurationHours,
		&assignedBy.ID,
		&assignedBy.Name,
		&assignedBy.Email,
	); err != nil {
		return nil, err
	}
	assignment.Employee = &employee
	assignment.Training = &training
	assignment.AssignedByUser = &assignedBy
	return &assignment, nil
}
