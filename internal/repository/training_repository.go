package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/training-tracker/internal/domain"
)

// TrainingRepository encapsulates training persistence.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) error
	Update(ctx context.Context, training *domain.Training) error
	GetByID(ctx context.Context, id string) (*domain.Training, error)
	List(ctx context.Context) ([]domain.Training, error)
	Delete(ctx context.Context, id string) error
}

type trainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository instantiates repository.
func NewTrainingRepository(pool *pgxpool.Pool) TrainingRepository {
	return &trainingRepository{pool: pool}
}

func (r *trainingRepository) Create(ctx context.Context, training *domain.Training) error {
	const query = `
        INSERT INTO trainings (title, description, category, duration_hours, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		training.Title,
		training.Description,
		training.Category,
		training.DurationHours,
		training.CreatedBy,
	).Scan(&training.ID, &training.CreatedAt, &training.UpdatedAt)
}

func (r *trainingRepository) Update(ctx context.Context, training *domain.Training) error {
	const query = `
        UPDATE trainings SET title=$1, description=$2, category=$3, duration_hours=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		training.Title,
		training.Description,
		training.Category,
		training.DurationHours,
		training.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *trainingRepository) GetByID(ctx context.Context, id string) (*domain.Training, error) {
	const query = `
        SELECT id, title, description, category, duration_hours, created_by, created_at, updated_at
        FROM trainings WHERE id=$1`

	var training domain.Training
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&training.ID,
		&training.Title,
		&training.Description,
		&training.Category,
		&training.DurationHours,
		&training.CreatedBy,
		&training.CreatedAt,
		&training.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *trainingRepository) List(ctx context.Context) ([]domain.Training, error) {
	const query = `
        SELECT id, title, description, category, duration_hours, created_by, created_at, updated_at
        FROM trainings ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Training
	for rows.Next() {
		var training domain.Training
		if err := rows.Scan(
			&training.ID,
			&training.Title,
			&training.Description,
			&training.Category,
			&training.DurationHours,
			&training.CreatedBy,
			&training.CreatedAt,
			&training.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, training)
	}
	return result, rows.Err()
}

func (r *trainingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM trainings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
