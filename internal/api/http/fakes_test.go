package http_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	api "github.com/spec-kit/training-tracker/internal/api/http"
	"github.com/spec-kit/training-tracker/internal/api/http/handlers"
	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/config"
	"github.com/spec-kit/training-tracker/internal/domain"
	"github.com/spec-kit/training-tracker/internal/observability"
	"github.com/spec-kit/training-tracker/internal/repository"
	"github.com/spec-kit/training-tracker/internal/service"
)

// ─── in-memory stores ────────────────────────────────────────────────

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memTrainingRepo struct {
	mu        sync.Mutex
	seq       int
	trainings map[string]*domain.Training
}

func newMemTrainingRepo() *memTrainingRepo {
	return &memTrainingRepo{trainings: map[string]*domain.Training{}}
}

func (r *memTrainingRepo) Create(_ context.Context, training *domain.Training) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	training.ID = fmt.Sprintf("training-%d", r.seq)
	training.CreatedAt = time.Now()
	training.UpdatedAt = training.CreatedAt
	clone := *training
	r.trainings[training.ID] = &clone
	return nil
}

func (r *memTrainingRepo) Update(_ context.Context, training *domain.Training) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainings[training.ID]; !ok {
		return pgx.ErrNoRows
	}
	training.UpdatedAt = time.Now()
	clone := *training
	r.trainings[training.ID] = &clone
	return nil
}

func (r *memTrainingRepo) GetByID(_ context.Context, id string) (*domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	training, ok := r.trainings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *training
	return &clone, nil
}

func (r *memTrainingRepo) List(_ context.Context) ([]domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Training, 0, len(r.trainings))
	for _, training := range r.trainings {
		out = append(out, *training)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTrainingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.trainings, id)
	return nil
}

type memAssignmentRepo struct {
	mu          sync.Mutex
	seq         int
	assignments map[string]*domain.Assignment
	users       *memUserRepo
	trainings   *memTrainingRepo
}

func newMemAssignmentRepo(users *memUserRepo, trainings *memTrainingRepo) *memAssignmentRepo {
	return &memAssignmentRepo{
		assignments: map[string]*domain.Assignment{},
		users:       users,
		trainings:   trainings,
	}
}

func (r *memAssignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	assignment.ID = fmt.Sprintf("assignment-%d", r.seq)
	assignment.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	assignment.UpdatedAt = assignment.CreatedAt
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	r.mu.Lock()
	assignment, ok := r.assignments[id]
	if !ok {
		r.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	clone := *assignment
	r.mu.Unlock()
	r.join(ctx, &clone)
	return &clone, nil
}

func (r *memAssignmentRepo) GetByEmployeeAndTraining(_ context.Context, employeeID, trainingID string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, assignment := range r.assignments {
		if assignment.EmployeeID == employeeID && assignment.TrainingID == trainingID {
			clone := *assignment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	r.mu.Lock()
	out := make([]domain.Assignment, 0, len(r.assignments))
	for _, assignment := range r.assignments {
		if filter.EmployeeID != nil && assignment.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, *assignment)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	for i := range out {
		r.join(ctx, &out[i])
	}
	return out, nil
}

func (r *memAssignmentRepo) UpdateStatus(_ context.Context, id string, status domain.AssignmentStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	assignment.Status = status
	assignment.CompletedAt = completedAt
	assignment.UpdatedAt = time.Now()
	return nil
}

func (r *memAssignmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.assignments, id)
	return nil
}

func (r *memAssignmentRepo) ProgressSummary(ctx context.Context) ([]domain.ProgressRow, error) {
	r.mu.Lock()
	byEmployee := map[string]*domain.ProgressRow{}
	for _, assignment := range r.assignments {
		row, ok := byEmployee[assignment.EmployeeID]
		if !ok {
			row = &domain.ProgressRow{EmployeeID: assignment.EmployeeID}
			byEmployee[assignment.EmployeeID] = row
		}
		row.Total++
		switch assignment.Status {
		case domain.AssignmentStatusCompleted:
			row.Completed++
		case domain.AssignmentStatusInProgress:
			row.InProgress++
		default:
			row.Pending++
		}
	}
	r.mu.Unlock()

	out := make([]domain.ProgressRow, 0, len(byEmployee))
	for id, row := range byEmployee {
		if user, err := r.users.GetByID(ctx, id); err == nil {
			row.EmployeeName = user.Name
			row.EmployeeEmail = user.Email
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (r *memAssignmentRepo) join(ctx context.Context, assignment *domain.Assignment) {
	if user, err := r.users.GetByID(ctx, assignment.EmployeeID); err == nil {
		assignment.Employee = &domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if user, err := r.users.GetByID(ctx, assignment.AssignedBy); err == nil {
		assignment.AssignedByUser = &domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if training, err := r.trainings.GetByID(ctx, assignment.TrainingID); err == nil {
		assignment.Training = &domain.TrainingSummary{
			ID:            training.ID,
			Title:         training.Title,
			Category:      training.Category,
			DurationHours: training.DurationHours,
		}
	}
}

// ─── app assembly ────────────────────────────────────────────────────

func newTestApp() *fiber.App {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			BcryptCost:    4,
		},
	}

	users := newMemUserRepo()
	trainings := newMemTrainingRepo()
	assignments := newMemAssignmentRepo(users, trainings)

	authService := service.NewAuthService(cfg, users)
	trainingService := service.NewTrainingService(trainings, nil)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignments,
		UserRepo:       users,
		TrainingRepo:   trainings,
	})

	app := fiber.New()
	api.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	api.RegisterRoutes(app, api.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(authService),
		Trainings:      handlers.NewTrainingsHandler(trainingService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app
}
