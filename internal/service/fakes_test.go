package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/domain"
	"github.com/spec-kit/training-tracker/internal/repository"
	apperrors "github.com/spec-kit/training-tracker/pkg/util"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory repository fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &pgconnUniqueErr
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
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

type fakeTrainingRepo struct {
	mu        sync.Mutex
	seq       int
	trainings map[string]*domain.Training
}

func newFakeTrainingRepo() *fakeTrainingRepo {
	return &fakeTrainingRepo{trainings: make(map[string]*domain.Training)}
}

func (r *fakeTrainingRepo) Create(_ context.Context, training *domain.Training) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	training.ID = fmt.Sprintf("training-%d", r.seq)
	training.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	training.UpdatedAt = training.CreatedAt
	clone := *training
	r.trainings[training.ID] = &clone
	return nil
}

func (r *fakeTrainingRepo) Update(_ context.Context, training *domain.Training) error {
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

func (r *fakeTrainingRepo) GetByID(_ context.Context, id string) (*domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	training, ok := r.trainings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *training
	return &clone, nil
}

func (r *fakeTrainingRepo) List(_ context.Context) ([]domain.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Training, 0, len(r.trainings))
	for _, training := range r.trainings {
		result = append(result, *training)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTrainingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.trainings, id)
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	seq         int
	assignments map[string]*domain.Assignment
	users       *fakeUserRepo
	trainings   *fakeTrainingRepo
}

func newFakeAssignmentRepo(users *fakeUserRepo, trainings *fakeTrainingRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: make(map[string]*domain.Assignment),
		users:       users,
		trainings:   trainings,
	}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.EmployeeID == assignment.EmployeeID && existing.TrainingID == assignment.TrainingID {
			return &pgconnUniqueErr
		}
	}
	r.seq++
	assignment.ID = fmt.Sprintf("assignment-%d", r.seq)
	assignment.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	assignment.UpdatedAt = assignment.CreatedAt
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
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

func (r *fakeAssignmentRepo) GetByEmployeeAndTraining(_ context.Context, employeeID, trainingID string) (*domain.Assignment, error) {
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

func (r *fakeAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	r.mu.Lock()
	result := make([]domain.Assignment, 0, len(r.assignments))
	for _, assignment := range r.assignments {
		if filter.EmployeeID != nil && assignment.EmployeeID != *filter.EmployeeID {
			continue
		}
		result = append(result, *assignment)
	}
	r.mu.Unlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	for i := range result {
		r.join(ctx, &result[i])
	}
	return result, nil
}

func (r *fakeAssignmentRepo) UpdateStatus(_ context.Context, id string, status domain.AssignmentStatus, completedAt *time.Time) error {
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

func (r *fakeAssignmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.assignments, id)
	return nil
}

func (r *fakeAssignmentRepo) ProgressSummary(ctx context.Context) ([]domain.ProgressRow, error) {
	r.mu.Lock()
	byEmployee := make(map[string]*domain.ProgressRow)
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
		case domain.AssignmentStatusPending:
			row.Pending++
		}
	}
	r.mu.Unlock()

	result := make([]domain.ProgressRow, 0, len(byEmployee))
	for _, row := range byEmployee {
		if user, err := r.users.GetByID(ctx, row.EmployeeID); err == nil {
			row.EmployeeName = user.Name
			row.EmployeeEmail = user.Email
		}
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EmployeeName < result[j].EmployeeName
	})
	return result, nil
}

func (r *fakeAssignmentRepo) join(ctx context.Context, assignment *domain.Assignment) {
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

type fakeSummaryCache struct {
	mu           sync.Mutex
	payload      []byte
	hits         int
	invalidation int
}

func (c *fakeSummaryCache) Get(_ context.Context) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return nil, false
	}
	c.hits++
	return c.payload, true
}

func (c *fakeSummaryCache) Set(_ context.Context, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
}

func (c *fakeSummaryCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
	c.invalidation++
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

var pgconnUniqueErr = pgconn.PgError{
	Code:    "23505",
	Message: "duplicate key value violates unique constraint",
}

func principalFor(user *domain.User) *auth.Principal {
	return &auth.Principal{User: user}
}

func seedUser(t *testing.T, repo *fakeUserRepo, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTraining(t *testing.T, repo *fakeTrainingRepo, title string, createdBy string) *domain.Training {
	t.Helper()
	training := &domain.Training{
		Title:         title,
		Description:   "desc",
		Category:      "general",
		DurationHours: 2.5,
		CreatedBy:     createdBy,
	}
	if err := repo.Create(context.Background(), training); err != nil {
		t.Fatalf("seed training: %v", err)
	}
	return training
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}
