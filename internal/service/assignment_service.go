package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/domain"
	"github.com/spec-kit/training-tracker/internal/events"
	"github.com/spec-kit/training-tracker/internal/repository"
	apperrors "github.com/spec-kit/training-tracker/pkg/util"
)

// SummaryCache holds the serialized progress summary between assignment
// mutations. All methods must tolerate an unavailable backend.
type SummaryCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, payload []byte)
	Invalidate(ctx context.Context)
}

// ProgressEntry is one employee's aggregated assignment progress.
type ProgressEntry struct {
	Employee       ProgressEmployee `json:"employee"`
	Total          int64            `json:"total"`
	Completed      int64            `json:"completed"`
	InProgress     int64            `json:"in_progress"`
	Pending        int64            `json:"pending"`
	CompletionRate string           `json:"completionRate"`
}

// ProgressEmployee identifies the employee in a summary entry.
type ProgressEmployee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AssignmentService handles the assignment ledger: creation, listing,
// the status state machine and the progress report.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	trainings   repository.TrainingRepository
	dispatcher  events.Dispatcher
	cache       SummaryCache
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	TrainingRepo   repository.TrainingRepository
	Dispatcher     events.Dispatcher
	Cache          SummaryCache
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		trainings:   deps.TrainingRepo,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
	}
}

// Assign links a training to an employee. The target must be an existing
// user with the employee role; an admin id is a NotFound here, not a
// Forbidden. The (employee, training) pair must be unused.
func (s *AssignmentService) Assign(ctx context.Context, actor *auth.Principal, employeeID, trainingID string) (*domain.Assignment, error) {
	if employeeID == "" || trainingID == "" {
		return nil, apperrors.NewValidationError("employeeId and trainingId required", nil)
	}

	employee, err := s.users.GetByID(ctx, employeeID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if err != nil || employee.Role != domain.RoleEmployee {
		return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
	}

	if _, err := s.trainings.GetByID(ctx, trainingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("training", map[string]any{"training_id": trainingID})
		}
		return nil, apperrors.MapError(err)
	}

	if _, err := s.assignments.GetByEmployeeAndTraining(ctx, employeeID, trainingID); err == nil {
		return nil, apperrors.NewConflict("training already assigned to this employee", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	assignment := &domain.Assignment{
		EmployeeID: employeeID,
		TrainingID: trainingID,
		AssignedBy: actor.ID(),
		Status:     domain.AssignmentStatusPending,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		// the unique constraint settles concurrent duplicate assigns
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("training already assigned to this employee", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateSummary(ctx)
	s.publish(ctx, actor.ID(), events.EventAssignmentCreated, events.AssignmentCreatedPayload{
		AssignmentID: assignment.ID,
		EmployeeID:   employeeID,
		TrainingID:   trainingID,
	})

	return s.reload(ctx, assignment)
}

// List returns assignments visible to the actor: all for admins, own
// only for employees. Newest first.
func (s *AssignmentService) List(ctx context.Context, actor *auth.Principal) ([]domain.Assignment, error) {
	filter := repository.AssignmentFilter{}
	if actor.Role() == domain.RoleEmployee {
		id := actor.ID()
		filter.EmployeeID = &id
	}
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignments, nil
}

// Get fetches one assignment, enforcing ownership for employees.
func (s *AssignmentService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.checkOwnership(actor, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// UpdateStatus moves the assignment to the given status. Any status may
// follow any other; completed_at is set exactly when the new status is
// completed and cleared otherwise.
func (s *AssignmentService) UpdateStatus(ctx context.Context, actor *auth.Principal, id, statusRaw string) (*domain.Assignment, error) {
	status, err := domain.ParseAssignmentStatus(statusRaw)
	if err != nil {
		return nil, apperrors.NewValidationError("status must be pending, in_progress or completed", map[string]any{
			"status": statusRaw,
		})
	}

	assignment, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	oldStatus := assignment.Status
	var completedAt *time.Time
	if status == domain.AssignmentStatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	if err := s.assignments.UpdateStatus(ctx, id, status, completedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	assignment.Status = status
	assignment.CompletedAt = completedAt

	s.invalidateSummary(ctx)
	s.publish(ctx, actor.ID(), events.EventAssignmentStatusChanged, events.AssignmentStatusChangedPayload{
		AssignmentID: id,
		OldStatus:    oldStatus,
		NewStatus:    status,
	})
	return assignment, nil
}

// Delete removes an assignment. Route-level role gating restricts this
// to admins.
func (s *AssignmentService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("assignment", map[string]any{"assignment_id": id})
		}
		return apperrors.MapError(err)
	}
	s.invalidateSummary(ctx)
	s.publish(ctx, actor.ID(), events.EventAssignmentDeleted, events.AssignmentDeletedPayload{AssignmentID: id})
	return nil
}

// ProgressSummary aggregates assignment counts per employee, sorted by
// employee name. Served from cache when fresh.
func (s *AssignmentService) ProgressSummary(ctx context.Context) ([]ProgressEntry, error) {
	if payload, ok := s.cachedSummary(ctx); ok {
		var cached []ProgressEntry
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.assignments.ProgressSummary(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	entries := make([]ProgressEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ProgressEntry{
			Employee:       ProgressEmployee{Name: row.EmployeeName, Email: row.EmployeeEmail},
			Total:          row.Total,
			Completed:      row.Completed,
			InProgress:     row.InProgress,
			Pending:        row.Pending,
			CompletionRate: completionRate(row.Completed, row.Total),
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			s.cache.Set(ctx, payload)
		}
	}
	return entries, nil
}

// completionRate formats completed/total as a one-decimal percentage.
// A group only exists when total >= 1.
func completionRate(completed, total int64) string {
	return fmt.Sprintf("%.1f%%", float64(completed)/float64(total)*100)
}

func (s *AssignmentService) cachedSummary(ctx context.Context) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx)
}

func (s *AssignmentService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}

func (s *AssignmentService) checkOwnership(actor *auth.Principal, assignment *domain.Assignment) error {
	switch actor.Role() {
	case domain.RoleAdmin:
		return nil
	case domain.RoleEmployee:
		if assignment.EmployeeID != actor.ID() {
			return apperrors.NewForbidden("access denied")
		}
		return nil
	default:
		return apperrors.NewForbidden("access denied")
	}
}

func (s *AssignmentService) reload(ctx context.Context, assignment *domain.Assignment) (*domain.Assignment, error) {
	full, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return full, nil
}

func (s *AssignmentService) publish(ctx context.Context, actorID string, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
