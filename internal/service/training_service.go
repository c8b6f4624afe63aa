package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/training-tracker/internal/domain"
	"github.com/spec-kit/training-tracker/internal/events"
	"github.com/spec-kit/training-tracker/internal/repository"
	apperrors "github.com/spec-kit/training-tracker/pkg/util"
)

// TrainingCreateInput captures fields for a new training.
type TrainingCreateInput struct {
	Title         string
	Description   string
	Category      string
	DurationHours float64
}

// TrainingUpdateInput captures a partial update; nil fields keep their
// prior value.
type TrainingUpdateInput struct {
	Title         *string
	Description   *string
	Category      *string
	DurationHours *float64
}

// TrainingService handles the training catalog.
type TrainingService struct {
	trainings  repository.TrainingRepository
	dispatcher events.Dispatcher
}

// NewTrainingService creates the service.
func NewTrainingService(trainings repository.TrainingRepository, dispatcher events.Dispatcher) *TrainingService {
	return &TrainingService{trainings: trainings, dispatcher: dispatcher}
}

// Create validates and stores a new training.
func (s *TrainingService) Create(ctx context.Context, creatorID string, input TrainingCreateInput) (*domain.Training, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.NewValidationError("title, description, category required", nil)
	}
	if input.DurationHours < domain.MinTrainingDurationHours {
		return nil, apperrors.NewValidationError("duration must be at least 0.5 hours", map[string]any{
			"duration_hours": input.DurationHours,
		})
	}

	training := &domain.Training{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.TrimSpace(input.Category),
		DurationHours: input.DurationHours,
		CreatedBy:     creatorID,
	}
	if err := s.trainings.Create(ctx, training); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, creatorID, events.EventTrainingCreated, events.TrainingCreatedPayload{
		TrainingID:    training.ID,
		Title:         training.Title,
		Category:      training.Category,
		DurationHours: training.DurationHours,
	})
	return training, nil
}

// List returns all trainings, newest first.
func (s *TrainingService) List(ctx context.Context) ([]domain.Training, error) {
	trainings, err := s.trainings.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return trainings, nil
}

// Get fetches one training.
func (s *TrainingService) Get(ctx context.Context, id string) (*domain.Training, error) {
	training, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("training", map[string]any{"training_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return training, nil
}

// Update applies a partial update. Absent fields retain prior values.
func (s *TrainingService) Update(ctx context.Context, id string, input TrainingUpdateInput) (*domain.Training, error) {
	training, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		training.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		training.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		training.Category = strings.TrimSpace(*input.Category)
	}
	if input.DurationHours != nil {
		training.DurationHours = *input.DurationHours
	}
	if training.Title == "" || training.Description == "" || training.Category == "" {
		return nil, apperrors.NewValidationError("title, description, category must not be empty", nil)
	}
	if training.DurationHours < domain.MinTrainingDurationHours {
		return nil, apperrors.NewValidationError("duration must be at least 0.5 hours", map[string]any{
			"duration_hours": training.DurationHours,
		})
	}

	if err := s.trainings.Update(ctx, training); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("training", map[string]any{"training_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return training, nil
}

// Delete removes a training.
func (s *TrainingService) Delete(ctx context.Context, id string) error {
	if err := s.trainings.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("training", map[string]any{"training_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TrainingService) publish(ctx context.Context, actorID string, eventType events.EventType, payload interface{}) {
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
