package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-tracker/internal/api/dto"
	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/domain"
	"github.com/spec-kit/training-tracker/internal/service"
	apperrors "github.com/spec-kit/training-tracker/pkg/util"
)

// TrainingsHandler manages the training catalog endpoints.
type TrainingsHandler struct {
	service *service.TrainingService
}

// NewTrainingsHandler constructs handler.
func NewTrainingsHandler(trainingService *service.TrainingService) *TrainingsHandler {
	return &TrainingsHandler{service: trainingService}
}

// Create POST /trainings.
func (h *TrainingsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTrainingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	training, err := h.service.Create(c.Context(), principal.ID(), service.TrainingCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":  "training created successfully",
		"training": trainingResponse(training),
	})
}

// List GET /trainings.
func (h *TrainingsHandler) List(c *fiber.Ctx) error {
	trainings, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TrainingResponse, 0, len(trainings))
	for i := range trainings {
		items = append(items, trainingResponse(&trainings[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "trainings": items})
}

// Get GET /trainings/:id.
func (h *TrainingsHandler) Get(c *fiber.Ctx) error {
	training, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"training": trainingResponse(training)})
}

// Update PUT /trainings/:id.
func (h *TrainingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTrainingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	training, err := h.service.Update(c.Context(), c.Params("id"), service.TrainingUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "training updated successfully",
		"training": trainingResponse(training),
	})
}

// Delete DELETE /trainings/:id.
func (h *TrainingsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "training deleted successfully"})
}

func trainingResponse(training *domain.Training) dto.TrainingResponse {
	return dto.TrainingResponse{
		ID:            training.ID,
		Title:         training.Title,
		Description:   training.Description,
		Category:      training.Category,
		DurationHours: training.DurationHours,
		CreatedBy:     training.CreatedBy,
		CreatedAt:     training.CreatedAt,
		UpdatedAt:     training.UpdatedAt,
	}
}
