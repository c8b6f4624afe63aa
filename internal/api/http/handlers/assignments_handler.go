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

// AssignmentsHandler manages the assignment ledger endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// Assign POST /assignments.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTrainingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	assignment, err := h.service.Assign(c.Context(), principal, req.EmployeeID, req.TrainingID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":    "training assigned successfully",
		"assignment": assignmentResponse(assignment),
	})
}

// List GET /assignments.
func (h *AssignmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	assignments, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, assignmentResponse(&assignments[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "assignments": items})
}

// Get GET /assignments/:id.
func (h *AssignmentsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	assignment, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"assignment": assignmentResponse(assignment)})
}

// UpdateStatus PATCH /assignments/:id/status.
func (h *AssignmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateAssignmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	assignment, err := h.service.UpdateStatus(c.Context(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "status updated successfully",
		"assignment": assignmentResponse(assignment),
	})
}

// Delete DELETE /assignments/:id.
func (h *AssignmentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "assignment deleted successfully"})
}

// Progress GET /assignments/progress.
func (h *AssignmentsHandler) Progress(c *fiber.Ctx) error {
	summary, err := h.service.ProgressSummary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary})
}

func assignmentResponse(assignment *domain.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:          assignment.ID,
		Status:      assignment.Status,
		CompletedAt: assignment.CompletedAt,
		CreatedAt:   assignment.CreatedAt,
		UpdatedAt:   assignment.UpdatedAt,
	}
	if assignment.Employee != nil {
		resp.Employee = &dto.AssignmentUserRef{
			ID:    assignment.Employee.ID,
			Name:  assignment.Employee.Name,
			Email: assignment.Employee.Email,
		}
	}
	if assignment.Training != nil {
		resp.Training = &dto.AssignmentTrainingRef{
			ID:            assignment.Training.ID,
			Title:         assignment.Training.Title,
			Category:      assignment.Training.Category,
			DurationHours: assignment.Training.DurationHours,
		}
	}
	if assignment.AssignedByUser != nil {
		resp.AssignedBy = &dto.AssignmentUserRef{
			ID:    assignment.AssignedByUser.ID,
			Name:  assignment.AssignedByUser.Name,
			Email: assignment.AssignedByUser.Email,
		}
	}
	return resp
}
