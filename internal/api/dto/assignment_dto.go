package dto

import (
	"time"

	"github.com/spec-kit/training-tracker/internal/domain"
)

// AssignTrainingRequest payload for POST /assignments.
type AssignTrainingRequest struct {
	EmployeeID string `json:"employeeId"`
	TrainingID string `json:"trainingId"`
}

// UpdateAssignmentStatusRequest payload for PATCH /assignments/:id/status.
type UpdateAssignmentStatusRequest struct {
	Status string `json:"status"`
}

// AssignmentUserRef is a joined user summary.
type AssignmentUserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AssignmentTrainingRef is a joined training summary.
type AssignmentTrainingRef struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	DurationHours float64 `json:"durationHours"`
}

// AssignmentResponse is the public view of an assignment.
type AssignmentResponse struct {
	ID          string                  `json:"id"`
	Status      domain.AssignmentStatus `json:"status"`
	CompletedAt *time.Time              `json:"completedAt"`
	Employee    *AssignmentUserRef      `json:"employee,omitempty"`
	Training    *AssignmentTrainingRef  `json:"training,omitempty"`
	AssignedBy  *AssignmentUserRef      `json:"assignedBy,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}
