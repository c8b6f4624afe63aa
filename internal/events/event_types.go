package events

import (
	"time"

	"github.com/spec-kit/training-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTrainingCreated         EventType = "training_created"
	EventAssignmentCreated       EventType = "assignment_created"
	EventAssignmentStatusChanged EventType = "assignment_status_changed"
	EventAssignmentDeleted       EventType = "assignment_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TrainingCreatedPayload payload.
type TrainingCreatedPayload struct {
	TrainingID    string  `json:"training_id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	DurationHours float64 `json:"duration_hours"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	TrainingID   string `json:"training_id"`
}

// AssignmentStatusChangedPayload payload.
type AssignmentStatusChangedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	OldStatus    domain.AssignmentStatus `json:"old_status"`
	NewStatus    domain.AssignmentStatus `json:"new_status"`
}

// AssignmentDeletedPayload payload.
type AssignmentDeletedPayload struct {
	AssignmentID string `json:"assignment_id"`
}
