package domain

import (
	"fmt"
	"time"
)

// AssignmentStatus enumerates lifecycle states for assignments.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// ParseAssignmentStatus validates a raw status string. Any status may
// transition to any other; completed is revocable.
func ParseAssignmentStatus(raw string) (AssignmentStatus, error) {
	switch AssignmentStatus(raw) {
	case AssignmentStatusPending:
		return AssignmentStatusPending, nil
	case AssignmentStatusInProgress:
		return AssignmentStatusInProgress, nil
	case AssignmentStatusCompleted:
		return AssignmentStatusCompleted, nil
	default:
		return "", fmt.Errorf("unknown assignment status %q", raw)
	}
}

// Assignment links an employee to a training. The (employee, training)
// pair is unique. CompletedAt is non-nil iff Status is completed.
type Assignment struct {
	ID          string
	EmployeeID  string
	TrainingID  string
	AssignedBy  string
	Status      AssignmentStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined summaries, populated on reads.
	Employee       *UserSummary
	Training       *TrainingSummary
	AssignedByUser *UserSummary
}

// UserSummary is the subset of User exposed on joined reads.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// TrainingSummary is the subset of Training exposed on joined reads.
type TrainingSummary struct {
	ID            string
	Title         string
	Category      string
	DurationHours float64
}

// ProgressRow aggregates one employee's assignment counts.
type ProgressRow struct {
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	Total         int64
	Completed     int64
	InProgress    int64
	Pending       int64
}
