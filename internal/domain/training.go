package domain

import "time"

// MinTrainingDurationHours is the lower bound for a training's duration.
const MinTrainingDurationHours = 0.5

// Training is a course definition maintained by admins.
type Training struct {
	ID            string
	Title         string
	Description   string
	Category      string
	DurationHours float64
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
