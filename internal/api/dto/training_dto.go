package dto

import "time"

// CreateTrainingRequest payload for POST /trainings.
type CreateTrainingRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	DurationHours float64 `json:"durationHours"`
}

// UpdateTrainingRequest payload for PUT /trainings/:id. Absent fields
// keep their prior value.
type UpdateTrainingRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	DurationHours *float64 `json:"durationHours"`
}

// TrainingResponse is the public view of a training.
type TrainingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	DurationHours float64   `json:"durationHours"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
