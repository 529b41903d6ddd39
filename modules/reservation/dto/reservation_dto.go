package dto

import "time"

// CreateReservationRequest carries caller-local wall-clock timestamps plus
// the zone they should be interpreted in.
type CreateReservationRequest struct {
	ResourceID string `json:"resource_id"`
	UserID     string `json:"user_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Timezone   string `json:"timezone"`
}

type ReservationResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	UserID     string    `json:"user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Timezone   string    `json:"timezone"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaginatedReservationResponse struct {
	Items      []ReservationResponse `json:"items"`
	TotalItems int                   `json:"total_items"`
	PageNumber int                   `json:"page_number"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

type CancelReservationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
