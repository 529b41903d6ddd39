package entity

import (
	"time"

	"reservation-api/core/entity"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
// PENDING is the only state that participates in the overlap guarantee;
// COMPLETE and CANCELLED are terminal.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusComplete  ReservationStatus = "COMPLETE"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is one booked window on a resource. StartTime and EndTime are
// UTC instants; Timezone records the zone the caller supplied and is kept for
// display only.
type Reservation struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	ResourceID string            `db:"resource_id" json:"resource_id"`
	UserID     string            `db:"user_id" json:"user_id"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	Timezone   string            `db:"timezone" json:"timezone"`
	Status     ReservationStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

type PaginatedReservationEntity = entity.Pagination[Reservation]

// ListFilter narrows List results; fields are conjunctive and empty means
// unfiltered.
type ListFilter struct {
	ResourceID string
	UserID     string
}
