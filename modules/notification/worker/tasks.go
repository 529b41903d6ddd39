package worker

import (
	"encoding/json"
	"time"

	"reservation-api/modules/reservation/entity"

	"github.com/hibiken/asynq"
)

const (
	TypeReservationBooked    = "reservation:booked"
	TypeReservationCancelled = "reservation:cancelled"
)

// ReservationEventPayload is the task body for reservation lifecycle events.
type ReservationEventPayload struct {
	ReservationID string    `json:"reservation_id"`
	ResourceID    string    `json:"resource_id"`
	UserID        string    `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

func NewReservationEventTask(taskType string, reservation *entity.Reservation) (*asynq.Task, error) {
	payload, err := json.Marshal(ReservationEventPayload{
		ReservationID: reservation.ID.String(),
		ResourceID:    reservation.ResourceID,
		UserID:        reservation.UserID,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, payload, asynq.MaxRetry(3)), nil
}
