package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"reservation-api/core/logger"
	"reservation-api/modules/notification/dto"
	"reservation-api/modules/notification/service"

	"github.com/hibiken/asynq"
)

// Handler turns reservation lifecycle tasks into in-app notifications.
type Handler struct {
	notifications *service.NotificationService
}

func NewHandler(notifications *service.NotificationService) *Handler {
	return &Handler{notifications: notifications}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReservationBooked, h.HandleReservationBooked)
	mux.HandleFunc(TypeReservationCancelled, h.HandleReservationCancelled)
}

func (h *Handler) HandleReservationBooked(ctx context.Context, task *asynq.Task) error {
	var payload ReservationEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A malformed payload will never parse on retry.
		logger.Error("NotificationWorker:Booked:Payload", "error", err)
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	return h.notifications.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  payload.UserID,
		Title:   "Reservation confirmed",
		Message: fmt.Sprintf("Your reservation on %s is booked from %s to %s.", payload.ResourceID, payload.StartTime.Format("2006-01-02 15:04 MST"), payload.EndTime.Format("15:04 MST")),
		Type:    TypeReservationBooked,
		Data: map[string]any{
			"reservation_id": payload.ReservationID,
			"resource_id":    payload.ResourceID,
		},
	})
}

func (h *Handler) HandleReservationCancelled(ctx context.Context, task *asynq.Task) error {
	var payload ReservationEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("NotificationWorker:Cancelled:Payload", "error", err)
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	return h.notifications.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  payload.UserID,
		Title:   "Reservation cancelled",
		Message: fmt.Sprintf("Your reservation on %s starting %s was cancelled.", payload.ResourceID, payload.StartTime.Format("2006-01-02 15:04 MST")),
		Type:    TypeReservationCancelled,
		Data: map[string]any{
			"reservation_id": payload.ReservationID,
			"resource_id":    payload.ResourceID,
		},
	})
}
