package notification

import (
	"reservation-api/core/database"
	"reservation-api/modules/notification/controller"
	"reservation-api/modules/notification/repository"
	"reservation-api/modules/notification/router"
	"reservation-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init wires the notification module and returns the service so the asynq
// worker can deliver reservation events into it.
func Init(e *echo.Group, db database.IDatabase) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e)

	return svc
}
