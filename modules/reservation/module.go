package reservation

import (
	"reservation-api/core/cache"
	"reservation-api/core/database"
	"reservation-api/modules/reservation/controller"
	"reservation-api/modules/reservation/repository"
	"reservation-api/modules/reservation/router"
	"reservation-api/modules/reservation/service"

	"github.com/labstack/echo/v4"
)

// Init wires the reservation module and returns the service so the expiry
// sweeper can drive bulk transitions through the same code path.
func Init(e *echo.Group, db database.IDatabase, c *cache.Cache, enqueuer service.TaskEnqueuer) *service.ReservationService {
	repo := repository.NewReservationRepository(db)
	svc := service.NewReservationService(repo, c, enqueuer)
	ctrl := controller.NewReservationController(svc)

	router.NewReservationRouter(ctrl).Register(e)

	return svc
}
