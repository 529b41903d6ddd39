package router

import (
	"reservation-api/modules/reservation/controller"

	"github.com/labstack/echo/v4"
)

type ReservationRouter struct {
	controller *controller.ReservationController
}

func NewReservationRouter(controller *controller.ReservationController) *ReservationRouter {
	return &ReservationRouter{controller: controller}
}

func (r *ReservationRouter) Register(e *echo.Group) {
	reservations := e.Group("/reservations")
	reservations.POST("", r.controller.Create)
	reservations.GET("", r.controller.List)
	reservations.GET("/:id", r.controller.Get)
	reservations.DELETE("/:id", r.controller.Cancel)
}
