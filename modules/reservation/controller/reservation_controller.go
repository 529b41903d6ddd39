package controller

import (
	"reservation-api/core/controller"
	"reservation-api/core/errors"
	"reservation-api/core/params"
	"reservation-api/modules/reservation/dto"
	"reservation-api/modules/reservation/entity"
	"reservation-api/modules/reservation/service"

	"github.com/labstack/echo/v4"
)

// ReservationController is a thin adapter: it binds already-validated input
// and forwards service results and errors verbatim.
type ReservationController struct {
	service *service.ReservationService
	controller.BaseController
}

func NewReservationController(service *service.ReservationService) *ReservationController {
	return &ReservationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Create books a reservation.
func (c *ReservationController) Create(ctx echo.Context) error {
	req := new(dto.CreateReservationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.Create(ctx.Request().Context(), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, "Reservation created successfully")
}

// List returns a filtered, paginated reservation listing.
func (c *ReservationController) List(ctx echo.Context) error {
	filter := entity.ListFilter{
		ResourceID: ctx.QueryParam("resource_id"),
		UserID:     ctx.QueryParam("user_id"),
	}
	queryParams := params.NewQueryParams(ctx)

	result, appErr := c.service.List(ctx.Request().Context(), filter, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Reservations retrieved successfully")
}

// Get returns one reservation by id.
func (c *ReservationController) Get(ctx echo.Context) error {
	result, appErr := c.service.Get(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Reservation retrieved successfully")
}

// Cancel transitions a reservation to CANCELLED; repeating the call is not an
// error.
func (c *ReservationController) Cancel(ctx echo.Context) error {
	result, appErr := c.service.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Reservation cancelled successfully")
}
