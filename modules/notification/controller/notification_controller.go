package controller

import (
	"reservation-api/core/controller"
	"reservation-api/core/errors"
	"reservation-api/core/params"
	"reservation-api/modules/notification/dto"
	"reservation-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service *service.NotificationService
	controller.BaseController
}

func NewNotificationController(service *service.NotificationService) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetUserNotifications lists a user's notifications, newest first.
func (c *NotificationController) GetUserNotifications(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")
	if userID == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "user_id is required", nil)
	}

	queryParams := params.NewQueryParams(ctx)
	result, err := c.service.GetUserNotifications(ctx.Request().Context(), userID, *queryParams)
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to get notifications", nil)
	}

	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

// MarkAsRead marks specific notifications as read.
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")
	if userID == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "user_id is required", nil)
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	if err := c.service.MarkAsRead(ctx.Request().Context(), userID, req.IDs); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to mark as read", nil)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read successfully")
}

// MarkAllAsRead marks all of a user's notifications as read.
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")
	if userID == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "user_id is required", nil)
	}

	if err := c.service.MarkAllAsRead(ctx.Request().Context(), userID); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to mark all as read", nil)
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read successfully")
}

// CountUnread returns the user's unread notification count.
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")
	if userID == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "user_id is required", nil)
	}

	count, err := c.service.CountUnread(ctx.Request().Context(), userID)
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to count unread", nil)
	}

	return c.SuccessResponse(ctx, map[string]int{"count": count}, "Unread count retrieved")
}
