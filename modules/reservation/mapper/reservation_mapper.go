package mapper

import (
	"reservation-api/modules/reservation/dto"
	"reservation-api/modules/reservation/entity"
)

func ToReservationResponse(r *entity.Reservation) *dto.ReservationResponse {
	if r == nil {
		return nil
	}
	return &dto.ReservationResponse{
		ID:         r.ID.String(),
		ResourceID: r.ResourceID,
		UserID:     r.UserID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Timezone:   r.Timezone,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func ToReservationPaginationResponse(page *entity.PaginatedReservationEntity) *dto.PaginatedReservationResponse {
	items := make([]dto.ReservationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *ToReservationResponse(&page.Items[i]))
	}

	totalPages := 0
	if page.PageSize > 0 {
		totalPages = (page.TotalItems + page.PageSize - 1) / page.PageSize
	}

	return &dto.PaginatedReservationResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	}
}
