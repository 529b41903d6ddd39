package service

import (
	"context"
	"errors"
	"time"

	"reservation-api/core/cache"
	"reservation-api/core/constants"
	apperrors "reservation-api/core/errors"
	"reservation-api/core/logger"
	"reservation-api/core/params"
	"reservation-api/modules/notification/worker"
	"reservation-api/modules/reservation/dto"
	"reservation-api/modules/reservation/entity"
	"reservation-api/modules/reservation/mapper"
	"reservation-api/modules/reservation/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const slotConflictMessage = "resource unavailable for the requested window"

// TaskEnqueuer is the slice of asynq.Client the service needs; notification
// dispatch is best effort and never affects the booking outcome.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ReservationService struct {
	repo     repository.ReservationRepositoryInterface
	cache    *cache.Cache
	enqueuer TaskEnqueuer
}

func NewReservationService(repo repository.ReservationRepositoryInterface, c *cache.Cache, enqueuer TaskEnqueuer) *ReservationService {
	return &ReservationService{
		repo:     repo,
		cache:    c,
		enqueuer: enqueuer,
	}
}

// Create books a new window. Both timestamps are normalized from the caller's
// zone to UTC before the ordering check, so "start before end" is evaluated on
// instants, not wall clocks. The insert itself is one atomic storage write;
// a rejected insert surfaces as a conflict.
func (s *ReservationService) Create(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, *apperrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	start, err := ParseAndNormalize(req.StartTime, req.Timezone)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "invalid start time or timezone", err)
	}
	end, err := ParseAndNormalize(req.EndTime, req.Timezone)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "invalid end time or timezone", err)
	}

	// Request-shape defect, not a concurrency conflict.
	if !start.Before(end) {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "start time must be before end time", nil)
	}

	reservation := &entity.Reservation{
		ResourceID: req.ResourceID,
		UserID:     req.UserID,
		StartTime:  start,
		EndTime:    end,
		Timezone:   req.Timezone,
	}

	created, err := s.repo.Insert(ctx, reservation)
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			logger.Info("ReservationService:Create:SlotConflict",
				"resource_id", req.ResourceID, "start", start, "end", end)
			return nil, apperrors.NewAppError(apperrors.ErrConflict, slotConflictMessage, err)
		}
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "malformed identifier", err)
		}
		logger.Error("ReservationService:Create:Insert", "error", err, "resource_id", req.ResourceID)
		return nil, apperrors.NewAppError(apperrors.ErrCreateFailed, "create reservation failed", err)
	}

	logger.Info("ReservationService:Create:Booked",
		"reservation_id", created.ID, "resource_id", created.ResourceID,
		"start", created.StartTime, "end", created.EndTime)

	s.enqueueEvent(ctx, worker.TypeReservationBooked, created)

	return mapper.ToReservationResponse(created), nil
}

// Get returns a reservation by its identifier. Malformed identifiers are
// rejected here as well, independent of transport-layer validation.
func (s *ReservationService) Get(ctx context.Context, id string) (*dto.ReservationResponse, *apperrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	reservationID, appErr := parseReservationID(id)
	if appErr != nil {
		return nil, appErr
	}

	cacheKey := reservationCacheKey(id)
	if s.cache != nil {
		var cached dto.ReservationResponse
		if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "reservation not found", err)
		}
		logger.Error("ReservationService:Get", "error", err, "reservation_id", id)
		return nil, apperrors.NewAppError(apperrors.ErrGetFailed, "get reservation failed", err)
	}

	resp := mapper.ToReservationResponse(reservation)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, resp, constants.ReservationCacheTTL); err != nil {
			logger.Warn("ReservationService:Get:CacheSet", "error", err, "reservation_id", id)
		}
	}
	return resp, nil
}

// List delegates to the store and computes the page count.
func (s *ReservationService) List(ctx context.Context, filter entity.ListFilter, queryParams params.QueryParams) (*dto.PaginatedReservationResponse, *apperrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	page, err := s.repo.List(ctx, filter, queryParams)
	if err != nil {
		logger.Error("ReservationService:List", "error", err)
		return nil, apperrors.NewAppError(apperrors.ErrGetFailed, "list reservations failed", err)
	}

	return mapper.ToReservationPaginationResponse(page), nil
}

// Cancel transitions a PENDING reservation to CANCELLED. A reservation
// already in a terminal status is returned unchanged; only an unknown
// identifier is an error.
func (s *ReservationService) Cancel(ctx context.Context, id string) (*dto.CancelReservationResponse, *apperrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	reservationID, appErr := parseReservationID(id)
	if appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "reservation not found", err)
		}
		logger.Error("ReservationService:Cancel:Lookup", "error", err, "reservation_id", id)
		return nil, apperrors.NewAppError(apperrors.ErrGetFailed, "get reservation failed", err)
	}

	cancelled, err := s.repo.Cancel(ctx, reservationID)
	if err != nil {
		logger.Error("ReservationService:Cancel", "error", err, "reservation_id", id)
		return nil, apperrors.NewAppError(apperrors.ErrUpdateFailed, "cancel reservation failed", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, reservationCacheKey(id)); err != nil {
			logger.Warn("ReservationService:Cancel:CacheDel", "error", err, "reservation_id", id)
		}
	}

	// Notify only on the actual transition, not on repeated cancels.
	if existing.Status == entity.ReservationStatusPending && cancelled.Status == entity.ReservationStatusCancelled {
		s.enqueueEvent(ctx, worker.TypeReservationCancelled, cancelled)
	}

	logger.Info("ReservationService:Cancel:Done", "reservation_id", id, "status", cancelled.Status)

	return &dto.CancelReservationResponse{
		ID:     cancelled.ID.String(),
		Status: string(cancelled.Status),
	}, nil
}

// CompleteExpired is the sweeper entry point: every PENDING reservation whose
// end time has passed becomes COMPLETE in one bulk transition.
func (s *ReservationService) CompleteExpired(ctx context.Context, now time.Time) (int64, *apperrors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	affected, err := s.repo.TransitionExpired(ctx, now)
	if err != nil {
		return 0, apperrors.NewAppError(apperrors.ErrUpdateFailed, "transition expired reservations failed", err)
	}
	return affected, nil
}

func (s *ReservationService) enqueueEvent(ctx context.Context, taskType string, reservation *entity.Reservation) {
	if s.enqueuer == nil {
		return
	}
	task, err := worker.NewReservationEventTask(taskType, reservation)
	if err != nil {
		logger.Warn("ReservationService:EnqueueEvent:Build", "error", err, "type", taskType)
		return
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
		logger.Warn("ReservationService:EnqueueEvent", "error", err, "type", taskType,
			"reservation_id", reservation.ID)
	}
}

func parseReservationID(id string) (uuid.UUID, *apperrors.AppError) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "reservation id must be a valid UUID", err)
	}
	return parsed, nil
}

func reservationCacheKey(id string) string {
	return "reservation:" + id
}
