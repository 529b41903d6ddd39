package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reservation-api/core/database"
	"reservation-api/core/logger"
	"reservation-api/core/params"
	"reservation-api/modules/reservation/entity"

	"github.com/google/uuid"
)

// ReservationRepository is the persistent store of reservations. The overlap
// guarantee lives in the database exclusion constraint, so every write here
// is a single atomic statement; there is no check-then-insert anywhere.
type ReservationRepository struct {
	db database.IDatabase
}

func NewReservationRepository(db database.IDatabase) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type ReservationRepositoryInterface interface {
	Insert(ctx context.Context, reservation *entity.Reservation) (*entity.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	List(ctx context.Context, filter entity.ListFilter, params params.QueryParams) (*entity.PaginatedReservationEntity, error)
	TransitionExpired(ctx context.Context, now time.Time) (int64, error)
	Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
}

const reservationColumns = `id, resource_id, user_id, start_time, end_time, timezone, status, created_at`

// Insert persists a new PENDING reservation inside one transaction. A
// conflicting window is rejected by the exclusion constraint at commit of the
// INSERT itself and comes back as ErrSlotTaken.
func (r *ReservationRepository) Insert(ctx context.Context, reservation *entity.Reservation) (*entity.Reservation, error) {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		logger.Error("ReservationRepository:Insert:Begin", "error", err)
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reservations (resource_id, user_id, start_time, end_time, timezone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + reservationColumns

	var created entity.Reservation
	err = tx.GetContext(ctx, &created, query,
		reservation.ResourceID, reservation.UserID,
		reservation.StartTime, reservation.EndTime,
		reservation.Timezone, entity.ReservationStatusPending)
	if err != nil {
		translated := translatePGError(err)
		if !errors.Is(translated, ErrSlotTaken) {
			logger.Error("ReservationRepository:Insert", "error", err)
		}
		return nil, translated
	}

	if err := tx.Commit(); err != nil {
		logger.Error("ReservationRepository:Insert:Commit", "error", err)
		return nil, translatePGError(err)
	}

	return &created, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var reservation entity.Reservation
	err := r.db.GetContext(ctx, &reservation, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		logger.Error("ReservationRepository:GetByID", "error", err)
		return nil, translatePGError(err)
	}

	return &reservation, nil
}

// List returns one stable page ordered by created_at descending. Filters are
// conjunctive; an empty filter field is ignored.
func (r *ReservationRepository) List(ctx context.Context, filter entity.ListFilter, params params.QueryParams) (*entity.PaginatedReservationEntity, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		where += fmt.Sprintf(" AND resource_id = $%d", len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM reservations`+where, args...)
	if err != nil {
		logger.Error("ReservationRepository:List:Count", "error", err)
		return nil, err
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var reservations []entity.Reservation
	err = r.db.SelectContext(ctx, &reservations, query, args...)
	if err != nil {
		logger.Error("ReservationRepository:List:Select", "error", err)
		return nil, err
	}

	return &entity.PaginatedReservationEntity{
		Items:      reservations,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

// TransitionExpired completes every PENDING reservation whose window has
// closed. One UPDATE, so it composes safely with concurrent inserts and
// cancellations.
func (r *ReservationRepository) TransitionExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = $1
		WHERE status = $2 AND end_time <= $3
	`

	result, err := r.db.ExecContext(ctx, query,
		entity.ReservationStatusComplete, entity.ReservationStatusPending, now)
	if err != nil {
		logger.Error("ReservationRepository:TransitionExpired", "error", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.Error("ReservationRepository:TransitionExpired:RowsAffected", "error", err)
		return 0, err
	}
	return affected, nil
}

// Cancel moves a PENDING reservation to CANCELLED. Cancelling a reservation
// that already reached a terminal status returns the row unchanged, so the
// operation is idempotent; only a missing row is an error.
func (r *ReservationRepository) Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING ` + reservationColumns

	var cancelled entity.Reservation
	err := r.db.GetContext(ctx, &cancelled, query,
		entity.ReservationStatusCancelled, id, entity.ReservationStatusPending)
	if err == nil {
		return &cancelled, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("ReservationRepository:Cancel", "error", err)
		return nil, translatePGError(err)
	}

	// Not PENDING anymore (or never existed): fall back to a read.
	return r.GetByID(ctx, id)
}
