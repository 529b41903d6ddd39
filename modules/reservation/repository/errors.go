package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Domain-level storage outcomes. The service layer maps these onto the error
// taxonomy exposed to callers; anything not translated here stays opaque.
var (
	ErrSlotTaken           = errors.New("reservation slot already taken")
	ErrInvalidID           = errors.New("malformed identifier")
	ErrReservationNotFound = errors.New("reservation not found")
)

// Postgres error codes of interest. 23P01 is raised by the partial exclusion
// constraint when an insert would overlap a PENDING reservation for the same
// resource.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgInvalidTextRepr    = "22P02"
)

// translatePGError rewrites low-level pq failures into domain outcomes.
// A unique violation on the primary key means a duplicate booking attempt
// and is surfaced the same way as an overlap.
func translatePGError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgExclusionViolation, pgUniqueViolation:
		return ErrSlotTaken
	case pgInvalidTextRepr:
		return ErrInvalidID
	default:
		return err
	}
}
