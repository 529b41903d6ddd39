package constants

import "time"

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second

	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"

	// SweepInterval is the cadence of the expiry sweeper.
	SweepInterval = time.Minute

	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100

	// ReservationCacheTTL bounds staleness of point lookups served from redis.
	ReservationCacheTTL = 30 * time.Second
)
