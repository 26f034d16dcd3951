package commands

import "space-booking/internal/pkg/errs"

var (
	ErrLocationNotFound        = errs.New("location not found")
	ErrLocationForbidden       = errs.New("only the location host may change it")
	ErrReservationNotFound     = errs.New("reservation not found")
	ErrReservationForbidden    = errs.New("reservation action not allowed for this user")
	ErrReservationExpired      = errs.New("pending reservation has expired")
	ErrReservationStale        = errs.New("reservation changed concurrently")
	ErrIdempotencyKeyReused    = errs.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)
