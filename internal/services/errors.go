package services

import (
	"errors"
	"fmt"
	"time"
)

// Redemption engine failures. Handlers translate these into HTTP responses;
// the engine never retries on its own.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrNoActiveOtp             = errors.New("no active code for this user")
	ErrOtpAlreadyUsed          = errors.New("code has already been used")
	ErrOtpExpired              = errors.New("code expired")
	ErrOtpMismatch             = errors.New("code invalid")
	ErrRestaurantScopeMismatch = errors.New("code was issued for a different restaurant")
	ErrInsufficientCredit      = errors.New("insufficient credit")
	ErrNotStarted              = errors.New("credit is not usable yet")
	ErrExpired                 = errors.New("credit validity period has ended")
	ErrWaiting                 = errors.New("credit is not usable at this hour")
	ErrDuplicateRating         = errors.New("this consumption has already been rated")
	ErrRedemptionNotFound      = errors.New("no matching consumption found")
)

// WaitingError reports a time-window rejection together with the next
// instant at which the credit becomes usable.
type WaitingError struct {
	NextAvailableAt time.Time
}

func (e *WaitingError) Error() string {
	return fmt.Sprintf("not usable at this hour, next window at %s", e.NextAvailableAt.Format("15:04"))
}

// Is makes errors.Is(err, ErrWaiting) match.
func (e *WaitingError) Is(target error) bool {
	return target == ErrWaiting
}

// NotStartedError reports a not-yet-started rejection together with the
// start date at which the credit becomes usable.
type NotStartedError struct {
	NextAvailableAt time.Time
}

func (e *NotStartedError) Error() string {
	return fmt.Sprintf("not usable yet, starts at %s", e.NextAvailableAt.Format("2006-01-02"))
}

// Is makes errors.Is(err, ErrNotStarted) match.
func (e *NotStartedError) Is(target error) bool {
	return target == ErrNotStarted
}
