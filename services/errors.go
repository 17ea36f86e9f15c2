package services

import "errors"

// Sentinel errors returned by the service layer. Controllers map these onto
// response codes; nothing below this package should see raw gorm errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user is not active")
	ErrPetNotFound        = errors.New("pet not found")
	ErrPetLimitReached    = errors.New("pet limit reached")
	ErrInvalidInteraction = errors.New("invalid interaction type")
	ErrAlreadyCheckedIn   = errors.New("already checked in on this date")
	ErrDateInFuture       = errors.New("date must be in the past")
	ErrDateTooOld         = errors.New("date is beyond the make-up window")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrItemNotFound       = errors.New("shop item not found")
	ErrNotPurchasable     = errors.New("item cannot be purchased")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrLimitExceeded      = errors.New("purchase limit exceeded")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrNotCancellable     = errors.New("purchase cannot be cancelled")
	ErrNotRefundable      = errors.New("purchase cannot be refunded")
)
