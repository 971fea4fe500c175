// internal/auction/errors.go
package auction

import "errors"

// Validation errors. Caused by stale client state or user input; surfaced
// inline to the initiating user and safely retryable after a refresh.
var (
	ErrInactiveAuction    = errors.New("auction is not active")
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrNotHost            = errors.New("only the host may do that")
	ErrNotParticipant     = errors.New("user has not joined this auction")
	ErrInvalidTransition  = errors.New("auction cannot move to that state")
	ErrLotPoolEmpty       = errors.New("no lots selected for this auction")
)

// ErrStaleState means another bid landed between the caller reading the
// auction and submitting. The client should refetch and retry.
var ErrStaleState = errors.New("auction state changed underneath the caller")

// ErrUnpaidSettlement marks a lot whose WinnerRecord was written but whose
// budget debit did not apply. The lot is still terminal; the budget needs
// operator reconciliation.
var ErrUnpaidSettlement = errors.New("winner recorded but budget debit failed")
