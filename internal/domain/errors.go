package domain

import "errors"

// Validation errors are recovered at the request boundary and surfaced as
// structured user-facing failures with no partial state change.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrRaspadinhaNotFound  = errors.New("raspadinha not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyRevealed     = errors.New("purchase already revealed")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrOutOfStock          = errors.New("raspadinha out of stock")
	ErrPendingWithdrawal   = errors.New("withdrawal already in progress")
)

// Server faults: these indicate a bug, not bad input. Logged with full
// context and surfaced generically.
var (
	ErrInvalidPrize    = errors.New("drawn prize not in product prize table")
	ErrWalletInvariant = errors.New("wallet bucket invariant violated")
)
