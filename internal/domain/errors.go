package domain

import "errors"

// Input validation errors
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidDirection     = errors.New("direction must be left or right")
	ErrInvalidWallet        = errors.New("wallet address must match ^0x[a-fA-F0-9]{40}$")
	ErrInvalidConnection    = errors.New("invalid connection type")
	ErrCannotSwipeSelf      = errors.New("cannot swipe on yourself")
	ErrCannotConnectSelf    = errors.New("cannot connect with yourself")
	ErrSyntheticTarget      = errors.New("sample profiles cannot be swiped or saved")
	ErrInvalidLocationShare = errors.New("location sharing must be off, city or precise")
)

// Not found errors
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrSwipeNotFound      = errors.New("swipe not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrConnectionNotFound = errors.New("connection not found")
)

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
)

// Wallet errors
var (
	ErrWalletNotLinked     = errors.New("no wallet linked to profile")
	ErrUpstreamUnavailable = errors.New("poap service unavailable")
)

// ErrStoreUnavailable is returned by write paths once retries are exhausted.
// Callers should surface it as retryable.
var ErrStoreUnavailable = errors.New("store temporarily unavailable")
