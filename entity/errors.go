package entity

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrNumberTaken          = errors.New("number already taken")
	ErrNumberOutOfRange     = errors.New("number out of raffle range")
	ErrPackageIncomplete    = errors.New("selected numbers do not match package size")
	ErrPlatformDisabled     = errors.New("payment platform is not enabled")
	ErrInvalidReference     = errors.New("invalid payment reference")
	ErrPaymentWindowExpired = errors.New("payment window expired")
	ErrWrongState           = errors.New("operation not allowed in current purchase state")
)
