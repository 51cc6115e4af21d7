package errs

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid pricing configuration")
	ErrMalformedRequest   = errors.New("malformed job request")
	ErrUnknownPayoutType  = errors.New("unknown payout type")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrProtocolViolation  = errors.New("protocol violation")
	ErrOptionNotFound     = errors.New("option not found")
)

var ErrSubscriptionClosed = errors.New("reply subscription closed")
