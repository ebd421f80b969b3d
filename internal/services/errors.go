package services

import "errors"

// Domain error taxonomy. Validation errors are clean rejections with no
// state change; ErrSettlementPartial is the one non-recoverable case and
// means an atomicity invariant was violated.
var (
	ErrInsufficientFunds  = errors.New("insufficient available balance")
	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrBidTooLow          = errors.New("bid is below the minimum acceptable amount")
	ErrSelfBid            = errors.New("sellers cannot bid on their own product")
	ErrOrderNotCancelable = errors.New("order can no longer be cancelled")
	ErrSettlementPartial  = errors.New("settlement invariant violated")
	ErrInvalidFilter      = errors.New("invalid transaction filter")
)
