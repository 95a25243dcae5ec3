package service

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNotFound              = errors.New("record not found")
	ErrInvalidState          = errors.New("invoice is not posted")
	ErrUnsupportedDocument   = errors.New("only customer invoices and credit notes can be charged")
	ErrNothingToCharge       = errors.New("invoice has no residual amount due")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrAmountExceedsResidual = errors.New("amount exceeds the residual amount due")
	ErrTokenOwnership        = errors.New("token does not belong to the invoice customer")
	ErrProviderMissing       = errors.New("token does not resolve to an active provider")
	ErrSettlementDispatch    = errors.New("payment request dispatch failed")
	ErrSettlementFailed      = errors.New("payment request was not accepted")
	ErrForbidden             = errors.New("only internal users may tokenize payment methods")
)
