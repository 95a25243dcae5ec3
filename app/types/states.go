package types

import "strings"

// TransactionState follows the lifecycle owned by the payment gateway.
// This service only sets Draft and records what the gateway reports back.
type TransactionState int32

const (
	TransactionStateUnspecified TransactionState = 0
	TransactionStateDraft       TransactionState = 1
	TransactionStatePending     TransactionState = 2
	TransactionStateAuthorized  TransactionState = 3
	TransactionStateDone        TransactionState = 4
	TransactionStateCanceled    TransactionState = 5
	TransactionStateError       TransactionState = 6
)

func (s TransactionState) String() string {
	switch s {
	case TransactionStateDraft:
		return "draft"
	case TransactionStatePending:
		return "pending"
	case TransactionStateAuthorized:
		return "authorized"
	case TransactionStateDone:
		return "done"
	case TransactionStateCanceled:
		return "canceled"
	case TransactionStateError:
		return "error"
	default:
		return "unspecified"
	}
}

const (
	ProviderUnspecified int32 = 0
	ProviderStripe      int32 = 1
)

func ProviderName(code int32) string {
	switch code {
	case ProviderStripe:
		return "stripe"
	default:
		return "unspecified"
	}
}

func ParseProvider(raw string) int32 {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "stripe", "1":
		return ProviderStripe
	default:
		return ProviderUnspecified
	}
}
