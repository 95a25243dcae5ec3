package gateway

import "context"

type ChargeInput struct {
	Reference  string
	RequestID  string
	TokenRef   string
	InvoiceRef string

	AmountMinor int64
	Currency    string

	// Validation requests a save-only confirmation instead of a live
	// charge; AmountMinor is ignored when set.
	Validation bool

	Metadata map[string]string
}

type ChargeOutput struct {
	ProviderTxRef *string
	State         int32
	StateMessage  string
}

type PaymentMethod struct {
	Code string
	Name string
}

// Gateway is the external payment service boundary. Provider selection,
// the settlement state machine, and hosted tokenization all live behind
// it; this service only submits requests and reads states back.
type Gateway interface {
	Code() int32
	Name() string
	SendPaymentRequest(ctx context.Context, input *ChargeInput) (*ChargeOutput, error)
	GetTransactionState(ctx context.Context, providerTxRef string) (int32, error)
	SupportsTokenization(companyID uint64) bool
	PaymentMethods() []PaymentMethod
}
