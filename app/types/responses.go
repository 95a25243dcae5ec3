package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Transaction struct {
	Id            uint64  `json:"id"`
	Reference     string  `json:"reference"`
	RequestId     string  `json:"request_id"`
	InvoiceId     uint64  `json:"invoice_id"`
	PartnerId     uint64  `json:"partner_id"`
	CompanyId     uint64  `json:"company_id"`
	TokenId       uint64  `json:"token_id"`
	Provider      string  `json:"provider"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Operation     string  `json:"operation"`
	State         string  `json:"state"`
	StateMessage  string  `json:"state_message,omitempty"`
	ProviderTxRef string  `json:"provider_tx_ref,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type TransactionEnvelopeResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type Token struct {
	Id            uint64 `json:"id"`
	PartnerId     uint64 `json:"partner_id"`
	Provider      string `json:"provider"`
	PaymentMethod string `json:"payment_method,omitempty"`
	DisplayName   string `json:"display_name"`
}

type ChargeWizardResponse struct {
	InvoiceId      uint64   `json:"invoice_id"`
	InvoiceName    string   `json:"invoice_name"`
	PartnerId      uint64   `json:"partner_id"`
	Currency       string   `json:"currency"`
	AmountResidual float64  `json:"amount_residual"`
	Tokens         []*Token `json:"tokens"`
}

type RedirectResponse struct {
	Url string `json:"url"`
}

type GatewayInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PaymentMethodInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TokenizePageResponse is the rendering context for the hosted enrollment
// page. The actual page markup is owned by the frontend renderer.
type TokenizePageResponse struct {
	PartnerId      uint64               `json:"partner_id"`
	PartnerName    string               `json:"partner_name"`
	CompanyId      uint64               `json:"company_id"`
	CompanyName    string               `json:"company_name"`
	Providers      []*GatewayInfo       `json:"providers"`
	PaymentMethods []*PaymentMethodInfo `json:"payment_methods"`
	Tokens         []*Token             `json:"tokens"`
	AccessToken    string               `json:"access_token"`
	Transaction    *Transaction         `json:"transaction,omitempty"`
}
