package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

type StripeConfig struct {
	SecretKey           string
	TokenizationEnabled bool
	PaymentMethods      []string
	HTTPTimeout         time.Duration
}

type StripeGateway struct {
	cfg    StripeConfig
	client *http.Client
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if len(cfg.PaymentMethods) == 0 {
		cfg.PaymentMethods = []string{"card"}
	}

	return &StripeGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *StripeGateway) Code() int32 {
	return types.ProviderStripe
}

func (g *StripeGateway) Name() string {
	return "Stripe"
}

func (g *StripeGateway) SupportsTokenization(uint64) bool {
	return g.cfg.TokenizationEnabled && strings.TrimSpace(g.cfg.SecretKey) != ""
}

func (g *StripeGateway) PaymentMethods() []PaymentMethod {
	methods := make([]PaymentMethod, 0, len(g.cfg.PaymentMethods))
	for _, code := range g.cfg.PaymentMethods {
		methods = append(methods, PaymentMethod{Code: code, Name: paymentMethodLabel(code)})
	}
	return methods
}

func (g *StripeGateway) SendPaymentRequest(ctx context.Context, input *ChargeInput) (*ChargeOutput, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}
	if strings.TrimSpace(input.TokenRef) == "" {
		return nil, errors.New("token reference is empty")
	}

	if input.Validation {
		return g.confirmSetupIntent(ctx, input)
	}
	if input.AmountMinor <= 0 {
		return nil, errors.New("charge amount must be at least one minor unit")
	}
	return g.confirmPaymentIntent(ctx, input)
}

func (g *StripeGateway) GetTransactionState(ctx context.Context, providerTxRef string) (int32, error) {
	providerTxRef = strings.TrimSpace(providerTxRef)
	if providerTxRef == "" {
		return 0, nil
	}

	path := "/v1/payment_intents/"
	if strings.HasPrefix(providerTxRef, "seti_") {
		path = "/v1/setup_intents/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.stripe.com"+path+url.PathEscape(providerTxRef), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("stripe get intent failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, err
	}

	return int32(mapStripeIntentStatus(payload.Status)), nil
}

// confirmPaymentIntent charges a saved payment method off-session in a
// single round trip.
func (g *StripeGateway) confirmPaymentIntent(ctx context.Context, input *ChargeInput) (*ChargeOutput, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(input.AmountMinor, 10))
	values.Set("currency", strings.ToLower(input.Currency))
	values.Set("payment_method", input.TokenRef)
	values.Set("confirm", "true")
	values.Set("off_session", "true")
	values.Set("description", input.Reference)
	applyStripeMetadata(values, input)

	body, err := g.postForm(ctx, "/v1/payment_intents", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		LastPaymentError *struct {
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	result := &ChargeOutput{State: int32(mapStripeIntentStatus(payload.Status))}
	if s := strings.TrimSpace(payload.ID); s != "" {
		result.ProviderTxRef = &s
	}
	if payload.LastPaymentError != nil {
		result.StateMessage = strings.TrimSpace(payload.LastPaymentError.Message)
	}

	return result, nil
}

// confirmSetupIntent verifies a payment method without moving funds.
func (g *StripeGateway) confirmSetupIntent(ctx context.Context, input *ChargeInput) (*ChargeOutput, error) {
	values := url.Values{}
	values.Set("payment_method", input.TokenRef)
	values.Set("confirm", "true")
	values.Set("usage", "off_session")
	applyStripeMetadata(values, input)

	body, err := g.postForm(ctx, "/v1/setup_intents", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	result := &ChargeOutput{State: int32(mapStripeIntentStatus(payload.Status))}
	if s := strings.TrimSpace(payload.ID); s != "" {
		result.ProviderTxRef = &s
	}

	return result, nil
}

func (g *StripeGateway) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.stripe.com"+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

func applyStripeMetadata(values url.Values, input *ChargeInput) {
	for k, v := range input.Metadata {
		values.Set("metadata["+k+"]", v)
	}
	if strings.TrimSpace(input.RequestID) != "" {
		values.Set("metadata[request_id]", input.RequestID)
	}
	if strings.TrimSpace(input.InvoiceRef) != "" {
		values.Set("metadata[invoice_ref]", input.InvoiceRef)
	}
}

func mapStripeIntentStatus(status string) types.TransactionState {
	switch strings.TrimSpace(status) {
	case "succeeded":
		return types.TransactionStateDone
	case "processing":
		return types.TransactionStatePending
	case "requires_capture":
		return types.TransactionStateAuthorized
	case "requires_action", "requires_confirmation":
		return types.TransactionStatePending
	case "canceled":
		return types.TransactionStateCanceled
	case "requires_payment_method":
		return types.TransactionStateError
	default:
		return types.TransactionStateUnspecified
	}
}

func paymentMethodLabel(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	switch code {
	case "card":
		return "Card"
	case "sepa_debit":
		return "SEPA Direct Debit"
	case "us_bank_account":
		return "ACH Direct Debit"
	default:
		return strings.ToUpper(code[:1]) + code[1:]
	}
}
