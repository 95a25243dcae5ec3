package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/gateway"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

func openTokenizeRequest() *types.OpenTokenizeRequest {
	return &types.OpenTokenizeRequest{
		PartnerID: 10,
		CompanyID: 1,
		Actor:     types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	}
}

func TestOpenTokenizationForbiddenForNonInternalActor(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	req := openTokenizeRequest()
	req.Actor.Kind = types.ActorKindPortal
	if _, err := svc.OpenTokenization(context.Background(), req); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for portal actor, got %v", err)
	}

	req.Actor.Kind = types.ActorKindPublic
	if _, err := svc.OpenTokenization(context.Background(), req); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for public actor, got %v", err)
	}
}

func TestOpenTokenizationPartnerNotFound(t *testing.T) {
	f := newBillingFixture()
	f.companyRepo.companies[1] = &entity.Company{ID: 1, Name: "Main Company"}
	svc := f.service()

	if _, err := svc.OpenTokenization(context.Background(), openTokenizeRequest()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing partner, got %v", err)
	}
}

func TestOpenTokenizationCompanyNotFound(t *testing.T) {
	f := newBillingFixture()
	f.partnerRepo.partners[10] = &entity.Partner{ID: 10, Name: "Acme GmbH"}
	svc := f.service()

	if _, err := svc.OpenTokenization(context.Background(), openTokenizeRequest()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing company, got %v", err)
	}
}

func TestOpenTokenizationBuildsRedirectTarget(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	target, err := svc.OpenTokenization(context.Background(), openTokenizeRequest())
	if err != nil {
		t.Fatalf("open tokenization failed: %v", err)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		t.Fatalf("expected parseable redirect url, got %q: %v", target, err)
	}
	query := parsed.Query()
	if query.Get("partner_id") != "10" || query.Get("company_id") != "1" {
		t.Fatalf("expected partner/company in query, got %q", parsed.RawQuery)
	}
	if query.Get("access_token") == "" {
		t.Fatal("expected access token in query")
	}

	// The issued token must be accepted by the page itself.
	page, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID:   10,
		CompanyID:   1,
		AccessToken: query.Get("access_token"),
		Actor:       types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	})
	if err != nil {
		t.Fatalf("expected issued token to be accepted, got %v", err)
	}
	if page.AccessToken != query.Get("access_token") {
		t.Fatalf("expected page to echo the access token")
	}
}

func TestTokenizationPageContextRejectsTamperedAccessToken(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	_, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID:   10,
		CompanyID:   1,
		AccessToken: "deadbeef",
		Actor:       types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for tampered token, got %v", err)
	}
}

func TestTokenizationPageContextForbiddenForNonInternalActor(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	_, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID: 10,
		CompanyID: 1,
		Actor:     types.Actor{UserID: "cust-1", Kind: types.ActorKindPortal},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTokenizationPageContextComposesGatewaysAndMethods(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()

	stripe := &serviceGateway{
		code:         types.ProviderStripe,
		tokenization: true,
		methods: []gateway.PaymentMethod{
			{Code: "card", Name: "Card"},
			{Code: "sepa_debit", Name: "SEPA Direct Debit"},
		},
	}
	// Second gateway overlaps on card; the page must not list it twice.
	other := &serviceGateway{
		code:         2,
		name:         "Adyen",
		tokenization: true,
		methods: []gateway.PaymentMethod{
			{Code: "card", Name: "Card"},
			{Code: "us_bank_account", Name: "ACH Direct Debit"},
		},
	}
	svc := f.service(stripe, other)

	page, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID: 10,
		CompanyID: 1,
		Actor:     types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	})
	if err != nil {
		t.Fatalf("tokenization page context failed: %v", err)
	}
	if len(page.Gateways) != 2 {
		t.Fatalf("expected 2 compatible gateways, got %d", len(page.Gateways))
	}
	if len(page.Methods) != 3 {
		t.Fatalf("expected 3 deduplicated payment methods, got %+v", page.Methods)
	}
	if len(page.Tokens) != 1 || page.Tokens[0].ID != 5 {
		t.Fatalf("expected the partner's active token, got %+v", page.Tokens)
	}
	if page.AccessToken == "" {
		t.Fatal("expected a generated access token")
	}
}

func TestTokenizationPageContextSkipsIncompatibleGateway(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	f.gateway.tokenization = false
	svc := f.service()

	page, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID: 10,
		CompanyID: 1,
		Actor:     types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	})
	if err != nil {
		t.Fatalf("tokenization page context failed: %v", err)
	}
	if len(page.Gateways) != 0 {
		t.Fatalf("expected no compatible gateways, got %d", len(page.Gateways))
	}
	if len(page.Tokens) != 0 {
		t.Fatalf("expected no tokens without a compatible provider, got %d", len(page.Tokens))
	}
}

func TestTokenizationPageContextIncludesTransaction(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	now := time.Now().UTC()
	f.txRepo.transactions[3] = &entity.Transaction{
		ID:        3,
		Reference: "VALIDATION-3",
		RequestID: "req-v3",
		PartnerID: 10,
		CompanyID: 1,
		Provider:  types.ProviderStripe,
		Operation: entity.TransactionOperationValidation,
		State:     int32(types.TransactionStateDone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	svc := f.service()

	page, err := svc.TokenizationPageContext(context.Background(), &types.TokenizePageRequest{
		PartnerID:     10,
		CompanyID:     1,
		TransactionID: 3,
		Actor:         types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	})
	if err != nil {
		t.Fatalf("tokenization page context failed: %v", err)
	}
	if page.Transaction == nil || page.Transaction.ID != 3 {
		t.Fatalf("expected monitored transaction on the page, got %+v", page.Transaction)
	}
}

func validateTokenRequest() *types.ValidateTokenRequest {
	return &types.ValidateTokenRequest{
		RequestID: "req-v1",
		TokenID:   5,
		Actor:     types.Actor{UserID: "user-7", Kind: types.ActorKindInternal},
	}
}

func TestValidateTokenSuccess(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	ref := "seti_test_123"
	f.gateway.chargeOutput = &gateway.ChargeOutput{
		ProviderTxRef: &ref,
		State:         int32(types.TransactionStateDone),
	}
	svc := f.service()

	tx, err := svc.ValidateToken(context.Background(), validateTokenRequest())
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if tx.Operation != entity.TransactionOperationValidation {
		t.Fatalf("expected validation operation, got %q", tx.Operation)
	}
	if tx.Amount != 0 {
		t.Fatalf("expected zero amount for validation, got %v", tx.Amount)
	}
	if tx.Currency != "EUR" {
		t.Fatalf("expected company currency, got %q", tx.Currency)
	}
	if tx.ProviderTxRef == nil || *tx.ProviderTxRef != "seti_test_123" {
		t.Fatalf("expected provider tx ref to be stored, got %v", tx.ProviderTxRef)
	}
	if f.gateway.lastInput == nil || !f.gateway.lastInput.Validation {
		t.Fatalf("expected a save-only confirmation, got %+v", f.gateway.lastInput)
	}
	if f.gateway.lastInput.AmountMinor != 0 {
		t.Fatalf("expected no charge amount, got %d", f.gateway.lastInput.AmountMinor)
	}
}

func TestValidateTokenForbiddenForNonInternalActor(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	req := validateTokenRequest()
	req.Actor.Kind = types.ActorKindPortal
	if _, err := svc.ValidateToken(context.Background(), req); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for portal actor, got %v", err)
	}
	if f.gateway.lastInput != nil {
		t.Fatal("expected no gateway call for forbidden actor")
	}
}

func TestValidateTokenIdempotentByRequestID(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	svc := f.service()

	first, err := svc.ValidateToken(context.Background(), validateTokenRequest())
	if err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	second, err := svc.ValidateToken(context.Background(), validateTokenRequest())
	if err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same transaction for replayed request, first=%d second=%d", first.ID, second.ID)
	}
	if len(f.txRepo.transactions) != 1 {
		t.Fatalf("expected a single transaction, got %d", len(f.txRepo.transactions))
	}
}

func TestValidateTokenRejectsInactiveToken(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	f.tokenRepo.tokens[5].Active = false
	svc := f.service()

	if _, err := svc.ValidateToken(context.Background(), validateTokenRequest()); !errors.Is(err, ErrTokenOwnership) {
		t.Fatalf("expected ErrTokenOwnership for inactive token, got %v", err)
	}
}

func TestValidateTokenDispatchFailure(t *testing.T) {
	f := newBillingFixture()
	f.seedChargeable()
	f.gateway.chargeErr = errors.New("connection reset")
	svc := f.service()

	if _, err := svc.ValidateToken(context.Background(), validateTokenRequest()); !errors.Is(err, ErrSettlementDispatch) {
		t.Fatalf("expected ErrSettlementDispatch, got %v", err)
	}

	stored, _ := f.txRepo.FindByRequestID(context.Background(), "req-v1")
	if stored == nil {
		t.Fatal("expected transaction row to survive dispatch failure")
	}
	if stored.State != int32(types.TransactionStateDraft) {
		t.Fatalf("expected draft state after dispatch failure, got %s", types.TransactionState(stored.State))
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	f := newBillingFixture()
	svc := f.service()

	token := svc.generateAccessToken(10, 1)
	if !svc.verifyAccessToken(token, 10, 1) {
		t.Fatal("expected generated token to verify")
	}
	if svc.verifyAccessToken(token, 11, 1) {
		t.Fatal("expected token for another partner to fail verification")
	}
	if svc.verifyAccessToken(token, 10, 2) {
		t.Fatal("expected token for another company to fail verification")
	}
	if svc.verifyAccessToken("not-hex", 10, 1) {
		t.Fatal("expected malformed token to fail verification")
	}
}
