package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/gateway"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

// residualEpsilon absorbs floating-point rounding when comparing the
// requested amount against the invoice residual.
const residualEpsilon = 1e-6

type chargeContext struct {
	invoice *entity.Invoice
	token   *entity.PaymentToken
	partner *entity.Partner
	gateway gateway.Gateway
}

// ChargeInvoice validates the invoice/token/amount combination, submits a
// payment request for the saved token, and reads the resulting state back.
// Validation is fail-fast and mutates nothing; a transaction row is only
// created once every check has passed.
func (s *BillingService) ChargeInvoice(ctx context.Context, req *types.ChargeInvoiceRequest) (*entity.Transaction, error) {
	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		return nil, ErrInvalidRequest
	}

	// Replaying the same request must not dispatch a second charge.
	existing, err := s.txRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	cc, err := s.validateCharge(ctx, req)
	if err != nil {
		return nil, err
	}

	reference := s.resolveReference(req.Reference, cc.invoice)

	s.logger.WithFields(logrus.Fields{
		"invoice_id": cc.invoice.ID,
		"partner_id": cc.invoice.PartnerID,
		"token_id":   cc.token.ID,
		"provider":   types.ProviderName(cc.token.Provider),
		"amount":     req.Amount,
		"currency":   cc.invoice.Currency,
		"actor":      req.Actor.UserID,
	}).Info("charge_requested")

	now := time.Now().UTC()
	tx := &entity.Transaction{
		Reference: reference,
		RequestID: requestID,
		InvoiceID: cc.invoice.ID,
		PartnerID: cc.invoice.PartnerID,
		CompanyID: cc.invoice.CompanyID,
		TokenID:   cc.token.ID,
		Provider:  cc.token.Provider,
		Amount:    req.Amount,
		Currency:  cc.invoice.Currency,
		Operation: entity.TransactionOperationOffline,
		State:     int32(types.TransactionStateDraft),
		CreatedBy: req.Actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, tx, "transaction_created", nil, "")
	s.logger.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"reference":      tx.Reference,
	}).Info("transaction_created")

	result, primaryErr := s.dispatchCharge(ctx, cc, tx)

	// Auxiliary notifications run after the primary outcome is decided and
	// never change it.
	s.appendChargeNote(ctx, cc.invoice, tx, req.Actor, primaryErr)

	if primaryErr != nil {
		return nil, primaryErr
	}
	return result, nil
}

func (s *BillingService) validateCharge(ctx context.Context, req *types.ChargeInvoiceRequest) (*chargeContext, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, req.InvoiceID)
	}

	if invoice.State != entity.InvoiceStatePosted {
		return nil, fmt.Errorf("%w: state=%s", ErrInvalidState, invoice.State)
	}
	if !invoice.Chargeable() {
		return nil, fmt.Errorf("%w: move_type=%s", ErrUnsupportedDocument, invoice.MoveType)
	}
	if invoice.AmountResidual <= 0 {
		return nil, ErrNothingToCharge
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amountToMinor(req.Amount, invoice.Currency) <= 0 {
		return nil, fmt.Errorf("%w: amount is below the smallest %s unit", ErrInvalidAmount, invoice.Currency)
	}
	if req.Amount-invoice.AmountResidual > residualEpsilon {
		return nil, fmt.Errorf("%w: requested=%.2f residual=%.2f", ErrAmountExceedsResidual, req.Amount, invoice.AmountResidual)
	}

	if req.TokenID == 0 {
		return nil, fmt.Errorf("%w: no token selected", ErrTokenOwnership)
	}
	token, err := s.tokenRepo.FindByID(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Active {
		return nil, fmt.Errorf("%w: token %d is not usable", ErrTokenOwnership, req.TokenID)
	}

	tokenOwner, err := s.commercialID(ctx, token.PartnerID)
	if err != nil {
		return nil, err
	}
	invoiceCustomer, err := s.commercialID(ctx, invoice.PartnerID)
	if err != nil {
		return nil, err
	}
	if tokenOwner != invoiceCustomer {
		return nil, ErrTokenOwnership
	}

	if token.Provider == types.ProviderUnspecified {
		return nil, ErrProviderMissing
	}
	gw, err := s.gatewayReg.Get(token.Provider)
	if err != nil {
		return nil, ErrProviderMissing
	}

	partner, err := s.partnerRepo.FindByID(ctx, invoice.PartnerID)
	if err != nil {
		return nil, err
	}

	return &chargeContext{invoice: invoice, token: token, partner: partner, gateway: gw}, nil
}

func (s *BillingService) dispatchCharge(ctx context.Context, cc *chargeContext, tx *entity.Transaction) (*entity.Transaction, error) {
	output, err := cc.gateway.SendPaymentRequest(ctx, &gateway.ChargeInput{
		Reference:   tx.Reference,
		RequestID:   tx.RequestID,
		TokenRef:    cc.token.ProviderRef,
		InvoiceRef:  cc.invoice.Name,
		AmountMinor: amountToMinor(tx.Amount, tx.Currency),
		Currency:    tx.Currency,
	})
	if err != nil {
		// The transaction row stays as-is for operator investigation.
		s.recordEvent(ctx, tx, "dispatch_failed", nil, err.Error())
		s.logger.WithError(err).WithField("transaction_id", tx.ID).Error("payment request dispatch failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementDispatch, err)
	}

	now := time.Now().UTC()
	oldState := tx.State
	tx.State = output.State
	tx.ProviderTxRef = output.ProviderTxRef
	if msg := strings.TrimSpace(output.StateMessage); msg != "" {
		tx.StateMessage = &msg
	}
	tx.UpdatedAt = now

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, tx, "payment_request_sent", &oldState, "")

	switch types.TransactionState(tx.State) {
	case types.TransactionStateDone, types.TransactionStateAuthorized, types.TransactionStatePending:
		return tx, nil
	default:
		return nil, fmt.Errorf("%w: state=%s", ErrSettlementFailed, types.TransactionState(tx.State))
	}
}

// resolveReference picks the user override, then the invoice display name,
// then the internal reference, then a generated fallback.
func (s *BillingService) resolveReference(override string, invoice *entity.Invoice) string {
	if ref := strings.TrimSpace(override); ref != "" {
		return ref
	}
	if name := strings.TrimSpace(invoice.Name); name != "" {
		return name
	}
	if invoice.Ref != nil && strings.TrimSpace(*invoice.Ref) != "" {
		return strings.TrimSpace(*invoice.Ref)
	}
	return fmt.Sprintf("INV-%d-%s", invoice.ID, uuid.NewString()[:8])
}

func (s *BillingService) recordEvent(ctx context.Context, tx *entity.Transaction, eventType string, oldState *int32, detail string) {
	event := &entity.TransactionEvent{
		TransactionID: tx.ID,
		EventType:     eventType,
		OldState:      oldState,
		NewState:      tx.State,
		CreatedAt:     time.Now().UTC(),
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		trimmed := truncate(detail, 1024)
		event.Detail = &trimmed
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithField("transaction_id", tx.ID).Warn("failed to record transaction event")
	}
}

func (s *BillingService) appendChargeNote(ctx context.Context, invoice *entity.Invoice, tx *entity.Transaction, actor types.Actor, primaryErr error) {
	outcome := fmt.Sprintf("submitted, state %s", types.TransactionState(tx.State))
	if primaryErr != nil {
		outcome = fmt.Sprintf("failed: %v", primaryErr)
	}
	note := &entity.InvoiceNote{
		InvoiceID: invoice.ID,
		Author:    actor.UserID,
		Body:      fmt.Sprintf("Token charge %s for %.2f %s: %s", tx.Reference, tx.Amount, tx.Currency, outcome),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		s.logger.WithError(err).WithField("invoice_id", invoice.ID).Warn("failed to append invoice note")
	}
}

// ChargeWizard is the prefill payload for the charge action on an invoice.
type ChargeWizard struct {
	Invoice *entity.Invoice
	Tokens  []*entity.PaymentToken
}

func (s *BillingService) GetChargeWizard(ctx context.Context, req *types.ChargeWizardRequest) (*ChargeWizard, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, req.InvoiceID)
	}

	customer, err := s.commercialID(ctx, invoice.PartnerID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenRepo.ListActiveForCommercial(ctx, customer, nil)
	if err != nil {
		return nil, err
	}

	return &ChargeWizard{Invoice: invoice, Tokens: tokens}, nil
}

// Minor-unit exponents follow the ISO 4217 deviations the gateways care
// about; everything else is a two-decimal currency.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true,
	"KMF": true, "KRW": true, "MGA": true, "PYG": true, "RWF": true,
	"UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true,
	"XPF": true,
}

var threeDecimalCurrencies = map[string]bool{
	"BHD": true, "JOD": true, "KWD": true, "OMR": true, "TND": true,
}

func minorUnitExponent(currency string) int {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	switch {
	case zeroDecimalCurrencies[currency]:
		return 0
	case threeDecimalCurrencies[currency]:
		return 3
	default:
		return 2
	}
}

func amountToMinor(amount float64, currency string) int64 {
	factor := math.Pow(10, float64(minorUnitExponent(currency)))
	return int64(math.Round(amount * factor))
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
