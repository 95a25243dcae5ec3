package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/gateway"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

// TokenizationPage is the composed rendering context for the hosted
// enrollment page. Compatibility resolution is the gateways' own answer;
// this service only marshals parameters and enforces access.
type TokenizationPage struct {
	Partner     *entity.Partner
	Company     *entity.Company
	Gateways    []gateway.Gateway
	Methods     []gateway.PaymentMethod
	Tokens      []*entity.PaymentToken
	AccessToken string
	Transaction *entity.Transaction
}

// OpenTokenization resolves the redirect target for the hosted enrollment
// page. Internal staff only.
func (s *BillingService) OpenTokenization(ctx context.Context, req *types.OpenTokenizeRequest) (string, error) {
	if !req.Actor.Internal() {
		return "", ErrForbidden
	}

	partner, err := s.partnerRepo.FindByID(ctx, req.PartnerID)
	if err != nil {
		return "", err
	}
	if partner == nil {
		return "", fmt.Errorf("%w: partner %d", ErrNotFound, req.PartnerID)
	}

	company, err := s.companyRepo.FindByID(ctx, req.CompanyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", fmt.Errorf("%w: company %d", ErrNotFound, req.CompanyID)
	}

	s.logger.WithFields(logrus.Fields{
		"partner_id": partner.ID,
		"company_id": company.ID,
		"actor":      req.Actor.UserID,
	}).Info("tokenization_page_opened")

	query := url.Values{}
	query.Set("partner_id", strconv.FormatUint(partner.ID, 10))
	query.Set("company_id", strconv.FormatUint(company.ID, 10))
	query.Set("access_token", s.generateAccessToken(partner.ID, company.ID))

	return s.billingCfg.TokenizePageBaseURL + "?" + query.Encode(), nil
}

// ValidateToken confirms a freshly enrolled token against its provider
// without moving funds. The gateway runs a save-only confirmation, so the
// transaction carries no charge amount.
func (s *BillingService) ValidateToken(ctx context.Context, req *types.ValidateTokenRequest) (*entity.Transaction, error) {
	if !req.Actor.Internal() {
		return nil, ErrForbidden
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		return nil, ErrInvalidRequest
	}

	existing, err := s.txRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	token, err := s.tokenRepo.FindByID(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Active {
		return nil, fmt.Errorf("%w: token %d is not usable", ErrTokenOwnership, req.TokenID)
	}

	if token.Provider == types.ProviderUnspecified {
		return nil, ErrProviderMissing
	}
	gw, err := s.gatewayReg.Get(token.Provider)
	if err != nil {
		return nil, ErrProviderMissing
	}

	company, err := s.companyRepo.FindByID(ctx, token.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %d", ErrNotFound, token.CompanyID)
	}

	s.logger.WithFields(logrus.Fields{
		"token_id": token.ID,
		"provider": types.ProviderName(token.Provider),
		"actor":    req.Actor.UserID,
	}).Info("token_validation_requested")

	now := time.Now().UTC()
	tx := &entity.Transaction{
		Reference: fmt.Sprintf("VALIDATION-%d-%s", token.ID, uuid.NewString()[:8]),
		RequestID: requestID,
		PartnerID: token.PartnerID,
		CompanyID: token.CompanyID,
		TokenID:   token.ID,
		Provider:  token.Provider,
		Currency:  company.Currency,
		Operation: entity.TransactionOperationValidation,
		State:     int32(types.TransactionStateDraft),
		CreatedBy: req.Actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, tx, "transaction_created", nil, "")

	output, err := gw.SendPaymentRequest(ctx, &gateway.ChargeInput{
		Reference:  tx.Reference,
		RequestID:  tx.RequestID,
		TokenRef:   token.ProviderRef,
		Currency:   tx.Currency,
		Validation: true,
	})
	if err != nil {
		s.recordEvent(ctx, tx, "dispatch_failed", nil, err.Error())
		s.logger.WithError(err).WithField("transaction_id", tx.ID).Error("validation request dispatch failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementDispatch, err)
	}

	oldState := tx.State
	tx.State = output.State
	tx.ProviderTxRef = output.ProviderTxRef
	if msg := strings.TrimSpace(output.StateMessage); msg != "" {
		tx.StateMessage = &msg
	}
	tx.UpdatedAt = time.Now().UTC()

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

// TokenizationPageContext composes the hosted page context: compatible
// gateways in validation mode, their payment methods, and the partner's
// existing tokens for management.
func (s *BillingService) TokenizationPageContext(ctx context.Context, req *types.TokenizePageRequest) (*TokenizationPage, error) {
	if !req.Actor.Internal() {
		return nil, ErrForbidden
	}
	if req.AccessToken != "" && !s.verifyAccessToken(req.AccessToken, req.PartnerID, req.CompanyID) {
		return nil, fmt.Errorf("%w: invalid access token", ErrForbidden)
	}

	partner, err := s.partnerRepo.FindByID(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, fmt.Errorf("%w: partner %d", ErrNotFound, req.PartnerID)
	}

	company, err := s.companyRepo.FindByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %d", ErrNotFound, req.CompanyID)
	}

	gateways := s.gatewayReg.CompatibleForTokenization(company.ID)

	codes := make([]int32, 0, len(gateways))
	methods := make([]gateway.PaymentMethod, 0, 4)
	seen := make(map[string]bool, 4)
	for _, g := range gateways {
		codes = append(codes, g.Code())
		for _, m := range g.PaymentMethods() {
			if seen[m.Code] {
				continue
			}
			seen[m.Code] = true
			methods = append(methods, m)
		}
	}

	// Without a compatible provider there is nothing to manage either.
	tokens := make([]*entity.PaymentToken, 0)
	if len(codes) > 0 {
		tokens, err = s.tokenRepo.ListActiveForCommercial(ctx, partner.CommercialID(), codes)
		if err != nil {
			return nil, err
		}
	}

	page := &TokenizationPage{
		Partner:     partner,
		Company:     company,
		Gateways:    gateways,
		Methods:     methods,
		Tokens:      tokens,
		AccessToken: req.AccessToken,
	}
	if page.AccessToken == "" {
		page.AccessToken = s.generateAccessToken(partner.ID, company.ID)
	}

	if req.TransactionID > 0 {
		tx, err := s.txRepo.FindByID(ctx, req.TransactionID)
		if err != nil {
			return nil, err
		}
		page.Transaction = tx
	}

	s.logger.WithFields(logrus.Fields{
		"partner_id":      partner.ID,
		"company_id":      company.ID,
		"providers":       len(gateways),
		"payment_methods": len(methods),
		"tokens":          len(tokens),
	}).Info("tokenization_page_context")

	return page, nil
}
