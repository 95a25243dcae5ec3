package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	ActingUserIDHeader   = "X-Acting-User-ID"
	ActingUserKindHeader = "X-Acting-User-Kind"
)

const (
	ActorKindInternal = "internal"
	ActorKindPortal   = "portal"
	ActorKindPublic   = "public"
)

// Actor is the acting ERP user forwarded by the calling backend. Identity
// is passed explicitly on every request instead of being read from any
// ambient session state.
type Actor struct {
	UserID string
	Kind   string
}

func (a Actor) Internal() bool {
	return a.Kind == ActorKindInternal
}

func actorFromContext(ctx echo.Context) Actor {
	kind := strings.ToLower(strings.TrimSpace(ctx.Request().Header.Get(ActingUserKindHeader)))
	if kind == "" {
		kind = ActorKindPublic
	}
	return Actor{
		UserID: strings.TrimSpace(ctx.Request().Header.Get(ActingUserIDHeader)),
		Kind:   kind,
	}
}

func validActorKind(kind string) bool {
	switch kind {
	case ActorKindInternal, ActorKindPortal, ActorKindPublic:
		return true
	default:
		return false
	}
}

type ChargeInvoiceRequest struct {
	RequestID string  `json:"request_id"`
	InvoiceID uint64  `json:"-"`
	TokenID   uint64  `json:"token_id"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
	Actor     Actor   `json:"-"`
}

func NewChargeInvoiceRequestFromContext(ctx echo.Context) (*ChargeInvoiceRequest, error) {
	invoiceID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body ChargeInvoiceRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	body.InvoiceID = invoiceID
	body.RequestID = strings.TrimSpace(body.RequestID)
	if body.RequestID == "" {
		body.RequestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}
	body.Reference = strings.TrimSpace(body.Reference)
	body.Actor = actorFromContext(ctx)

	return &body, nil
}

func (r *ChargeInvoiceRequest) Validate() error {
	if r.InvoiceID == 0 {
		return errors.New("invalid invoice id")
	}
	if r.RequestID == "" {
		return errors.New("request_id is required")
	}
	if !validActorKind(r.Actor.Kind) {
		return errors.New("invalid acting user kind")
	}
	return nil
}

type ChargeWizardRequest struct {
	InvoiceID uint64
	Actor     Actor
}

func NewChargeWizardRequestFromContext(ctx echo.Context) (*ChargeWizardRequest, error) {
	invoiceID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &ChargeWizardRequest{
		InvoiceID: invoiceID,
		Actor:     actorFromContext(ctx),
	}, nil
}

func (r *ChargeWizardRequest) Validate() error {
	if r.InvoiceID == 0 {
		return errors.New("invalid invoice id")
	}
	return nil
}

type OpenTokenizeRequest struct {
	PartnerID uint64 `json:"-"`
	CompanyID uint64 `json:"company_id"`
	Actor     Actor  `json:"-"`
}

func NewOpenTokenizeRequestFromContext(ctx echo.Context) (*OpenTokenizeRequest, error) {
	partnerID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body OpenTokenizeRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	body.PartnerID = partnerID
	body.Actor = actorFromContext(ctx)

	return &body, nil
}

func (r *OpenTokenizeRequest) Validate() error {
	if r.PartnerID == 0 {
		return errors.New("invalid partner id")
	}
	if r.CompanyID == 0 {
		return errors.New("company_id is required")
	}
	return nil
}

type ValidateTokenRequest struct {
	RequestID string `json:"request_id"`
	TokenID   uint64 `json:"-"`
	Actor     Actor  `json:"-"`
}

func NewValidateTokenRequestFromContext(ctx echo.Context) (*ValidateTokenRequest, error) {
	tokenID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body ValidateTokenRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	body.TokenID = tokenID
	body.RequestID = strings.TrimSpace(body.RequestID)
	if body.RequestID == "" {
		body.RequestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}
	body.Actor = actorFromContext(ctx)

	return &body, nil
}

func (r *ValidateTokenRequest) Validate() error {
	if r.TokenID == 0 {
		return errors.New("invalid token id")
	}
	if r.RequestID == "" {
		return errors.New("request_id is required")
	}
	if !validActorKind(r.Actor.Kind) {
		return errors.New("invalid acting user kind")
	}
	return nil
}

type TokenizePageRequest struct {
	PartnerID     uint64
	CompanyID     uint64
	TransactionID uint64
	AccessToken   string
	Actor         Actor
}

func NewTokenizePageRequestFromContext(ctx echo.Context) (*TokenizePageRequest, error) {
	partnerID, err := strconv.ParseUint(strings.TrimSpace(ctx.QueryParam("partner_id")), 10, 64)
	if err != nil {
		return nil, err
	}
	companyID, err := strconv.ParseUint(strings.TrimSpace(ctx.QueryParam("company_id")), 10, 64)
	if err != nil {
		return nil, err
	}

	req := &TokenizePageRequest{
		PartnerID:   partnerID,
		CompanyID:   companyID,
		AccessToken: strings.TrimSpace(ctx.QueryParam("access_token")),
		Actor:       actorFromContext(ctx),
	}

	if raw := strings.TrimSpace(ctx.QueryParam("transaction_id")); raw != "" {
		transactionID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.TransactionID = transactionID
	}

	return req, nil
}

func (r *TokenizePageRequest) Validate() error {
	if r.PartnerID == 0 {
		return errors.New("invalid partner id")
	}
	if r.CompanyID == 0 {
		return errors.New("invalid company id")
	}
	return nil
}
