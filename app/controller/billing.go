package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-token-charge/app/factory"
	"github.com/vibast-solutions/ms-go-token-charge/app/mapper"
	"github.com/vibast-solutions/ms-go-token-charge/app/service"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

type BillingController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewBillingController(billingService *service.BillingService) *BillingController {
	return &BillingController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *BillingController) GetChargeWizard(ctx echo.Context) error {
	req, err := types.NewChargeWizardRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	wizard, err := c.billingService.GetChargeWizard(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get charge wizard failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.ChargeWizardToResponse(wizard))
}

func (c *BillingController) ChargeInvoice(ctx echo.Context) error {
	req, err := types.NewChargeInvoiceRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.billingService.ChargeInvoice(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidAmount):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrUnsupportedDocument),
			errors.Is(err, service.ErrNothingToCharge),
			errors.Is(err, service.ErrAmountExceedsResidual),
			errors.Is(err, service.ErrTokenOwnership),
			errors.Is(err, service.ErrProviderMissing):
			return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrSettlementDispatch), errors.Is(err, service.ErrSettlementFailed):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Charge settlement failed")
			return c.writeError(ctx, http.StatusBadGateway, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Charge invoice failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *BillingController) OpenTokenize(ctx echo.Context) error {
	req, err := types.NewOpenTokenizeRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	target, err := c.billingService.OpenTokenization(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.writeError(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Open tokenize failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.RedirectResponse{Url: target})
}

func (c *BillingController) ValidateToken(ctx echo.Context) error {
	req, err := types.NewValidateTokenRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.billingService.ValidateToken(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return c.writeError(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTokenOwnership), errors.Is(err, service.ErrProviderMissing):
			return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrSettlementDispatch), errors.Is(err, service.ErrSettlementFailed):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Token validation failed")
			return c.writeError(ctx, http.StatusBadGateway, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Validate token failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *BillingController) TokenizePage(ctx echo.Context) error {
	req, err := types.NewTokenizePageRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	page, err := c.billingService.TokenizationPageContext(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.writeError(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Tokenize page failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.TokenizationPageToResponse(page))
}

func (c *BillingController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
