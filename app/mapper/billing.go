package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/gateway"
	"github.com/vibast-solutions/ms-go-token-charge/app/service"
	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

func TransactionToResponse(item *entity.Transaction) *types.Transaction {
	if item == nil {
		return nil
	}

	return &types.Transaction{
		Id:            item.ID,
		Reference:     item.Reference,
		RequestId:     item.RequestID,
		InvoiceId:     item.InvoiceID,
		PartnerId:     item.PartnerID,
		CompanyId:     item.CompanyID,
		TokenId:       item.TokenID,
		Provider:      types.ProviderName(item.Provider),
		Amount:        item.Amount,
		Currency:      item.Currency,
		Operation:     item.Operation,
		State:         types.TransactionState(item.State).String(),
		StateMessage:  derefString(item.StateMessage),
		ProviderTxRef: derefString(item.ProviderTxRef),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func TokenToResponse(item *entity.PaymentToken) *types.Token {
	if item == nil {
		return nil
	}

	return &types.Token{
		Id:            item.ID,
		PartnerId:     item.PartnerID,
		Provider:      types.ProviderName(item.Provider),
		PaymentMethod: derefString(item.PaymentMethod),
		DisplayName:   item.DisplayName,
	}
}

func TokensToResponse(items []*entity.PaymentToken) []*types.Token {
	result := make([]*types.Token, 0, len(items))
	for _, item := range items {
		result = append(result, TokenToResponse(item))
	}
	return result
}

func ChargeWizardToResponse(wizard *service.ChargeWizard) *types.ChargeWizardResponse {
	if wizard == nil || wizard.Invoice == nil {
		return nil
	}

	return &types.ChargeWizardResponse{
		InvoiceId:      wizard.Invoice.ID,
		InvoiceName:    wizard.Invoice.Name,
		PartnerId:      wizard.Invoice.PartnerID,
		Currency:       wizard.Invoice.Currency,
		AmountResidual: wizard.Invoice.AmountResidual,
		Tokens:         TokensToResponse(wizard.Tokens),
	}
}

func TokenizationPageToResponse(page *service.TokenizationPage) *types.TokenizePageResponse {
	if page == nil {
		return nil
	}

	providers := make([]*types.GatewayInfo, 0, len(page.Gateways))
	for _, g := range page.Gateways {
		providers = append(providers, &types.GatewayInfo{
			Code: types.ProviderName(g.Code()),
			Name: g.Name(),
		})
	}

	methods := make([]*types.PaymentMethodInfo, 0, len(page.Methods))
	for _, m := range page.Methods {
		methods = append(methods, paymentMethodToResponse(m))
	}

	return &types.TokenizePageResponse{
		PartnerId:      page.Partner.ID,
		PartnerName:    page.Partner.Name,
		CompanyId:      page.Company.ID,
		CompanyName:    page.Company.Name,
		Providers:      providers,
		PaymentMethods: methods,
		Tokens:         TokensToResponse(page.Tokens),
		AccessToken:    page.AccessToken,
		Transaction:    TransactionToResponse(page.Transaction),
	}
}

func paymentMethodToResponse(m gateway.PaymentMethod) *types.PaymentMethodInfo {
	return &types.PaymentMethodInfo{Code: m.Code, Name: m.Name}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
