package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-token-charge/app/entity"
	"github.com/vibast-solutions/ms-go-token-charge/app/factory"
	"github.com/vibast-solutions/ms-go-token-charge/app/gateway"
	"github.com/vibast-solutions/ms-go-token-charge/config"
)

const defaultBatchSize = int32(100)

type invoiceRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Invoice, error)
}

type partnerRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Partner, error)
}

type companyRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Company, error)
}

type tokenRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.PaymentToken, error)
	ListActiveForCommercial(ctx context.Context, commercialID uint64, providers []int32) ([]*entity.PaymentToken, error)
}

type transactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	Update(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uint64) (*entity.Transaction, error)
	FindByRequestID(ctx context.Context, requestID string) (*entity.Transaction, error)
	ListStalePending(ctx context.Context, before time.Time, limit int32) ([]*entity.Transaction, error)
}

type transactionEventRepository interface {
	Create(ctx context.Context, event *entity.TransactionEvent) error
}

type invoiceNoteRepository interface {
	Create(ctx context.Context, note *entity.InvoiceNote) error
}

type BillingService struct {
	invoiceRepo invoiceRepository
	partnerRepo partnerRepository
	companyRepo companyRepository
	tokenRepo   tokenRepository
	txRepo      transactionRepository
	eventRepo   transactionEventRepository
	noteRepo    invoiceNoteRepository
	gatewayReg  *gateway.Registry
	billingCfg  config.BillingConfig
	accessKey   string
	logger      logrus.FieldLogger
}

func NewBillingService(
	invoiceRepo invoiceRepository,
	partnerRepo partnerRepository,
	companyRepo companyRepository,
	tokenRepo tokenRepository,
	txRepo transactionRepository,
	eventRepo transactionEventRepository,
	noteRepo invoiceNoteRepository,
	gatewayReg *gateway.Registry,
	billingCfg config.BillingConfig,
	accessKey string,
) *BillingService {
	return &BillingService{
		invoiceRepo: invoiceRepo,
		partnerRepo: partnerRepo,
		companyRepo: companyRepo,
		tokenRepo:   tokenRepo,
		txRepo:      txRepo,
		eventRepo:   eventRepo,
		noteRepo:    noteRepo,
		gatewayReg:  gatewayReg,
		billingCfg:  billingCfg,
		accessKey:   accessKey,
		logger:      factory.NewModuleLogger("billing-service"),
	}
}

func (s *BillingService) batchSize() int32 {
	if s.billingCfg.JobBatchSize > 0 {
		return s.billingCfg.JobBatchSize
	}
	return defaultBatchSize
}

// commercialID resolves the top-level billing entity of a partner; token
// ownership is always compared at this level, never at sub-contacts.
func (s *BillingService) commercialID(ctx context.Context, partnerID uint64) (uint64, error) {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return 0, err
	}
	if partner == nil {
		return 0, ErrNotFound
	}
	return partner.CommercialID(), nil
}
