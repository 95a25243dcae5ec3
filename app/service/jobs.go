package service

import (
	"context"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-token-charge/app/types"
)

// RunReconcileBatch refreshes transactions stuck in an in-flight state by
// asking the gateway for the provider-side status. The settlement state
// machine itself stays with the gateway.
func (s *BillingService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	before := now.Add(-s.billingCfg.ReconcileStaleAfter)
	items, err := s.txRepo.ListStalePending(ctx, before, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, tx := range items {
		if tx == nil || tx.ProviderTxRef == nil || strings.TrimSpace(*tx.ProviderTxRef) == "" {
			continue
		}

		gw, err := s.gatewayReg.Get(tx.Provider)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		newState, err := gw.GetTransactionState(ctx, strings.TrimSpace(*tx.ProviderTxRef))
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		if newState == int32(types.TransactionStateUnspecified) || newState == tx.State {
			continue
		}

		oldState := tx.State
		tx.State = newState
		tx.UpdatedAt = now

		if err := s.txRepo.Update(ctx, tx); err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		s.recordEvent(ctx, tx, "transaction_reconciled", &oldState, "")
	}

	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
