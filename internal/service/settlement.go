package service

import (
	"context"
	"fmt"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/gateway"
	"github.com/bagayi/finance-api/internal/observability"
	"go.uber.org/zap"
)

// SettlementService pushes submitted M-Pesa channel transfers through the
// payment gateway and records the outcome. Direct and inter-switch transfers
// settle inside the ledger and never pass through here.
type SettlementService struct {
	store   Store
	gateway gateway.Gateway
}

func NewSettlementService(store Store, gw gateway.Gateway) *SettlementService {
	return &SettlementService{store: store, gateway: gw}
}

// ProcessSubmitted settles up to batchSize submitted channel transfers.
// Each transfer is claimed with a submitted->pending transition first, so a
// transfer seen by two workers is only sent to the gateway once.
func (s *SettlementService) ProcessSubmitted(ctx context.Context, batchSize int32) (int, error) {
	transfers, err := s.store.ListSubmittedChannelTransfers(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list submitted transfers: %w", err)
	}

	processed := 0
	for _, tr := range transfers {
		if tr.PaymentChannel == nil {
			continue
		}

		claimed, err := s.store.UpdateTransferStatus(ctx, tr.ID, domain.TransferStatusSubmitted, domain.TransferStatusPending)
		if err != nil {
			return processed, fmt.Errorf("claim transfer %s: %w", tr.ID, err)
		}
		if !claimed {
			continue
		}

		ref, err := s.gateway.Initiate(ctx, *tr.PaymentChannel, tr.Amount)
		if err != nil {
			zap.L().Warn("gateway initiation failed",
				zap.String("transfer_id", tr.ID.String()),
				zap.Error(err),
			)
			if _, ferr := s.store.UpdateTransferStatus(ctx, tr.ID, domain.TransferStatusPending, domain.TransferStatusFailed); ferr != nil {
				return processed, fmt.Errorf("fail transfer %s: %w", tr.ID, ferr)
			}
			observability.IncrementSettlement("failed")
			processed++
			continue
		}

		if err := s.store.CompleteChannelTransfer(ctx, tr.ID, ref); err != nil {
			return processed, fmt.Errorf("complete transfer %s: %w", tr.ID, err)
		}
		observability.IncrementSettlement("posted")
		zap.L().Info("channel transfer settled",
			zap.String("transfer_id", tr.ID.String()),
			zap.String("gateway_ref", ref),
		)
		processed++
	}
	return processed, nil
}
