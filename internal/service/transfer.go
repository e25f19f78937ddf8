package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/bagayi/finance-api/internal/observability"
	"github.com/bagayi/finance-api/internal/repository"
	"github.com/bagayi/finance-api/internal/routing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService is the authoritative transfer path: every submission runs
// through the same resolver the UI uses for gating, then through the request
// builder, then into the store.
type TransferService struct {
	store Store
	dir   SnapshotLoader
}

func NewTransferService(store Store, dir SnapshotLoader) *TransferService {
	return &TransferService{store: store, dir: dir}
}

// PreviewResult is the resolver outcome exposed to the client for gating and
// validation messaging before submission.
type PreviewResult struct {
	Decision routing.Decision `json:"decision"`
}

// Preview runs routing resolution only, without persisting anything. The UI
// calls this to gate destination choices and required fields; the server
// re-runs the same resolver on Create, so the two can never drift.
func (s *TransferService) Preview(ctx context.Context, req routing.TransferRequest) (*PreviewResult, error) {
	snap, err := s.dir.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}
	dec, err := routing.Resolve(snap, req)
	if err != nil {
		observability.IncrementRoutingRejection(rejectionReason(err))
		return nil, err
	}
	return &PreviewResult{Decision: dec}, nil
}

// Create resolves, builds, and persists a transfer. Warnings are non-fatal
// observations (currently only the lenient created_at fallback) passed back
// to the caller alongside the created record.
func (s *TransferService) Create(ctx context.Context, req routing.TransferRequest) (*models.Transfer, []routing.Warning, error) {
	snap, err := s.dir.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load directory: %w", err)
	}

	dec, err := routing.Resolve(snap, req)
	if err != nil {
		observability.IncrementRoutingRejection(rejectionReason(err))
		return nil, nil, err
	}

	tr, warnings, err := routing.Build(req, dec, time.Now().UTC())
	if err != nil {
		observability.IncrementRoutingRejection(rejectionReason(err))
		return nil, nil, err
	}

	if err := s.store.CreateTransfer(ctx, &tr); err != nil {
		return nil, nil, err
	}

	observability.IncrementRoutingDecision(string(dec.Mode))
	zap.L().Info("transfer created",
		zap.String("transfer_id", tr.ID.String()),
		zap.String("mode", string(dec.Mode)),
		zap.String("status", tr.Status),
		zap.String("created_by", tr.CreatedBy),
	)
	return &tr, warnings, nil
}

// Get returns a transfer, restricted to its creator unless the actor is an
// admin.
func (s *TransferService) Get(ctx context.Context, id uuid.UUID, actor string, isAdmin bool) (*models.Transfer, error) {
	tr, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && tr.CreatedBy != actor {
		return nil, models.ErrPermissionDenied
	}
	return tr, nil
}

func (s *TransferService) List(ctx context.Context, p repository.ListTransfersParams) ([]models.Transfer, error) {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}
	return s.store.ListTransfers(ctx, p)
}

func (s *TransferService) FrequentRecipients(ctx context.Context, createdBy string, limit int) ([]models.FrequentRecipient, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.FrequentRecipients(ctx, createdBy, limit)
}

// rejectionReason maps a routing error to a stable metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, routing.ErrInvalidDestination):
		return "invalid_destination"
	case errors.Is(err, routing.ErrMissingChannelField):
		return "missing_channel_field"
	case errors.Is(err, routing.ErrNonPositiveAmount):
		return "non_positive_amount"
	case errors.Is(err, routing.ErrSameAccount):
		return "same_account"
	case errors.Is(err, routing.ErrMissingExternalTransactionID):
		return "missing_external_transaction_id"
	case errors.Is(err, routing.ErrMissingExternalAccountMetadata):
		return "missing_external_account_metadata"
	case errors.Is(err, routing.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, routing.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, routing.ErrInvalidTransferType):
		return "invalid_transfer_type"
	case errors.Is(err, routing.ErrInvalidStatus):
		return "invalid_status"
	default:
		return "other"
	}
}
