package service

import (
	"context"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/bagayi/finance-api/internal/repository"
	"github.com/bagayi/finance-api/internal/routing"
	"github.com/google/uuid"
)

// Store is the persistence surface the services depend on, implemented by
// *repository.Repository and by in-memory fakes in tests.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	DirectoryAccounts(ctx context.Context) ([]models.Account, error)
	DirectoryCategories(ctx context.Context) ([]models.Category, error)

	CreateTransfer(ctx context.Context, tr *models.Transfer) error
	GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	ListTransfers(ctx context.Context, p repository.ListTransfersParams) ([]models.Transfer, error)
	ListSubmittedChannelTransfers(ctx context.Context, limit int32) ([]models.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	CompleteChannelTransfer(ctx context.Context, id uuid.UUID, externalRef string) error
	FrequentRecipients(ctx context.Context, createdBy string, limit int) ([]models.FrequentRecipient, error)
}

// SnapshotLoader produces per-request directory snapshots for the resolver.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (routing.Directory, error)
	Invalidate(ctx context.Context)
}
