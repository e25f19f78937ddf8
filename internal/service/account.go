package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("name is required")

// AccountService manages the account/category directory behind the routing
// snapshot. Writes invalidate the cached snapshot so the next transfer sees
// fresh linkage metadata.
type AccountService struct {
	store Store
	dir   SnapshotLoader
}

func NewAccountService(store Store, dir SnapshotLoader) *AccountService {
	return &AccountService{store: store, dir: dir}
}

type CreateAccountRequest struct {
	Name       string
	CategoryID string
}

func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if req.CategoryID != "" {
		if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
			return nil, fmt.Errorf("category %s: %w", req.CategoryID, err)
		}
	}

	account := &models.Account{
		ID:         "account:" + uuid.NewString(),
		Name:       name,
		CategoryID: req.CategoryID,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.dir.Invalidate(ctx)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.DirectoryAccounts(ctx)
}

type CreateCategoryRequest struct {
	Name                 string
	ParentID             *string
	IsLinked             bool
	DefaultAccountID     *string
	PaymentIntegrationID *string
	HasB2CPaybill        bool
	B2CPaybillID         *string
}

func (s *AccountService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if req.ParentID != nil {
		if _, err := s.store.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, fmt.Errorf("parent category %s: %w", *req.ParentID, err)
		}
	}
	if req.DefaultAccountID != nil {
		if _, err := s.store.GetAccount(ctx, *req.DefaultAccountID); err != nil {
			return nil, fmt.Errorf("default account %s: %w", *req.DefaultAccountID, err)
		}
	}

	cat := &models.Category{
		ID:                   "category:" + uuid.NewString(),
		Name:                 name,
		ParentID:             req.ParentID,
		IsLinked:             req.IsLinked,
		DefaultAccountID:     req.DefaultAccountID,
		PaymentIntegrationID: req.PaymentIntegrationID,
		HasB2CPaybill:        req.HasB2CPaybill,
		B2CPaybillID:         req.B2CPaybillID,
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	s.dir.Invalidate(ctx)
	return cat, nil
}

func (s *AccountService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.DirectoryCategories(ctx)
}
