package directory

import (
	"context"
	"testing"
	"time"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	accounts   []models.Account
	categories []models.Category
	fetches    int
}

func (s *stubSource) DirectoryAccounts(context.Context) ([]models.Account, error) {
	s.fetches++
	return s.accounts, nil
}

func (s *stubSource) DirectoryCategories(context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func TestSnapshotWithoutCache(t *testing.T) {
	src := &stubSource{
		accounts: []models.Account{
			{ID: "account:main", CategoryID: "category:ops"},
		},
		categories: []models.Category{
			{ID: "category:ops", Name: "Operations"},
		},
	}
	loader := NewLoader(src, nil, time.Minute, "account:settlement")

	snap, err := loader.Snapshot(context.Background())
	require.NoError(t, err)

	account, ok := snap.Account("account:main")
	require.True(t, ok)
	require.Equal(t, "category:ops", account.CategoryID)
	require.True(t, snap.IsExternalSettlement("account:settlement"))
	require.False(t, snap.IsExternalSettlement("account:main"))

	// No cache layer, so every snapshot hits the source.
	_, err = loader.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.fetches)

	// Invalidate is a no-op without Redis.
	loader.Invalidate(context.Background())
}
