package routing

import "github.com/bagayi/finance-api/internal/models"

// Directory is the read-only account/category lookup the resolver runs
// against. Implementations are snapshots fetched once per request; the
// resolver itself performs no I/O, so a stale linkage flag can never race the
// decision made against it.
type Directory interface {
	Account(id string) (models.Account, bool)
	Category(id string) (models.Category, bool)
	AccountsInCategory(categoryID string) []models.Account
	// DefaultAccountOwner is the reverse lookup: which root category treats
	// this account as its inter-switch default.
	DefaultAccountOwner(accountID string) (models.Category, bool)
	IsExternalSettlement(accountID string) bool
}

// Snapshot is a map-backed Directory built from a single directory fetch.
type Snapshot struct {
	accounts             map[string]models.Account
	categories           map[string]models.Category
	byCategory           map[string][]models.Account
	defaultOwner         map[string]string // default account id -> root category id
	externalSettlementID string
}

// NewSnapshot indexes the given accounts and categories. Only root categories
// (no parent) contribute default-account ownership; a nested category's
// default never receives inter-switch traffic directly.
func NewSnapshot(accounts []models.Account, categories []models.Category, externalSettlementID string) *Snapshot {
	s := &Snapshot{
		accounts:             make(map[string]models.Account, len(accounts)),
		categories:           make(map[string]models.Category, len(categories)),
		byCategory:           make(map[string][]models.Account),
		defaultOwner:         make(map[string]string),
		externalSettlementID: externalSettlementID,
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
		if a.CategoryID != "" {
			s.byCategory[a.CategoryID] = append(s.byCategory[a.CategoryID], a)
		}
	}
	for _, c := range categories {
		s.categories[c.ID] = c
		if c.ParentID == nil && c.DefaultAccountID != nil && *c.DefaultAccountID != "" {
			s.defaultOwner[*c.DefaultAccountID] = c.ID
		}
	}
	return s
}

func (s *Snapshot) Account(id string) (models.Account, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

func (s *Snapshot) Category(id string) (models.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

func (s *Snapshot) AccountsInCategory(categoryID string) []models.Account {
	return s.byCategory[categoryID]
}

func (s *Snapshot) DefaultAccountOwner(accountID string) (models.Category, bool) {
	catID, ok := s.defaultOwner[accountID]
	if !ok {
		return models.Category{}, false
	}
	return s.Category(catID)
}

func (s *Snapshot) IsExternalSettlement(accountID string) bool {
	return s.externalSettlementID != "" && accountID == s.externalSettlementID
}
