package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a ledger account. IDs are table-qualified strings
// ("account:xyz") carried over from the upstream document store.
type Account struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Category groups accounts and carries the payment-integration linkage
// metadata that drives transfer routing.
type Category struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	ParentID             *string   `json:"parent_id,omitempty"`
	IsLinked             bool      `json:"is_linked"`
	DefaultAccountID     *string   `json:"default_account_id,omitempty"`
	PaymentIntegrationID *string   `json:"payment_integration_id,omitempty"`
	HasB2CPaybill        bool      `json:"has_b2c_paybill"`
	B2CPaybillID         *string   `json:"b2c_paybill_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// PaymentChannel is the persisted channel block of a transfer. Exactly one of
// the top-level to_account_id or this block is present on a transfer.
type PaymentChannel struct {
	ChannelID          string  `json:"channel_id"`
	Action             *string `json:"action,omitempty"`
	ToAccount          string  `json:"to_account"`
	AccountReference   *string `json:"account_reference,omitempty"`
	PaymentIntegration *string `json:"payment_integration,omitempty"`
}

// ExternalAccount identifies a counterparty outside the ledger, required on
// transfers that touch the external settlement account.
type ExternalAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Transfer is the persisted transfer record.
type Transfer struct {
	ID                    uuid.UUID       `json:"id"`
	FromAccountID         string          `json:"from_account_id"`
	ToAccountID           *string         `json:"to_account_id,omitempty"`
	PaymentChannel        *PaymentChannel `json:"payment_channel,omitempty"`
	Amount                int64           `json:"amount"`
	Type                  string          `json:"type"`
	Status                string          `json:"status"`
	Description           *string         `json:"description,omitempty"`
	Label                 *string         `json:"label,omitempty"`
	CreatedBy             string          `json:"created_by"`
	ExternalTransactionID *string         `json:"external_transaction_id,omitempty"`
	Metadata              map[string]any  `json:"metadata,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// FrequentRecipient is a read-only enrichment row for the transfer UI.
type FrequentRecipient struct {
	Destination string    `json:"destination"`
	ChannelID   string    `json:"channel_id"`
	Count       int64     `json:"count"`
	LastUsedAt  time.Time `json:"last_used_at"`
}
