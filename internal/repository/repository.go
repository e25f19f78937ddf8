package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bagayi/finance-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, name, category_id, created_at) VALUES ($1, $2, $3, NOW()) RETURNING created_at`
	err := r.db.QueryRow(ctx, query, account.ID, account.Name, nullable(account.CategoryID)).Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	var categoryID *string
	query := `SELECT id, name, category_id, created_at FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&account.ID, &account.Name, &categoryID, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if categoryID != nil {
		account.CategoryID = *categoryID
	}
	return account, nil
}

func (r *Repository) CreateCategory(ctx context.Context, cat *models.Category) error {
	query := `
		INSERT INTO categories (id, name, parent_id, is_linked, default_account_id, payment_integration_id, has_b2c_paybill, b2c_paybill_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		cat.ID, cat.Name, cat.ParentID, cat.IsLinked, cat.DefaultAccountID,
		cat.PaymentIntegrationID, cat.HasB2CPaybill, cat.B2CPaybillID,
	).Scan(&cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	cat := &models.Category{}
	query := `
		SELECT id, name, parent_id, is_linked, default_account_id, payment_integration_id, has_b2c_paybill, b2c_paybill_id, created_at
		FROM categories WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.ParentID, &cat.IsLinked, &cat.DefaultAccountID,
		&cat.PaymentIntegrationID, &cat.HasB2CPaybill, &cat.B2CPaybillID, &cat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

// DirectoryAccounts returns every account for a directory snapshot build.
func (r *Repository) DirectoryAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, category_id, created_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		var categoryID *string
		if err := rows.Scan(&a.ID, &a.Name, &categoryID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if categoryID != nil {
			a.CategoryID = *categoryID
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// DirectoryCategories returns every category with its linkage metadata.
func (r *Repository) DirectoryCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, parent_id, is_linked, default_account_id, payment_integration_id, has_b2c_paybill, b2c_paybill_id, created_at
		FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.IsLinked, &c.DefaultAccountID,
			&c.PaymentIntegrationID, &c.HasB2CPaybill, &c.B2CPaybillID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) CreateTransfer(ctx context.Context, tr *models.Transfer) error {
	channelJSON, err := marshalNullable(tr.PaymentChannel)
	if err != nil {
		return fmt.Errorf("failed to encode payment channel: %w", err)
	}
	metadataJSON, err := marshalNullable(tr.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `
		INSERT INTO transfers (id, from_account_id, to_account_id, payment_channel, amount, type, status, description, label, created_by, external_transaction_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.db.Exec(ctx, query,
		tr.ID, tr.FromAccountID, tr.ToAccountID, channelJSON, tr.Amount, tr.Type, tr.Status,
		tr.Description, tr.Label, tr.CreatedBy, tr.ExternalTransactionID, metadataJSON, tr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

const transferColumns = `id, from_account_id, to_account_id, payment_channel, amount, type, status, description, label, created_by, external_transaction_id, metadata, created_at`

func (r *Repository) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
	tr, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return tr, nil
}

type ListTransfersParams struct {
	CreatedBy string
	Status    string
	Limit     int
	Offset    int
}

func (r *Repository) ListTransfers(ctx context.Context, p ListTransfersParams) ([]models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE ($1 = '' OR created_by = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, p.CreatedBy, p.Status, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *tr)
	}
	return transfers, rows.Err()
}

// ListSubmittedChannelTransfers fetches M-Pesa channel transfers awaiting
// settlement. The submitted->pending conditional update is what guards
// against two workers picking up the same transfer.
func (r *Repository) ListSubmittedChannelTransfers(ctx context.Context, limit int32) ([]models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE status = 'submitted' AND payment_channel->>'channel_id' = 'mpesa'
		ORDER BY created_at
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted channel transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *tr)
	}
	return transfers, rows.Err()
}

// UpdateTransferStatus transitions a transfer from one status to another.
// Returns false when the transfer was not in the expected status.
func (r *Repository) UpdateTransferStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE transfers SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update transfer status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteChannelTransfer marks a channel transfer posted and stores the
// gateway receipt as its external transaction id.
func (r *Repository) CompleteChannelTransfer(ctx context.Context, id uuid.UUID, externalRef string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transfers SET status = 'posted', external_transaction_id = $1 WHERE id = $2 AND status = 'pending'`,
		externalRef, id)
	if err != nil {
		return fmt.Errorf("failed to complete transfer: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("transfer %s not pending: %w", id, models.ErrNotFound)
	}
	return nil
}

// FrequentRecipients aggregates a user's recent channel destinations for the
// transfer form's recipient shortlist.
func (r *Repository) FrequentRecipients(ctx context.Context, createdBy string, limit int) ([]models.FrequentRecipient, error) {
	query := `
		SELECT payment_channel->>'to_account' AS destination,
		       payment_channel->>'channel_id' AS channel_id,
		       COUNT(*) AS uses,
		       MAX(created_at) AS last_used_at
		FROM transfers
		WHERE created_by = $1 AND payment_channel IS NOT NULL
		GROUP BY 1, 2
		ORDER BY uses DESC, last_used_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, createdBy, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list frequent recipients: %w", err)
	}
	defer rows.Close()

	var recipients []models.FrequentRecipient
	for rows.Next() {
		var fr models.FrequentRecipient
		if err := rows.Scan(&fr.Destination, &fr.ChannelID, &fr.Count, &fr.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan frequent recipient: %w", err)
		}
		recipients = append(recipients, fr)
	}
	return recipients, rows.Err()
}

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	tr := &models.Transfer{}
	var channelJSON, metadataJSON []byte
	err := row.Scan(
		&tr.ID, &tr.FromAccountID, &tr.ToAccountID, &channelJSON, &tr.Amount, &tr.Type, &tr.Status,
		&tr.Description, &tr.Label, &tr.CreatedBy, &tr.ExternalTransactionID, &metadataJSON, &tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(channelJSON) > 0 {
		tr.PaymentChannel = &models.PaymentChannel{}
		if err := json.Unmarshal(channelJSON, tr.PaymentChannel); err != nil {
			return nil, fmt.Errorf("failed to decode payment channel: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &tr.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return tr, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch val := v.(type) {
	case *models.PaymentChannel:
		if val == nil {
			return nil, nil
		}
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
