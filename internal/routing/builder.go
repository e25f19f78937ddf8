package routing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/models"
	"github.com/google/uuid"
)

// Warning is a non-fatal observation produced while building a transfer
// record, surfaced to the caller instead of being silently swallowed.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

const WarningCreatedAtIgnored = "created_at_ignored"

// createdAtLayouts are accepted for the optional createdAt override.
var createdAtLayouts = []string{time.RFC3339, "2006-01-02"}

// Build assembles the persisted transfer record from a routing decision.
// It enforces that exactly one of to_account_id and payment_channel is set,
// and that the decision's required-field obligations are met.
func Build(req TransferRequest, dec Decision, now time.Time) (models.Transfer, []Warning, error) {
	if !domain.ValidTransferType(req.Type) {
		return models.Transfer{}, nil, fmt.Errorf("%w: %q", ErrInvalidTransferType, req.Type)
	}

	status := req.Status
	switch status {
	case "":
		status = domain.TransferStatusDraft
	case domain.TransferStatusDraft, domain.TransferStatusSubmitted:
	default:
		return models.Transfer{}, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	extID := strings.TrimSpace(req.ExternalTransactionID)

	if dec.TouchesExternalAccount {
		if !hasExternalAccountMeta(req.ExternalAccount) || extID == "" {
			return models.Transfer{}, nil, fmt.Errorf("%w: transfers touching the settlement account need external_account metadata and an external transaction id", ErrMissingExternalAccountMetadata)
		}
	}
	if dec.ExternalTransactionIDRequired && extID == "" {
		return models.Transfer{}, nil, ErrMissingExternalTransactionID
	}

	var warnings []Warning
	createdAt := now
	if s := strings.TrimSpace(req.CreatedAt); s != "" {
		if t, ok := parseCreatedAt(s); ok {
			createdAt = t
		} else {
			// Lenient by product decision: a malformed override falls back to
			// submission time instead of failing the whole transfer.
			warnings = append(warnings, Warning{
				Code:   WarningCreatedAtIgnored,
				Detail: fmt.Sprintf("could not parse created_at override %q, using submission time", s),
			})
		}
	}

	tr := models.Transfer{
		ID:                    uuid.New(),
		FromAccountID:         req.FromAccountID,
		Amount:                req.Amount,
		Type:                  req.Type,
		Status:                status,
		CreatedBy:             req.CreatedBy,
		Description:           optional(req.Description),
		Label:                 optional(req.Label),
		ExternalTransactionID: optional(extID),
		Metadata:              buildMetadata(req),
		CreatedAt:             createdAt,
	}

	switch dec.Mode {
	case ModeDirect:
		to := dec.ToAccountID
		tr.ToAccountID = &to
	case ModeInterSwitch:
		tr.PaymentChannel = &models.PaymentChannel{
			ChannelID:          domain.ChannelInterSwitch,
			ToAccount:          dec.ToAccountID,
			PaymentIntegration: optional(dec.PaymentIntegrationID),
		}
	case ModeMpesaChannel:
		if dec.Action == domain.ActionBusinessPayBill && strings.TrimSpace(dec.AccountReference) == "" {
			return models.Transfer{}, nil, fmt.Errorf("%w: paybill transfers require an account reference", ErrMissingChannelField)
		}
		action := dec.Action
		tr.PaymentChannel = &models.PaymentChannel{
			ChannelID:        domain.ChannelMpesa,
			Action:           &action,
			ToAccount:        dec.Destination,
			AccountReference: optional(dec.AccountReference),
		}
	default:
		return models.Transfer{}, nil, fmt.Errorf("%w: unknown routing mode %q", ErrInvalidDestination, dec.Mode)
	}

	return tr, warnings, nil
}

// buildMetadata merges free-form key/value rows with the external_account
// block. Rows with an empty key or value are dropped silently: they are
// partially filled optional form rows, not errors.
func buildMetadata(req TransferRequest) map[string]any {
	md := make(map[string]any)
	for _, e := range req.Metadata {
		k := strings.TrimSpace(e.Key)
		v := strings.TrimSpace(e.Value)
		if k == "" || v == "" || k == "external_account" {
			continue
		}
		md[k] = v
	}
	if hasExternalAccountMeta(req.ExternalAccount) {
		md["external_account"] = *req.ExternalAccount
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

func hasExternalAccountMeta(ea *models.ExternalAccount) bool {
	if ea == nil {
		return false
	}
	return strings.TrimSpace(ea.ID) != "" &&
		strings.TrimSpace(ea.Name) != "" &&
		strings.TrimSpace(ea.Type) != ""
}

func parseCreatedAt(s string) (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
