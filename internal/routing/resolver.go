package routing

import (
	"fmt"
	"strings"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/models"
)

// ChannelKind distinguishes the three M-Pesa destination forms.
type ChannelKind string

const (
	ChannelKindSendMoney ChannelKind = "send_money"
	ChannelKindBuyGoods  ChannelKind = "buy_goods"
	ChannelKindPayBill   ChannelKind = "paybill"
)

// ChannelTarget is an explicit M-Pesa destination supplied instead of a
// ledger account: a phone number, a till number, or a paybill number plus
// account reference.
type ChannelTarget struct {
	Kind        ChannelKind `json:"kind"`
	Destination string      `json:"destination"`
	Reference   string      `json:"reference,omitempty"`
}

// MetadataEntry is a free-form key/value row from the transfer form.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TransferRequest is the resolver/builder input. Exactly one of ToAccountID
// or Channel identifies the destination.
type TransferRequest struct {
	FromAccountID         string
	ToAccountID           string
	Channel               *ChannelTarget
	Amount                int64 // micros
	Type                  string
	Description           string
	Label                 string
	CreatedAt             string // optional override, lenient parse
	ExternalTransactionID string
	Metadata              []MetadataEntry
	ExternalAccount       *models.ExternalAccount
	PaybillSelection      string // main | b2c, default main
	Status                string // draft | submitted, default draft
	CreatedBy             string
}

// Mode is the routing outcome for a transfer.
type Mode string

const (
	ModeDirect       Mode = "direct"
	ModeInterSwitch  Mode = "inter_switch"
	ModeMpesaChannel Mode = "mpesa_channel"
)

// Decision is the resolver output: how the transfer is routed and which
// fields the builder must see before the record can be persisted.
type Decision struct {
	Mode Mode

	// Direct and inter-switch.
	ToAccountID string

	// Inter-switch into a linked category.
	PaymentIntegrationID string

	// M-Pesa channel.
	Action           string
	Destination      string
	AccountReference string

	ExternalTransactionIDRequired bool
	TouchesExternalAccount        bool
}

// Resolve decides how a proposed transfer is routed. It is a pure, total
// function over the directory snapshot: every input yields a Decision or a
// typed validation error, never a panic.
//
// Priority order: explicit channel targets always route via M-Pesa; for
// account destinations, same-category pairs go direct, external-settlement
// pairs go direct with reconciliation obligations, linked source categories
// reject cross-category destinations outright, and everything else must land
// on a root category's default account via the inter-switch.
func Resolve(dir Directory, req TransferRequest) (Decision, error) {
	if req.Amount <= 0 {
		return Decision{}, fmt.Errorf("%w: got %d micros", ErrNonPositiveAmount, req.Amount)
	}

	if req.Channel != nil {
		if _, ok := dir.Account(req.FromAccountID); !ok {
			return Decision{}, fmt.Errorf("%w: %s", ErrUnknownAccount, req.FromAccountID)
		}
		return resolveChannel(*req.Channel)
	}

	to := strings.TrimSpace(req.ToAccountID)
	if to == "" {
		return Decision{}, fmt.Errorf("%w: destination account or channel target is required", ErrInvalidDestination)
	}
	if req.FromAccountID == to {
		return Decision{}, ErrSameAccount
	}

	from, ok := dir.Account(req.FromAccountID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownAccount, req.FromAccountID)
	}
	toAcc, ok := dir.Account(to)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownAccount, to)
	}

	touchesExternal := dir.IsExternalSettlement(from.ID) || dir.IsExternalSettlement(toAcc.ID)

	// Category equality is checked before the external-settlement rule so a
	// same-category pair that happens to include the settlement account can
	// never be routed through the inter-switch.
	if from.CategoryID == toAcc.CategoryID {
		return Decision{
			Mode:                   ModeDirect,
			ToAccountID:            toAcc.ID,
			TouchesExternalAccount: touchesExternal,
		}, nil
	}

	if touchesExternal {
		return Decision{
			Mode:                   ModeDirect,
			ToAccountID:            toAcc.ID,
			TouchesExternalAccount: true,
		}, nil
	}

	fromCat, ok := dir.Category(from.CategoryID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownCategory, from.CategoryID)
	}
	if fromCat.IsLinked {
		// A linked category's cross-category movement goes through its own
		// M-Pesa channel, never the inter-switch.
		return Decision{}, fmt.Errorf("%w: transfers out of linked category %s must stay within the category or use a payment channel", ErrInvalidDestination, fromCat.ID)
	}

	owner, ok := dir.DefaultAccountOwner(toAcc.ID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: inter-switch transfers must target a category default account, %s is not one", ErrInvalidDestination, toAcc.ID)
	}

	dec := Decision{
		Mode:                          ModeInterSwitch,
		ToAccountID:                   toAcc.ID,
		ExternalTransactionIDRequired: owner.IsLinked,
	}
	if owner.IsLinked {
		dec.PaymentIntegrationID = selectIntegration(owner, req.PaybillSelection)
	}
	return dec, nil
}

func resolveChannel(ch ChannelTarget) (Decision, error) {
	dest := strings.TrimSpace(ch.Destination)
	if dest == "" {
		return Decision{}, fmt.Errorf("%w: channel destination is required", ErrMissingChannelField)
	}

	dec := Decision{
		Mode:        ModeMpesaChannel,
		Destination: dest,
	}
	switch ch.Kind {
	case ChannelKindSendMoney:
		dec.Action = domain.ActionBusinessPayment
	case ChannelKindBuyGoods:
		dec.Action = domain.ActionBusinessBuyGoods
	case ChannelKindPayBill:
		ref := strings.TrimSpace(ch.Reference)
		if ref == "" {
			return Decision{}, fmt.Errorf("%w: paybill transfers require an account reference", ErrMissingChannelField)
		}
		dec.Action = domain.ActionBusinessPayBill
		dec.AccountReference = ref
	default:
		return Decision{}, fmt.Errorf("%w: unknown channel kind %q", ErrInvalidDestination, ch.Kind)
	}
	return dec, nil
}

// selectIntegration picks between a linked category's main paybill and its
// B2C paybill. The B2C integration is only honored when the category actually
// has one; the default is always the main integration.
func selectIntegration(cat models.Category, selection string) string {
	if selection == domain.PaybillSelectionB2C && cat.HasB2CPaybill && cat.B2CPaybillID != nil {
		return *cat.B2CPaybillID
	}
	if cat.PaymentIntegrationID != nil {
		return *cat.PaymentIntegrationID
	}
	return ""
}
