package routing

import (
	"testing"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const externalSettlementID = "account:external_settlement"

func strPtr(s string) *string { return &s }

// testSnapshot builds a directory with two unlinked root categories (ops,
// school), a linked category (shop), and the external settlement account.
// The linked flag on school is toggled per test via linkSchool.
func testSnapshot(linkSchool bool) *Snapshot {
	school := models.Category{
		ID:                   "category:school",
		Name:                 "School",
		IsLinked:             linkSchool,
		DefaultAccountID:     strPtr("account:school_main"),
		PaymentIntegrationID: strPtr("integration:school_paybill"),
	}
	if linkSchool {
		school.HasB2CPaybill = true
		school.B2CPaybillID = strPtr("integration:school_b2c")
	}

	categories := []models.Category{
		{
			ID:               "category:ops",
			Name:             "Operations",
			DefaultAccountID: strPtr("account:ops_main"),
		},
		school,
		{
			ID:                   "category:shop",
			Name:                 "Shop",
			IsLinked:             true,
			DefaultAccountID:     strPtr("account:shop_main"),
			PaymentIntegrationID: strPtr("integration:shop_paybill"),
		},
		{
			ID:               "category:school_fees",
			Name:             "Fees",
			ParentID:         strPtr("category:school"),
			DefaultAccountID: strPtr("account:school_fees"),
		},
	}
	accounts := []models.Account{
		{ID: "account:ops_main", Name: "Ops Main", CategoryID: "category:ops"},
		{ID: "account:ops_petty", Name: "Ops Petty Cash", CategoryID: "category:ops"},
		{ID: "account:school_main", Name: "School Main", CategoryID: "category:school"},
		{ID: "account:school_fees", Name: "School Fees", CategoryID: "category:school_fees"},
		{ID: "account:shop_main", Name: "Shop Main", CategoryID: "category:shop"},
		{ID: externalSettlementID, Name: "External Settlement"},
	}
	return NewSnapshot(accounts, categories, externalSettlementID)
}

func accountRequest(from, to string) TransferRequest {
	return TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        500_000_000,
		Type:          domain.TransferTypePayment,
		CreatedBy:     "user:tester",
	}
}

func TestResolveSameCategoryIsDirect(t *testing.T) {
	dir := testSnapshot(false)

	dec, err := Resolve(dir, accountRequest("account:ops_main", "account:ops_petty"))
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, dec.Mode)
	assert.Equal(t, "account:ops_petty", dec.ToAccountID)
	assert.False(t, dec.ExternalTransactionIDRequired)
	assert.False(t, dec.TouchesExternalAccount)
}

func TestResolveSameAccountRejected(t *testing.T) {
	dir := testSnapshot(false)

	_, err := Resolve(dir, accountRequest("account:ops_main", "account:ops_main"))
	assert.ErrorIs(t, err, ErrSameAccount)
}

func TestResolveNonPositiveAmount(t *testing.T) {
	dir := testSnapshot(false)

	for _, amount := range []int64{0, -1, -500_000_000} {
		req := accountRequest("account:ops_main", "account:ops_petty")
		req.Amount = amount
		_, err := Resolve(dir, req)
		assert.ErrorIs(t, err, ErrNonPositiveAmount, "amount %d", amount)
	}
}

func TestResolveUnknownAccounts(t *testing.T) {
	dir := testSnapshot(false)

	_, err := Resolve(dir, accountRequest("account:missing", "account:ops_main"))
	assert.ErrorIs(t, err, ErrUnknownAccount)

	_, err = Resolve(dir, accountRequest("account:ops_main", "account:missing"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

// Channel targets skip destination lookup, but the source account must still
// exist in the directory.
func TestResolveChannelUnknownSourceRejected(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:missing", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindSendMoney, Destination: "254712345678"}
	_, err := Resolve(dir, req)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestResolveMissingDestination(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:ops_main", "")
	_, err := Resolve(dir, req)
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

// Scenario A: unlinked -> unlinked default account is an inter-switch transfer
// with no external transaction id obligation.
func TestResolveInterSwitchUnlinkedTarget(t *testing.T) {
	dir := testSnapshot(false)

	dec, err := Resolve(dir, accountRequest("account:ops_petty", "account:school_main"))
	require.NoError(t, err)
	assert.Equal(t, ModeInterSwitch, dec.Mode)
	assert.Equal(t, "account:school_main", dec.ToAccountID)
	assert.False(t, dec.ExternalTransactionIDRequired)
	assert.Empty(t, dec.PaymentIntegrationID)
}

// Scenario B: a linked target category makes the external transaction id
// mandatory and resolves the main payment integration by default.
func TestResolveInterSwitchLinkedTarget(t *testing.T) {
	dir := testSnapshot(true)

	dec, err := Resolve(dir, accountRequest("account:ops_petty", "account:school_main"))
	require.NoError(t, err)
	assert.Equal(t, ModeInterSwitch, dec.Mode)
	assert.True(t, dec.ExternalTransactionIDRequired)
	assert.Equal(t, "integration:school_paybill", dec.PaymentIntegrationID)
}

func TestResolveInterSwitchB2CSelection(t *testing.T) {
	dir := testSnapshot(true)

	req := accountRequest("account:ops_petty", "account:school_main")
	req.PaybillSelection = domain.PaybillSelectionB2C
	dec, err := Resolve(dir, req)
	require.NoError(t, err)
	assert.Equal(t, "integration:school_b2c", dec.PaymentIntegrationID)
}

// Cross-category transfers may only land on a root category's default
// account; arbitrary leaf accounts are rejected, as are defaults of nested
// categories.
func TestResolveInterSwitchRequiresDefaultAccount(t *testing.T) {
	dir := testSnapshot(false)

	_, err := Resolve(dir, accountRequest("account:ops_petty", "account:school_fees"))
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

// A linked source category can never route cross-category through the
// inter-switch, even toward a valid default account.
func TestResolveLinkedSourceRejected(t *testing.T) {
	dir := testSnapshot(false)

	_, err := Resolve(dir, accountRequest("account:shop_main", "account:school_main"))
	assert.ErrorIs(t, err, ErrInvalidDestination)

	_, err = Resolve(dir, accountRequest("account:shop_main", "account:ops_main"))
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

func TestResolveExternalSettlementIsDirect(t *testing.T) {
	dir := testSnapshot(false)

	dec, err := Resolve(dir, accountRequest("account:ops_petty", externalSettlementID))
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, dec.Mode)
	assert.True(t, dec.TouchesExternalAccount)

	dec, err = Resolve(dir, accountRequest(externalSettlementID, "account:ops_petty"))
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, dec.Mode)
	assert.True(t, dec.TouchesExternalAccount)
}

// Scenario C: a buy-goods till resolves to BusinessBuyGoods, not
// BusinessPayBill.
func TestResolveBuyGoodsChannel(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindBuyGoods, Destination: "123456"}
	dec, err := Resolve(dir, req)
	require.NoError(t, err)
	assert.Equal(t, ModeMpesaChannel, dec.Mode)
	assert.Equal(t, domain.ActionBusinessBuyGoods, dec.Action)
	assert.Equal(t, "123456", dec.Destination)
	assert.Empty(t, dec.AccountReference)
	assert.False(t, dec.ExternalTransactionIDRequired)
}

func TestResolveChannelActions(t *testing.T) {
	dir := testSnapshot(false)

	tests := []struct {
		name    string
		channel ChannelTarget
		action  string
		wantRef string
	}{
		{"send money", ChannelTarget{Kind: ChannelKindSendMoney, Destination: "254712345678"}, domain.ActionBusinessPayment, ""},
		{"buy goods", ChannelTarget{Kind: ChannelKindBuyGoods, Destination: "832909"}, domain.ActionBusinessBuyGoods, ""},
		{"paybill", ChannelTarget{Kind: ChannelKindPayBill, Destination: "247247", Reference: "INV-42"}, domain.ActionBusinessPayBill, "INV-42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := accountRequest("account:ops_main", "")
			req.Channel = &tc.channel
			dec, err := Resolve(dir, req)
			require.NoError(t, err)
			assert.Equal(t, ModeMpesaChannel, dec.Mode)
			assert.Equal(t, tc.action, dec.Action)
			assert.Equal(t, tc.channel.Destination, dec.Destination)
			assert.Equal(t, tc.wantRef, dec.AccountReference)
		})
	}
}

func TestResolvePaybillWithoutReference(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindPayBill, Destination: "247247"}
	_, err := Resolve(dir, req)
	assert.ErrorIs(t, err, ErrMissingChannelField)
}

func TestResolveChannelWithoutDestination(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindSendMoney, Destination: "   "}
	_, err := Resolve(dir, req)
	assert.ErrorIs(t, err, ErrMissingChannelField)
}

func TestResolveUnknownChannelKind(t *testing.T) {
	dir := testSnapshot(false)

	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: "pesalink", Destination: "000111"}
	_, err := Resolve(dir, req)
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

// Resolve is pure: identical inputs yield identical decisions.
func TestResolveIdempotent(t *testing.T) {
	dir := testSnapshot(true)

	req := accountRequest("account:ops_petty", "account:school_main")
	first, err := Resolve(dir, req)
	require.NoError(t, err)
	second, err := Resolve(dir, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Every same-category account pair resolves direct, regardless of which
// accounts are involved.
func TestResolveAllSameCategoryPairsDirect(t *testing.T) {
	dir := testSnapshot(false)

	accounts := dir.AccountsInCategory("category:ops")
	require.Len(t, accounts, 2)
	for _, a := range accounts {
		for _, b := range accounts {
			if a.ID == b.ID {
				continue
			}
			dec, err := Resolve(dir, accountRequest(a.ID, b.ID))
			require.NoError(t, err)
			assert.Equal(t, ModeDirect, dec.Mode)
		}
	}
}
