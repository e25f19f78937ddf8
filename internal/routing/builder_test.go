package routing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestBuildDirectSetsOnlyToAccount(t *testing.T) {
	req := accountRequest("account:ops_main", "account:ops_petty")
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}

	tr, warnings, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, tr.ToAccountID)
	assert.Equal(t, "account:ops_petty", *tr.ToAccountID)
	assert.Nil(t, tr.PaymentChannel)
	assert.Equal(t, domain.TransferStatusDraft, tr.Status)
	assert.Equal(t, buildNow, tr.CreatedAt)
}

func TestBuildInterSwitchSetsOnlyChannel(t *testing.T) {
	req := accountRequest("account:ops_petty", "account:school_main")
	dec := Decision{Mode: ModeInterSwitch, ToAccountID: "account:school_main"}

	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Nil(t, tr.ToAccountID)
	require.NotNil(t, tr.PaymentChannel)
	assert.Equal(t, domain.ChannelInterSwitch, tr.PaymentChannel.ChannelID)
	assert.Equal(t, "account:school_main", tr.PaymentChannel.ToAccount)
	assert.Nil(t, tr.PaymentChannel.Action)
}

// Round-trip: an inter-switch record serialized and re-parsed carries the
// inter-switch channel id and no to_account_id key.
func TestBuildInterSwitchRoundTrip(t *testing.T) {
	req := accountRequest("account:ops_petty", "account:school_main")
	dec := Decision{
		Mode:                 ModeInterSwitch,
		ToAccountID:          "account:school_main",
		PaymentIntegrationID: "integration:school_paybill",
	}

	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)

	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.NotContains(t, parsed, "to_account_id")
	channel, ok := parsed["payment_channel"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bagayi_inter_switch", channel["channel_id"])
	assert.Equal(t, "integration:school_paybill", channel["payment_integration"])
}

func TestBuildMpesaChannel(t *testing.T) {
	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindPayBill, Destination: "247247", Reference: "INV-42"}
	dec := Decision{
		Mode:             ModeMpesaChannel,
		Action:           domain.ActionBusinessPayBill,
		Destination:      "247247",
		AccountReference: "INV-42",
	}

	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Nil(t, tr.ToAccountID)
	require.NotNil(t, tr.PaymentChannel)
	assert.Equal(t, domain.ChannelMpesa, tr.PaymentChannel.ChannelID)
	require.NotNil(t, tr.PaymentChannel.Action)
	assert.Equal(t, domain.ActionBusinessPayBill, *tr.PaymentChannel.Action)
	assert.Equal(t, "247247", tr.PaymentChannel.ToAccount)
	require.NotNil(t, tr.PaymentChannel.AccountReference)
	assert.Equal(t, "INV-42", *tr.PaymentChannel.AccountReference)
}

// A paybill channel without an account reference never reaches persistence,
// even when the decision is constructed by hand.
func TestBuildPaybillWithoutReferenceRejected(t *testing.T) {
	req := accountRequest("account:ops_main", "")
	req.Channel = &ChannelTarget{Kind: ChannelKindPayBill, Destination: "247247"}
	dec := Decision{
		Mode:        ModeMpesaChannel,
		Action:      domain.ActionBusinessPayBill,
		Destination: "247247",
	}

	_, _, err := Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrMissingChannelField)
}

// Exactly one of to_account_id / payment_channel for every mode.
func TestBuildMutualExclusivity(t *testing.T) {
	decisions := []Decision{
		{Mode: ModeDirect, ToAccountID: "account:ops_petty"},
		{Mode: ModeInterSwitch, ToAccountID: "account:school_main"},
		{Mode: ModeMpesaChannel, Action: domain.ActionBusinessPayment, Destination: "254712345678"},
	}
	for _, dec := range decisions {
		req := accountRequest("account:ops_main", dec.ToAccountID)
		tr, _, err := Build(req, dec, buildNow)
		require.NoError(t, err, "mode %s", dec.Mode)
		hasAccount := tr.ToAccountID != nil
		hasChannel := tr.PaymentChannel != nil
		assert.True(t, hasAccount != hasChannel, "mode %s: want exactly one destination field", dec.Mode)
	}
}

func TestBuildMissingExternalTransactionID(t *testing.T) {
	req := accountRequest("account:ops_petty", "account:school_main")
	dec := Decision{
		Mode:                          ModeInterSwitch,
		ToAccountID:                   "account:school_main",
		ExternalTransactionIDRequired: true,
	}

	_, _, err := Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrMissingExternalTransactionID)

	req.ExternalTransactionID = "SBC9XK2Q1T"
	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	require.NotNil(t, tr.ExternalTransactionID)
	assert.Equal(t, "SBC9XK2Q1T", *tr.ExternalTransactionID)
}

// Scenario E: touching the settlement account without reconciliation
// metadata, or with an empty external transaction id, fails as a metadata
// violation.
func TestBuildExternalAccountMetadataRequired(t *testing.T) {
	dec := Decision{
		Mode:                   ModeDirect,
		ToAccountID:            externalSettlementID,
		TouchesExternalAccount: true,
	}

	req := accountRequest("account:ops_petty", externalSettlementID)
	_, _, err := Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrMissingExternalAccountMetadata)

	req.ExternalAccount = &models.ExternalAccount{ID: "ext:ncba", Name: "NCBA Current", Type: "bank"}
	_, _, err = Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrMissingExternalAccountMetadata, "external transaction id still empty")

	req.ExternalTransactionID = "FT26073ABCDE"
	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	require.NotNil(t, tr.Metadata)
	assert.Equal(t, *req.ExternalAccount, tr.Metadata["external_account"])
}

func TestBuildExternalAccountPartialMetadataRejected(t *testing.T) {
	dec := Decision{Mode: ModeDirect, ToAccountID: externalSettlementID, TouchesExternalAccount: true}
	req := accountRequest("account:ops_petty", externalSettlementID)
	req.ExternalTransactionID = "FT26073ABCDE"
	req.ExternalAccount = &models.ExternalAccount{ID: "ext:ncba", Type: "bank"}

	_, _, err := Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrMissingExternalAccountMetadata)
}

func TestBuildMetadataMergeDropsEmptyRows(t *testing.T) {
	req := accountRequest("account:ops_main", "account:ops_petty")
	req.Metadata = []MetadataEntry{
		{Key: "invoice", Value: "INV-2026-017"},
		{Key: "", Value: "orphan value"},
		{Key: "orphan key", Value: "  "},
		{Key: "branch", Value: "Westlands"},
	}
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}

	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"invoice": "INV-2026-017",
		"branch":  "Westlands",
	}, tr.Metadata)
}

func TestBuildCreatedAtOverride(t *testing.T) {
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}

	req := accountRequest("account:ops_main", "account:ops_petty")
	req.CreatedAt = "2026-02-01T08:00:00Z"
	tr, warnings, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), tr.CreatedAt)

	req.CreatedAt = "2026-02-01"
	tr, warnings, err = Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), tr.CreatedAt)
}

func TestBuildInvalidCreatedAtWarnsAndFallsBack(t *testing.T) {
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}
	req := accountRequest("account:ops_main", "account:ops_petty")
	req.CreatedAt = "last tuesday"

	tr, warnings, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningCreatedAtIgnored, warnings[0].Code)
	assert.Equal(t, buildNow, tr.CreatedAt)
}

func TestBuildStatusHandling(t *testing.T) {
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}
	req := accountRequest("account:ops_main", "account:ops_petty")

	tr, _, err := Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusDraft, tr.Status)

	req.Status = domain.TransferStatusSubmitted
	tr, _, err = Build(req, dec, buildNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusSubmitted, tr.Status)

	req.Status = "posted"
	_, _, err = Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBuildInvalidTransferType(t *testing.T) {
	dec := Decision{Mode: ModeDirect, ToAccountID: "account:ops_petty"}
	req := accountRequest("account:ops_main", "account:ops_petty")
	req.Type = "loan"

	_, _, err := Build(req, dec, buildNow)
	assert.ErrorIs(t, err, ErrInvalidTransferType)
}
