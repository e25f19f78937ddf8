package domain

const (
	// Channel identifiers persisted inside payment_channel records.
	ChannelInterSwitch = "bagayi_inter_switch"
	ChannelMpesa       = "mpesa"

	// M-Pesa business command actions.
	ActionBusinessPayment  = "BusinessPayment"
	ActionBusinessBuyGoods = "BusinessBuyGoods"
	ActionBusinessPayBill  = "BusinessPayBill"

	TransferTypePayment    = "payment"
	TransferTypeFees       = "fees"
	TransferTypeRefund     = "refund"
	TransferTypeAdjustment = "adjustment"

	TransferStatusDraft     = "draft"
	TransferStatusSubmitted = "submitted"
	TransferStatusPending   = "pending"
	TransferStatusPosted    = "posted"
	TransferStatusFailed    = "failed"

	// Integration selection for linked inter-switch destinations.
	PaybillSelectionMain = "main"
	PaybillSelectionB2C  = "b2c"
)

// ValidTransferType reports whether t is one of the accepted transfer types.
func ValidTransferType(t string) bool {
	switch t {
	case TransferTypePayment, TransferTypeFees, TransferTypeRefund, TransferTypeAdjustment:
		return true
	}
	return false
}
