package routing

import "errors"

// Validation failures surfaced to the caller as typed results. The API layer
// maps these to "fix your input" responses; anything else bubbling out of the
// persistence layer means "try again".
var (
	ErrInvalidDestination             = errors.New("invalid destination")
	ErrMissingChannelField            = errors.New("missing channel field")
	ErrNonPositiveAmount              = errors.New("amount must be positive")
	ErrSameAccount                    = errors.New("source and destination accounts are the same")
	ErrMissingExternalTransactionID   = errors.New("external transaction id is required")
	ErrMissingExternalAccountMetadata = errors.New("external account metadata is required")
	ErrUnknownAccount                 = errors.New("unknown account")
	ErrUnknownCategory                = errors.New("unknown category")
	ErrInvalidTransferType            = errors.New("invalid transfer type")
	ErrInvalidStatus                  = errors.New("invalid transfer status")
)

var validationErrs = []error{
	ErrInvalidDestination,
	ErrMissingChannelField,
	ErrNonPositiveAmount,
	ErrSameAccount,
	ErrMissingExternalTransactionID,
	ErrMissingExternalAccountMetadata,
	ErrUnknownAccount,
	ErrUnknownCategory,
	ErrInvalidTransferType,
	ErrInvalidStatus,
}

// IsValidation reports whether err is one of the routing validation failures.
func IsValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
