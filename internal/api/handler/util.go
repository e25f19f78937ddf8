package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagayi/finance-api/internal/api/middleware"
	"github.com/bagayi/finance-api/internal/api/problem"
	"github.com/bagayi/finance-api/internal/models"
	"github.com/bagayi/finance-api/internal/routing"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an RFC 7807 error response. problemType is a catalog
// slug; problem.Write expands it.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

func requestActor(r *http.Request) (string, bool, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", false, errors.New("missing user in auth context")
	}
	return userID, middleware.UserRoleFromContext(r.Context()) == "admin", nil
}

// respondServiceError maps service-layer failures to problem responses,
// separating "fix your input" validation failures from persistence faults.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, routing.ErrUnknownAccount):
		RespondError(w, r, http.StatusNotFound, "directory/unknown-account", err.Error())
	case errors.Is(err, routing.ErrUnknownCategory):
		RespondError(w, r, http.StatusNotFound, "directory/unknown-category", err.Error())
	case routing.IsValidation(err):
		RespondError(w, r, http.StatusUnprocessableEntity, "transfer/"+routingSlug(err), err.Error())
	case errors.Is(err, models.ErrNotFound):
		RespondError(w, r, http.StatusNotFound, "resource/not-found", "resource not found")
	case errors.Is(err, models.ErrPermissionDenied):
		RespondError(w, r, http.StatusForbidden, "resource/forbidden", "you cannot access this resource")
	default:
		if status, problemType, message, ok := mapDBError(err); ok {
			RespondError(w, r, status, problemType, message)
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "internal-error", "request failed, try again")
	}
}

func routingSlug(err error) string {
	switch {
	case errors.Is(err, routing.ErrInvalidDestination):
		return "invalid-destination"
	case errors.Is(err, routing.ErrMissingChannelField):
		return "missing-channel-field"
	case errors.Is(err, routing.ErrNonPositiveAmount):
		return "non-positive-amount"
	case errors.Is(err, routing.ErrSameAccount):
		return "same-account"
	case errors.Is(err, routing.ErrMissingExternalTransactionID):
		return "missing-external-transaction-id"
	case errors.Is(err, routing.ErrMissingExternalAccountMetadata):
		return "missing-external-account-metadata"
	case errors.Is(err, routing.ErrInvalidTransferType):
		return "invalid-type"
	case errors.Is(err, routing.ErrInvalidStatus):
		return "invalid-status"
	default:
		return "invalid-request"
	}
}

func mapDBError(err error) (status int, problemType, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "db/unique-violation", "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusBadRequest, "db/foreign-key-violation", "invalid reference", true
	case "23514": // check_violation
		return http.StatusBadRequest, "db/check-violation", "request violates data constraints", true
	case "23502": // not_null_violation
		return http.StatusBadRequest, "db/not-null-violation", "missing required field", true
	default:
		return 0, "", "", false
	}
}
