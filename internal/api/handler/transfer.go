package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bagayi/finance-api/internal/domain"
	"github.com/bagayi/finance-api/internal/models"
	"github.com/bagayi/finance-api/internal/repository"
	"github.com/bagayi/finance-api/internal/routing"
	"github.com/bagayi/finance-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TransferHandler struct {
	svc *service.TransferService
}

func NewTransferHandler(svc *service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

type channelTargetRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=send_money buy_goods paybill"`
	Destination string `json:"destination" validate:"required"`
	Reference   string `json:"reference"`
}

type metadataEntryRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type externalAccountRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type createTransferRequest struct {
	FromAccountID         string                  `json:"from_account_id" validate:"required"`
	ToAccountID           string                  `json:"to_account_id" validate:"required_without=ChannelTarget,excluded_with=ChannelTarget"`
	ChannelTarget         *channelTargetRequest   `json:"channel_target"`
	Amount                string                  `json:"amount" validate:"required"`
	Type                  string                  `json:"type" validate:"required,oneof=payment fees refund adjustment"`
	Description           string                  `json:"description"`
	Label                 string                  `json:"label"`
	CreatedAt             string                  `json:"created_at"`
	ExternalTransactionID string                  `json:"external_transaction_id"`
	Metadata              []metadataEntryRequest  `json:"metadata"`
	ExternalAccount       *externalAccountRequest `json:"external_account"`
	PaybillSelection      string                  `json:"paybill_selection" validate:"omitempty,oneof=main b2c"`
	Status                string                  `json:"status" validate:"omitempty,oneof=draft submitted"`
}

type transferResponse struct {
	Transfer *models.Transfer  `json:"transfer"`
	Warnings []routing.Warning `json:"warnings,omitempty"`
}

// Create handles POST /v1/transfers: the authoritative transfer submission.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	tr, warnings, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, transferResponse{Transfer: tr, Warnings: warnings})
}

// Preview handles POST /v1/transfers/preview: resolver-only gating for the
// transfer form. Nothing is persisted.
func (h *TransferHandler) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transfer/invalid-id", "invalid transfer id")
		return
	}

	tr, err := h.svc.Get(r.Context(), id, actor, isAdmin)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, tr)
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	params := repository.ListTransfersParams{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	// Non-admins only see their own transfers.
	if !isAdmin {
		params.CreatedBy = actor
	}

	transfers, err := h.svc.List(r.Context(), params)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
}

func (h *TransferHandler) FrequentRecipients(w http.ResponseWriter, r *http.Request) {
	actor, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	recipients, err := h.svc.FrequentRecipients(r.Context(), actor, queryInt(r, "limit", 10))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"recipients": recipients})
}

func (h *TransferHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (routing.TransferRequest, bool) {
	actor, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return routing.TransferRequest{}, false
	}

	var body createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return routing.TransferRequest{}, false
	}
	if err := validate.Struct(body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/validation-failed", err.Error())
		return routing.TransferRequest{}, false
	}

	amount, err := domain.ParseAmount(body.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transfer/invalid-amount", err.Error())
		return routing.TransferRequest{}, false
	}

	req := routing.TransferRequest{
		FromAccountID:         body.FromAccountID,
		ToAccountID:           body.ToAccountID,
		Amount:                amount,
		Type:                  body.Type,
		Description:           body.Description,
		Label:                 body.Label,
		CreatedAt:             body.CreatedAt,
		ExternalTransactionID: body.ExternalTransactionID,
		PaybillSelection:      body.PaybillSelection,
		Status:                body.Status,
		CreatedBy:             actor,
	}
	if body.ChannelTarget != nil {
		req.Channel = &routing.ChannelTarget{
			Kind:        routing.ChannelKind(body.ChannelTarget.Kind),
			Destination: body.ChannelTarget.Destination,
			Reference:   body.ChannelTarget.Reference,
		}
	}
	for _, e := range body.Metadata {
		req.Metadata = append(req.Metadata, routing.MetadataEntry{Key: e.Key, Value: e.Value})
	}
	if body.ExternalAccount != nil {
		req.ExternalAccount = &models.ExternalAccount{
			ID:   body.ExternalAccount.ID,
			Name: body.ExternalAccount.Name,
			Type: body.ExternalAccount.Type,
		}
	}
	return req, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
