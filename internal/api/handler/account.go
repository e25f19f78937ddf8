package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagayi/finance-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	svc *service.AccountService
}

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type createAccountRequest struct {
	Name       string `json:"name" validate:"required"`
	CategoryID string `json:"category_id"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/validation-failed", err.Error())
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), service.CreateAccountRequest{
		Name:       body.Name,
		CategoryID: body.CategoryID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidName) {
			RespondError(w, r, http.StatusBadRequest, "account/invalid-name", err.Error())
			return
		}
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}
