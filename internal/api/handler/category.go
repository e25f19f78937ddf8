package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagayi/finance-api/internal/service"
)

type CategoryHandler struct {
	svc *service.AccountService
}

func NewCategoryHandler(svc *service.AccountService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type createCategoryRequest struct {
	Name                 string  `json:"name" validate:"required"`
	ParentID             *string `json:"parent_id"`
	IsLinked             bool    `json:"is_linked"`
	DefaultAccountID     *string `json:"default_account_id"`
	PaymentIntegrationID *string `json:"payment_integration_id"`
	HasB2CPaybill        bool    `json:"has_b2c_paybill"`
	B2CPaybillID         *string `json:"b2c_paybill_id"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/validation-failed", err.Error())
		return
	}

	cat, err := h.svc.CreateCategory(r.Context(), service.CreateCategoryRequest{
		Name:                 body.Name,
		ParentID:             body.ParentID,
		IsLinked:             body.IsLinked,
		DefaultAccountID:     body.DefaultAccountID,
		PaymentIntegrationID: body.PaymentIntegrationID,
		HasB2CPaybill:        body.HasB2CPaybill,
		B2CPaybillID:         body.B2CPaybillID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidName) {
			RespondError(w, r, http.StatusBadRequest, "category/invalid-name", err.Error())
			return
		}
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
