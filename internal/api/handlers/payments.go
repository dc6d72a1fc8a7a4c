package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/api/middleware"
	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/service"
	"github.com/smartspend/backend/internal/store"
)

// PaymentsHandler tracks UPI payment intents.
type PaymentsHandler struct {
	payments *service.PaymentService
	log      zerolog.Logger
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(payments *service.PaymentService, log zerolog.Logger) *PaymentsHandler {
	return &PaymentsHandler{payments: payments, log: log}
}

// CreateIntent handles POST /api/payments/upi-intent.
func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.payments.CreateIntent(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create payment intent")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create payment request")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"transaction_id": record.ID,
		"upi_url":        record.UPIURL,
		"status":         record.Status,
		"message":        "Payment intent created. Redirecting to UPI app...",
	})
}

// Callback handles POST /api/payments/callback/:id?status=.
func (h *PaymentsHandler) Callback(w http.ResponseWriter, r *http.Request, id string) {
	status := r.URL.Query().Get("status")
	if status == "" {
		middleware.WriteError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.payments.Callback(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Payment not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to process payment callback")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update payment status")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":         status,
		"transaction_id": id,
	})
}
