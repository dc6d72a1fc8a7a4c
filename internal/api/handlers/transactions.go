// Package handlers implements the HTTP endpoints over the service layer.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/smartspend/backend/internal/api/middleware"
	"github.com/smartspend/backend/internal/domain"
	"github.com/smartspend/backend/internal/service"
)

// maxUploadBytes caps statement uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// TransactionsHandler handles transaction CRUD, statement imports and demo
// data seeding.
type TransactionsHandler struct {
	transactions *service.TransactionService
	importer     *service.ImportService
	demo         *service.DemoService
	log          zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(transactions *service.TransactionService, importer *service.ImportService, demo *service.DemoService, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		transactions: transactions,
		importer:     importer,
		demo:         demo,
		log:          log,
	}
}

// bulkRequest is the enveloped bulk-create payload.
type bulkRequest struct {
	Transactions   []domain.TransactionInput `json:"transactions"`
	SkipDuplicates *bool                     `json:"skip_duplicates"`
}

// Create handles POST /api/transactions. The body may be a single
// transaction, a bare array, or a bulk envelope with skip_duplicates.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if trimmed[0] == '[' {
		var inputs []domain.TransactionInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(inputs) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, "No transactions supplied")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, h.transactions.BulkCreate(r.Context(), inputs, true))
		return
	}

	var bulk bulkRequest
	if err := json.Unmarshal(trimmed, &bulk); err == nil && bulk.Transactions != nil {
		if len(bulk.Transactions) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, "No transactions supplied")
			return
		}
		skip := true
		if bulk.SkipDuplicates != nil {
			skip = *bulk.SkipDuplicates
		}
		middleware.WriteJSON(w, http.StatusOK, h.transactions.BulkCreate(r.Context(), bulk.Transactions, skip))
		return
	}

	var input domain.TransactionInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.transactions.Create(r.Context(), input)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Unable to create transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// BulkCreate handles POST /api/transactions/bulk.
func (h *TransactionsHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var bulk bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&bulk); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(bulk.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No transactions supplied")
		return
	}
	skip := true
	if bulk.SkipDuplicates != nil {
		skip = *bulk.SkipDuplicates
	}
	middleware.WriteJSON(w, http.StatusOK, h.transactions.BulkCreate(r.Context(), bulk.Transactions, skip))
}

// List handles GET /api/transactions/:userID.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	txs, err := h.transactions.List(r.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch user transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch user transactions")
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, txs)
}

// Generate handles POST /api/transactions/generate/:userID?overwrite=false.
func (h *TransactionsHandler) Generate(w http.ResponseWriter, r *http.Request, userID string) {
	overwrite := false
	if raw := r.URL.Query().Get("overwrite"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid overwrite")
			return
		}
		overwrite = parsed
	}

	result, err := h.demo.Generate(r.Context(), userID, overwrite)
	if errors.Is(err, service.ErrDemoReset) {
		middleware.WriteError(w, http.StatusInternalServerError, "Could not reset user transactions")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Demo data generation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Database unavailable")
		return
	}

	if result.AlreadyPresent {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"created":            0,
			"skipped":            result.ExistingCount,
			"message":            "Demo data already present for user",
			"total_transactions": result.ExistingCount,
		})
		return
	}

	preview := result.Preview
	if preview == nil {
		preview = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"created":            result.Created,
		"skipped_duplicates": result.SkippedDuplicates,
		"failed":             result.Failed,
		"total_requested":    result.TotalRequested,
		"sample_preview":     preview,
	})
}

// Import handles POST /api/transactions/import/:userID with a multipart file.
func (h *TransactionsHandler) Import(w http.ResponseWriter, r *http.Request, userID string) {
	skipDuplicates := true
	if raw := r.URL.Query().Get("skip_duplicates"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid skip_duplicates")
			return
		}
		skipDuplicates = parsed
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A statement file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.importer.Import(r.Context(), userID, header.Filename, content, skipDuplicates)
	if errors.Is(err, service.ErrUnsupportedFile) {
		middleware.WriteError(w, http.StatusBadRequest, "Only CSV and Excel files are supported")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Statement import failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import transactions")
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Str("filename", header.Filename).
		Int("total_rows", result.TotalRows).
		Int("imported", result.SuccessfulImports).
		Int("duplicates", result.DuplicateCount).
		Msg("Statement imported")

	middleware.WriteJSON(w, http.StatusOK, result)
}
