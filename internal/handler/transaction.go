package handler

import (
	"net/http"

	"unimarket/internal/service"
)

// TransactionHandler handles payment transaction requests.
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// HandleRecord records a payment confirmation for the caller. A
// completed payment flips the listing to sold in the same store
// transaction.
// POST /api/transactions
// Request: {"listingId":1,"paymentId":"...","amount":12.5,"method":"card","status":"completed"}
func (h *TransactionHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		ListingID int64   `json:"listingId"`
		PaymentID string  `json:"paymentId"`
		Amount    float64 `json:"amount"`
		Method    string  `json:"method"`
		Status    string  `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	tx, err := h.transactions.Record(r.Context(), user.ID, req.ListingID, req.PaymentID, req.Amount, req.Method, req.Status)
	if err != nil {
		writeServiceError(w, "record transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction": toTransactionDTO(tx),
	})
}

// HandleListMine returns the caller's transactions, newest first.
// GET /api/transactions
func (h *TransactionHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	txs, err := h.transactions.ListMine(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionDTOs(txs),
	})
}

// HandleListAll returns every transaction. Admin only.
// GET /api/admin/transactions
func (h *TransactionHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	txs, err := h.transactions.ListAll(r.Context(), user)
	if err != nil {
		writeServiceError(w, "list all transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionDTOs(txs),
	})
}

// HandleGet returns one transaction, visible to its owner or an admin.
// GET /api/transactions/{id}
func (h *TransactionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tx, err := h.transactions.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, "get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transaction": toTransactionDTO(tx),
	})
}

// HandleUpdateStatus changes a transaction's status. Admin only.
// PUT /api/admin/transactions/{id}/status
// Request: {"status":"completed"}
func (h *TransactionHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	tx, err := h.transactions.UpdateStatus(r.Context(), user, id, req.Status)
	if err != nil {
		writeServiceError(w, "update transaction status", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transaction": toTransactionDTO(tx),
	})
}
