package http

import (
	"encoding/json"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type SettlementHandler struct {
	settlement service.SettlementService
}

func NewSettlementHandler(settlement service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlement: settlement}
}

type recordPaymentRequest struct {
	Kind          domain.PaymentKind   `json:"kind"`
	Method        domain.PaymentMethod `json:"method"`
	AmountCents   int64                `json:"amount_cents"`
	TransactionID string               `json:"transaction_id"`
	Completed     bool                 `json:"completed"`
	ReceiptKey    string               `json:"receipt_key"`
	ReceiptNumber string               `json:"receipt_number"`
	Note          string               `json:"note"`
}

// RecordPayment accepts gateway webhook callbacks and staff-entered
// payments. Customer and seller tokens cannot write payment rows.
func (h *SettlementHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid rental id")
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Kind == "" || req.Method == "" {
		writeBadRequest(w, "kind and method are required")
		return
	}

	p, err := h.settlement.RecordPayment(r.Context(), rentalID, service.PaymentInput{
		Kind:          req.Kind,
		Method:        req.Method,
		AmountCents:   req.AmountCents,
		TransactionID: req.TransactionID,
		Completed:     req.Completed,
		ReceiptKey:    req.ReceiptKey,
		ReceiptNumber: req.ReceiptNumber,
		Note:          req.Note,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type codRequest struct {
	Note string `json:"note"`
}

func (h *SettlementHandler) AuthorizeCashOnDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireStaff(w, r)
	if !ok {
		return
	}
	rentalID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid rental id")
		return
	}

	var req codRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rt, err := h.settlement.AuthorizeCashOnDelivery(r.Context(), actor, rentalID, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

type cashReceiptRequest struct {
	ReceiptKey    string `json:"receipt_key"`
	ReceiptNumber string `json:"receipt_number"`
	Note          string `json:"note"`
}

func (h *SettlementHandler) CompleteCashReceipt(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}
	paymentID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid payment id")
		return
	}

	var req cashReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	p, err := h.settlement.CompleteCashReceipt(r.Context(), actor, paymentID, req.ReceiptKey, req.ReceiptNumber, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type salesListResponse struct {
	Sales []domain.SaleRecord `json:"sales"`
	Total int32               `json:"total"`
}

func (h *SettlementHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}

	sellerID := actor.UserID
	if actor.Role == domain.RoleStaff {
		sellerID = queryInt32(r, "seller_id", 0)
		if sellerID == 0 {
			writeBadRequest(w, "seller_id is required")
			return
		}
	} else if actor.Role != domain.RoleSeller {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "seller role required", Code: "unauthorized_actor"})
		return
	}

	sales, total, err := h.settlement.ListSales(r.Context(), sellerID, queryInt32(r, "page", 1), queryInt32(r, "page_size", 20))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salesListResponse{Sales: sales, Total: total})
}

type commissionResponse struct {
	Entries    []domain.CommissionLedgerEntry `json:"entries"`
	TotalCents int64                          `json:"total_cents"`
}

func (h *SettlementHandler) OutstandingCommission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}

	sellerID := actor.UserID
	if actor.Role == domain.RoleStaff {
		sellerID = queryInt32(r, "seller_id", 0)
		if sellerID == 0 {
			writeBadRequest(w, "seller_id is required")
			return
		}
	} else if actor.Role != domain.RoleSeller {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "seller role required", Code: "unauthorized_actor"})
		return
	}

	entries, total, err := h.settlement.OutstandingCommission(r.Context(), sellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissionResponse{Entries: entries, TotalCents: total})
}

type adjustSaleRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

func (h *SettlementHandler) AdjustSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireStaff(w, r)
	if !ok {
		return
	}
	saleID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid sale id")
		return
	}

	var req adjustSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.AmountCents == 0 || req.Reason == "" {
		writeBadRequest(w, "a non-zero amount_cents and a reason are required")
		return
	}

	adj, err := h.settlement.AdjustSale(r.Context(), actor, saleID, req.AmountCents, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, adj)
}

type remitRequest struct {
	Reference string `json:"reference"`
}

func (h *SettlementHandler) RemitCommission(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	entryID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid ledger entry id")
		return
	}

	var req remitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Reference == "" {
		writeBadRequest(w, "reference is required")
		return
	}

	if err := h.settlement.RemitCommission(r.Context(), entryID, req.Reference); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "settled"})
}
