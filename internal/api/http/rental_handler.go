package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

type createRentalRequest struct {
	SellerID             int32  `json:"seller_id"`
	EquipmentID          int32  `json:"equipment_id"`
	Quantity             int32  `json:"quantity"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	DailyRateCents       int64  `json:"daily_rate_cents"`
	DeliveryFeeCents     int64  `json:"delivery_fee_cents"`
	InsuranceFeeCents    int64  `json:"insurance_fee_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok || actor.Role != domain.RoleCustomer {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "customer role required", Code: "unauthorized_actor"})
		return
	}

	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.SellerID == 0 || req.EquipmentID == 0 || req.Quantity <= 0 {
		writeBadRequest(w, "seller_id, equipment_id and a positive quantity are required")
		return
	}

	rt, err := h.rentals.CreateRental(r.Context(), service.CreateRentalInput{
		CustomerID:           actor.UserID,
		SellerID:             req.SellerID,
		EquipmentID:          req.EquipmentID,
		Quantity:             req.Quantity,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		DailyRateCents:       req.DailyRateCents,
		DeliveryFeeCents:     req.DeliveryFeeCents,
		InsuranceFeeCents:    req.InsuranceFeeCents,
		SecurityDepositCents: req.SecurityDepositCents,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

type rentalDetailResponse struct {
	Rental  *domain.Rental            `json:"rental"`
	History []domain.StatusTransition `json:"history"`
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid rental id")
		return
	}

	rt, history, err := h.rentals.GetRental(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalDetailResponse{Rental: rt, History: history})
}

type transitionResponse struct {
	Rental  *domain.Rental           `json:"rental"`
	Audit   *domain.StatusTransition `json:"audit,omitempty"`
	Applied bool                     `json:"applied"`
}

func (h *RentalHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid rental id")
		return
	}

	var req domain.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TargetStatus == "" {
		writeBadRequest(w, "target_status is required")
		return
	}

	res, err := h.rentals.RequestTransition(r.Context(), actor, id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Rental: res.Rental, Audit: res.Audit, Applied: res.Applied})
}

type rentalListResponse struct {
	Rentals []domain.Rental `json:"rentals"`
	Total   int32           `json:"total"`
}

// List returns the caller's own rentals: bookings for customers,
// incoming orders for sellers. Staff pass owner query parameters.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}

	status := r.URL.Query().Get("status")
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	var (
		rentals []domain.Rental
		total   int32
		err     error
	)
	switch actor.Role {
	case domain.RoleCustomer:
		rentals, total, err = h.rentals.ListByCustomer(r.Context(), actor.UserID, status, page, pageSize)
	case domain.RoleSeller:
		rentals, total, err = h.rentals.ListBySeller(r.Context(), actor.UserID, status, page, pageSize)
	case domain.RoleStaff:
		if customerID := queryInt32(r, "customer_id", 0); customerID != 0 {
			rentals, total, err = h.rentals.ListByCustomer(r.Context(), customerID, status, page, pageSize)
		} else if sellerID := queryInt32(r, "seller_id", 0); sellerID != 0 {
			rentals, total, err = h.rentals.ListBySeller(r.Context(), sellerID, status, page, pageSize)
		} else {
			writeBadRequest(w, "customer_id or seller_id is required")
			return
		}
	default:
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "unsupported role", Code: "unauthorized_actor"})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalListResponse{Rentals: rentals, Total: total})
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return int32(id), nil
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
