package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
	"equiprent-backend/internal/storage"
)

// NewRouter assembles the API. The artifact upload/download endpoints
// stay outside auth because upload URLs are issued to authenticated
// callers and carry their own key.
func NewRouter(
	tokens security.TokenManager,
	rentals service.RentalService,
	settlement service.SettlementService,
	store storage.Store,
) *mux.Router {
	rentalHandler := NewRentalHandler(rentals)
	settlementHandler := NewSettlementHandler(settlement)
	artifactHandler := NewArtifactHandler(store)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	r.HandleFunc("/api/v1/artifacts/upload/{token}", artifactHandler.Upload).Methods("PUT")
	r.HandleFunc("/api/v1/artifacts/download/{token}", artifactHandler.Download).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/rentals", rentalHandler.Create).Methods("POST")
	api.HandleFunc("/rentals", rentalHandler.List).Methods("GET")
	api.HandleFunc("/rentals/{id}", rentalHandler.Get).Methods("GET")
	api.HandleFunc("/rentals/{id}/transitions", rentalHandler.Transition).Methods("POST")

	api.HandleFunc("/rentals/{id}/payments", settlementHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/rentals/{id}/cash-on-delivery", settlementHandler.AuthorizeCashOnDelivery).Methods("POST")
	api.HandleFunc("/payments/{id}/receipt", settlementHandler.CompleteCashReceipt).Methods("POST")

	api.HandleFunc("/sales", settlementHandler.ListSales).Methods("GET")
	api.HandleFunc("/sales/{id}/adjustments", settlementHandler.AdjustSale).Methods("POST")
	api.HandleFunc("/commission/outstanding", settlementHandler.OutstandingCommission).Methods("GET")
	api.HandleFunc("/commission/{id}/remit", settlementHandler.RemitCommission).Methods("POST")

	api.HandleFunc("/artifacts/upload-url", artifactHandler.IssueUploadURL).Methods("POST")

	return r
}
