package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"service-marketplace/assignment"
	"service-marketplace/auth"
	"service-marketplace/cache"
	"service-marketplace/geo"
	"service-marketplace/matching"
	"service-marketplace/notify"
	"service-marketplace/quotes"
	"service-marketplace/store"
)

// API wires the HTTP surface to the components. Handlers decode, authorize
// against the verified identity from context, delegate, and encode; all
// state rules live in the components and the store.
type API struct {
	Vendors       *store.VendorStore
	Requests      *store.RequestStore
	Quotes        *store.QuoteStore
	Reviews       *store.ReviewStore
	Notifications *store.NotificationStore
	Cells         *cache.VendorCells
	Index         *geo.RequestIndex
	Matcher       *matching.Matcher
	Gate          *assignment.Gate
	Ledger        *quotes.Ledger
	Registry      *notify.Registry
	Tokens        *auth.TokenProvider
	Auth          *auth.Middleware
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps component/store sentinels onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, store.ErrVendorUnavailable):
		http.Error(w, "Vendor unavailable", http.StatusForbidden)
	case errors.Is(err, store.ErrAlreadyAssigned):
		http.Error(w, "Request already assigned", http.StatusConflict)
	case errors.Is(err, store.ErrResetNotAllowed):
		http.Error(w, "Reset not allowed", http.StatusConflict)
	case errors.Is(err, store.ErrExists):
		http.Error(w, "Already exists", http.StatusConflict)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
