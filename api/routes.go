package api

import (
	"net/http"

	"service-marketplace/auth"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func (a *API) RegisterRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	// The websocket channel authenticates inside the register handshake.
	router.HandleFunc("/ws", a.ServeWS).Methods("GET")

	protected := router.PathPrefix("/").Subrouter()
	protected.Use(a.Auth.Authenticate)

	// Service request endpoints
	protected.HandleFunc("/services", auth.RequireRole(auth.RoleRequester, a.CreateService)).Methods("POST")
	protected.HandleFunc("/services/nearby/category", auth.RequireRole(auth.RoleVendor, a.NearbyRequests)).Methods("POST")
	protected.HandleFunc("/services/paid-service/{id}", auth.RequireRole(auth.RoleRequester, a.AssignService)).Methods("POST")
	protected.HandleFunc("/services/verify-otp", auth.RequireRole(auth.RoleVendor, a.VerifyCompletion)).Methods("POST")
	protected.HandleFunc("/services/distance/{id}", auth.RequireRole(auth.RoleRequester, a.ServiceDistance)).Methods("POST")
	protected.HandleFunc("/services/{id}/advance", auth.RequireRole(auth.RoleAdmin, a.AdvanceService)).Methods("POST")
	protected.HandleFunc("/services/{id}/reset", auth.RequireRole(auth.RoleAdmin, a.ResetService)).Methods("POST")
	protected.HandleFunc("/services/{id}/price", auth.RequireRole(auth.RoleAdmin, a.SetExpectedPrice)).Methods("PATCH")
	protected.HandleFunc("/services/{id}", a.GetService).Methods("GET")

	// Vendor endpoints
	protected.HandleFunc("/vendors", auth.RequireRole(auth.RoleVendor, a.CreateVendor)).Methods("POST")
	protected.HandleFunc("/vendors/me", auth.RequireRole(auth.RoleVendor, a.VendorMe)).Methods("GET")
	protected.HandleFunc("/vendors/quote", auth.RequireRole(auth.RoleVendor, a.SubmitQuote)).Methods("PATCH")
	protected.HandleFunc("/vendors/location", auth.RequireRole(auth.RoleVendor, a.UpdateVendorLocation)).Methods("PATCH")
	protected.HandleFunc("/vendors/nearby", auth.RequireRole(auth.RoleRequester, a.NearbyVendors)).Methods("POST")
	protected.HandleFunc("/vendors/{id}/reviews", auth.RequireRole(auth.RoleRequester, a.AddReview)).Methods("POST")
	protected.HandleFunc("/vendors/{id}/reviews", a.ListReviews).Methods("GET")

	// Notification polling endpoint
	protected.HandleFunc("/notification", a.ListNotifications).Methods("GET")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(router)
}
