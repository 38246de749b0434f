package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"service-marketplace/auth"
	"service-marketplace/geo"
	"service-marketplace/models"
)

// CreateVendor registers the caller as a vendor.
func (a *API) CreateVendor(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	var body struct {
		Name      string  `json:"name"`
		Category  string  `json:"category"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.Category == "" {
		http.Error(w, "Name and category are required", http.StatusBadRequest)
		return
	}

	vendor := &models.Vendor{
		Email:     email,
		Name:      body.Name,
		Category:  body.Category,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Geohash:   geo.Cell(body.Latitude, body.Longitude),
		Status:    models.VendorAvailable,
	}
	if err := a.Vendors.Create(r.Context(), vendor); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := a.Cells.Add(r.Context(), vendor); err != nil {
		log.Printf("api: add vendor %d to discovery cell: %v", vendor.ID, err)
	}

	writeJSON(w, http.StatusCreated, vendor)
}

// VendorMe returns the caller's vendor record with its quoted services.
func (a *API) VendorMe(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	vendor, err := a.Vendors.GetByEmail(r.Context(), email)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	list, err := a.Quotes.ListByVendor(r.Context(), vendor.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	quoted := make(map[string]float64, len(list))
	for _, q := range list {
		quoted[strconv.FormatInt(q.RequestID, 10)] = q.Price
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vendor":          vendor,
		"quoted_services": quoted,
	})
}

// SubmitQuote upserts the calling vendor's price offer for a request.
func (a *API) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	var body struct {
		ServiceID int64   `json:"serviceId"`
		Price     float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.Price <= 0 {
		http.Error(w, "Price must be positive", http.StatusBadRequest)
		return
	}

	quote, err := a.Ledger.SubmitQuote(r.Context(), email, body.ServiceID, body.Price)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// UpdateVendorLocation moves the vendor, keeping the discovery cell sets in
// step: remove the old snapshot, write the new position, re-add.
func (a *API) UpdateVendorLocation(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	vendor, err := a.Vendors.GetByEmail(r.Context(), email)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := a.Cells.Remove(r.Context(), vendor); err != nil {
		log.Printf("api: remove vendor %d from discovery cell: %v", vendor.ID, err)
	}

	cell := geo.Cell(body.Latitude, body.Longitude)
	if err := a.Vendors.UpdateLocation(r.Context(), vendor.ID, body.Latitude, body.Longitude, cell); err != nil {
		writeStoreError(w, err)
		return
	}

	vendor.Latitude = body.Latitude
	vendor.Longitude = body.Longitude
	vendor.Geohash = cell
	if vendor.Status == models.VendorAvailable {
		if err := a.Cells.Add(r.Context(), vendor); err != nil {
			log.Printf("api: add vendor %d to discovery cell: %v", vendor.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, vendor)
}

// NearbyVendors lists available vendors of a category around a point.
func (a *API) NearbyVendors(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Longitude   float64 `json:"longitude"`
		Latitude    float64 `json:"latitude"`
		MaxDistance float64 `json:"maxDistance"`
		Category    string  `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.MaxDistance <= 0 || body.Category == "" {
		http.Error(w, "maxDistance and category are required", http.StatusBadRequest)
		return
	}

	results, err := a.Matcher.NearbyVendors(r.Context(), body.Latitude, body.Longitude, body.MaxDistance, body.Category)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if results == nil {
		results = []models.Vendor{}
	}
	writeJSON(w, http.StatusOK, results)
}

// AddReview appends a review to a vendor's record.
func (a *API) AddReview(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	vendorID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid vendor ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if _, err := a.Vendors.GetByID(r.Context(), vendorID); err != nil {
		writeStoreError(w, err)
		return
	}

	review := &models.Review{VendorID: vendorID, Reviewer: email, Body: body.Text}
	if err := a.Reviews.Append(r.Context(), review); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// ListReviews returns a vendor's reviews in insertion order.
func (a *API) ListReviews(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid vendor ID", http.StatusBadRequest)
		return
	}
	list, err := a.Reviews.ListByVendor(r.Context(), vendorID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []models.Review{}
	}
	writeJSON(w, http.StatusOK, list)
}
