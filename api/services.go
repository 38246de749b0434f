package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"service-marketplace/auth"
	"service-marketplace/geo"
	"service-marketplace/models"

	"github.com/gorilla/mux"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

// CreateService handles a requester posting a new job.
func (a *API) CreateService(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Landmark    string  `json:"landmark"`
		Longitude   float64 `json:"longitude"`
		Latitude    float64 `json:"latitude"`
		Kind        string  `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.Category == "" {
		http.Error(w, "Name and category are required", http.StatusBadRequest)
		return
	}
	kind := body.Kind
	if kind == "" {
		kind = models.KindService
	}
	if kind != models.KindService && kind != models.KindProblem {
		http.Error(w, "Invalid kind", http.StatusBadRequest)
		return
	}

	req := &models.ServiceRequest{
		RequesterEmail: email,
		Name:           body.Name,
		Description:    body.Description,
		Category:       body.Category,
		Kind:           kind,
		Longitude:      body.Longitude,
		Latitude:       body.Latitude,
		Landmark:       body.Landmark,
		Status:         models.StatusPending,
	}
	if err := a.Requests.Create(r.Context(), req); err != nil {
		writeStoreError(w, err)
		return
	}
	a.Index.Insert(req.ID, req.Latitude, req.Longitude)

	writeJSON(w, http.StatusCreated, req)
}

// GetService returns one request by id.
func (a *API) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	req, err := a.Requests.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// NearbyRequests surfaces open requests to the calling vendor. If the
// vendor holds a paid assignment, only that request comes back.
func (a *API) NearbyRequests(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	vendor, err := a.Vendors.GetByEmail(r.Context(), email)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var body struct {
		Longitude   float64 `json:"longitude"`
		Latitude    float64 `json:"latitude"`
		MaxDistance float64 `json:"maxDistance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.MaxDistance <= 0 {
		http.Error(w, "maxDistance must be positive", http.StatusBadRequest)
		return
	}

	results, err := a.Matcher.NearbyRequests(r.Context(), vendor, body.Latitude, body.Longitude, body.MaxDistance)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if results == nil {
		results = []models.ServiceRequest{}
	}
	writeJSON(w, http.StatusOK, results)
}

// AssignService is the payment step: it runs the exclusive assignment gate.
func (a *API) AssignService(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Price    float64 `json:"price"`
		VendorID int64   `json:"vendorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	req, err := a.Requests.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if req.RequesterEmail != email {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	updated, err := a.Gate.Assign(r.Context(), id, body.VendorID, body.Price)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Vendor assigned",
		"service": updated,
	})
}

// VerifyCompletion checks the submitted completion code. A wrong code is a
// 200 with success:false so the caller can retry; it is not an error.
func (a *API) VerifyCompletion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceID int64  `json:"serviceId"`
		Code      string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ok, err := a.Gate.Verify(r.Context(), body.ServiceID, body.Code)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// ServiceDistance returns the distance from the request's location to its
// assigned vendor, or to the vendor named in the body when no assignment
// exists yet.
func (a *API) ServiceDistance(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var body struct {
		VendorEmail string `json:"vendorEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	req, err := a.Requests.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if req.RequesterEmail != email {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var vendor *models.Vendor
	if req.AssignedVendor != nil {
		vendor, err = a.Vendors.GetByID(r.Context(), *req.AssignedVendor)
	} else if body.VendorEmail != "" {
		vendor, err = a.Vendors.GetByEmail(r.Context(), body.VendorEmail)
	} else {
		http.Error(w, "No assigned vendor and no vendorEmail given", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	km := geo.DistanceKm(req.Latitude, req.Longitude, vendor.Latitude, vendor.Longitude)
	writeJSON(w, http.StatusOK, map[string]float64{"distance_km": km})
}

// AdvanceService moves a request one stage forward (admin, problem-report
// flow). The paid stage is untouchable here: entering it is reserved for
// the assignment gate, leaving it for code verification.
func (a *API) AdvanceService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	req, err := a.Requests.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	next, err := models.NextAdminStatus(req.Kind, req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err := a.Requests.SetStatus(r.Context(), id, next); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": next})
}

// ResetService returns a stalled request to pending (admin). Refused once
// the request reached paid.
func (a *API) ResetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	req, err := a.Requests.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !models.CanReset(req.Kind, req.Status) {
		http.Error(w, "Reset not allowed", http.StatusConflict)
		return
	}
	if err := a.Requests.Reset(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusPending})
}

// SetExpectedPrice records an admin-assigned expected price.
func (a *API) SetExpectedPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := a.Requests.SetPrice(r.Context(), id, body.Price); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"price": body.Price})
}

// ListNotifications returns the caller's persisted notifications, the
// polling counterpart of the live websocket push.
func (a *API) ListNotifications(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	list, err := a.Notifications.ListByEmail(r.Context(), email)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}
