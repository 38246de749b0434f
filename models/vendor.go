package models

const (
	VendorAvailable = "available"
	VendorBusy      = "busy"
)

type Vendor struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
	Status    string  `json:"status"` // "available", "busy"
}

// Quote is one vendor's standing price offer for a request. Re-submitting
// overwrites the previous price; there is at most one row per (vendor, request).
type Quote struct {
	VendorID  int64   `json:"vendor_id"`
	RequestID int64   `json:"request_id"`
	Price     float64 `json:"price"`
}

type Review struct {
	ID       int64  `json:"id"`
	VendorID int64  `json:"vendor_id"`
	Reviewer string `json:"reviewer"`
	Body     string `json:"body"`
}
