package models

const (
	KindService = "service"
	KindProblem = "problem"
)

type ServiceRequest struct {
	ID             int64   `json:"id"`
	RequesterEmail string  `json:"requester_email"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Kind           string  `json:"kind"` // "service", "problem"
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Landmark       string  `json:"landmark"`
	Status         string  `json:"status"`
	AssignedVendor *int64  `json:"assigned_vendor_id,omitempty"`
	Price          float64 `json:"price"`
	// CompletionCode is the one-time secret handed to the requester at
	// assignment time. It never appears in API responses.
	CompletionCode string `json:"-"`
}

type Notification struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Event   string `json:"event"`
	Payload string `json:"payload"`
}
