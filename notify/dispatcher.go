package notify

import (
	"context"
	"encoding/json"
	"log"

	"service-marketplace/models"
)

// NotificationAppender persists notifications for the polling path.
type NotificationAppender interface {
	Append(ctx context.Context, n *models.Notification) error
}

// Frame is the wire shape pushed over a live connection.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher delivers events to clients. The persisted row is the source of
// truth; the live push is a latency optimization on top of it. Delivery
// failures are logged and never surface to the business operation that
// triggered them.
type Dispatcher struct {
	Store    NotificationAppender
	Registry *Registry
}

func NewDispatcher(store NotificationAppender, registry *Registry) *Dispatcher {
	return &Dispatcher{Store: store, Registry: registry}
}

// Notify persists the event for the identity and pushes it to the live
// connection when one is registered.
func (d *Dispatcher) Notify(ctx context.Context, email, event string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: marshal payload for %s: %v", email, err)
		return
	}

	record := &models.Notification{Email: email, Event: event, Payload: string(data)}
	if err := d.Store.Append(ctx, record); err != nil {
		log.Printf("notify: persist notification for %s: %v", email, err)
	}

	conn, ok := d.Registry.Lookup(email)
	if !ok {
		return
	}
	frame := Frame{Event: "new-notification", Payload: data}
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("notify: push to %s: %v", email, err)
		d.Registry.Unregister(email, conn)
		conn.Close()
	}
}
