// Package quotes records vendor price offers. Quote writes are independent
// and commutative — last write per (vendor, request) wins — so the ledger
// needs no locking.
package quotes

import (
	"context"

	"service-marketplace/models"
)

type VendorGetter interface {
	GetByEmail(ctx context.Context, email string) (*models.Vendor, error)
}

type QuoteUpserter interface {
	Upsert(ctx context.Context, vendorID, requestID int64, price float64) error
}

type RequestQuoter interface {
	Get(ctx context.Context, id int64) (*models.ServiceRequest, error)
	MarkQuoted(ctx context.Context, id int64) error
}

type Notifier interface {
	Notify(ctx context.Context, email, event string, payload map[string]interface{})
}

type Ledger struct {
	Vendors  VendorGetter
	Quotes   QuoteUpserter
	Requests RequestQuoter
	Notify   Notifier
}

// SubmitQuote upserts the calling vendor's price for the request and bumps
// a pending service-kind request to quoted. Problem-kind requests keep
// their review-flow status, which has no quoted stage. Re-submission
// overwrites the earlier price; the request status never regresses.
func (l *Ledger) SubmitQuote(ctx context.Context, vendorEmail string, requestID int64, price float64) (*models.Quote, error) {
	vendor, err := l.Vendors.GetByEmail(ctx, vendorEmail)
	if err != nil {
		return nil, err
	}
	req, err := l.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := l.Quotes.Upsert(ctx, vendor.ID, requestID, price); err != nil {
		return nil, err
	}
	if req.Kind == models.KindService {
		if err := l.Requests.MarkQuoted(ctx, requestID); err != nil {
			return nil, err
		}
	}

	if l.Notify != nil {
		l.Notify.Notify(ctx, req.RequesterEmail, "new-quote", map[string]interface{}{
			"service_id": requestID,
			"vendor_id":  vendor.ID,
			"price":      price,
		})
	}
	return &models.Quote{VendorID: vendor.ID, RequestID: requestID, Price: price}, nil
}
