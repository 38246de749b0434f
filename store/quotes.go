package store

import (
	"context"
	"database/sql"

	"service-marketplace/models"
)

type QuoteStore struct {
	DB *sql.DB
}

func NewQuoteStore(db *sql.DB) *QuoteStore {
	return &QuoteStore{DB: db}
}

// Upsert stores the vendor's price for a request, overwriting any earlier
// offer. Concurrent quotes from different vendors are independent rows.
func (s *QuoteStore) Upsert(ctx context.Context, vendorID, requestID int64, price float64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO quotes (vendor_id, request_id, price) VALUES ($1, $2, $3)
		 ON CONFLICT (vendor_id, request_id) DO UPDATE SET price=EXCLUDED.price`,
		vendorID, requestID, price)
	return err
}

func (s *QuoteStore) ListByVendor(ctx context.Context, vendorID int64) ([]models.Quote, error) {
	return s.list(ctx,
		`SELECT vendor_id, request_id, price FROM quotes WHERE vendor_id=$1`, vendorID)
}

func (s *QuoteStore) ListByRequest(ctx context.Context, requestID int64) ([]models.Quote, error) {
	return s.list(ctx,
		`SELECT vendor_id, request_id, price FROM quotes WHERE request_id=$1`, requestID)
}

func (s *QuoteStore) list(ctx context.Context, query string, arg int64) ([]models.Quote, error) {
	rows, err := s.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Quote
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(&q.VendorID, &q.RequestID, &q.Price); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
