package store

import (
	"context"
	"database/sql"

	"service-marketplace/models"
)

type ReviewStore struct {
	DB *sql.DB
}

func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{DB: db}
}

// Append adds a review to the vendor's record. Reviews are append-only.
func (s *ReviewStore) Append(ctx context.Context, r *models.Review) error {
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO reviews (vendor_id, reviewer, body) VALUES ($1, $2, $3) RETURNING id`,
		r.VendorID, r.Reviewer, r.Body,
	).Scan(&r.ID)
}

// ListByVendor returns the vendor's reviews in insertion order.
func (s *ReviewStore) ListByVendor(ctx context.Context, vendorID int64) ([]models.Review, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, vendor_id, reviewer, body FROM reviews WHERE vendor_id=$1 ORDER BY id`,
		vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.VendorID, &r.Reviewer, &r.Body); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
