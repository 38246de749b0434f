package store

import (
	"context"
	"database/sql"
	"strings"

	"service-marketplace/models"

	"github.com/lib/pq"
)

type VendorStore struct {
	DB *sql.DB
}

func NewVendorStore(db *sql.DB) *VendorStore {
	return &VendorStore{DB: db}
}

const vendorColumns = `id, email, name, category, latitude, longitude, geohash, status`

func scanVendor(row *sql.Row) (*models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(&v.ID, &v.Email, &v.Name, &v.Category,
		&v.Latitude, &v.Longitude, &v.Geohash, &v.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VendorStore) Create(ctx context.Context, v *models.Vendor) error {
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO vendors (email, name, category, latitude, longitude, geohash, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		v.Email, v.Name, v.Category, v.Latitude, v.Longitude, v.Geohash, v.Status,
	).Scan(&v.ID)
	if pgErr, ok := err.(*pq.Error); ok && strings.Contains(pgErr.Message, "duplicate key") {
		return ErrExists
	}
	return err
}

func (s *VendorStore) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	return scanVendor(s.DB.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id=$1`, id))
}

func (s *VendorStore) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	return scanVendor(s.DB.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE email=$1`, email))
}

func (s *VendorStore) UpdateLocation(ctx context.Context, id int64, lat, lon float64, cell string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE vendors SET latitude=$1, longitude=$2, geohash=$3 WHERE id=$4`,
		lat, lon, cell, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LockIfAvailable flips the vendor to busy only if it is currently
// available. The single conditional statement is what makes concurrent
// assignments safe: of two racing calls, exactly one affects a row.
func (s *VendorStore) LockIfAvailable(ctx context.Context, id int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE vendors SET status=$1 WHERE id=$2 AND status=$3`,
		models.VendorBusy, id, models.VendorAvailable)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseIfBusy is the mirror of LockIfAvailable: it frees the vendor only
// if it is still busy, so a racing correction cannot be undone.
func (s *VendorStore) ReleaseIfBusy(ctx context.Context, id int64) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE vendors SET status=$1 WHERE id=$2 AND status=$3`,
		models.VendorAvailable, id, models.VendorBusy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
