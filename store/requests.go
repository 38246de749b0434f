package store

import (
	"context"
	"database/sql"

	"service-marketplace/models"

	"github.com/lib/pq"
)

type RequestStore struct {
	DB *sql.DB
}

func NewRequestStore(db *sql.DB) *RequestStore {
	return &RequestStore{DB: db}
}

const requestColumns = `id, requester_email, name, description, category, kind,
	longitude, latitude, landmark, status, assigned_vendor_id, price, completion_code`

func scanRequest(scan func(dest ...interface{}) error) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	var vendorID sql.NullInt64
	var code sql.NullString
	err := scan(&r.ID, &r.RequesterEmail, &r.Name, &r.Description, &r.Category,
		&r.Kind, &r.Longitude, &r.Latitude, &r.Landmark, &r.Status,
		&vendorID, &r.Price, &code)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if vendorID.Valid {
		r.AssignedVendor = &vendorID.Int64
	}
	r.CompletionCode = code.String
	return &r, nil
}

func (s *RequestStore) Create(ctx context.Context, r *models.ServiceRequest) error {
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO service_requests
		 (requester_email, name, description, category, kind, longitude, latitude, landmark, status, price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		r.RequesterEmail, r.Name, r.Description, r.Category, r.Kind,
		r.Longitude, r.Latitude, r.Landmark, r.Status, r.Price,
	).Scan(&r.ID)
}

func (s *RequestStore) Get(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id=$1`, id)
	return scanRequest(row.Scan)
}

// ListOpen returns requests of the given category in one of the given
// statuses. Used to rebuild the spatial index at boot and by the matcher.
func (s *RequestStore) ListOpen(ctx context.Context, category string, statuses []string) ([]models.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE status = ANY($1)`
	args := []interface{}{pq.Array(statuses)}
	if category != "" {
		query += ` AND category=$2`
		args = append(args, category)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// PaidAssignment returns the vendor's current paid request, or ErrNotFound.
func (s *RequestStore) PaidAssignment(ctx context.Context, vendorID int64) (*models.ServiceRequest, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests
		 WHERE assigned_vendor_id=$1 AND status=$2`, vendorID, models.StatusPaid)
	return scanRequest(row.Scan)
}

// MarkQuoted bumps a pending request to quoted. Requests already at or past
// quoted are left alone; that is not an error.
func (s *RequestStore) MarkQuoted(ctx context.Context, id int64) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests SET status=$1 WHERE id=$2 AND status=$3`,
		models.StatusQuoted, id, models.StatusPending)
	return err
}

// MarkPaid records the exclusive assignment: status, vendor, agreed price
// and the completion code in one statement, refused if the request already
// reached paid or a terminal stage.
func (s *RequestStore) MarkPaid(ctx context.Context, id, vendorID int64, price float64, code string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests
		 SET status=$1, assigned_vendor_id=$2, price=$3, completion_code=$4
		 WHERE id=$5 AND status NOT IN ($6, $7, $8)`,
		models.StatusPaid, vendorID, price, code,
		id, models.StatusPaid, models.StatusCompleted, models.StatusVerified)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyAssigned
	}
	return nil
}

// Finalize closes a paid request with its terminal status and invalidates
// the completion code.
func (s *RequestStore) Finalize(ctx context.Context, id int64, terminal string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests SET status=$1, completion_code=NULL
		 WHERE id=$2 AND status=$3`,
		terminal, id, models.StatusPaid)
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

// SetStatus moves a request to the given status. Validation of the one-
// stage rule is the caller's job; the statement itself is unconditional so
// the admin flow can advance the problem-report stages.
func (s *RequestStore) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests SET status=$1 WHERE id=$2`, status, id)
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

// SetPrice records an admin-assigned expected price.
func (s *RequestStore) SetPrice(ctx context.Context, id int64, price float64) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests SET price=$1 WHERE id=$2`, price, id)
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

// Reset returns a stalled request to pending, clearing any assignment
// leftovers. The condition excludes paid and terminal stages, and pending
// itself, so the statement affects zero rows when a reset is not allowed.
func (s *RequestStore) Reset(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE service_requests
		 SET status=$1, assigned_vendor_id=NULL, completion_code=NULL
		 WHERE id=$2 AND status NOT IN ($3, $4, $5, $6)`,
		models.StatusPending, id,
		models.StatusPending, models.StatusPaid, models.StatusCompleted, models.StatusVerified)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrResetNotAllowed
	}
	return nil
}
