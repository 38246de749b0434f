// Package matching finds vendors for requests and requests for vendors.
// Vendor discovery scans the Redis geohash cell plus its neighbors (the
// records live in the cell sets); request discovery goes through the
// in-memory spatial index and the store. Both apply an exact haversine cut
// on top of the coarse cell/box prefilter. All queries are read-only.
package matching

import (
	"context"
	"encoding/json"
	"errors"

	"service-marketplace/geo"
	"service-marketplace/models"
	"service-marketplace/store"
)

// CellReader reads raw vendor records out of one discovery cell set.
type CellReader interface {
	Members(ctx context.Context, category, cell string) ([]string, error)
}

// RequestSource loads requests for the index hits and the vendor's own
// paid assignment.
type RequestSource interface {
	Get(ctx context.Context, id int64) (*models.ServiceRequest, error)
	PaidAssignment(ctx context.Context, vendorID int64) (*models.ServiceRequest, error)
}

type Matcher struct {
	Cells    CellReader
	Requests RequestSource
	Index    *geo.RequestIndex
}

// NearbyVendors returns available vendors of the category within radiusKm
// of the point. No ordering guarantee.
func (m *Matcher) NearbyVendors(ctx context.Context, lat, lon, radiusKm float64, category string) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, cell := range geo.CellWithNeighbors(lat, lon) {
		members, err := m.Cells.Members(ctx, category, cell)
		if err != nil {
			continue
		}
		for _, raw := range members {
			var v models.Vendor
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				continue
			}
			if v.Status != models.VendorAvailable {
				continue
			}
			if geo.DistanceKm(lat, lon, v.Latitude, v.Longitude) > radiusKm {
				continue
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// NearbyRequests returns the open requests a vendor can bid on: category
// match, status pending or quoted, within radiusKm. If the vendor holds a
// paid assignment, only that request is returned regardless of distance.
func (m *Matcher) NearbyRequests(ctx context.Context, vendor *models.Vendor, lat, lon, radiusKm float64) ([]models.ServiceRequest, error) {
	assigned, err := m.Requests.PaidAssignment(ctx, vendor.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if assigned != nil {
		return []models.ServiceRequest{*assigned}, nil
	}

	var out []models.ServiceRequest
	for _, id := range m.Index.Search(lat, lon, radiusKm) {
		req, err := m.Requests.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if req.Category != vendor.Category {
			continue
		}
		if req.Status != models.StatusPending && req.Status != models.StatusQuoted {
			continue
		}
		if geo.DistanceKm(lat, lon, req.Latitude, req.Longitude) > radiusKm {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}
