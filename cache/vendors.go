package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"service-marketplace/models"

	"github.com/go-redis/redis/v8"
)

// VendorCells maintains the Redis discovery sets, one set per
// (category, geohash cell). Set members are the JSON-encoded vendor
// records, so discovery needs no follow-up database round trip.
type VendorCells struct {
	rdb *redis.Client
}

func NewVendorCells(rdb *redis.Client) *VendorCells {
	return &VendorCells{rdb: rdb}
}

func cellKey(category, cell string) string {
	return fmt.Sprintf("vendors:%s:%s", category, cell)
}

// Add places the vendor in its discovery cell.
func (c *VendorCells) Add(ctx context.Context, v *models.Vendor) error {
	if v.Geohash == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.SAdd(ctx, cellKey(v.Category, v.Geohash), data).Err()
}

// Remove takes the vendor out of its discovery cell. The vendor value must
// match the record that was added, byte for byte, so callers remove the old
// snapshot before mutating and re-adding.
func (c *VendorCells) Remove(ctx context.Context, v *models.Vendor) error {
	if v.Geohash == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.SRem(ctx, cellKey(v.Category, v.Geohash), data).Err()
}

// Members returns the raw JSON vendor records stored in one cell set.
func (c *VendorCells) Members(ctx context.Context, category, cell string) ([]string, error) {
	return c.rdb.SMembers(ctx, cellKey(category, cell)).Result()
}
