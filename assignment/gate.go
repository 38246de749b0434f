// Package assignment holds the exclusive vendor-assignment gate and the
// completion-code verifier. The two conditional vendor updates
// (LockIfAvailable / ReleaseIfBusy) are the only correctness-critical
// writes in the system; everything after them is best-effort.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"service-marketplace/models"
	"service-marketplace/store"
)

// VendorLocker is the vendor-side store surface the gate needs.
type VendorLocker interface {
	GetByID(ctx context.Context, id int64) (*models.Vendor, error)
	LockIfAvailable(ctx context.Context, id int64) (bool, error)
	ReleaseIfBusy(ctx context.Context, id int64) (bool, error)
}

// RequestUpdater is the request-side store surface the gate needs.
type RequestUpdater interface {
	Get(ctx context.Context, id int64) (*models.ServiceRequest, error)
	MarkPaid(ctx context.Context, id, vendorID int64, price float64, code string) error
	Finalize(ctx context.Context, id int64, terminal string) error
}

// Notifier delivers best-effort events; it never returns an error to the gate.
type Notifier interface {
	Notify(ctx context.Context, email, event string, payload map[string]interface{})
}

// Mailer sends the durable email fallback carrying the completion code.
type Mailer interface {
	Send(to, subject, body string) error
}

// CellIndex keeps the Redis discovery cells in step with vendor status.
type CellIndex interface {
	Add(ctx context.Context, v *models.Vendor) error
	Remove(ctx context.Context, v *models.Vendor) error
}

// RequestIndex lets the gate drop a closed request from the spatial index.
type RequestIndex interface {
	Remove(id int64)
}

type Gate struct {
	Vendors  VendorLocker
	Requests RequestUpdater
	Notify   Notifier
	Mail     Mailer
	Cells    CellIndex
	Index    RequestIndex
}

// Assign exclusively binds the vendor to the request.
//
// Order matters: the conditional vendor lock goes first, so of two racing
// assignments for the same vendor exactly one proceeds. If anything after
// the lock fails before MarkPaid commits, the lock is released; once
// MarkPaid commits, notification and email failures are logged only.
func (g *Gate) Assign(ctx context.Context, requestID, vendorID int64, price float64) (*models.ServiceRequest, error) {
	req, err := g.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if models.AtOrPastPaid(req.Kind, req.Status) {
		return nil, store.ErrAlreadyAssigned
	}
	vendor, err := g.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	locked, err := g.Vendors.LockIfAvailable(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("lock vendor %d: %w", vendorID, err)
	}
	if !locked {
		return nil, store.ErrVendorUnavailable
	}

	code, err := newCompletionCode()
	if err != nil {
		g.unlock(ctx, vendorID)
		return nil, err
	}

	if err := g.Requests.MarkPaid(ctx, requestID, vendorID, price, code); err != nil {
		g.unlock(ctx, vendorID)
		return nil, err
	}

	// The assignment is committed. Everything below is best-effort.
	if g.Cells != nil {
		if err := g.Cells.Remove(ctx, vendor); err != nil {
			log.Printf("assignment: remove vendor %d from discovery cell: %v", vendorID, err)
		}
	}
	if g.Index != nil {
		g.Index.Remove(requestID)
	}

	g.Notify.Notify(ctx, req.RequesterEmail, "service-assigned", map[string]interface{}{
		"service_id":      requestID,
		"vendor_id":       vendorID,
		"price":           price,
		"completion_code": code,
	})
	g.Notify.Notify(ctx, vendor.Email, "service-assigned", map[string]interface{}{
		"service_id": requestID,
		"price":      price,
	})

	if g.Mail != nil {
		body := fmt.Sprintf(
			"Your payment for %q is confirmed. Share the completion code %s with the vendor once the job is done.",
			req.Name, code)
		if err := g.Mail.Send(req.RequesterEmail, "Service assigned", body); err != nil {
			log.Printf("assignment: email code to %s: %v", req.RequesterEmail, err)
		}
		confirm := fmt.Sprintf("You have been assigned to %q at the agreed price of %.2f.", req.Name, price)
		if err := g.Mail.Send(vendor.Email, "New assignment", confirm); err != nil {
			log.Printf("assignment: email confirmation to %s: %v", vendor.Email, err)
		}
	}

	updated, err := g.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *Gate) unlock(ctx context.Context, vendorID int64) {
	if _, err := g.Vendors.ReleaseIfBusy(ctx, vendorID); err != nil {
		log.Printf("assignment: release vendor %d after failed assign: %v", vendorID, err)
	}
}

// Verify checks the submitted completion code against the stored one.
// A mismatch is not an error: it returns (false, nil) so the caller can
// retry. On a match the request is closed and the vendor released.
func (g *Gate) Verify(ctx context.Context, requestID int64, submittedCode string) (bool, error) {
	req, err := g.Requests.Get(ctx, requestID)
	if err != nil {
		return false, err
	}
	if req.Status != models.StatusPaid || req.CompletionCode == "" {
		return false, nil
	}
	if submittedCode != req.CompletionCode {
		return false, nil
	}

	if err := g.Requests.Finalize(ctx, requestID, models.TerminalStatus(req.Kind)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A racing verification won; report the code as spent.
			return false, nil
		}
		return false, err
	}

	if req.AssignedVendor != nil {
		vendorID := *req.AssignedVendor
		released, err := g.Vendors.ReleaseIfBusy(ctx, vendorID)
		if err != nil {
			log.Printf("assignment: release vendor %d after verification: %v", vendorID, err)
		} else if !released {
			log.Printf("assignment: vendor %d was not busy at verification time", vendorID)
		}
		if released && g.Cells != nil {
			if vendor, err := g.Vendors.GetByID(ctx, vendorID); err == nil {
				if err := g.Cells.Add(ctx, vendor); err != nil {
					log.Printf("assignment: re-add vendor %d to discovery cell: %v", vendorID, err)
				}
			}
		}
		g.Notify.Notify(ctx, req.RequesterEmail, "service-completed", map[string]interface{}{
			"service_id": requestID,
		})
		if vendor, err := g.Vendors.GetByID(ctx, vendorID); err == nil {
			g.Notify.Notify(ctx, vendor.Email, "service-completed", map[string]interface{}{
				"service_id": requestID,
			})
		}
	}
	return true, nil
}
