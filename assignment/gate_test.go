package assignment

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"service-marketplace/models"
	"service-marketplace/store"
)

type fakeVendors struct {
	mu      sync.Mutex
	vendors map[int64]*models.Vendor
}

func newFakeVendors(vs ...*models.Vendor) *fakeVendors {
	f := &fakeVendors{vendors: make(map[int64]*models.Vendor)}
	for _, v := range vs {
		f.vendors[v.ID] = v
	}
	return f
}

func (f *fakeVendors) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVendors) LockIfAvailable(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok || v.Status != models.VendorAvailable {
		return false, nil
	}
	v.Status = models.VendorBusy
	return true, nil
}

func (f *fakeVendors) ReleaseIfBusy(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok || v.Status != models.VendorBusy {
		return false, nil
	}
	v.Status = models.VendorAvailable
	return true, nil
}

func (f *fakeVendors) status(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vendors[id].Status
}

type fakeRequests struct {
	mu   sync.Mutex
	reqs map[int64]*models.ServiceRequest
}

func newFakeRequests(rs ...*models.ServiceRequest) *fakeRequests {
	f := &fakeRequests{reqs: make(map[int64]*models.ServiceRequest)}
	for _, r := range rs {
		f.reqs[r.ID] = r
	}
	return f
}

func (f *fakeRequests) Get(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	if r.AssignedVendor != nil {
		vid := *r.AssignedVendor
		cp.AssignedVendor = &vid
	}
	return &cp, nil
}

func (f *fakeRequests) MarkPaid(ctx context.Context, id, vendorID int64, price float64, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return store.ErrNotFound
	}
	switch r.Status {
	case models.StatusPaid, models.StatusCompleted, models.StatusVerified:
		return store.ErrAlreadyAssigned
	}
	r.Status = models.StatusPaid
	r.AssignedVendor = &vendorID
	r.Price = price
	r.CompletionCode = code
	return nil
}

func (f *fakeRequests) Finalize(ctx context.Context, id int64, terminal string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok || r.Status != models.StatusPaid {
		return store.ErrNotFound
	}
	r.Status = terminal
	r.CompletionCode = ""
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(ctx context.Context, email, event string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, email+":"+event)
}

type failMailer struct{}

func (failMailer) Send(to, subject, body string) error {
	return errors.New("smtp down")
}

func newGate(vendors *fakeVendors, requests *fakeRequests) *Gate {
	return &Gate{Vendors: vendors, Requests: requests, Notify: &fakeNotifier{}}
}

func pendingRequest(id int64) *models.ServiceRequest {
	return &models.ServiceRequest{
		ID:             id,
		RequesterEmail: "customer@example.com",
		Name:           "Fix kitchen sink",
		Category:       "Plumbing",
		Kind:           models.KindService,
		Status:         models.StatusPending,
	}
}

func availableVendor(id int64) *models.Vendor {
	return &models.Vendor{
		ID:       id,
		Email:    "vendor@example.com",
		Category: "Plumbing",
		Status:   models.VendorAvailable,
	}
}

func TestAssignSetsCodeAndStatus(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	requests := newFakeRequests(pendingRequest(10))
	gate := newGate(vendors, requests)

	updated, err := gate.Assign(context.Background(), 10, 1, 500)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if updated.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}
	if updated.AssignedVendor == nil || *updated.AssignedVendor != 1 {
		t.Error("assigned vendor not recorded")
	}
	if updated.Price != 500 {
		t.Errorf("price = %f, want 500", updated.Price)
	}
	if !regexp.MustCompile(`^[0-9A-F]{6}$`).MatchString(updated.CompletionCode) {
		t.Errorf("completion code %q is not 6 uppercase hex chars", updated.CompletionCode)
	}
	if vendors.status(1) != models.VendorBusy {
		t.Error("vendor should be busy after assignment")
	}
}

func TestAssignConcurrentExclusivity(t *testing.T) {
	const attempts = 16
	vendors := newFakeVendors(availableVendor(1))
	requests := newFakeRequests()
	for i := int64(1); i <= attempts; i++ {
		requests.reqs[i] = pendingRequest(i)
	}
	gate := newGate(vendors, requests)

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = gate.Assign(context.Background(), int64(i+1), 1, 500)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrVendorUnavailable):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d assignments succeeded, want exactly 1", succeeded)
	}

	// Exactly one request references the vendor, and the vendor is busy.
	assigned := 0
	for _, r := range requests.reqs {
		if r.AssignedVendor != nil && *r.AssignedVendor == 1 {
			assigned++
		}
	}
	if assigned != 1 {
		t.Errorf("%d requests reference the vendor, want 1", assigned)
	}
	if vendors.status(1) != models.VendorBusy {
		t.Error("vendor should be busy")
	}
}

func TestAssignBusyVendorRejected(t *testing.T) {
	v := availableVendor(1)
	v.Status = models.VendorBusy
	vendors := newFakeVendors(v)
	requests := newFakeRequests(pendingRequest(10))
	gate := newGate(vendors, requests)

	_, err := gate.Assign(context.Background(), 10, 1, 500)
	if !errors.Is(err, store.ErrVendorUnavailable) {
		t.Fatalf("err = %v, want ErrVendorUnavailable", err)
	}
	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusPending {
		t.Errorf("request mutated on failed assign: status %s", req.Status)
	}
}

func TestAssignPaidRequestRejectedAndVendorFreed(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	paid := pendingRequest(10)
	paid.Status = models.StatusPaid
	requests := newFakeRequests(paid)
	gate := newGate(vendors, requests)

	_, err := gate.Assign(context.Background(), 10, 1, 500)
	if !errors.Is(err, store.ErrAlreadyAssigned) {
		t.Fatalf("err = %v, want ErrAlreadyAssigned", err)
	}
	if vendors.status(1) != models.VendorAvailable {
		t.Error("vendor must stay available when the request precondition fails")
	}
}

func TestAssignMissingRequest(t *testing.T) {
	gate := newGate(newFakeVendors(availableVendor(1)), newFakeRequests())
	if _, err := gate.Assign(context.Background(), 99, 1, 500); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignSurvivesMailFailure(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	requests := newFakeRequests(pendingRequest(10))
	gate := newGate(vendors, requests)
	gate.Mail = failMailer{}

	updated, err := gate.Assign(context.Background(), 10, 1, 500)
	if err != nil {
		t.Fatalf("Assign should commit despite mail failure: %v", err)
	}
	if updated.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	requests := newFakeRequests(pendingRequest(10))
	gate := newGate(vendors, requests)

	assigned, err := gate.Assign(context.Background(), 10, 1, 500)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	ok, err := gate.Verify(context.Background(), 10, assigned.CompletionCode)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct code rejected")
	}

	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", req.Status)
	}
	if req.CompletionCode != "" {
		t.Error("completion code should be invalidated")
	}
	if vendors.status(1) != models.VendorAvailable {
		t.Error("vendor should be released after verification")
	}
}

func TestVerifyWrongCodeLeavesStateUnchanged(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	requests := newFakeRequests(pendingRequest(10))
	gate := newGate(vendors, requests)

	if _, err := gate.Assign(context.Background(), 10, 1, 500); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	ok, err := gate.Verify(context.Background(), 10, "WRONG1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong code accepted")
	}

	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid", req.Status)
	}
	if vendors.status(1) != models.VendorBusy {
		t.Error("vendor must stay busy after a failed verification")
	}
}

func TestVerifyUnpaidRequest(t *testing.T) {
	gate := newGate(newFakeVendors(availableVendor(1)), newFakeRequests(pendingRequest(10)))
	ok, err := gate.Verify(context.Background(), 10, "ABCDEF")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("verification must fail for a request that was never paid")
	}
}

func TestVerifyProblemKindEndsVerified(t *testing.T) {
	vendors := newFakeVendors(availableVendor(1))
	req := pendingRequest(10)
	req.Kind = models.KindProblem
	req.Status = models.StatusDone
	requests := newFakeRequests(req)
	gate := newGate(vendors, requests)

	assigned, err := gate.Assign(context.Background(), 10, 1, 750)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	ok, err := gate.Verify(context.Background(), 10, assigned.CompletionCode)
	if err != nil || !ok {
		t.Fatalf("Verify = (%v, %v), want (true, nil)", ok, err)
	}
	got, _ := requests.Get(context.Background(), 10)
	if got.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", got.Status)
	}
}

func TestCompletionCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	pattern := regexp.MustCompile(`^[0-9A-F]{6}$`)
	for i := 0; i < 32; i++ {
		code, err := newCompletionCode()
		if err != nil {
			t.Fatalf("newCompletionCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not 6 uppercase hex chars", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes do not vary")
	}
}
