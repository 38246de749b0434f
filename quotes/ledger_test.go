package quotes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"service-marketplace/models"
	"service-marketplace/store"
)

type fakeVendors struct {
	byEmail map[string]*models.Vendor
}

func (f *fakeVendors) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	v, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

type quoteKey struct{ vendorID, requestID int64 }

type fakeQuotes struct {
	mu     sync.Mutex
	prices map[quoteKey]float64
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{prices: make(map[quoteKey]float64)}
}

func (f *fakeQuotes) Upsert(ctx context.Context, vendorID, requestID int64, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[quoteKey{vendorID, requestID}] = price
	return nil
}

type fakeRequests struct {
	mu   sync.Mutex
	reqs map[int64]*models.ServiceRequest
}

func (f *fakeRequests) Get(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequests) MarkQuoted(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reqs[id]; ok && r.Status == models.StatusPending {
		r.Status = models.StatusQuoted
	}
	return nil
}

func newLedger() (*Ledger, *fakeQuotes, *fakeRequests) {
	vendors := &fakeVendors{byEmail: map[string]*models.Vendor{
		"plumber@example.com": {ID: 1, Email: "plumber@example.com", Category: "Plumbing"},
	}}
	quoteStore := newFakeQuotes()
	requests := &fakeRequests{reqs: map[int64]*models.ServiceRequest{
		10: {ID: 10, RequesterEmail: "customer@example.com", Kind: models.KindService, Status: models.StatusPending},
		11: {ID: 11, RequesterEmail: "customer@example.com", Kind: models.KindProblem, Status: models.StatusPending},
	}}
	return &Ledger{Vendors: vendors, Quotes: quoteStore, Requests: requests}, quoteStore, requests
}

func TestSubmitQuoteBumpsPendingToQuoted(t *testing.T) {
	ledger, quoteStore, requests := newLedger()

	quote, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 10, 450)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if quote.Price != 450 {
		t.Errorf("price = %f, want 450", quote.Price)
	}
	if quoteStore.prices[quoteKey{1, 10}] != 450 {
		t.Error("quote not stored")
	}
	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusQuoted {
		t.Errorf("status = %s, want quoted", req.Status)
	}
}

func TestSubmitQuoteIdempotentLatestWins(t *testing.T) {
	ledger, quoteStore, requests := newLedger()

	if _, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 10, 450); err != nil {
		t.Fatalf("first quote: %v", err)
	}
	if _, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 10, 400); err != nil {
		t.Fatalf("second quote: %v", err)
	}

	if len(quoteStore.prices) != 1 {
		t.Fatalf("%d stored prices, want 1", len(quoteStore.prices))
	}
	if quoteStore.prices[quoteKey{1, 10}] != 400 {
		t.Errorf("stored price = %f, want the latest (400)", quoteStore.prices[quoteKey{1, 10}])
	}
	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusQuoted {
		t.Errorf("status regressed to %s", req.Status)
	}
}

func TestSubmitQuoteProblemKindKeepsReviewStatus(t *testing.T) {
	ledger, quoteStore, requests := newLedger()

	if _, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 11, 450); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if quoteStore.prices[quoteKey{1, 11}] != 450 {
		t.Error("quote not stored")
	}
	req, _ := requests.Get(context.Background(), 11)
	if req.Status != models.StatusPending {
		t.Errorf("status = %s; quoted is not a problem-flow stage", req.Status)
	}
}

func TestSubmitQuoteDoesNotRegressPaid(t *testing.T) {
	ledger, _, requests := newLedger()
	requests.reqs[10].Status = models.StatusPaid

	if _, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 10, 450); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	req, _ := requests.Get(context.Background(), 10)
	if req.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid untouched", req.Status)
	}
}

func TestSubmitQuoteUnknownVendor(t *testing.T) {
	ledger, _, _ := newLedger()
	if _, err := ledger.SubmitQuote(context.Background(), "nobody@example.com", 10, 450); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitQuoteUnknownRequest(t *testing.T) {
	ledger, _, _ := newLedger()
	if _, err := ledger.SubmitQuote(context.Background(), "plumber@example.com", 99, 450); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
