package bid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"handyman_bids/internal/models/bid"
	"handyman_bids/internal/pricing"
	"handyman_bids/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
)

type fakeCustomer struct {
	name  string
	email string
}

type fakeStore struct {
	customers map[int64]fakeCustomer
	bids      map[int64]bid.BidRecord
	nextId    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[int64]fakeCustomer{1: {name: "Jane Doe", email: "j@x.com"}},
		bids:      make(map[int64]bid.BidRecord),
	}
}

func (f *fakeStore) SaveBid(req bid.BidRequest, totals pricing.Totals) (bid.BidRecord, error) {
	cus, ok := f.customers[req.CustomerId]
	if !ok {
		return bid.BidRecord{}, fmt.Errorf("storage.fake.SaveBid: %w", postgres.ErrCustomerNotFound)
	}

	f.nextId++
	rec := bid.BidRecord{
		Id:            f.nextId,
		CustomerId:    req.CustomerId,
		CustomerName:  cus.name,
		CustomerEmail: cus.email,
		ProjectName:   req.ProjectName,
		DateCreated:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Items:         req.Items,
		Subtotal:      totals.Subtotal,
		MarkupPct:     totals.MarkupPct,
		TaxPct:        totals.TaxPct,
		Total:         totals.Total,
		Status:        bid.StatusDraft,
	}
	f.bids[rec.Id] = rec
	return rec, nil
}

func (f *fakeStore) ReadBids(status string) ([]bid.BidListing, error) {
	result := make([]bid.BidListing, 0)
	for id := f.nextId; id > 0; id-- {
		rec, ok := f.bids[id]
		if !ok || (status != "" && rec.Status != status) {
			continue
		}
		result = append(result, bid.BidListing{
			Id:           rec.Id,
			DateCreated:  rec.DateCreated,
			CustomerName: rec.CustomerName,
			ProjectName:  rec.ProjectName,
			Total:        rec.Total,
			Status:       rec.Status,
		})
	}
	return result, nil
}

func (f *fakeStore) ReadBid(bidId int64) (bid.BidRecord, error) {
	rec, ok := f.bids[bidId]
	if !ok {
		return bid.BidRecord{}, fmt.Errorf("storage.fake.ReadBid: %w", postgres.ErrNotFound)
	}
	return rec, nil
}

func (f *fakeStore) UpdateBidStatus(bidId int64, status string) (bid.BidListing, error) {
	rec, ok := f.bids[bidId]
	if !ok {
		return bid.BidListing{}, fmt.Errorf("storage.fake.UpdateBidStatus: %w", postgres.ErrNotFound)
	}
	rec.Status = status
	f.bids[bidId] = rec
	return bid.BidListing{
		Id:           rec.Id,
		DateCreated:  rec.DateCreated,
		CustomerName: rec.CustomerName,
		ProjectName:  rec.ProjectName,
		Total:        rec.Total,
		Status:       rec.Status,
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(store *fakeStore) *chi.Mux {
	log := testLogger()
	r := chi.NewRouter()
	r.Post("/api/bids", NewPostBid(log, store))
	r.Get("/api/bids", NewGetBids(log, store))
	r.Put("/api/bids/{bidId}/status", NewPutBidStatus(log, store))
	r.Get("/api/bids/{bidId}/quote", NewGetBidQuote(log, store))
	r.Get("/api/bids/{bidId}/email-link", NewGetBidEmailLink(log, store))
	return r
}

const paintBidBody = `{"customerId":1,"projectName":"Deck Repair",` +
	`"items":[{"description":"Paint","materialCost":100,"laborHours":2,"hourlyRate":50}],` +
	`"markupPct":10,"taxPct":5}`

func postPaintBid(t *testing.T, r *chi.Mux) bid.BidRecord {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/bids", bytes.NewBufferString(paintBidBody))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec bid.BidRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unexpected error decoding bid: %v", err)
	}
	return rec
}

func TestNewPostBid(t *testing.T) {
	t.Run("saves a priced draft", func(t *testing.T) {
		store := newFakeStore()
		rec := postPaintBid(t, testRouter(store))

		if rec.Status != "Draft" {
			t.Fatalf("expected initial status Draft, got %q", rec.Status)
		}
		if rec.Subtotal != 200 || rec.Total != 231 {
			t.Fatalf("unexpected totals: subtotal %v total %v", rec.Subtotal, rec.Total)
		}
		if rec.CustomerName != "Jane Doe" {
			t.Fatalf("expected joined customer name, got %q", rec.CustomerName)
		}
	})

	t.Run("unknown customer", func(t *testing.T) {
		store := newFakeStore()
		body := strings.Replace(paintBidBody, `"customerId":1`, `"customerId":99`, 1)

		req := httptest.NewRequest(http.MethodPost, "/api/bids", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		testRouter(store).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if len(store.bids) != 0 {
			t.Fatalf("expected no bid persisted")
		}
	})

	t.Run("empty project name", func(t *testing.T) {
		store := newFakeStore()
		body := strings.Replace(paintBidBody, `"projectName":"Deck Repair"`, `"projectName":""`, 1)

		req := httptest.NewRequest(http.MethodPost, "/api/bids", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		testRouter(store).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if len(store.bids) != 0 {
			t.Fatalf("expected no bid persisted")
		}
	})

	t.Run("negative amounts", func(t *testing.T) {
		store := newFakeStore()
		body := strings.Replace(paintBidBody, `"materialCost":100`, `"materialCost":-1`, 1)

		req := httptest.NewRequest(http.MethodPost, "/api/bids", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		testRouter(store).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestNewGetBids(t *testing.T) {
	t.Run("invalid status filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		testRouter(newFakeStore()).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/api/bids?status=Shipped", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("filter narrows the listing", func(t *testing.T) {
		store := newFakeStore()
		r := testRouter(store)
		first := postPaintBid(t, r)
		postPaintBid(t, r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/api/bids/%d/status?status=Sent", first.Id), nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bids?status=Sent", nil))

		var listed []bid.BidListing
		if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
			t.Fatalf("unexpected error decoding listing: %v", err)
		}
		if len(listed) != 1 || listed[0].Id != first.Id || listed[0].Status != "Sent" {
			t.Fatalf("unexpected listing: %+v", listed)
		}
	})
}

func TestNewPutBidStatus(t *testing.T) {
	t.Run("missing bid leaves the store unchanged", func(t *testing.T) {
		store := newFakeStore()
		r := testRouter(store)
		rec := postPaintBid(t, r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/bids/999/status?status=Sent", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if store.bids[rec.Id].Status != "Draft" {
			t.Fatalf("expected untouched store, got %+v", store.bids[rec.Id])
		}
	})

	t.Run("status outside the fixed set", func(t *testing.T) {
		store := newFakeStore()
		r := testRouter(store)
		rec := postPaintBid(t, r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/api/bids/%d/status?status=Shipped", rec.Id), nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("any status may follow any other", func(t *testing.T) {
		store := newFakeStore()
		r := testRouter(store)
		rec := postPaintBid(t, r)

		for _, status := range []string{"Sent", "Paid"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
				fmt.Sprintf("/api/bids/%d/status?status=%s", rec.Id, status), nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 updating to %s, got %d", status, w.Code)
			}
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bids", nil))

		var listed []bid.BidListing
		if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
			t.Fatalf("unexpected error decoding listing: %v", err)
		}
		if len(listed) != 1 || listed[0].Status != "Paid" {
			t.Fatalf("expected status Paid, got %+v", listed)
		}
		if listed[0].Total != 231 {
			t.Fatalf("expected total untouched by status updates, got %v", listed[0].Total)
		}
	})
}

func TestNewGetBidQuote(t *testing.T) {
	t.Run("missing bid", func(t *testing.T) {
		w := httptest.NewRecorder()
		testRouter(newFakeStore()).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/api/bids/42/quote", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("renders a downloadable pdf", func(t *testing.T) {
		store := newFakeStore()
		r := testRouter(store)
		rec := postPaintBid(t, r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			fmt.Sprintf("/api/bids/%d/quote", rec.Id), nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("expected application/pdf, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Quote_Jane Doe_Deck Repair.pdf") {
			t.Fatalf("unexpected content disposition %q", cd)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("$231.00")) {
			t.Fatalf("expected quote total in pdf bytes")
		}
	})
}

func TestNewGetBidEmailLink(t *testing.T) {
	store := newFakeStore()
	r := testRouter(store)
	rec := postPaintBid(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/bids/%d/email-link", rec.Id), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp bid.EmailLinkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error decoding response: %v", err)
	}
	if !strings.HasPrefix(resp.Link, "mailto:j@x.com?") {
		t.Fatalf("unexpected link %q", resp.Link)
	}
	if !strings.Contains(resp.Link, "Deck%20Repair") {
		t.Fatalf("expected project name in link, got %q", resp.Link)
	}
}
