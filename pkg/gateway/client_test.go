package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rent-admin/internal/model"
	"rent-admin/prometheus"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type memoryTokens struct {
	token   string
	cleared int
}

func (m *memoryTokens) Token(context.Context) (string, error) { return m.token, nil }
func (m *memoryTokens) Clear(context.Context) error {
	m.token = ""
	m.cleared++
	return nil
}

func newTestClient(t *testing.T, mux *http.ServeMux, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/", 5*time.Second).WithTokens(tokens)
}

func TestListProductsSendsQueryAndToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "12" || q.Get("search") != "gown" {
			t.Errorf("query = %v", q)
		}
		if _, ok := q["category"]; ok {
			t.Errorf("empty filter should not be sent: %v", q)
		}
		w.Write([]byte(`{"success":true,"data":{"products":[{"_id":"p1","name":"Gown"}],"totalPages":3,"currentPage":2,"total":25}}`))
	})

	c := newTestClient(t, mux, &memoryTokens{token: "tok-1"})
	page, err := c.ListProducts(context.Background(), 2, 12, map[string]string{"search": "gown", "category": ""})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "p1" {
		t.Errorf("items = %+v", page.Items)
	}
	if page.TotalPages != 3 || page.CurrentPage != 2 || page.Total != 25 {
		t.Errorf("page meta = %d/%d/%d", page.TotalPages, page.CurrentPage, page.Total)
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Token expired"}`))
	})

	tokens := &memoryTokens{token: "stale"}
	c := newTestClient(t, mux, tokens)
	_, err := c.ListUsers(context.Background(), 1, 10, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if tokens.cleared != 1 || tokens.token != "" {
		t.Errorf("token not cleared: %+v", tokens)
	}
	if msg := MessageOr(err, "fallback"); msg != "Token expired" {
		t.Errorf("message = %q", msg)
	}
}

func TestErrorMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Validation failed","errors":[{"field":"name","message":"Name is required"}]}`))
	})
	mux.HandleFunc("/api/merchants", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>oops</html>`))
	})

	c := newTestClient(t, mux, nil)

	_, err := c.CreateCategory(context.Background(), model.CategoryInput{})
	if msg := MessageOr(err, "Failed to create category"); msg != "Name is required" {
		t.Errorf("field error message = %q", msg)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Errorf("400 must not match ErrUnauthorized")
	}

	_, err = c.CreateMerchant(context.Background(), model.MerchantInput{Name: "x"})
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if msg := MessageOr(err, "Failed to create merchant"); msg != "Failed to create merchant" {
		t.Errorf("fallback message = %q", msg)
	}
}

func TestGetOneAndDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings/b1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"success":true,"data":{"booking":{"_id":"b1","dressId":{"_id":"p1","name":"Lehenga"},"customer":{"name":"Asha"}}}}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/products/highlight/order", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Products []model.HighlightRank `json:"products"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(payload.Products) != 2 || payload.Products[1].Order != 2 {
			t.Errorf("payload = %+v", payload)
		}
		w.Write([]byte(`{"success":true}`))
	})

	c := newTestClient(t, mux, nil)
	b, err := c.GetBooking(context.Background(), "b1")
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if b.Dress.Name() != "Lehenga" || b.Customer.Name != "Asha" {
		t.Errorf("booking = %+v", b)
	}
	if err := c.DeleteBooking(context.Background(), "b1"); err != nil {
		t.Errorf("DeleteBooking: %v", err)
	}
	ranks := []model.HighlightRank{{ID: "a", Order: 1}, {ID: "b", Order: 2}}
	if err := c.UpdateHighlightOrder(context.Background(), ranks); err != nil {
		t.Errorf("UpdateHighlightOrder: %v", err)
	}
}

func TestListProductsKeepsUnpopulatedReferences(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"products":[
			{"_id":"p1","name":"Lehenga","Owner":"m1"},
			{"_id":"p2","name":"Saree","category":"c2","categories":["c2"]},
			{"_id":"p3","name":"Gown","Owner":{"_id":"m3","name":"Asha"},"categories":[{"_id":"c3","name":"Gowns"}]},
			{"_id":"p4","price":"free"}
		],"totalPages":1}}`))
	})

	dropped := prometheus.MalformedRecords.WithLabelValues("products.list")
	before := testutil.ToFloat64(dropped)

	c := newTestClient(t, mux, &memoryTokens{token: "tok"})
	page, err := c.ListProducts(context.Background(), 1, 12, nil)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("items = %+v, want p1 p2 p3", page.Items)
	}
	if page.Items[0].Owner == nil || page.Items[0].Owner.ID != "m1" {
		t.Errorf("owner of p1 = %+v", page.Items[0].Owner)
	}
	if ids := page.Items[1].CategoryIDs(); len(ids) != 1 || ids[0] != "c2" {
		t.Errorf("categories of p2 = %v", ids)
	}
	if page.Malformed != 1 {
		t.Errorf("malformed = %d, want 1", page.Malformed)
	}
	if got := testutil.ToFloat64(dropped) - before; got != 1 {
		t.Errorf("malformed counter delta = %v, want 1", got)
	}
}
