package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slvrxyzz/tvoizakaz/internal/auth"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		config.ServerConfig{APIURL: srv.URL},
		auth.NewSource(token, "", ""),
		zap.NewNop(),
	)
}

func TestGetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/55" {
			t.Errorf("path = %s, want /orders/55", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":55,"title":"Landing page","price":1500,"currency":"RUB","customer_name":"Ivan"}`))
	}, "tok123")

	order, err := client.GetOrder(context.Background(), 55)
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if order.ID != 55 || order.Title != "Landing page" || order.Price != 1500 {
		t.Errorf("order = %+v", order)
	}
}

func TestGetOrderUnauthenticated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		w.Write([]byte(`{"id":1}`))
	}, "")

	if _, err := client.GetOrder(context.Background(), 1); err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"order not found"}`, http.StatusNotFound)
	}, "")

	if _, err := client.GetOrder(context.Background(), 999); err == nil {
		t.Fatal("GetOrder() expected error for 404")
	}
}

func TestGetOrderInvalidID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request made for invalid id")
	}, "")

	if _, err := client.GetOrder(context.Background(), 0); err == nil {
		t.Fatal("GetOrder(0) expected error")
	}
}
