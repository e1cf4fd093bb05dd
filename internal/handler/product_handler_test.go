package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProductLifecycle(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)

	rr := srv.do(jsonRequest(t, http.MethodPost, "/admin/api/products",
		map[string]any{"hero": map[string]any{"subtitle": "no title"}}), cookies...)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for untitled product, got %d", rr.Code)
	}

	rr = srv.do(jsonRequest(t, http.MethodPost, "/admin/api/products",
		map[string]any{"hero": map[string]any{"title": "Cardorium Gold"}}), cookies...)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rr.Code, rr.Body.String())
	}
	product := decodeJSON(t, rr)["product"].(map[string]any)
	id := product["id"].(string)

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	products := decodeJSON(t, rr)["products"].([]any)
	if len(products) != 1 {
		t.Fatalf("expected one public product, got %d", len(products))
	}

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/admin/products", nil), cookies...)
	name, data := srv.render.last(t)
	if rr.Code != http.StatusOK || name != "admin_products.html" {
		t.Fatalf("unexpected product page %d %s", rr.Code, name)
	}
	if data["controls"] == nil {
		t.Fatal("expected product page editor controls")
	}

	rr = srv.do(httptest.NewRequest(http.MethodDelete, "/admin/api/products/"+id, nil), cookies...)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d", rr.Code)
	}
	rr = srv.do(httptest.NewRequest(http.MethodDelete, "/admin/api/products/"+id, nil), cookies...)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected deleting twice to be 404, got %d", rr.Code)
	}
}
