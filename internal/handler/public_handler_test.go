package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/service"
	"github.com/kalagasite/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type failingGetStore struct {
	store.Store
}

func (s failingGetStore) Get(context.Context, string, string) (content.Tree, error) {
	return nil, store.ErrPermission
}

func TestShowSectionPageFallsBackToDefaults(t *testing.T) {
	for _, st := range []store.Store{store.NewMemoryStore(), failingGetStore{Store: store.NewMemoryStore()}} {
		srv := newTestServer(t, st, nil)

		rr := srv.do(httptest.NewRequest(http.MethodGet, "/about", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		name, data := srv.render.last(t)
		if name != "about.html" || data["active"] != "about" {
			t.Fatalf("unexpected render %s active=%v", name, data["active"])
		}
		doc := data["content"].(content.Tree)
		if got, _ := content.Lookup(doc, "hero.title"); got != "About Dr. KVGS Murthy" {
			t.Fatalf("expected default hero title, got %v", got)
		}
	}
}

func TestShowSectionPageRendersAbsentListsEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	if err := st.Set(context.Background(), "settings", "about", content.Tree{
		"hero":         map[string]any{"title": "Stored title"},
		"professional": map[string]any{"title": "Profile"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := newTestServer(t, st, nil)

	srv.do(httptest.NewRequest(http.MethodGet, "/about", nil))
	_, data := srv.render.last(t)
	doc := data["content"].(content.Tree)
	if got, _ := content.Lookup(doc, "hero.title"); got != "Stored title" {
		t.Fatalf("expected stored title, got %v", got)
	}
	if got, _ := content.Lookup(doc, "professional.position"); got == "" {
		t.Fatal("expected missing scalar fields to come from defaults")
	}
	quals, ok := content.Lookup(doc, "professional.qualifications")
	if !ok || len(quals.([]any)) != 0 {
		t.Fatalf("expected absent qualifications to render empty, got %v", quals)
	}
}

func TestServicesPageOrdersCategories(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	srv.do(httptest.NewRequest(http.MethodGet, "/services", nil))
	_, data := srv.render.last(t)

	groups := data["categories"].([]contentGroup)
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	if strings.Join(keys, ",") != "wellness,chronic,specialized,preventive" {
		t.Fatalf("unexpected category order %v", keys)
	}
}

func TestGetContentAPI(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/api/content/social-services", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeJSON(t, rr)
	if body["section"] != "social-services" {
		t.Fatalf("unexpected section %v", body["section"])
	}
	if got, _ := content.Lookup(body["content"].(map[string]any), "hero.title"); got != "Social Services" {
		t.Fatalf("unexpected title %v", got)
	}

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/api/content/blog", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown section, got %d", rr.Code)
	}
}

func TestSubmitContactAPI(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := srv.do(jsonRequest(t, http.MethodPost, "/api/contact", map[string]any{
		"name": "Jo Li", "email": "bad", "subject": "Hi", "message": "short",
	}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	fields := decodeJSON(t, rr)["fields"].(map[string]any)
	for _, key := range []string{"name", "email", "subject", "message"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected a %s error, got %v", key, fields)
		}
	}

	rr = srv.do(jsonRequest(t, http.MethodPost, "/api/contact", map[string]any{
		"name": "John Lee", "email": "john@example.com", "phone": "+91 73823 22942",
		"subject": "Consultation", "message": "I would like to book a visit.",
	}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rr.Code, rr.Body.String())
	}
	docs, _ := srv.store.List(context.Background(), content.ContactsCollection)
	if len(docs) != 1 {
		t.Fatalf("expected one stored submission, got %d", len(docs))
	}
	if got := testutil.ToFloat64(srv.metrics.ContactSubmissions.WithLabelValues("invalid")); got != 1 {
		t.Fatalf("expected one invalid submission metric, got %v", got)
	}
}

func TestSubmitContactForm(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	post := func(values url.Values) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return srv.do(req).Code
	}

	invalid := url.Values{"name": {"John"}, "email": {"john@example.com"}, "subject": {"Hello"}, "message": {"Nineteen characters"}}
	if code := post(invalid); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	_, data := srv.render.last(t)
	errs := data["errors"].(service.ValidationErrors)
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected name error, got %v", errs)
	}
	if _, ok := errs["message"]; !ok {
		t.Fatalf("expected message error for 19 characters, got %v", errs)
	}
	if data["form"].(service.ContactInput).Name != "John" {
		t.Fatal("expected the form to keep the entered values")
	}

	valid := url.Values{"name": {"John Lee"}, "email": {"john@example.com"}, "subject": {"Hello"}, "message": {"Twenty characters!!!"}}
	if code := post(valid); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	name, data := srv.render.last(t)
	if name != "contact.html" || data["submitted"] != true {
		t.Fatalf("expected confirmation, got %s %v", name, data["submitted"])
	}
	if data["form"].(service.ContactInput) != (service.ContactInput{}) {
		t.Fatal("expected the form to be cleared")
	}
}
