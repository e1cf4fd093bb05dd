package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/service"
)

func seedSubmission(t *testing.T, srv *testServer, subject string) string {
	t.Helper()
	submission, err := srv.api.contacts.Submit(context.Background(), service.ContactInput{
		Name:    "John Lee",
		Email:   "john@example.com",
		Subject: subject,
		Message: "I would like to book a consultation.",
	})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return submission.ID
}

func TestBulkDeleteReportsVanishedSubmission(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)
	a := seedSubmission(t, srv, "First question")
	b := seedSubmission(t, srv, "Second question")

	// 另一个会话先删掉了 b
	if err := srv.store.Delete(context.Background(), content.ContactsCollection, b); err != nil {
		t.Fatalf("delete b: %v", err)
	}

	rr := srv.do(jsonRequest(t, http.MethodPost, "/admin/api/contacts/bulk-delete", map[string]any{"ids": []string{a, b}}), cookies...)
	if rr.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d %s", rr.Code, rr.Body.String())
	}
	body := decodeJSON(t, rr)
	deleted := body["deleted"].([]any)
	if len(deleted) != 1 || deleted[0] != a {
		t.Fatalf("expected only %s deleted, got %v", a, deleted)
	}
	failed := body["failed"].(map[string]any)
	if failed[b] != "Submission no longer exists. Refresh the list and try again." {
		t.Fatalf("unexpected failure for %s: %v", b, failed[b])
	}

	docs, _ := srv.store.List(context.Background(), content.ContactsCollection)
	if len(docs) != 0 {
		t.Fatalf("expected no submissions left, got %d", len(docs))
	}
}

func TestDeleteSubmissionMissingIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)

	rr := srv.do(httptest.NewRequest(http.MethodDelete, "/admin/api/contacts/missing", nil), cookies...)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSubmissionsNewestFirst(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)
	seedSubmission(t, srv, "Older message")
	seedSubmission(t, srv, "Newer message")

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/admin/api/contacts", nil), cookies...)
	list := decodeJSON(t, rr)["submissions"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected two submissions, got %d", len(list))
	}
	t0 := list[0].(map[string]any)["timestamp"].(string)
	t1 := list[1].(map[string]any)["timestamp"].(string)
	if t0 < t1 {
		t.Fatalf("submissions not ordered newest first: %s before %s", t0, t1)
	}

	srv.do(httptest.NewRequest(http.MethodGet, "/admin/contact-submissions", nil), cookies...)
	name, data := srv.render.last(t)
	if name != "submissions.html" || len(data["submissions"].([]service.ContactSubmission)) != 2 {
		t.Fatalf("unexpected submissions page %s", name)
	}
}
