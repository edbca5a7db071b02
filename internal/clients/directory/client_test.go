package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/contacts"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/httpx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetchPeopleDecodesSnapshot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != FullListingPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"uuid":"7b0f3a52-3f3c-4b52-9d4e-0f6c0a1f2b11","firstName":"Ada","lastName":"Lovelace","company":null,
			 "contactInfos":[
				{"uuid":"0d7a6f7e-8c3b-4a2e-9a55-1c2d3e4f5a61","type":"Location","value":"London"},
				{"uuid":"1d7a6f7e-8c3b-4a2e-9a55-1c2d3e4f5a61","type":0,"value":"555-0001"}
			 ]},
			{"uuid":"8b0f3a52-3f3c-4b52-9d4e-0f6c0a1f2b11","firstName":"Bob","lastName":"B","contactInfos":[]}
		]`))
	})

	people, err := c.FetchPeople(context.Background())
	if err != nil {
		t.Fatalf("FetchPeople: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d", len(people))
	}
	infos := people[0].ContactInfos
	if len(infos) != 2 || infos[0].Type != contacts.ContactTypeLocation || infos[1].Type != contacts.ContactTypePhone {
		t.Fatalf("unexpected contact infos: %+v", infos)
	}
}

func TestFetchPeopleNullIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	people, err := c.FetchPeople(context.Background())
	if err != nil {
		t.Fatalf("FetchPeople: %v", err)
	}
	if people == nil || len(people) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", people)
	}
}

func TestFetchPeopleFailures(t *testing.T) {
	cases := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, http.StatusNotFound},
		{"server error", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", http.StatusBadGateway) }, http.StatusBadGateway},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"not":"a list"}`)) }, 0},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			people, err := c.FetchPeople(context.Background())
			if err == nil {
				t.Fatalf("expected error, got %d people", len(people))
			}
			if people != nil {
				t.Fatalf("no partial snapshot may be returned")
			}
			var se *StatusError
			if tc.wantStatus != 0 {
				if !errors.As(err, &se) || se.StatusCode != tc.wantStatus {
					t.Fatalf("expected StatusError %d, got %v", tc.wantStatus, err)
				}
				if !httpx.IsTransient(err) {
					t.Fatalf("status %d should classify as transient", tc.wantStatus)
				}
			} else if errors.As(err, &se) {
				t.Fatalf("decode failure should not be a StatusError: %v", err)
			}
		})
	}
}

func TestFetchPeopleUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base, Timeout: time.Second}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.FetchPeople(context.Background()); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "localhost:8081", "://nope"} {
		if _, err := NewClient(Config{BaseURL: raw}, logger.Nop()); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
