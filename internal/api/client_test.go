package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mercato-dev/mercato/internal/session"
	"github.com/mercato-dev/mercato/internal/store"
)

// newTestClient wires a real session (sqlite in a temp dir) to a client
// pointed at the given handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()

	kv, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	sess, err := session.Load(kv, nil)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(server.URL, sess), sess
}

func TestDo_BearerAttachment(t *testing.T) {
	var got string
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	})
	sess.Login("T", session.User{Email: "a@b.com"})

	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/products/"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "Bearer T" {
		t.Errorf("expected 'Bearer T', got %q", got)
	}
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	})

	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/products/"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestDo_CallerHeadersWin(t *testing.T) {
	var auth, contentType, email string
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		email = r.Header.Get("X-User-Email")
		w.Write([]byte("{}"))
	})
	sess.Login("session-token", session.User{Email: "session@b.com"})
	sess.SetOrderEmail("slot@b.com")

	header := http.Header{}
	header.Set("Authorization", "Bearer caller-token")
	header.Set("Content-Type", "text/plain")
	header.Set("X-User-Email", "caller@b.com")

	err := client.Do(context.Background(), Request{
		Method: "POST",
		Path:   "/orders/",
		Header: header,
		Body:   map[string]any{"items": []any{}},
	}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if auth != "Bearer caller-token" {
		t.Errorf("caller Authorization must win, got %q", auth)
	}
	if contentType != "text/plain" {
		t.Errorf("caller Content-Type must win, got %q", contentType)
	}
	if email != "caller@b.com" {
		t.Errorf("caller X-User-Email must win, got %q", email)
	}
}

func TestDo_ContentTypeOnlyWithBody(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Content-Type")
		w.Write([]byte("{}"))
	})

	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/products/"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "" {
		t.Errorf("bodyless request must not get a content type, got %q", got)
	}

	err := client.Do(context.Background(), Request{
		Method: "POST",
		Path:   "/checkout/validate",
		Body:   map[string]any{"items": []any{}},
	}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "application/json" {
		t.Errorf("expected application/json for JSON body, got %q", got)
	}
}

func TestDo_PreEncodedBodyKeepsContentType(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Content-Type")
		w.Write([]byte("{}"))
	})

	header := http.Header{}
	header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	err := client.Do(context.Background(), Request{
		Method: "POST",
		Path:   "/products/",
		Header: header,
		Body:   strings.NewReader("--xyz--"),
	}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "multipart/form-data; boundary=xyz" {
		t.Errorf("pre-encoded content type must survive, got %q", got)
	}
}

func TestDo_LegacyHeaderOnlyWhenSlotSet(t *testing.T) {
	var got string
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-User-Email")
		w.Write([]byte("{}"))
	})

	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/orders/my"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "" {
		t.Errorf("empty slot must not produce a header, got %q", got)
	}

	sess.SetOrderEmail("legacy@b.com")
	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/orders/my"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got != "legacy@b.com" {
		t.Errorf("expected legacy@b.com, got %q", got)
	}
}

func TestDo_RequestID(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte("{}"))
	})

	if err := client.Do(context.Background(), Request{Method: "GET", Path: "/products/"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if got == "" {
		t.Error("expected an X-Request-ID to be attached")
	}
}

func TestDo_NoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	out := map[string]any{"sentinel": true}
	if err := client.Do(context.Background(), Request{Method: "DELETE", Path: "/auth/me"}, &out); err != nil {
		t.Fatalf("204 must not be decoded as JSON: %v", err)
	}
	if !out["sentinel"].(bool) {
		t.Error("204 must leave out untouched")
	}
}

func TestDo_DecodesJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7}`))
	})

	var out struct {
		ID int64 `json:"id"`
	}
	if err := client.Do(context.Background(), Request{Method: "POST", Path: "/orders/", Body: map[string]any{}}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out.ID != 7 {
		t.Errorf("expected id 7, got %d", out.ID)
	}
}

func TestDo_ErrorCarriesRawBody(t *testing.T) {
	body := `{"detail":"Invalid credentials"}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(body))
	})

	err := client.Do(context.Background(), Request{Method: "POST", Path: "/auth/login", Body: map[string]any{}}, nil)
	if err == nil {
		t.Fatal("expected an error for 401")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != 401 {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Error() != body {
		t.Errorf("expected raw body as message, got %q", apiErr.Error())
	}
}

func TestDo_ErrorEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.Do(context.Background(), Request{Method: "GET", Path: "/products/"}, nil)
	if err == nil {
		t.Fatal("expected an error for 502")
	}
	if err.Error() != "HTTP 502" {
		t.Errorf("expected generic 'HTTP 502', got %q", err.Error())
	}
}
