package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type echo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

type captured struct {
	method      string
	path        string
	contentType string
	body        map[string]any
}

func TestRequestSendsJSONBody(t *testing.T) {
	seen := make(chan captured, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got := captured{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		seen <- got
		_, _ = w.Write([]byte(`{"id":7,"name":"alice"}`))
	})

	out, err := Request[echo](context.Background(), c, http.MethodPost, "users", map[string]any{"username": "alice"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if out.ID != 7 || out.Name != "alice" {
		t.Fatalf("unexpected response %+v", out)
	}
	got := <-seen
	if got.method != http.MethodPost || got.path != "/users" || got.contentType != "application/json" {
		t.Fatalf("unexpected request %s %s (%s)", got.method, got.path, got.contentType)
	}
	if got.body["username"] != "alice" {
		t.Fatalf("unexpected body %v", got.body)
	}
}

func TestRequestWithoutBodyHasNoContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("expected no content type, got %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id header")
		}
		_, _ = w.Write([]byte(`[]`))
	})
	out, err := Request[[]echo](context.Background(), c, http.MethodGet, "/challenges/7", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty list, got %v", out)
	}
}

func TestRequestInvalidResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	_, err := Request[echo](context.Background(), c, http.MethodGet, "users", nil)
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) || invalid.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected invalid response error, got %v", err)
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected errors.Is ErrInvalidResponse")
	}
}

func TestRequestDecodingError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-number"}`))
	})
	_, err := Request[echo](context.Background(), c, http.MethodGet, "users", nil)
	if !errors.Is(err, ErrDecoding) {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestRequestEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if _, err := Request[Empty](context.Background(), c, http.MethodDelete, "challenges/3", nil); err != nil {
		t.Fatalf("expected empty marker, got %v", err)
	}
	if _, err := Request[echo](context.Background(), c, http.MethodGet, "users", nil); !errors.Is(err, ErrDecoding) {
		t.Fatalf("expected decoding error for empty body, got %v", err)
	}
}

func TestRequestNoResponse(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`not json`))
	})
	if err := RequestNoResponse(context.Background(), c, http.MethodDelete, "challenges/3", nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	status.Store(http.StatusNotFound)
	if err := RequestNoResponse(context.Background(), c, http.MethodDelete, "challenges/3", nil); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	srv.Close()

	_, err = Request[echo](context.Background(), c, http.MethodGet, "users", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.Unwrap() == nil {
		t.Fatalf("expected network error with cause, got %v", err)
	}
}

func TestInvalidURL(t *testing.T) {
	if _, err := New("localhost", nil); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected invalid base url, got %v", err)
	}
	c, err := New("http://localhost:8080/", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := Request[echo](context.Background(), c, http.MethodGet, "%zz", nil); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected invalid url, got %v", err)
	}
	if _, err := c.endpoint("http://evil.example/users"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected absolute path to be rejected, got %v", err)
	}
	got, err := c.endpoint("last-challenges/7")
	if err != nil || got != "http://localhost:8080/last-challenges/7" {
		t.Fatalf("unexpected endpoint %q (%v)", got, err)
	}
}

func TestNewTrimsBaseURL(t *testing.T) {
	c, err := New("http://localhost:8080/", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := c.BaseURL(); got != "http://localhost:8080" {
		t.Fatalf("unexpected base url %q", got)
	}
}
