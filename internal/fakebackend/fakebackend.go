// Package fakebackend serves an in-memory copy of the challenge REST API for tests.
package fakebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Call records one request received by the backend.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

// Challenge is a stored active challenge.
type Challenge struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Progress    *float64 `json:"progress,omitempty"`
	Duration    int      `json:"duration"`
}

// LastChallenge is a stored completed challenge.
type LastChallenge struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Retrospection string `json:"retrospection"`
	Assessment    string `json:"assessment"`
}

// Backend is an in-memory implementation of /users, /challenges and /last-challenges.
type Backend struct {
	mu             sync.Mutex
	nextUserID     int64
	nextID         int64
	users          map[string]int64
	challenges     []Challenge
	lastChallenges []LastChallenge
	calls          []Call
	failures       map[string]int

	assessment string
	today      time.Time

	server *httptest.Server
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		nextUserID: 1,
		nextID:     1,
		users:      map[string]int64{},
		failures:   map[string]int{},
		assessment: "잘 해냈어요!",
		today:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.server.URL
}

// Client returns an HTTP client for the backend.
func (b *Backend) Client() *http.Client {
	return b.server.Client()
}

// SetAssessment sets the assessment returned for completed challenges.
func (b *Backend) SetAssessment(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assessment = text
}

// SetUserID makes the next registered user receive id.
func (b *Backend) SetUserID(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextUserID = id
}

// AddChallenge stores a challenge directly and returns its id.
func (b *Backend) AddChallenge(c Challenge) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == 0 {
		c.ID = b.nextID
		b.nextID++
	}
	b.challenges = append(b.challenges, c)
	return c.ID
}

// AddLastChallenge stores a completed challenge directly.
func (b *Backend) AddLastChallenge(l LastChallenge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastChallenges = append(b.lastChallenges, l)
}

// FailNext makes the next n requests matching "METHOD /prefix" answer 500.
func (b *Backend) FailNext(route string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = n
}

// Calls returns a copy of the recorded requests.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount counts recorded requests with the given method and path.
func (b *Backend) CallCount(method, path string) int {
	count := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", b.handleLogin)
	mux.HandleFunc("POST /challenges", b.handleCreateChallenge)
	mux.HandleFunc("GET /challenges/{userId}", b.handleListChallenges)
	mux.HandleFunc("DELETE /challenges/{id}", b.handleDeleteChallenge)
	mux.HandleFunc("POST /last-challenges", b.handleCreateLastChallenge)
	mux.HandleFunc("GET /last-challenges/{userId}", b.handleListLastChallenges)
	return b.record(mux)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			call.Body = body
		}
		b.mu.Lock()
		b.calls = append(b.calls, call)
		fail := b.shouldFail(r.Method, r.URL.Path)
		b.mu.Unlock()
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, withBody(r, call.Body))
	})
}

func (b *Backend) shouldFail(method, path string) bool {
	for route, n := range b.failures {
		if n <= 0 {
			continue
		}
		prefix, ok := strings.CutPrefix(route, method+" ")
		if !ok || !strings.HasPrefix(path, prefix) {
			continue
		}
		b.failures[route] = n - 1
		return true
	}
	return false
}

type bodyKey struct{}

func withBody(r *http.Request, body map[string]any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, body))
}

func bodyOf(r *http.Request) map[string]any {
	body, _ := r.Context().Value(bodyKey{}).(map[string]any)
	return body
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, _ := bodyOf(r)["username"].(string)
	if username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	id, ok := b.users[username]
	if !ok {
		id = b.nextUserID
		b.nextUserID++
		b.users[username] = id
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "username": username})
}

func (b *Backend) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	c := Challenge{
		UserID:      int64(number(body["userId"])),
		Title:       str(body["title"]),
		Description: str(body["description"]),
		Duration:    int(number(body["duration"])),
	}
	c.ID = b.AddChallenge(c)
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	out := []Challenge{}
	for _, c := range b.challenges {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.challenges {
		if c.ID == id {
			b.challenges = append(b.challenges[:i], b.challenges[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (b *Backend) handleCreateLastChallenge(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	challengeID := int64(number(body["challengeId"]))
	b.mu.Lock()
	idx := -1
	for i, c := range b.challenges {
		if c.ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	found := b.challenges[idx]
	l := LastChallenge{
		ID:            found.ID,
		UserID:        int64(number(body["userId"])),
		Title:         found.Title,
		Description:   found.Description,
		StartDate:     b.today.AddDate(0, 0, -found.Duration).Format("2006-01-02"),
		EndDate:       b.today.Format("2006-01-02"),
		Retrospection: str(body["retrospection"]),
		Assessment:    b.assessment,
	}
	b.lastChallenges = append(b.lastChallenges, l)
	b.challenges = append(b.challenges[:idx], b.challenges[idx+1:]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, l)
}

func (b *Backend) handleListLastChallenges(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	out := []LastChallenge{}
	for _, l := range b.lastChallenges {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
