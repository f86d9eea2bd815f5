package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nkorchagin/datahub/internal/common/clock"
	"github.com/nkorchagin/datahub/internal/common/constants"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	"github.com/nkorchagin/datahub/internal/dataset/domain"
	datasetrepo "github.com/nkorchagin/datahub/internal/dataset/repository"
	"github.com/nkorchagin/datahub/internal/explore/service"
	"github.com/nkorchagin/datahub/internal/session"
)

type mockDatasetRepo struct {
	mu          sync.Mutex
	filterCalls []datasetrepo.Criteria
	filterFunc  func(ctx context.Context, criteria datasetrepo.Criteria) ([]domain.Dataset, error)
}

func (m *mockDatasetRepo) Filter(ctx context.Context, criteria datasetrepo.Criteria) ([]domain.Dataset, error) {
	m.mu.Lock()
	m.filterCalls = append(m.filterCalls, criteria)
	m.mu.Unlock()
	if m.filterFunc != nil {
		return m.filterFunc(ctx, criteria)
	}
	return nil, nil
}

func (m *mockDatasetRepo) ListRecent(ctx context.Context, limit int) ([]domain.Dataset, error) {
	return nil, nil
}

func (m *mockDatasetRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filterCalls)
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]session.Session)}
}

func (r *memorySessionRepo) Create(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.TokenHash] = s
	return nil
}

func (r *memorySessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return s, nil
}

func (r *memorySessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tokenHash)
	return nil
}

func (r *memorySessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func setupExplore(t *testing.T) (http.Handler, *mockDatasetRepo) {
	t.Helper()

	repo := &mockDatasetRepo{}
	log, _ := logger.New("", "test", "info")
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	sessions := session.NewManager(
		session.ManagerDeps{Repo: newMemorySessionRepo(), Clock: mockClock, Log: log},
		session.ManagerConfig{
			Secret:      "0123456789abcdef0123456789abcdef",
			SessionTTL:  constants.DefaultSessionTTL,
			RememberTTL: constants.DefaultRememberTTL,
		},
	)

	renderer, err := web.NewRenderer(log)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	mux := http.NewServeMux()
	NewHandler(service.NewExploreService(repo, log), sessions, renderer, log).Register(mux)

	return session.WithSession(sessions)(mux), repo
}

// establishSession loads the explore page and returns the session cookie and
// the CSRF token embedded in it.
func establishSession(t *testing.T, handler http.Handler) (*http.Cookie, string) {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/explore", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	body := w.Body.String()
	marker := `const csrfToken = "`
	idx := strings.Index(body, marker)
	if idx == -1 {
		t.Fatal("expected csrf token in explore page")
	}
	rest := body[idx+len(marker):]
	token := rest[:strings.Index(rest, `"`)]

	return cookie, token
}

func postQuery(handler http.Handler, cookie *http.Cookie, payload string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/explore", strings.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestExplore_PageRenders(t *testing.T) {
	handler, _ := setupExplore(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/explore?query=climate", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "climate") {
		t.Error("expected seeded query to appear in the page")
	}
}

func TestExplore_Query_MissingCSRF(t *testing.T) {
	handler, repo := setupExplore(t)

	cookie, _ := establishSession(t, handler)
	w := postQuery(handler, cookie, `{"query": "climate"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected json error body: %v", err)
	}
	if resp.Error != "CSRF validation failed" {
		t.Errorf("expected CSRF validation failed, got %q", resp.Error)
	}
	if repo.calls() != 0 {
		t.Error("no query may run before csrf validation passes")
	}
}

func TestExplore_Query_WrongCSRF(t *testing.T) {
	handler, repo := setupExplore(t)

	cookie, _ := establishSession(t, handler)
	w := postQuery(handler, cookie, `{"csrf_token": "forged", "query": "climate"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if repo.calls() != 0 {
		t.Error("no query may run with a forged csrf token")
	}
}

func TestExplore_Query_NoSession(t *testing.T) {
	handler, repo := setupExplore(t)

	w := postQuery(handler, nil, `{"csrf_token": "anything"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if repo.calls() != 0 {
		t.Error("no query may run without a session")
	}
}

func TestExplore_Query_MalformedBody(t *testing.T) {
	handler, repo := setupExplore(t)

	cookie, _ := establishSession(t, handler)
	w := postQuery(handler, cookie, `{not json`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if repo.calls() != 0 {
		t.Error("no query may run on a malformed body")
	}
}

func TestExplore_Query_Success(t *testing.T) {
	handler, repo := setupExplore(t)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.filterFunc = func(ctx context.Context, criteria datasetrepo.Criteria) ([]domain.Dataset, error) {
		return []domain.Dataset{{
			ID:        "ds-1",
			Title:     "Global temperatures",
			Category:  "climate",
			License:   "CC-BY-4.0",
			Tags:      []string{"weather"},
			Author:    "NOAA",
			CreatedAt: created,
		}}, nil
	}

	cookie, csrf := establishSession(t, handler)
	w := postQuery(handler, cookie, `{"csrf_token": "`+csrf+`", "query": "temperature", "category": "climate"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var results []domain.Wire
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("expected json array: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Global temperatures" {
		t.Errorf("unexpected results: %+v", results)
	}

	if repo.calls() != 1 {
		t.Fatalf("expected 1 filter call, got %d", repo.calls())
	}
	got := repo.filterCalls[0]
	if got.Query != "temperature" || got.Category != "climate" {
		t.Errorf("unexpected criteria: %+v", got)
	}
}

func TestExplore_Query_StripsUnknownKeys(t *testing.T) {
	handler, repo := setupExplore(t)

	cookie, csrf := establishSession(t, handler)
	payload := `{"csrf_token": "` + csrf + `", "query": "x", "owner_id": "1 OR 1=1", "limit": 99999}`
	w := postQuery(handler, cookie, payload)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	got := repo.filterCalls[0]
	if got.Limit != constants.DefaultExploreLimit {
		t.Errorf("client must not control the limit, got %d", got.Limit)
	}
	if got.Query != "x" || got.Title != "" || got.Tag != "" {
		t.Errorf("unexpected criteria: %+v", got)
	}
}

func TestExplore_Query_EmptyResultIsArray(t *testing.T) {
	handler, _ := setupExplore(t)

	cookie, csrf := establishSession(t, handler)
	w := postQuery(handler, cookie, `{"csrf_token": "`+csrf+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(strings.TrimSpace(w.Body.String()), "[") {
		t.Errorf("expected a json array, got %s", w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) == "null" {
		t.Error("empty result must encode as [], not null")
	}
}

func TestExplore_MethodNotAllowed(t *testing.T) {
	handler, _ := setupExplore(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/explore", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
