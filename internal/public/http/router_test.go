package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nkorchagin/datahub/internal/common/constants"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	datasetdomain "github.com/nkorchagin/datahub/internal/dataset/domain"
	datasetrepo "github.com/nkorchagin/datahub/internal/dataset/repository"
	"github.com/nkorchagin/datahub/internal/session"
	userdomain "github.com/nkorchagin/datahub/internal/user/domain"
	userrepo "github.com/nkorchagin/datahub/internal/user/repository"
)

type mockDatasetRepo struct {
	listRecentFunc func(ctx context.Context, limit int) ([]datasetdomain.Dataset, error)
}

func (m *mockDatasetRepo) Filter(ctx context.Context, criteria datasetrepo.Criteria) ([]datasetdomain.Dataset, error) {
	return nil, nil
}

func (m *mockDatasetRepo) ListRecent(ctx context.Context, limit int) ([]datasetdomain.Dataset, error) {
	if m.listRecentFunc != nil {
		return m.listRecentFunc(ctx, limit)
	}
	return nil, nil
}

type mockUserRepo struct {
	findByIDFunc func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func setupIndex(t *testing.T) (*http.ServeMux, *mockDatasetRepo, *mockUserRepo) {
	t.Helper()

	datasets := &mockDatasetRepo{}
	users := &mockUserRepo{}
	log, _ := logger.New("", "test", "info")

	renderer, err := web.NewRenderer(log)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	mux := http.NewServeMux()
	NewHandler(datasets, users, renderer, log).Register(mux)
	return mux, datasets, users
}

func TestIndex_ShowsRecentDatasets(t *testing.T) {
	mux, datasets, _ := setupIndex(t)

	datasets.listRecentFunc = func(ctx context.Context, limit int) ([]datasetdomain.Dataset, error) {
		if limit != recentDatasetsLimit {
			t.Errorf("expected limit %d, got %d", recentDatasetsLimit, limit)
		}
		return []datasetdomain.Dataset{
			{ID: "ds-1", Title: "Global temperatures", Category: "climate", CreatedAt: time.Now()},
		}, nil
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Global temperatures") {
		t.Error("expected dataset title in the page")
	}
	if !strings.Contains(body, "Sign up") {
		t.Error("expected anonymous nav to offer signup")
	}
}

func TestIndex_AuthenticatedShowsName(t *testing.T) {
	mux, _, users := setupIndex(t)

	users.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{
			ID:      id,
			Profile: userdomain.Profile{Name: "Ada", Surname: "Lovelace"},
		}, nil
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(r.Context(), constants.SessionKey, session.Session{
		UserID:    "user-123",
		CSRFToken: "token",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r.WithContext(ctx))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Ada Lovelace") {
		t.Error("expected display name in the nav")
	}
	if !strings.Contains(body, "Log out") {
		t.Error("expected authenticated nav to offer logout")
	}
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	mux, _, _ := setupIndex(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Not found") {
		t.Error("expected not found page")
	}
}

func TestIndex_StoreErrorStillRenders(t *testing.T) {
	mux, datasets, _ := setupIndex(t)

	datasets.listRecentFunc = func(ctx context.Context, limit int) ([]datasetdomain.Dataset, error) {
		return nil, context.DeadlineExceeded
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("a dataset store failure must not break the home page, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No datasets yet") {
		t.Error("expected empty state")
	}
}
