package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkorchagin/datahub/internal/common/clock"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/notepad/domain"
	notepadrepo "github.com/nkorchagin/datahub/internal/notepad/repository"
)

type mockNotepadRepo struct {
	createFunc       func(ctx context.Context, notepad domain.Notepad) error
	findByIDFunc     func(ctx context.Context, id domain.ID) (domain.Notepad, error)
	listByUserIDFunc func(ctx context.Context, userID string) ([]domain.Notepad, error)
	updateFunc       func(ctx context.Context, notepad domain.Notepad) error
	deleteFunc       func(ctx context.Context, id domain.ID) error
}

func (m *mockNotepadRepo) Create(ctx context.Context, notepad domain.Notepad) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notepad)
	}
	return nil
}

func (m *mockNotepadRepo) FindByID(ctx context.Context, id domain.ID) (domain.Notepad, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Notepad{}, notepadrepo.ErrNotepadNotFound
}

func (m *mockNotepadRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Notepad, error) {
	if m.listByUserIDFunc != nil {
		return m.listByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotepadRepo) Update(ctx context.Context, notepad domain.Notepad) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, notepad)
	}
	return nil
}

func (m *mockNotepadRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "note-123", nil
}

func setupNotepadService(t *testing.T) (*NotepadService, *mockNotepadRepo, *mockIDGenerator, *clock.MockClock) {
	_ = t
	repo := &mockNotepadRepo{}
	idGenerator := &mockIDGenerator{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	log, _ := logger.New("", "test", "info")

	svc := NewNotepadService(Deps{
		Repo:        repo,
		IDGenerator: idGenerator,
		Clock:       mockClock,
		Log:         log,
	})
	return svc, repo, idGenerator, mockClock
}

func TestNotepadService_Create(t *testing.T) {
	svc, repo, _, mockClock := setupNotepadService(t)

	var created domain.Notepad
	repo.createFunc = func(ctx context.Context, notepad domain.Notepad) error {
		created = notepad
		return nil
	}

	notepad, err := svc.Create(context.Background(), "user-1", "Shopping list", "milk")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if notepad.ID != "note-123" {
		t.Errorf("expected note-123, got %s", notepad.ID)
	}
	if created.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %s", created.UserID)
	}
	if !created.CreatedAt.Equal(mockClock.Now()) || !created.UpdatedAt.Equal(mockClock.Now()) {
		t.Error("expected timestamps from the clock")
	}
}

func TestNotepadService_Get_OwnershipEnforced(t *testing.T) {
	svc, repo, _, _ := setupNotepadService(t)

	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Notepad, error) {
		return domain.Notepad{ID: id, UserID: "someone-else"}, nil
	}

	_, err := svc.Get(context.Background(), "user-1", "note-123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("another user's notepad must look missing, got %v", err)
	}
}

func TestNotepadService_Get_Missing(t *testing.T) {
	svc, _, _, _ := setupNotepadService(t)

	_, err := svc.Get(context.Background(), "user-1", "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotepadService_Update(t *testing.T) {
	svc, repo, _, mockClock := setupNotepadService(t)

	createdAt := mockClock.Now().Add(-time.Hour)
	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Notepad, error) {
		return domain.Notepad{
			ID:        id,
			UserID:    "user-1",
			Title:     "Old",
			Body:      "old body",
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}, nil
	}

	var updated domain.Notepad
	repo.updateFunc = func(ctx context.Context, notepad domain.Notepad) error {
		updated = notepad
		return nil
	}

	notepad, err := svc.Update(context.Background(), "user-1", "note-123", "New", "new body")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if notepad.Title != "New" || notepad.Body != "new body" {
		t.Errorf("expected updated fields, got %+v", notepad)
	}
	if !updated.UpdatedAt.Equal(mockClock.Now()) {
		t.Error("expected updated_at to advance")
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Error("created_at must not change on update")
	}
}

func TestNotepadService_Update_NotOwner(t *testing.T) {
	svc, repo, _, _ := setupNotepadService(t)

	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Notepad, error) {
		return domain.Notepad{ID: id, UserID: "someone-else"}, nil
	}

	updateCalled := false
	repo.updateFunc = func(ctx context.Context, notepad domain.Notepad) error {
		updateCalled = true
		return nil
	}

	_, err := svc.Update(context.Background(), "user-1", "note-123", "New", "new body")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if updateCalled {
		t.Error("update must not run for another user's notepad")
	}
}

func TestNotepadService_Delete(t *testing.T) {
	svc, repo, _, _ := setupNotepadService(t)

	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Notepad, error) {
		return domain.Notepad{ID: id, UserID: "user-1"}, nil
	}

	var deleted domain.ID
	repo.deleteFunc = func(ctx context.Context, id domain.ID) error {
		deleted = id
		return nil
	}

	if err := svc.Delete(context.Background(), "user-1", "note-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "note-123" {
		t.Errorf("expected note-123 deleted, got %s", deleted)
	}
}

func TestNotepadService_Delete_Missing(t *testing.T) {
	svc, _, _, _ := setupNotepadService(t)

	err := svc.Delete(context.Background(), "user-1", "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotepadService_List(t *testing.T) {
	svc, repo, _, _ := setupNotepadService(t)

	repo.listByUserIDFunc = func(ctx context.Context, userID string) ([]domain.Notepad, error) {
		if userID != "user-1" {
			t.Errorf("expected user-1, got %s", userID)
		}
		return []domain.Notepad{{ID: "a"}, {ID: "b"}}, nil
	}

	notepads, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notepads) != 2 {
		t.Errorf("expected 2 notepads, got %d", len(notepads))
	}
}
