package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkorchagin/datahub/internal/common/clock"
	commoncrypto "github.com/nkorchagin/datahub/internal/common/crypto"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/notepad/domain"
	notepadrepo "github.com/nkorchagin/datahub/internal/notepad/repository"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
)

// ErrNotFound covers both a missing notepad and one owned by another user;
// callers cannot tell the two apart.
var ErrNotFound = errors.New("notepad not found")

type NotepadService struct {
	repo        notepadrepo.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

type Deps struct {
	Repo        notepadrepo.Repository
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

func NewNotepadService(deps Deps) *NotepadService {
	return &NotepadService{
		repo:        deps.Repo,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		log:         deps.Log,
	}
}

func (s *NotepadService) Create(ctx context.Context, userID, title, body string) (domain.Notepad, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Notepad{}, fmt.Errorf("failed to generate notepad id: %w", err)
	}

	now := s.clock.Now()
	notepad := domain.Notepad{
		ID:        domain.ID(id),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, notepad); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "notepad_create_failed",
		}).Errorf("notepad create failed: %v", err)
		return domain.Notepad{}, err
	}

	metrics.NotepadOperationsTotal.WithLabelValues("create").Inc()
	return notepad, nil
}

func (s *NotepadService) Get(ctx context.Context, userID string, id domain.ID) (domain.Notepad, error) {
	notepad, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return domain.Notepad{}, err
	}
	return notepad, nil
}

func (s *NotepadService) List(ctx context.Context, userID string) ([]domain.Notepad, error) {
	notepads, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "notepad_list_failed",
		}).Errorf("notepad list failed: %v", err)
		return nil, err
	}
	return notepads, nil
}

func (s *NotepadService) Update(ctx context.Context, userID string, id domain.ID, title, body string) (domain.Notepad, error) {
	notepad, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return domain.Notepad{}, err
	}

	notepad.Title = title
	notepad.Body = body
	notepad.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, notepad); err != nil {
		if errors.Is(err, notepadrepo.ErrNotepadNotFound) {
			return domain.Notepad{}, ErrNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"notepad_id": string(id),
			"action":     "notepad_update_failed",
		}).Errorf("notepad update failed: %v", err)
		return domain.Notepad{}, err
	}

	metrics.NotepadOperationsTotal.WithLabelValues("update").Inc()
	return notepad, nil
}

func (s *NotepadService) Delete(ctx context.Context, userID string, id domain.ID) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, notepadrepo.ErrNotepadNotFound) {
			return ErrNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"notepad_id": string(id),
			"action":     "notepad_delete_failed",
		}).Errorf("notepad delete failed: %v", err)
		return err
	}

	metrics.NotepadOperationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *NotepadService) fetchOwned(ctx context.Context, userID string, id domain.ID) (domain.Notepad, error) {
	notepad, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, notepadrepo.ErrNotepadNotFound) {
			return domain.Notepad{}, ErrNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"notepad_id": string(id),
			"action":     "notepad_fetch_failed",
		}).Errorf("notepad fetch failed: %v", err)
		return domain.Notepad{}, err
	}

	if notepad.UserID != userID {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"notepad_id": string(id),
			"action":     "notepad_not_owner",
		}).Warn("notepad access denied: not owner")
		return domain.Notepad{}, ErrNotFound
	}

	return notepad, nil
}
