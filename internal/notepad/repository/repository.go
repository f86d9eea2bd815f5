package repository

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/nkorchagin/datahub/internal/notepad/domain"
)

var ErrNotepadNotFound = errors.New("notepad not found")

type Repository interface {
	Create(ctx context.Context, notepad domain.Notepad) error
	FindByID(ctx context.Context, id domain.ID) (domain.Notepad, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Notepad, error)
	Update(ctx context.Context, notepad domain.Notepad) error
	Delete(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, notepad domain.Notepad) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO notepads (id, user_id, title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(notepad.ID),
		notepad.UserID,
		notepad.Title,
		notepad.Body,
		notepad.CreatedAt,
		notepad.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notepad: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Notepad, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, user_id, title, body, created_at, updated_at FROM notepads WHERE id = $1`,
		string(id),
	)

	var n domain.Notepad
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notepad{}, ErrNotepadNotFound
		}
		return domain.Notepad{}, fmt.Errorf("failed to find notepad: %w", err)
	}

	return n, nil
}

func (r *PgRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Notepad, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, title, body, created_at, updated_at
		 FROM notepads WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notepads: %w", err)
	}
	defer rows.Close()

	var notepads []domain.Notepad
	for rows.Next() {
		var n domain.Notepad
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notepad: %w", err)
		}
		notepads = append(notepads, n)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return notepads, nil
}

func (r *PgRepository) Update(ctx context.Context, notepad domain.Notepad) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE notepads SET title = $1, body = $2, updated_at = $3 WHERE id = $4`,
		notepad.Title,
		notepad.Body,
		notepad.UpdatedAt,
		string(notepad.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update notepad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotepadNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notepads WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete notepad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotepadNotFound
	}
	return nil
}
