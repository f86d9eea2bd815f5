package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/nkorchagin/datahub/internal/dataset/domain"
)

// Criteria is the sanitized filter set forwarded to the store. Only fields
// named here ever reach the query; arbitrary request keys never do.
type Criteria struct {
	Query    string
	Title    string
	Category string
	License  string
	Tag      string
	Limit    int
}

type Repository interface {
	Filter(ctx context.Context, criteria Criteria) ([]domain.Dataset, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Dataset, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const selectColumns = `SELECT id, title, description, category, license, tags, author, created_at FROM datasets`

func (r *PgRepository) Filter(ctx context.Context, criteria Criteria) ([]domain.Dataset, error) {
	where, args := BuildWhere(criteria)

	query := selectColumns
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, criteria.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter datasets: %w", err)
	}
	defer rows.Close()

	return scanDatasets(rows)
}

func (r *PgRepository) ListRecent(ctx context.Context, limit int) ([]domain.Dataset, error) {
	rows, err := r.pool.Query(ctx, selectColumns+" ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	return scanDatasets(rows)
}

// BuildWhere turns the criteria into a parameterized WHERE clause. Query and
// Title match case-insensitively against title (Query also against
// description); Category and License match exactly; Tag must be contained in
// the tags array.
func BuildWhere(criteria Criteria) (string, []any) {
	var clauses []string
	var args []any

	next := func() int { return len(args) + 1 }

	if criteria.Query != "" {
		pattern := "%" + criteria.Query + "%"
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", next(), next()))
		args = append(args, pattern)
	}
	if criteria.Title != "" {
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", next()))
		args = append(args, "%"+criteria.Title+"%")
	}
	if criteria.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", next()))
		args = append(args, criteria.Category)
	}
	if criteria.License != "" {
		clauses = append(clauses, fmt.Sprintf("license = $%d", next()))
		args = append(args, criteria.License)
	}
	if criteria.Tag != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(tags)", next()))
		args = append(args, criteria.Tag)
	}

	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDatasets(rows rowScanner) ([]domain.Dataset, error) {
	var datasets []domain.Dataset
	for rows.Next() {
		var d domain.Dataset
		err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Category, &d.License, &d.Tags, &d.Author, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return datasets, nil
}
