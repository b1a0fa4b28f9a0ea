package answers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/internal/shared"
)

// Repository provides answer persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Answer, error)
	ListByContent(ctx context.Context, contentID string) ([]Answer, error)
	Create(ctx context.Context, answer Answer) error
	Delete(ctx context.Context, id string) error
	DeleteByRoom(ctx context.Context, roomID string) error
	CountByContent(ctx context.Context, contentID string) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const answerColumns = `id, content_id, room_id, creator_id, body, created_at`

func (r *repository) Get(ctx context.Context, id string) (*Answer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = $1`, id)
	answer, err := scanAnswer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("answers: get: %w", err)
	}
	return answer, nil
}

func (r *repository) ListByContent(ctx context.Context, contentID string) ([]Answer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+answerColumns+` FROM answers WHERE content_id = $1 ORDER BY created_at`, contentID)
	if err != nil {
		return nil, fmt.Errorf("answers: list: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("answers: scan: %w", err)
		}
		out = append(out, *answer)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, answer Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (id, content_id, room_id, creator_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		answer.ID, answer.ContentID, answer.RoomID, answer.CreatorID, answer.Body, answer.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: already answered", shared.ErrDuplicate)
		}
		return fmt.Errorf("answers: create: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("answers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByRoom(ctx context.Context, roomID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("answers: delete by room: %w", err)
	}
	return nil
}

func (r *repository) CountByContent(ctx context.Context, contentID string) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM answers WHERE content_id = $1`, contentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("answers: count: %w", err)
	}
	return count, nil
}

func scanAnswer(row pgx.Row) (*Answer, error) {
	var a Answer
	if err := row.Scan(&a.ID, &a.ContentID, &a.RoomID, &a.CreatorID, &a.Body, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
