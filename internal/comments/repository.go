package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/internal/shared"
)

// Repository provides comment persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Comment, error)
	ListByRoom(ctx context.Context, roomID string) ([]Comment, error)
	Create(ctx context.Context, comment Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByRoom(ctx context.Context, roomID string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const commentColumns = `id, room_id, creator_id, body, created_at`

func (r *repository) Get(ctx context.Context, id string) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("comments: get: %w", err)
	}
	return comment, nil
}

func (r *repository) ListByRoom(ctx context.Context, roomID string) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+commentColumns+` FROM comments WHERE room_id = $1 ORDER BY created_at`, roomID)
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("comments: scan: %w", err)
		}
		out = append(out, *comment)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, comment Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, room_id, creator_id, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.RoomID, comment.CreatorID, comment.Body, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("comments: create: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByRoom(ctx context.Context, roomID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("comments: delete by room: %w", err)
	}
	return nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.RoomID, &c.CreatorID, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
