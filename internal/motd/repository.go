package motd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/internal/shared"
)

// Repository provides motd persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Motd, error)
	List(ctx context.Context, roomID string) ([]Motd, error)
	Create(ctx context.Context, m Motd) error
	Update(ctx context.Context, m Motd) error
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

const motdColumns = `id, room_id, audience, title, body, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (*Motd, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+motdColumns+` FROM motds WHERE id = $1`, id)
	m, err := scanMotd(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("motd: get: %w", err)
	}
	return m, nil
}

// List returns global notices plus, when roomID is set, the room's own.
func (r *repository) List(ctx context.Context, roomID string) ([]Motd, error) {
	query := `SELECT ` + motdColumns + ` FROM motds WHERE audience <> 'ROOM'`
	args := []any{}
	if roomID != "" {
		query += ` OR room_id = $1`
		args = append(args, roomID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("motd: list: %w", err)
	}
	defer rows.Close()

	var out []Motd
	for rows.Next() {
		m, err := scanMotd(rows)
		if err != nil {
			return nil, fmt.Errorf("motd: scan: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Motd) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO motds (id, room_id, audience, title, body, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)`,
		m.ID, m.RoomID, m.Audience, m.Title, m.Body, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("motd: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, m Motd) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE motds SET title = $2, body = $3, updated_at = $4 WHERE id = $1`,
		m.ID, m.Title, m.Body, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("motd: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM motds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("motd: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByRoom(ctx context.Context, roomID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM motds WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("motd: delete by room: %w", err)
	}
	return nil
}

func scanMotd(row pgx.Row) (*Motd, error) {
	var m Motd
	var roomID *string
	if err := row.Scan(&m.ID, &roomID, &m.Audience, &m.Title, &m.Body, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if roomID != nil {
		m.RoomID = *roomID
	}
	return &m, nil
}
