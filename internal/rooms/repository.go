package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/internal/shared"
)

// Repository provides room persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, req ListRoomsRequest) ([]Room, int, error)
	Create(ctx context.Context, room Room) error
	Update(ctx context.Context, room Room) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const roomColumns = `id, name, description, owner_id, closed, moderators, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (*Room, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("rooms: get: %w", err)
	}
	return room, nil
}

func (r *repository) List(ctx context.Context, req ListRoomsRequest) ([]Room, int, error) {
	where := ``
	args := []any{}
	if req.OwnerID != "" {
		where = ` WHERE owner_id = $1`
		args = append(args, req.OwnerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("rooms: count: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := `SELECT ` + roomColumns + ` FROM rooms` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("rooms: list: %w", err)
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("rooms: scan: %w", err)
		}
		out = append(out, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, room Room) error {
	mods, err := json.Marshal(room.Moderators)
	if err != nil {
		return fmt.Errorf("rooms: marshal moderators: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO rooms (id, name, description, owner_id, closed, moderators, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		room.ID, room.Name, room.Description, room.OwnerID, room.Closed, mods, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("rooms: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, room Room) error {
	mods, err := json.Marshal(room.Moderators)
	if err != nil {
		return fmt.Errorf("rooms: marshal moderators: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms SET name = $2, description = $3, closed = $4, moderators = $5, updated_at = $6 WHERE id = $1`,
		room.ID, room.Name, room.Description, room.Closed, mods, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("rooms: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rooms: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanRoom(row pgx.Row) (*Room, error) {
	var room Room
	var mods []byte
	if err := row.Scan(&room.ID, &room.Name, &room.Description, &room.OwnerID, &room.Closed, &mods, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	if len(mods) > 0 {
		if err := json.Unmarshal(mods, &room.Moderators); err != nil {
			return nil, err
		}
	}
	return &room, nil
}
