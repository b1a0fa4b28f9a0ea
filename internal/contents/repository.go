package contents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/internal/platform/db"
	"github.com/classpulse/classpulse/internal/shared"
)

// Repository provides content and content group persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Content, error)
	ListByRoom(ctx context.Context, roomID string) ([]Content, error)
	Create(ctx context.Context, content Content) error
	Update(ctx context.Context, content Content) error
	Delete(ctx context.Context, id string) error
	DeleteByRoom(ctx context.Context, roomID string) error

	GetGroup(ctx context.Context, id string) (*ContentGroup, error)
	ListGroupsByRoom(ctx context.Context, roomID string) ([]ContentGroup, error)
	GroupsForContent(ctx context.Context, contentID string) ([]ContentGroup, error)
	CreateGroup(ctx context.Context, group ContentGroup) error
	UpdateGroup(ctx context.Context, group ContentGroup) error
	DeleteGroup(ctx context.Context, id string) error
	DeleteGroupsByRoom(ctx context.Context, roomID string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contentColumns = `id, room_id, body, format, options, answerable, answers_published, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (*Content, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1`, id)
	content, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("contents: get: %w", err)
	}
	return content, nil
}

func (r *repository) ListByRoom(ctx context.Context, roomID string) ([]Content, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contentColumns+` FROM contents WHERE room_id = $1 ORDER BY created_at`, roomID)
	if err != nil {
		return nil, fmt.Errorf("contents: list: %w", err)
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("contents: scan: %w", err)
		}
		out = append(out, *content)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, content Content) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contents (id, room_id, body, format, options, answerable, answers_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		content.ID, content.RoomID, content.Body, content.Format, content.Options,
		content.Answerable, content.AnswersPublished, content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("contents: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, content Content) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contents SET body = $2, options = $3, answerable = $4, answers_published = $5, updated_at = $6 WHERE id = $1`,
		content.ID, content.Body, content.Options, content.Answerable, content.AnswersPublished, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("contents: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a content and scrubs it from every group's published list
// in the same transaction, so no group keeps a dangling reference.
func (r *repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("contents: delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx,
			`UPDATE content_groups SET published_content_ids = array_remove(published_content_ids, $1) WHERE $1 = ANY(published_content_ids)`,
			id); err != nil {
			return fmt.Errorf("contents: scrub group references: %w", err)
		}
		return nil
	})
}

func (r *repository) DeleteByRoom(ctx context.Context, roomID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM contents WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("contents: delete by room: %w", err)
	}
	return nil
}

const groupColumns = `id, room_id, name, published, published_content_ids, correct_options_published, created_at, updated_at`

func (r *repository) GetGroup(ctx context.Context, id string) (*ContentGroup, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM content_groups WHERE id = $1`, id)
	group, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("contents: get group: %w", err)
	}
	return group, nil
}

func (r *repository) ListGroupsByRoom(ctx context.Context, roomID string) ([]ContentGroup, error) {
	return r.queryGroups(ctx, `SELECT `+groupColumns+` FROM content_groups WHERE room_id = $1 ORDER BY created_at`, roomID)
}

func (r *repository) GroupsForContent(ctx context.Context, contentID string) ([]ContentGroup, error) {
	return r.queryGroups(ctx, `SELECT `+groupColumns+` FROM content_groups WHERE $1 = ANY(published_content_ids)`, contentID)
}

func (r *repository) queryGroups(ctx context.Context, query string, arg any) ([]ContentGroup, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("contents: query groups: %w", err)
	}
	defer rows.Close()

	var out []ContentGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("contents: scan group: %w", err)
		}
		out = append(out, *group)
	}
	return out, rows.Err()
}

func (r *repository) CreateGroup(ctx context.Context, group ContentGroup) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO content_groups (id, room_id, name, published, published_content_ids, correct_options_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		group.ID, group.RoomID, group.Name, group.Published, group.PublishedContentIDs,
		group.CorrectOptionsPublished, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("contents: create group: %w", err)
	}
	return nil
}

func (r *repository) UpdateGroup(ctx context.Context, group ContentGroup) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE content_groups SET name = $2, published = $3, published_content_ids = $4, correct_options_published = $5, updated_at = $6 WHERE id = $1`,
		group.ID, group.Name, group.Published, group.PublishedContentIDs, group.CorrectOptionsPublished, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("contents: update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteGroup(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM content_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("contents: delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteGroupsByRoom(ctx context.Context, roomID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM content_groups WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("contents: delete groups by room: %w", err)
	}
	return nil
}

func scanContent(row pgx.Row) (*Content, error) {
	var c Content
	if err := row.Scan(&c.ID, &c.RoomID, &c.Body, &c.Format, &c.Options, &c.Answerable, &c.AnswersPublished, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanGroup(row pgx.Row) (*ContentGroup, error) {
	var g ContentGroup
	if err := row.Scan(&g.ID, &g.RoomID, &g.Name, &g.Published, &g.PublishedContentIDs, &g.CorrectOptionsPublished, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
