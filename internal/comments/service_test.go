package comments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

type memoryRepo struct {
	comments map[string]Comment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{comments: make(map[string]Comment)}
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) ListByRoom(ctx context.Context, roomID string) ([]Comment, error) {
	out := make([]Comment, 0)
	for _, c := range r.comments {
		if c.RoomID == roomID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, comment Comment) error {
	r.comments[comment.ID] = comment
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *memoryRepo) DeleteByRoom(ctx context.Context, roomID string) error {
	for id, c := range r.comments {
		if c.RoomID == roomID {
			delete(r.comments, id)
		}
	}
	return nil
}

type fakeRoomLookup map[string]perm.Room

func (l fakeRoomLookup) Get(ctx context.Context, id string) (*perm.Room, error) {
	r, ok := l[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &r, nil
}

func newTestService(t *testing.T, repo Repository, rooms fakeRoomLookup) *Service {
	t.Helper()
	evaluator := perm.NewEvaluator(perm.Lookups{Rooms: rooms})
	return NewService(repo, evaluator)
}

func asUser(id string) context.Context {
	return perm.ContextWithPrincipal(context.Background(), perm.Principal{ID: id})
}

func lectureRooms() fakeRoomLookup {
	return fakeRoomLookup{
		"r1":   {ID: "r1", OwnerID: "teacher"},
		"shut": {ID: "shut", OwnerID: "teacher", Closed: true},
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := newTestService(t, newMemoryRepo(), lectureRooms())

	_, err := svc.Create(context.Background(), CreateCommentRequest{RoomID: "r1", Body: "hi"})
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestCreateRecordsCreator(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(t, repo, lectureRooms())

	comment, err := svc.Create(asUser("bob"), CreateCommentRequest{RoomID: "r1", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.CreatorID)

	stored, err := repo.Get(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Body)
}

func TestCreateDeniedInClosedRoom(t *testing.T) {
	svc := newTestService(t, newMemoryRepo(), lectureRooms())

	_, err := svc.Create(asUser("bob"), CreateCommentRequest{RoomID: "shut", Body: "hi"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	// The owner still reaches their own closed room.
	_, err = svc.Create(asUser("teacher"), CreateCommentRequest{RoomID: "shut", Body: "hi"})
	require.NoError(t, err)
}

func TestCreateDeniedWhenRoomVanished(t *testing.T) {
	svc := newTestService(t, newMemoryRepo(), lectureRooms())

	_, err := svc.Create(asUser("bob"), CreateCommentRequest{RoomID: "ghost", Body: "hi"})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListByRoomFollowsRoomVisibility(t *testing.T) {
	repo := newMemoryRepo()
	repo.comments["c1"] = Comment{ID: "c1", RoomID: "shut", CreatorID: "bob"}
	svc := newTestService(t, repo, lectureRooms())

	_, err := svc.ListByRoom(asUser("bob"), "shut")
	require.ErrorIs(t, err, shared.ErrForbidden)

	list, err := svc.ListByRoom(asUser("teacher"), "shut")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteOwnComment(t *testing.T) {
	repo := newMemoryRepo()
	repo.comments["c1"] = Comment{ID: "c1", RoomID: "r1", CreatorID: "bob"}
	svc := newTestService(t, repo, lectureRooms())

	require.NoError(t, svc.Delete(asUser("bob"), "c1"))
	assert.Empty(t, repo.comments)
}

func TestDeleteForeignCommentRequiresModeration(t *testing.T) {
	repo := newMemoryRepo()
	repo.comments["c1"] = Comment{ID: "c1", RoomID: "r1", CreatorID: "bob"}
	svc := newTestService(t, repo, lectureRooms())

	require.ErrorIs(t, svc.Delete(asUser("carol"), "c1"), shared.ErrForbidden)
	require.NoError(t, svc.Delete(asUser("teacher"), "c1"))
	assert.Empty(t, repo.comments)
}
