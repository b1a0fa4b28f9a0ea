package contents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

type memoryRepo struct {
	contents map[string]Content
	groups   map[string]ContentGroup
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{contents: make(map[string]Content), groups: make(map[string]ContentGroup)}
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*Content, error) {
	c, ok := r.contents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) ListByRoom(ctx context.Context, roomID string) ([]Content, error) {
	out := make([]Content, 0)
	for _, c := range r.contents {
		if c.RoomID == roomID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, content Content) error {
	r.contents[content.ID] = content
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, content Content) error {
	if _, ok := r.contents[content.ID]; !ok {
		return shared.ErrNotFound
	}
	r.contents[content.ID] = content
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.contents[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *memoryRepo) DeleteByRoom(ctx context.Context, roomID string) error {
	for id, c := range r.contents {
		if c.RoomID == roomID {
			delete(r.contents, id)
		}
	}
	return nil
}

func (r *memoryRepo) GetGroup(ctx context.Context, id string) (*ContentGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &g, nil
}

func (r *memoryRepo) ListGroupsByRoom(ctx context.Context, roomID string) ([]ContentGroup, error) {
	out := make([]ContentGroup, 0)
	for _, g := range r.groups {
		if g.RoomID == roomID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memoryRepo) GroupsForContent(ctx context.Context, contentID string) ([]ContentGroup, error) {
	out := make([]ContentGroup, 0)
	for _, g := range r.groups {
		if GroupSnapshot(g).Contains(contentID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateGroup(ctx context.Context, group ContentGroup) error {
	r.groups[group.ID] = group
	return nil
}

func (r *memoryRepo) UpdateGroup(ctx context.Context, group ContentGroup) error {
	if _, ok := r.groups[group.ID]; !ok {
		return shared.ErrNotFound
	}
	r.groups[group.ID] = group
	return nil
}

func (r *memoryRepo) DeleteGroup(ctx context.Context, id string) error {
	if _, ok := r.groups[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

func (r *memoryRepo) DeleteGroupsByRoom(ctx context.Context, roomID string) error {
	for id, g := range r.groups {
		if g.RoomID == roomID {
			delete(r.groups, id)
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

// repoGroupLookup serves group snapshots straight from the repository so
// policy decisions see the same publication state the service mutates.
type repoGroupLookup struct{ repo *memoryRepo }

func (l repoGroupLookup) Get(ctx context.Context, id string) (*perm.ContentGroup, error) {
	g, err := l.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := GroupSnapshot(*g)
	return &snap, nil
}

func (l repoGroupLookup) ForContent(ctx context.Context, contentID string) ([]perm.ContentGroup, error) {
	groups, err := l.repo.GroupsForContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	out := make([]perm.ContentGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSnapshot(g))
	}
	return out, nil
}

func newTestService(t *testing.T, repo *memoryRepo, rooms fakeRoomLookup) *Service {
	t.Helper()
	evaluator := perm.NewEvaluator(perm.Lookups{
		Rooms:  rooms,
		Groups: repoGroupLookup{repo: repo},
	})
	return NewService(repo, evaluator)
}

func asUser(id string) context.Context {
	return perm.ContextWithPrincipal(context.Background(), perm.Principal{ID: id})
}

func lectureRoom() fakeRoomLookup {
	return fakeRoomLookup{
		"r1": {
			ID:      "r1",
			OwnerID: "teacher",
			Moderators: []perm.Moderator{
				{UserID: "editor", Roles: []perm.ModeratorRole{perm.RoleEditing}},
				{UserID: "assistant", Roles: []perm.ModeratorRole{perm.RoleExecutive}},
			},
		},
	}
}

func TestCreateRequiresEditingRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(t, repo, lectureRoom())
	req := CreateContentRequest{RoomID: "r1", Body: "2+2?", Format: "text"}

	content, err := svc.Create(asUser("teacher"), req)
	require.NoError(t, err)
	assert.Equal(t, "r1", content.RoomID)

	_, err = svc.Create(asUser("editor"), req)
	require.NoError(t, err)

	_, err = svc.Create(asUser("assistant"), req)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Create(asUser("student"), req)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateDeniesWhenRoomVanished(t *testing.T) {
	svc := newTestService(t, newMemoryRepo(), lectureRoom())

	_, err := svc.Create(asUser("teacher"), CreateContentRequest{RoomID: "ghost", Body: "?", Format: "text"})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGetHiddenUntilGroupPublished(t *testing.T) {
	repo := newMemoryRepo()
	repo.contents["c1"] = Content{ID: "c1", RoomID: "r1", Body: "2+2?"}
	repo.groups["g1"] = ContentGroup{ID: "g1", RoomID: "r1", Name: "Week 1", PublishedContentIDs: []string{"c1"}}
	svc := newTestService(t, repo, lectureRoom())

	_, err := svc.Get(asUser("student"), "c1")
	require.ErrorIs(t, err, shared.ErrForbidden)

	// Moderators see unpublished contents.
	_, err = svc.Get(asUser("assistant"), "c1")
	require.NoError(t, err)

	g := repo.groups["g1"]
	g.Published = true
	repo.groups["g1"] = g

	content, err := svc.Get(asUser("student"), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", content.ID)
}

func TestListByRoomFiltersUnpublished(t *testing.T) {
	repo := newMemoryRepo()
	repo.contents["c1"] = Content{ID: "c1", RoomID: "r1"}
	repo.contents["c2"] = Content{ID: "c2", RoomID: "r1"}
	repo.groups["g1"] = ContentGroup{ID: "g1", RoomID: "r1", Published: true, PublishedContentIDs: []string{"c1"}}
	svc := newTestService(t, repo, lectureRoom())

	visible, err := svc.ListByRoom(asUser("student"), "r1")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "c1", visible[0].ID)

	all, err := svc.ListByRoom(asUser("teacher"), "r1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateGroupPublicationOpensContent(t *testing.T) {
	repo := newMemoryRepo()
	repo.contents["c1"] = Content{ID: "c1", RoomID: "r1"}
	repo.groups["g1"] = ContentGroup{ID: "g1", RoomID: "r1", Name: "Week 1", PublishedContentIDs: []string{}}
	svc := newTestService(t, repo, lectureRoom())

	published := true
	_, err := svc.UpdateGroup(asUser("teacher"), "g1", UpdateGroupRequest{
		Published:           &published,
		PublishedContentIDs: []string{"c1"},
	})
	require.NoError(t, err)

	_, err = svc.Get(asUser("student"), "c1")
	require.NoError(t, err)
}

func TestUpdateGroupDeniedForExecutiveModerator(t *testing.T) {
	repo := newMemoryRepo()
	repo.groups["g1"] = ContentGroup{ID: "g1", RoomID: "r1", Name: "Week 1"}
	svc := newTestService(t, repo, lectureRoom())

	published := true
	_, err := svc.UpdateGroup(asUser("assistant"), "g1", UpdateGroupRequest{Published: &published})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeleteByEditingModerator(t *testing.T) {
	repo := newMemoryRepo()
	repo.contents["c1"] = Content{ID: "c1", RoomID: "r1"}
	svc := newTestService(t, repo, lectureRoom())

	require.ErrorIs(t, svc.Delete(asUser("assistant"), "c1"), shared.ErrForbidden)
	require.NoError(t, svc.Delete(asUser("editor"), "c1"))
	assert.Empty(t, repo.contents)
}
