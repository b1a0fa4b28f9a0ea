package perm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

// fakeStore implements every perm lookup over in-memory maps with an
// injectable fault, so resolver failures stay distinguishable from absence.
type fakeStore struct {
	rooms    map[string]perm.Room
	contents map[string]perm.Content
	groups   map[string]perm.ContentGroup
	answers  map[string]perm.Answer
	profiles map[string]perm.UserProfile

	err error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    make(map[string]perm.Room),
		contents: make(map[string]perm.Content),
		groups:   make(map[string]perm.ContentGroup),
		answers:  make(map[string]perm.Answer),
		profiles: make(map[string]perm.UserProfile),
	}
}

func (f *fakeStore) Get(ctx context.Context, id string) (*perm.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.rooms[id]; ok {
		return &r, nil
	}
	return nil, shared.ErrNotFound
}

type contentLookup struct{ store *fakeStore }

func (l contentLookup) Get(ctx context.Context, id string) (*perm.Content, error) {
	if l.store.err != nil {
		return nil, l.store.err
	}
	if c, ok := l.store.contents[id]; ok {
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

type groupLookup struct{ store *fakeStore }

func (l groupLookup) Get(ctx context.Context, id string) (*perm.ContentGroup, error) {
	if l.store.err != nil {
		return nil, l.store.err
	}
	if g, ok := l.store.groups[id]; ok {
		return &g, nil
	}
	return nil, shared.ErrNotFound
}

func (l groupLookup) ForContent(ctx context.Context, contentID string) ([]perm.ContentGroup, error) {
	if l.store.err != nil {
		return nil, l.store.err
	}
	var out []perm.ContentGroup
	for _, g := range l.store.groups {
		if g.Contains(contentID) {
			out = append(out, g)
		}
	}
	return out, nil
}

type answerLookup struct{ store *fakeStore }

func (l answerLookup) Get(ctx context.Context, id string) (*perm.Answer, error) {
	if l.store.err != nil {
		return nil, l.store.err
	}
	if a, ok := l.store.answers[id]; ok {
		return &a, nil
	}
	return nil, shared.ErrNotFound
}

type profileLookup struct{ store *fakeStore }

func (l profileLookup) Get(ctx context.Context, id string) (*perm.UserProfile, error) {
	if l.store.err != nil {
		return nil, l.store.err
	}
	if u, ok := l.store.profiles[id]; ok {
		return &u, nil
	}
	return nil, shared.ErrNotFound
}

func newEvaluator(store *fakeStore, opts ...perm.Option) *perm.Evaluator {
	return perm.NewEvaluator(perm.Lookups{
		Rooms:    store,
		Contents: contentLookup{store},
		Groups:   groupLookup{store},
		Answers:  answerLookup{store},
		Profiles: profileLookup{store},
	}, opts...)
}

func principal(id string, authorities ...perm.Authority) perm.Principal {
	return perm.Principal{ID: id, Authorities: authorities}
}

var allPermissions = []perm.Permission{
	perm.PermRead,
	perm.PermReadExtended,
	perm.PermReadCorrectOptions,
	perm.PermCreate,
	perm.PermUpdate,
	perm.PermDelete,
	perm.PermOwner,
}

func TestRoomOwnerAllowedEverything(t *testing.T) {
	eval := newEvaluator(newFakeStore())
	room := perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}

	for _, p := range allPermissions {
		allowed, err := eval.Decide(context.Background(), principal("owner1"), room, p)
		require.NoError(t, err)
		assert.True(t, allowed, "owner should hold %q", p)
	}
}

func TestRoomRules(t *testing.T) {
	eval := newEvaluator(newFakeStore())
	editing := perm.Moderator{UserID: "mod-edit", Roles: []perm.ModeratorRole{perm.RoleEditing}}
	executive := perm.Moderator{UserID: "mod-exec", Roles: []perm.ModeratorRole{perm.RoleExecutive}}
	room := perm.Room{ID: "R1", OwnerID: "owner1", Closed: true, Moderators: []perm.Moderator{editing, executive}}
	open := perm.Room{ID: "R2", OwnerID: "owner1", Closed: false}

	cases := []struct {
		name       string
		principal  perm.Principal
		room       perm.Room
		permission perm.Permission
		want       bool
	}{
		{"stranger cannot read closed room", principal("stranger"), room, perm.PermRead, false},
		{"anonymous can read open room", principal(""), open, perm.PermRead, true},
		{"any moderator reads closed room", principal("mod-exec"), room, perm.PermRead, true},
		{"owner reads extended", principal("owner1"), room, perm.PermReadExtended, true},
		{"moderator reads extended", principal("mod-exec"), room, perm.PermReadExtended, true},
		{"stranger denied extended read", principal("stranger"), open, perm.PermReadExtended, false},
		{"authenticated may create rooms", principal("anyone"), perm.Room{}, perm.PermCreate, true},
		{"anonymous may not create rooms", principal(""), perm.Room{}, perm.PermCreate, false},
		{"editing moderator updates", principal("mod-edit"), room, perm.PermUpdate, true},
		{"executive moderator cannot update", principal("mod-exec"), room, perm.PermUpdate, false},
		{"moderator is not owner", principal("mod-edit"), room, perm.PermOwner, false},
		{"moderator cannot delete", principal("mod-edit"), room, perm.PermDelete, false},
		{"owner deletes", principal("owner1"), room, perm.PermDelete, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := eval.Decide(context.Background(), tc.principal, tc.room, tc.permission)
			require.NoError(t, err)
			assert.Equal(t, tc.want, allowed)
		})
	}
}

func TestContentVisibility(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1"}
	content := perm.Content{ID: "C1", RoomID: "R1", Answerable: true}
	store.contents["C1"] = content
	eval := newEvaluator(store)

	// Unpublished group containing C1: not visible to strangers.
	store.groups["G1"] = perm.ContentGroup{ID: "G1", RoomID: "R1", Published: false, PublishedContentIDs: []string{"C1"}}
	allowed, err := eval.Decide(context.Background(), principal("stranger"), content, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed, "content in an unpublished group must stay hidden")

	// Publishing the group makes the content readable by anyone.
	store.groups["G1"] = perm.ContentGroup{ID: "G1", RoomID: "R1", Published: true, PublishedContentIDs: []string{"C1"}}
	allowed, err = eval.Decide(context.Background(), principal(""), content, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed, "published content in an open room is public")

	// Closing the room hides it again for non-moderators.
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}
	allowed, err = eval.Decide(context.Background(), principal("stranger"), content, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)

	// The owner still sees it.
	allowed, err = eval.Decide(context.Background(), principal("owner1"), content, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestContentCorrectOptions(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1"}
	content := perm.Content{ID: "C1", RoomID: "R1"}
	store.contents["C1"] = content
	store.groups["G1"] = perm.ContentGroup{ID: "G1", RoomID: "R1", Published: true, PublishedContentIDs: []string{"C1"}}
	eval := newEvaluator(store)

	allowed, err := eval.Decide(context.Background(), principal("stranger"), content, perm.PermReadCorrectOptions)
	require.NoError(t, err)
	assert.False(t, allowed, "correct options hidden until the group exposes them")

	store.groups["G1"] = perm.ContentGroup{ID: "G1", RoomID: "R1", Published: true, PublishedContentIDs: []string{"C1"}, CorrectOptionsPublished: true}
	allowed, err = eval.Decide(context.Background(), principal("stranger"), content, perm.PermReadCorrectOptions)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestContentDeniedWhenRoomMissing(t *testing.T) {
	store := newFakeStore()
	store.contents["C1"] = perm.Content{ID: "C1", RoomID: "gone"}
	eval := newEvaluator(store)

	allowed, err := eval.Decide(context.Background(), principal("owner1"), store.contents["C1"], perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed, "unresolvable parent room denies, not errors")
}

func TestAnswerRules(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Moderators: []perm.Moderator{{UserID: "mod", Roles: []perm.ModeratorRole{perm.RoleExecutive}}}}
	store.contents["C1"] = perm.Content{ID: "C1", RoomID: "R1", Answerable: true, AnswersPublished: false}
	store.groups["G1"] = perm.ContentGroup{ID: "G1", RoomID: "R1", Published: true, PublishedContentIDs: []string{"C1"}}
	answer := perm.Answer{ID: "A1", ContentID: "C1", RoomID: "R1", CreatorID: "u1"}
	store.answers["A1"] = answer
	eval := newEvaluator(store)
	ctx := context.Background()

	// Creator always sees the own answer, others wait for publication.
	allowed, err := eval.Decide(ctx, principal("u1"), answer, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, principal("u2"), answer, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Moderators see unpublished answers.
	allowed, err = eval.Decide(ctx, principal("mod"), answer, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Publication opens reads for everyone who can read the content.
	store.contents["C1"] = perm.Content{ID: "C1", RoomID: "R1", Answerable: true, AnswersPublished: true}
	allowed, err = eval.Decide(ctx, principal("u2"), answer, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Update stays denied for everyone short of an admin.
	for _, id := range []string{"u1", "mod", "owner1"} {
		allowed, err = eval.Decide(ctx, principal(id), answer, perm.PermUpdate)
		require.NoError(t, err)
		assert.False(t, allowed, "answer update is reserved, principal %s", id)
	}

	allowed, err = eval.Decide(ctx, principal("mod"), answer, perm.PermDelete)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, principal("u1"), answer, perm.PermOwner)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAnswerDeniedWhenContentUnreadable(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}
	store.contents["C1"] = perm.Content{ID: "C1", RoomID: "R1", AnswersPublished: true}
	answer := perm.Answer{ID: "A1", ContentID: "C1", RoomID: "R1", CreatorID: "u1"}
	eval := newEvaluator(store)

	// Even the creator loses access once the parent content is unreadable.
	allowed, err := eval.Decide(context.Background(), principal("u1"), answer, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMotdRules(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Closed: true, Moderators: []perm.Moderator{{UserID: "mod-edit", Roles: []perm.ModeratorRole{perm.RoleEditing}}}}
	eval := newEvaluator(store)
	ctx := context.Background()

	global := perm.Motd{ID: "M1", Audience: perm.AudienceAll}
	scoped := perm.Motd{ID: "M2", RoomID: "R1", Audience: perm.AudienceRoom}

	allowed, err := eval.Decide(ctx, principal(""), global, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed, "non-room audiences always read")

	allowed, err = eval.Decide(ctx, principal("stranger"), scoped, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed, "closed room hides its motd")

	allowed, err = eval.Decide(ctx, principal("mod-edit"), scoped, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, principal("mod-edit"), scoped, perm.PermUpdate)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, principal("stranger"), global, perm.PermUpdate)
	require.NoError(t, err)
	assert.False(t, allowed, "non-room audiences deny mutation")

	orphan := perm.Motd{ID: "M3", RoomID: "gone", Audience: perm.AudienceRoom}
	allowed, err = eval.Decide(ctx, principal("owner1"), orphan, perm.PermUpdate)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestUserProfileRules(t *testing.T) {
	eval := newEvaluator(newFakeStore())
	ctx := context.Background()
	profile := perm.UserProfile{ID: "u1"}

	allowed, err := eval.Decide(ctx, principal(""), profile, perm.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed, "profiles expose a public subset")

	allowed, err = eval.Decide(ctx, principal("u1"), profile, perm.PermUpdate)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, principal("u2"), profile, perm.PermUpdate)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCapabilityShortCircuits(t *testing.T) {
	store := newFakeStore()
	eval := newEvaluator(store)
	ctx := context.Background()
	closed := perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}

	for _, authority := range []perm.Authority{perm.AuthoritySystem, perm.AuthorityAdmin} {
		allowed, err := eval.Decide(ctx, principal("svc", authority), closed, perm.PermDelete)
		require.NoError(t, err)
		assert.True(t, allowed, "%s short-circuits every check", authority)
	}

	// Account management is scoped to user profiles.
	mgmt := principal("svc", perm.AuthorityAccountManagement)
	allowed, err := eval.Decide(ctx, mgmt, perm.UserProfile{ID: "someone"}, perm.PermDelete)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.Decide(ctx, mgmt, closed, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed, "account management grants nothing outside profiles")
}

func TestClassifierRunsBeforeResolution(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("store unreachable")
	eval := newEvaluator(store)

	// Admin decisions must not touch the resolvers at all.
	allowed, err := eval.DecideRef(context.Background(), principal("root", perm.AuthorityAdmin), "R1", perm.KindRoom, perm.PermDelete)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDecideRefMissingTargetDenies(t *testing.T) {
	eval := newEvaluator(newFakeStore())
	ctx := context.Background()

	for _, kind := range []perm.Kind{perm.KindRoom, perm.KindContent, perm.KindContentGroup, perm.KindAnswer, perm.KindUserProfile} {
		allowed, err := eval.DecideRef(ctx, principal("u1"), "does-not-exist", kind, perm.PermRead)
		require.NoError(t, err, "absence is a denial, not a fault (kind %s)", kind)
		assert.False(t, allowed)
	}
}

func TestDecideRefResolvesTarget(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}
	store.profiles["u1"] = perm.UserProfile{ID: "u1"}
	eval := newEvaluator(store)
	ctx := context.Background()

	allowed, err := eval.DecideRef(ctx, principal("owner1"), "R1", perm.KindRoom, perm.PermReadExtended)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = eval.DecideRef(ctx, principal("stranger"), "R1", perm.KindRoom, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = eval.DecideRef(ctx, principal("u1"), "u1", perm.KindUserProfile, perm.PermOwner)
	require.NoError(t, err)
	assert.True(t, allowed)
}

// Motd is intentionally unreachable through the reference-based form; this
// pins the asymmetry so nobody "fixes" it by accident.
func TestDecideRefMotdKindDenies(t *testing.T) {
	eval := newEvaluator(newFakeStore())

	allowed, err := eval.DecideRef(context.Background(), principal("owner1"), "M1", perm.KindMotd, perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestDecideRefUnknownKindDenies(t *testing.T) {
	eval := newEvaluator(newFakeStore())

	allowed, err := eval.DecideRef(context.Background(), principal("u1"), "X1", perm.Kind("widget"), perm.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestUnknownPermissionDenies(t *testing.T) {
	eval := newEvaluator(newFakeStore())
	room := perm.Room{ID: "R1", OwnerID: "owner1"}

	allowed, err := eval.Decide(context.Background(), principal("owner1"), room, perm.Permission("reaad"))
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestResolverFaultPropagates(t *testing.T) {
	store := newFakeStore()
	fault := errors.New("store unreachable")
	store.err = fault
	eval := newEvaluator(store)
	ctx := context.Background()

	_, err := eval.DecideRef(ctx, principal("u1"), "R1", perm.KindRoom, perm.PermRead)
	require.ErrorIs(t, err, fault, "infrastructure failure must not masquerade as a denial")

	_, err = eval.Decide(ctx, principal("u1"), perm.Content{ID: "C1", RoomID: "R1"}, perm.PermRead)
	require.ErrorIs(t, err, fault)
}

func TestDecisionIdempotence(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1", Closed: true}
	eval := newEvaluator(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := eval.DecideRef(ctx, principal("stranger"), "R1", perm.KindRoom, perm.PermRead)
		require.NoError(t, err)
		assert.False(t, allowed, "identical snapshots must yield identical decisions")
	}
}

func TestModerationMonotonicity(t *testing.T) {
	store := newFakeStore()
	before := perm.Room{ID: "R1", OwnerID: "owner1"}
	store.rooms["R1"] = before
	content := perm.Content{ID: "C1", RoomID: "R1"}
	store.contents["C1"] = content
	group := perm.ContentGroup{ID: "G1", RoomID: "R1"}
	store.groups["G1"] = group
	eval := newEvaluator(store)
	ctx := context.Background()

	targets := []perm.Target{before, content, group}
	for _, target := range targets {
		allowed, err := eval.Decide(ctx, principal("newmod"), target, perm.PermUpdate)
		require.NoError(t, err)
		assert.False(t, allowed)
	}

	after := perm.Room{ID: "R1", OwnerID: "owner1", Moderators: []perm.Moderator{{UserID: "newmod", Roles: []perm.ModeratorRole{perm.RoleEditing}}}}
	store.rooms["R1"] = after
	targets = []perm.Target{after, content, group}
	for _, target := range targets {
		allowed, err := eval.Decide(ctx, principal("newmod"), target, perm.PermUpdate)
		require.NoError(t, err)
		assert.True(t, allowed, "granting EDITING may only flip update decisions to allow")
	}
}

type recordingObserver struct {
	kinds   []perm.Kind
	allowed []bool
}

func (r *recordingObserver) ObserveDecision(kind perm.Kind, permission perm.Permission, allowed bool) {
	r.kinds = append(r.kinds, kind)
	r.allowed = append(r.allowed, allowed)
}

func TestObserverSeesDecisions(t *testing.T) {
	store := newFakeStore()
	store.rooms["R1"] = perm.Room{ID: "R1", OwnerID: "owner1"}
	obs := &recordingObserver{}
	eval := newEvaluator(store, perm.WithObserver(obs))
	ctx := context.Background()

	_, err := eval.DecideRef(ctx, principal("owner1"), "R1", perm.KindRoom, perm.PermOwner)
	require.NoError(t, err)
	_, err = eval.DecideRef(ctx, principal("stranger"), "R1", perm.KindRoom, perm.PermOwner)
	require.NoError(t, err)

	require.Len(t, obs.kinds, 2)
	assert.Equal(t, []perm.Kind{perm.KindRoom, perm.KindRoom}, obs.kinds)
	assert.Equal(t, []bool{true, false}, obs.allowed)
}
