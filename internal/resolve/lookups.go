package resolve

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classpulse/classpulse/internal/answers"
	"github.com/classpulse/classpulse/internal/contents"
	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/rooms"
	"github.com/classpulse/classpulse/internal/users"
)

// NewLookups builds the policy lookup bundle over the given repositories.
// Pass a nil client to disable caching, e.g. in tests that want to hit the
// fakes on every call.
func NewLookups(client *redis.Client, ttl time.Duration, roomRepo rooms.Repository, contentRepo contents.Repository, answerRepo answers.Repository, userRepo users.Repository) perm.Lookups {
	c := newCache(client, ttl)
	return perm.Lookups{
		Rooms:    &roomLookup{cache: c, repo: roomRepo},
		Contents: &contentLookup{cache: c, repo: contentRepo},
		Groups:   &groupLookup{cache: c, repo: contentRepo},
		Answers:  &answerLookup{cache: c, repo: answerRepo},
		Profiles: &profileLookup{cache: c, repo: userRepo},
	}
}

type roomLookup struct {
	cache *cache
	repo  rooms.Repository
}

func (l *roomLookup) Get(ctx context.Context, id string) (*perm.Room, error) {
	key := "resolve:room:" + id
	var cached perm.Room
	if l.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	room, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := rooms.Snapshot(*room)
	l.cache.set(ctx, key, snap)
	return &snap, nil
}

type contentLookup struct {
	cache *cache
	repo  contents.Repository
}

func (l *contentLookup) Get(ctx context.Context, id string) (*perm.Content, error) {
	key := "resolve:content:" + id
	var cached perm.Content
	if l.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	content, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := contents.Snapshot(*content)
	l.cache.set(ctx, key, snap)
	return &snap, nil
}

type groupLookup struct {
	cache *cache
	repo  contents.Repository
}

func (l *groupLookup) Get(ctx context.Context, id string) (*perm.ContentGroup, error) {
	key := "resolve:group:" + id
	var cached perm.ContentGroup
	if l.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	group, err := l.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := contents.GroupSnapshot(*group)
	l.cache.set(ctx, key, snap)
	return &snap, nil
}

func (l *groupLookup) ForContent(ctx context.Context, contentID string) ([]perm.ContentGroup, error) {
	key := "resolve:groups-for:" + contentID
	var cached []perm.ContentGroup
	if l.cache.get(ctx, key, &cached) {
		return cached, nil
	}
	groups, err := l.repo.GroupsForContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	snaps := make([]perm.ContentGroup, len(groups))
	for i, g := range groups {
		snaps[i] = contents.GroupSnapshot(g)
	}
	l.cache.set(ctx, key, snaps)
	return snaps, nil
}

type answerLookup struct {
	cache *cache
	repo  answers.Repository
}

func (l *answerLookup) Get(ctx context.Context, id string) (*perm.Answer, error) {
	key := "resolve:answer:" + id
	var cached perm.Answer
	if l.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	answer, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := answers.Snapshot(*answer)
	l.cache.set(ctx, key, snap)
	return &snap, nil
}

type profileLookup struct {
	cache *cache
	repo  users.Repository
}

func (l *profileLookup) Get(ctx context.Context, id string) (*perm.UserProfile, error) {
	key := "resolve:profile:" + id
	var cached perm.UserProfile
	if l.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	user, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := users.Snapshot(*user)
	l.cache.set(ctx, key, snap)
	return &snap, nil
}
