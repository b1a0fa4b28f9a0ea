package perm

import "context"

// Lookup contracts for reference-based decisions and cross-entity checks.
// Implementations return shared.ErrNotFound when the entity does not exist;
// any other error is an infrastructure fault and is propagated unchanged so
// it stays distinguishable from a policy denial.

// RoomLookup resolves room snapshots.
type RoomLookup interface {
	Get(ctx context.Context, id string) (*Room, error)
}

// ContentLookup resolves content snapshots.
type ContentLookup interface {
	Get(ctx context.Context, id string) (*Content, error)
}

// ContentGroupLookup resolves content group snapshots.
type ContentGroupLookup interface {
	Get(ctx context.Context, id string) (*ContentGroup, error)
	// ForContent returns every group that lists the given content.
	ForContent(ctx context.Context, contentID string) ([]ContentGroup, error)
}

// AnswerLookup resolves answer snapshots.
type AnswerLookup interface {
	Get(ctx context.Context, id string) (*Answer, error)
}

// UserProfileLookup resolves user profile snapshots.
type UserProfileLookup interface {
	Get(ctx context.Context, id string) (*UserProfile, error)
}

// Lookups bundles one resolver per entity kind. There is deliberately no
// motd lookup: motd decisions are only reachable through the object-based
// form, matching the upstream policy surface.
type Lookups struct {
	Rooms    RoomLookup
	Contents ContentLookup
	Groups   ContentGroupLookup
	Answers  AnswerLookup
	Profiles UserProfileLookup
}
