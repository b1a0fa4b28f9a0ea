package perm

import (
	"context"
	"errors"

	"github.com/classpulse/classpulse/internal/shared"
)

// DecisionObserver receives the outcome of every completed decision.
// Implementations must be safe for concurrent use.
type DecisionObserver interface {
	ObserveDecision(kind Kind, permission Permission, allowed bool)
}

// Evaluator is the policy decision point. It holds no mutable state and is
// safe for concurrent use; the only blocking work is entity resolution
// through the injected lookups.
type Evaluator struct {
	lookups  Lookups
	observer DecisionObserver
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithObserver installs a decision observer. A nil observer is ignored.
func WithObserver(o DecisionObserver) Option {
	return func(e *Evaluator) { e.observer = o }
}

// NewEvaluator constructs an Evaluator around the given lookups.
func NewEvaluator(lookups Lookups, opts ...Option) *Evaluator {
	e := &Evaluator{lookups: lookups}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates a permission against an already materialized target.
// A false result is a policy denial, including when a parent entity needed
// for the decision no longer exists. Lookup faults other than not-found
// are returned as errors, never masked as denials.
func (e *Evaluator) Decide(ctx context.Context, p Principal, target Target, permission Permission) (bool, error) {
	if target == nil {
		return false, nil
	}

	caps := Classify(p)
	if caps.System || caps.Admin {
		return e.observe(target.TargetKind(), permission, true), nil
	}

	allowed, err := e.decide(ctx, p, caps, target, permission)
	if err != nil {
		return false, err
	}
	return e.observe(target.TargetKind(), permission, allowed), nil
}

// DecideRef evaluates a permission against an entity reference, resolving
// the target first. A target that does not exist denies; it is never
// surfaced as an error. Unknown kinds deny.
func (e *Evaluator) DecideRef(ctx context.Context, p Principal, id string, kind Kind, permission Permission) (bool, error) {
	caps := Classify(p)
	if caps.System || caps.Admin {
		return e.observe(kind, permission, true), nil
	}
	if kind == KindUserProfile && caps.AccountManagement {
		return e.observe(kind, permission, true), nil
	}

	target, found, err := e.resolve(ctx, id, kind)
	if err != nil {
		return false, err
	}
	if !found {
		return e.observe(kind, permission, false), nil
	}

	allowed, err := e.decide(ctx, p, caps, target, permission)
	if err != nil {
		return false, err
	}
	return e.observe(kind, permission, allowed), nil
}

// decide dispatches to the per-kind rule set, resolving parent entities
// where the rules need them. The type switch is the single place a new
// entity kind must be wired; anything unlisted denies.
func (e *Evaluator) decide(ctx context.Context, p Principal, caps Capabilities, target Target, permission Permission) (bool, error) {
	switch t := target.(type) {
	case Room:
		return roomDecision(p, t, permission), nil
	case *Room:
		return roomDecision(p, *t, permission), nil

	case Content:
		return e.decideContent(ctx, p, t, permission)
	case *Content:
		return e.decideContent(ctx, p, *t, permission)

	case ContentGroup:
		return e.decideContentGroup(ctx, p, t, permission)
	case *ContentGroup:
		return e.decideContentGroup(ctx, p, *t, permission)

	case Answer:
		return e.decideAnswer(ctx, p, t, permission)
	case *Answer:
		return e.decideAnswer(ctx, p, *t, permission)

	case Motd:
		return e.decideMotd(ctx, p, t, permission)
	case *Motd:
		return e.decideMotd(ctx, p, *t, permission)

	case UserProfile:
		return caps.AccountManagement || profileDecision(p, t, permission), nil
	case *UserProfile:
		return caps.AccountManagement || profileDecision(p, *t, permission), nil

	default:
		return false, nil
	}
}

func (e *Evaluator) decideContent(ctx context.Context, p Principal, c Content, permission Permission) (bool, error) {
	room, found, err := e.room(ctx, c.RoomID)
	if err != nil || !found {
		return false, err
	}
	groups, err := e.groupsForContent(ctx, c.ID, permission)
	if err != nil {
		return false, err
	}
	return contentDecision(p, c, room, groups, permission), nil
}

func (e *Evaluator) decideContentGroup(ctx context.Context, p Principal, g ContentGroup, permission Permission) (bool, error) {
	room, found, err := e.room(ctx, g.RoomID)
	if err != nil || !found {
		return false, err
	}
	return contentGroupDecision(p, g, room, permission), nil
}

func (e *Evaluator) decideAnswer(ctx context.Context, p Principal, a Answer, permission Permission) (bool, error) {
	content, found, err := e.content(ctx, a.ContentID)
	if err != nil || !found {
		return false, err
	}
	room, found, err := e.room(ctx, content.RoomID)
	if err != nil || !found {
		return false, err
	}
	groups, err := e.groupsForContent(ctx, content.ID, PermRead)
	if err != nil {
		return false, err
	}
	// Reading the parent content is a precondition for every answer
	// permission; failing it denies outright.
	if !contentDecision(p, content, room, groups, PermRead) {
		return false, nil
	}
	return answerDecision(p, a, content, room, permission), nil
}

func (e *Evaluator) decideMotd(ctx context.Context, p Principal, m Motd, permission Permission) (bool, error) {
	var room *Room
	if m.Audience == AudienceRoom {
		resolved, found, err := e.room(ctx, m.RoomID)
		if err != nil {
			return false, err
		}
		if found {
			room = &resolved
		}
	}
	return motdDecision(p, m, room, permission), nil
}

// resolve materializes the target for a reference-based decision.
func (e *Evaluator) resolve(ctx context.Context, id string, kind Kind) (Target, bool, error) {
	switch kind {
	case KindRoom:
		room, found, err := e.room(ctx, id)
		return room, found, err
	case KindContent:
		content, found, err := e.content(ctx, id)
		return content, found, err
	case KindContentGroup:
		group, err := e.lookups.Groups.Get(ctx, id)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		return *group, true, nil
	case KindAnswer:
		answer, err := e.lookups.Answers.Get(ctx, id)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		return *answer, true, nil
	case KindUserProfile:
		profile, err := e.lookups.Profiles.Get(ctx, id)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		return *profile, true, nil
	default:
		// Includes KindMotd: motd has no resolver and is only decidable
		// through the object-based form.
		return nil, false, nil
	}
}

func (e *Evaluator) room(ctx context.Context, id string) (Room, bool, error) {
	if id == "" {
		return Room{}, false, nil
	}
	room, err := e.lookups.Rooms.Get(ctx, id)
	if err != nil {
		return Room{}, false, ignoreNotFound(err)
	}
	return *room, true, nil
}

func (e *Evaluator) content(ctx context.Context, id string) (Content, bool, error) {
	if id == "" {
		return Content{}, false, nil
	}
	content, err := e.lookups.Contents.Get(ctx, id)
	if err != nil {
		return Content{}, false, ignoreNotFound(err)
	}
	return *content, true, nil
}

// groupsForContent fetches publication groups only for permissions whose
// rules consult publication state.
func (e *Evaluator) groupsForContent(ctx context.Context, contentID string, permission Permission) ([]ContentGroup, error) {
	if permission != PermRead && permission != PermReadCorrectOptions {
		return nil, nil
	}
	groups, err := e.lookups.Groups.ForContent(ctx, contentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return groups, nil
}

func (e *Evaluator) observe(kind Kind, permission Permission, allowed bool) bool {
	if e.observer != nil {
		e.observer.ObserveDecision(kind, permission, allowed)
	}
	return allowed
}

func ignoreNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}
