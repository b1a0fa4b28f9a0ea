package perm

// Kind identifies an entity kind for reference-based decisions.
type Kind string

const (
	KindUserProfile  Kind = "userprofile"
	KindRoom         Kind = "room"
	KindContent      Kind = "content"
	KindContentGroup Kind = "contentgroup"
	KindAnswer       Kind = "answer"
	// KindMotd exists for the object-based form only; DecideRef has no
	// motd resolver and denies the kind outright.
	KindMotd Kind = "motd"
)

// Permission identifies a requested operation. Closed, case-sensitive set.
type Permission string

const (
	PermRead               Permission = "read"
	PermReadExtended       Permission = "read-extended"
	PermReadCorrectOptions Permission = "read-correct-options"
	PermCreate             Permission = "create"
	PermUpdate             Permission = "update"
	PermDelete             Permission = "delete"
	PermOwner              Permission = "owner"
)

// Target is the closed set of entity snapshots a decision can be made about.
// Every kind carries its own rule set in the dispatcher; adding a kind
// without one falls through to default-deny.
type Target interface {
	TargetKind() Kind
}

// ModeratorRole is a sub-role granted to a room moderator.
type ModeratorRole string

const (
	RoleEditing   ModeratorRole = "EDITING"
	RoleExecutive ModeratorRole = "EXECUTIVE"
)

// Moderator grants a user a subset of room-management capabilities.
// A user appears at most once in a room's moderator list.
type Moderator struct {
	UserID string
	Roles  []ModeratorRole
}

// Room is a session container owning contents, answers and moderators.
type Room struct {
	ID         string
	OwnerID    string
	Closed     bool
	Moderators []Moderator
}

// TargetKind implements Target.
func (Room) TargetKind() Kind { return KindRoom }

// IsOwner reports whether the given user owns the room.
func (r Room) IsOwner(userID string) bool {
	return userID != "" && userID == r.OwnerID
}

// IsModerator reports whether the user moderates the room, in any role.
func (r Room) IsModerator(userID string) bool {
	if userID == "" {
		return false
	}
	for _, m := range r.Moderators {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// HasModeratorRole reports whether the user moderates the room with the
// given role.
func (r Room) HasModeratorRole(userID string, role ModeratorRole) bool {
	if userID == "" {
		return false
	}
	for _, m := range r.Moderators {
		if m.UserID != userID {
			continue
		}
		for _, got := range m.Roles {
			if got == role {
				return true
			}
		}
	}
	return false
}

// Content is a poll or question belonging to exactly one room.
type Content struct {
	ID               string
	RoomID           string
	Answerable       bool
	AnswersPublished bool
}

// TargetKind implements Target.
func (Content) TargetKind() Kind { return KindContent }

// ContentGroup is a publishable bundle of contents controlling audience
// visibility. A content is visible when any published group lists it.
type ContentGroup struct {
	ID                      string
	RoomID                  string
	Published               bool
	PublishedContentIDs     []string
	CorrectOptionsPublished bool
}

// TargetKind implements Target.
func (ContentGroup) TargetKind() Kind { return KindContentGroup }

// Contains reports whether the group lists the given content.
func (g ContentGroup) Contains(contentID string) bool {
	for _, id := range g.PublishedContentIDs {
		if id == contentID {
			return true
		}
	}
	return false
}

// Answer is a participant's response to a content.
type Answer struct {
	ID        string
	ContentID string
	RoomID    string
	CreatorID string
}

// TargetKind implements Target.
func (Answer) TargetKind() Kind { return KindAnswer }

// MotdAudience scopes a message of the day.
type MotdAudience string

const (
	AudienceAll      MotdAudience = "ALL"
	AudienceLoggedIn MotdAudience = "LOGGED_IN"
	AudienceTutors   MotdAudience = "TUTORS"
	AudienceStudents MotdAudience = "STUDENTS"
	AudienceRoom     MotdAudience = "ROOM"
)

// Motd is a message-of-the-day notice. RoomID is set only for the ROOM
// audience.
type Motd struct {
	ID       string
	RoomID   string
	Audience MotdAudience
}

// TargetKind implements Target.
func (Motd) TargetKind() Kind { return KindMotd }

// UserProfile carries identity only, for self-service checks.
type UserProfile struct {
	ID string
}

// TargetKind implements Target.
func (UserProfile) TargetKind() Kind { return KindUserProfile }
