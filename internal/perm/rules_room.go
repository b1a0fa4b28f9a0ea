package perm

// moderating reports whether the user owns or moderates the room, in any
// moderator role.
func moderating(userID string, r Room) bool {
	return r.IsOwner(userID) || r.IsModerator(userID)
}

// roomDecision evaluates room permissions against a room snapshot.
// The owner holds every permission on their room unconditionally.
func roomDecision(p Principal, r Room, permission Permission) bool {
	if r.IsOwner(p.ID) {
		return true
	}
	switch permission {
	case PermRead:
		return !r.Closed || r.IsModerator(p.ID)
	case PermReadExtended:
		return r.IsModerator(p.ID)
	case PermCreate:
		// Any authenticated principal may create a room.
		return !p.Anonymous()
	case PermUpdate:
		return r.HasModeratorRole(p.ID, RoleEditing)
	default:
		// Owner-only permissions (owner, delete) were settled by the
		// guard above; everything unlisted denies.
		return false
	}
}
