package perm

// motdDecision evaluates motd permissions. room is non-nil only when the
// motd targets a specific room and that room resolved; mutations of a
// room-scoped motd with an unresolvable room deny.
func motdDecision(p Principal, m Motd, room *Room, permission Permission) bool {
	switch permission {
	case PermRead:
		if m.Audience != AudienceRoom {
			return true
		}
		if room == nil {
			return false
		}
		return !room.Closed || moderating(p.ID, *room)
	case PermCreate, PermUpdate, PermDelete:
		// Only room-scoped notices are mutable through this policy.
		if m.Audience != AudienceRoom || p.Anonymous() || room == nil {
			return false
		}
		return room.IsOwner(p.ID) || room.HasModeratorRole(p.ID, RoleEditing)
	default:
		return false
	}
}
