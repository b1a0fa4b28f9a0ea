package perm

// publishedIn reports whether any published group lists the content.
func publishedIn(groups []ContentGroup, contentID string) bool {
	for _, g := range groups {
		if g.Published && g.Contains(contentID) {
			return true
		}
	}
	return false
}

// correctOptionsVisible reports whether some published group lists the
// content and additionally exposes its correct options.
func correctOptionsVisible(groups []ContentGroup, contentID string) bool {
	for _, g := range groups {
		if g.Published && g.Contains(contentID) && g.CorrectOptionsPublished {
			return true
		}
	}
	return false
}

// contentDecision evaluates content permissions. The owning room must
// already be resolved; groups holds the content groups listing the content
// and may be nil for permissions that do not consult publication state.
func contentDecision(p Principal, c Content, room Room, groups []ContentGroup, permission Permission) bool {
	switch permission {
	case PermRead:
		return moderating(p.ID, room) || (!room.Closed && publishedIn(groups, c.ID))
	case PermReadExtended:
		return moderating(p.ID, room)
	case PermReadCorrectOptions:
		return moderating(p.ID, room) || (!room.Closed && correctOptionsVisible(groups, c.ID))
	case PermCreate, PermUpdate, PermDelete, PermOwner:
		return room.IsOwner(p.ID) || room.HasModeratorRole(p.ID, RoleEditing)
	default:
		return false
	}
}

// contentGroupDecision evaluates content group permissions against the
// group and its resolved owning room.
func contentGroupDecision(p Principal, g ContentGroup, room Room, permission Permission) bool {
	switch permission {
	case PermRead:
		return (!room.Closed && g.Published) || moderating(p.ID, room)
	case PermCreate, PermUpdate, PermDelete:
		return room.IsOwner(p.ID) || room.HasModeratorRole(p.ID, RoleEditing)
	default:
		return false
	}
}
