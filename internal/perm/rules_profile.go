package perm

// profileDecision evaluates user profile permissions. Profiles expose only
// a public subset to other users, so reads are unrestricted; mutations are
// self-service.
func profileDecision(p Principal, u UserProfile, permission Permission) bool {
	switch permission {
	case PermRead, PermCreate:
		return true
	case PermOwner, PermUpdate, PermDelete:
		return !p.Anonymous() && p.ID == u.ID
	default:
		return false
	}
}
