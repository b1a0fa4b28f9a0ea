package perm

// answerDecision evaluates answer permissions. Callers must already have
// checked that the principal can read the parent content; the decision here
// assumes that precondition passed.
func answerDecision(p Principal, a Answer, c Content, room Room, permission Permission) bool {
	switch permission {
	case PermRead:
		return c.AnswersPublished || (!p.Anonymous() && p.ID == a.CreatorID) || moderating(p.ID, room)
	case PermCreate:
		return c.Answerable
	case PermOwner:
		return !p.Anonymous() && p.ID == a.CreatorID
	case PermUpdate:
		// Reserved: answer updates are not part of the policy yet and are
		// denied explicitly rather than left to the default case.
		return false
	case PermDelete:
		return moderating(p.ID, room)
	default:
		return false
	}
}
