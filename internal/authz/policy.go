// Package authz is the single arbiter of who may mutate forum resources.
//
// The policy is a pure decision function over the session and a resource
// owner; it never errors and has no side effects. Callers are responsible
// for surfacing a denial (redirect to login, inline notice).
package authz

import "parley/internal/models"

// CanModify reports whether the session may edit or delete a resource owned
// by ownerID. Admins may modify anything; everyone else only their own
// posts and comments.
func CanModify(s models.Session, ownerID uint) bool {
	if !s.IsAuthenticated || s.User == nil {
		return false
	}
	return s.User.IsAdmin == 1 || s.User.ID == ownerID
}

// CanManageTopics reports whether the session may create or delete topics.
func CanManageTopics(s models.Session) bool {
	return s.IsAuthenticated && s.User != nil && s.User.IsAdmin == 1
}
