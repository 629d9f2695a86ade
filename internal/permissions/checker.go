package permissions

import (
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// MemberStore looks up a user's membership in a farm. Satisfied by
// repository.FarmRepository.
type MemberStore interface {
	GetMember(farmID, userID int64) (*models.FarmMember, error)
}

// Checker answers "may this user do this to this farm" from the
// membership table. The role stored in the database decides, never the
// one carried in the session token.
type Checker struct {
	members MemberStore
}

// NewChecker creates a permission checker backed by the given store.
func NewChecker(members MemberStore) *Checker {
	return &Checker{members: members}
}

// CheckFarmAccess reports whether the user may perform the action on
// the farm. Missing or inactive memberships and lookup failures all
// deny; this never returns an error to the caller.
func (c *Checker) CheckFarmAccess(userID, farmID int64, action Action) bool {
	member, err := c.members.GetMember(farmID, userID)
	if err != nil || member == nil {
		return false
	}
	if !member.IsActive() {
		return false
	}
	return Get(member.Role).Allows(action)
}

// MemberRole returns the user's active role in the farm, or "" when the
// user is not an active member.
func (c *Checker) MemberRole(userID, farmID int64) models.Role {
	member, err := c.members.GetMember(farmID, userID)
	if err != nil || member == nil || !member.IsActive() {
		return ""
	}
	return member.Role
}
