package models

// Role is the global privilege level of a user. Roles form a total order:
// each one strictly outranks the previous.
type Role string

const (
	RoleUser           Role = "user"
	RoleModerator      Role = "moderator"
	RoleSuperModerator Role = "super_moderator"
	RoleAdmin          Role = "admin"
	RoleOwner          Role = "owner"
)

var roleLevels = map[Role]int{
	RoleUser:           1,
	RoleModerator:      2,
	RoleSuperModerator: 3,
	RoleAdmin:          4,
	RoleOwner:          5,
}

// AllRoles is ordered by ascending privilege.
var AllRoles = []Role{RoleUser, RoleModerator, RoleSuperModerator, RoleAdmin, RoleOwner}

// Level returns the numeric privilege of a role, from 1 (user) to 5 (owner).
// Unknown roles rank below every valid role.
func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

func HasMinimumRole(actual, required Role) bool {
	return actual.Level() >= required.Level()
}

// CanActOnRole reports whether an actor may act on a target holding the given
// role. The comparison is strict: equal roles can't touch each other, which
// rules out self-escalation and peer-demotion.
func CanActOnRole(actor, target Role) bool {
	return actor.Level() > target.Level()
}
