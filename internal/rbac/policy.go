package rbac

import (
	"github.com/mind-engage/mindengage-learn/internal/apperr"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

// Actor is the already-authenticated caller.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether the actor is the given owner. A missing owner matches nobody.
func (a Actor) Owns(ownerID *string) bool {
	return ownerID != nil && *ownerID != "" && a.ID != "" && a.ID == *ownerID
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Policy decides whether an actor may perform an action. It holds no state
// beyond its tables.
type Policy struct {
	checker     *Checker
	ownerScoped map[Action]bool
}

func NewPolicy(c *Checker) *Policy {
	if c == nil {
		c = NewChecker(nil)
	}
	return &Policy{checker: c, ownerScoped: OwnerScoped}
}

// CanAct applies, in order: admin allows everything; owner-scoped actions
// require the actor to be the course owner; other actions are looked up in
// the role permission table.
func (p *Policy) CanAct(actor Actor, ownerID *string, action Action) Decision {
	if actor.IsAdmin() {
		return Allow
	}
	if p.ownerScoped[action] {
		if actor.Owns(ownerID) {
			return Allow
		}
		return Deny
	}
	if actor.ID != "" && p.checker.Has(actor.Role, string(action)) {
		return Allow
	}
	return Deny
}

// Authorize is CanAct returning a *apperr.PermissionError on Deny.
func (p *Policy) Authorize(actor Actor, ownerID *string, action Action) error {
	if p.CanAct(actor, ownerID, action) == Allow {
		return nil
	}
	reason := "insufficient role permissions"
	switch {
	case actor.ID == "":
		reason = "no authenticated actor"
	case p.ownerScoped[action] && (ownerID == nil || *ownerID == ""):
		reason = "course has no teacher assigned"
	case p.ownerScoped[action]:
		reason = "only the course owner or an admin may do this"
	}
	return apperr.NewPermissionError(actor.ID, string(actor.Role), string(action), reason)
}

// IsOwnerOrAdmin is the read-side check used when deciding what a caller may see.
func IsOwnerOrAdmin(actor *Actor, ownerID *string) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.Owns(ownerID)
}
