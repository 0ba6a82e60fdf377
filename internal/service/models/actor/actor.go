package actor

import "fmt"

// Role is the account type of the caller.
type Role string

const (
	RoleBuyer  Role = "Buyer"
	RoleSeller Role = "Seller"
	RoleAdmin  Role = "Admin"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Actor identifies the authenticated caller of a lifecycle operation.
// It is passed explicitly into every service method so that authorization
// is enforced by the engine itself, not only by transport middleware.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Buyer constructs a buyer actor.
func Buyer(id int64) Actor {
	return Actor{ID: id, Role: RoleBuyer}
}

// Seller constructs a seller actor.
func Seller(id int64) Actor {
	return Actor{ID: id, Role: RoleSeller}
}

// Admin constructs an admin actor.
func Admin(id int64) Actor {
	return Actor{ID: id, Role: RoleAdmin}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsBuyer reports whether the actor holds the buyer role.
func (a Actor) IsBuyer() bool {
	return a.Role == RoleBuyer
}

// IsSeller reports whether the actor holds the seller role.
func (a Actor) IsSeller() bool {
	return a.Role == RoleSeller
}

// Owns reports whether the actor is the buyer that placed the order.
func (a Actor) Owns(buyerID int64) bool {
	return a.IsBuyer() && a.ID == buyerID
}
