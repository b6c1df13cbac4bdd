package auth

import "time"

// Permission flags understood by the authorization guard. Each maps to a
// boolean column on the roles table.
const (
	PermPostLogin            = "can_post_login"
	PermGetMyUser            = "can_get_my_user"
	PermGetUsers             = "can_get_users"
	PermPostProducts         = "can_post_products"
	PermPostProductWithImage = "can_post_product_with_image"
	PermGetBestsellers       = "can_get_bestsellers"
)

// DefaultRoleID is assigned to newly registered users.
const DefaultRoleID = 2

// User represents an authenticated user account.
type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	PasswordUpdatedAt time.Time
	RoleID            int64
}

// Role bundles the permission flags granted to a user.
type Role struct {
	ID                      int64
	Name                    string
	CanPostLogin            bool
	CanGetMyUser            bool
	CanGetUsers             bool
	CanPostProducts         bool
	CanPostProductWithImage bool
	CanGetBestsellers       bool
}

// Allows reports whether the role grants the named permission. Unknown
// permission names are denied.
func (r *Role) Allows(perm string) bool {
	if r == nil {
		return false
	}
	switch perm {
	case PermPostLogin:
		return r.CanPostLogin
	case PermGetMyUser:
		return r.CanGetMyUser
	case PermGetUsers:
		return r.CanGetUsers
	case PermPostProducts:
		return r.CanPostProducts
	case PermPostProductWithImage:
		return r.CanPostProductWithImage
	case PermGetBestsellers:
		return r.CanGetBestsellers
	default:
		return false
	}
}

// Identity is attached to the request context after the guard resolves the
// caller. Role is nil when the user's role row could not be resolved; every
// permission check then fails closed.
type Identity struct {
	User User
	Role *Role
}
