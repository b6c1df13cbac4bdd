package users

// User is the management view of an account; credential fields never leave
// the auth module.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
