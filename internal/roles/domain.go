package roles

// Role is a named bundle of boolean permission flags. Every user references
// exactly one role.
type Role struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	CanPostLogin            bool   `json:"can_post_login"`
	CanGetMyUser            bool   `json:"can_get_my_user"`
	CanGetUsers             bool   `json:"can_get_users"`
	CanPostProducts         bool   `json:"can_post_products"`
	CanPostProductWithImage bool   `json:"can_post_product_with_image"`
	CanGetBestsellers       bool   `json:"can_get_bestsellers"`
}
