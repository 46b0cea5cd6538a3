package user

// Role gates access to carrier, route and ticket management.
type Role string

const (
	RoleBuyer         Role = "BUYER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

type User struct {
	ID         int64  `json:"id"`
	Login      string `json:"login"`
	Password   string `json:"-"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
}
