package entity

// Staff roles carried in access tokens.
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleReceptionist
}
