package domain

// Role is the storefront role of an authenticated user.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole maps identity-provider role names to a Role. The provider uses
// "penjual" for sellers and "pembeli" for buyers.
func ParseRole(s string) Role {
	switch s {
	case "seller", "penjual":
		return RoleSeller
	default:
		return RoleBuyer
	}
}

// Identity is the authenticated user as supplied by the identity provider.
type Identity struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    Role   `json:"role"`
}

// IsSeller reports whether the identity may run the seller order lifecycle.
func (i Identity) IsSeller() bool {
	return i.Role == RoleSeller
}
