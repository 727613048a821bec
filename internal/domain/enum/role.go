package enum

import (
	"encoding/json"
	"strings"
)

// Role is a user's place in the shop hierarchy. Higher ranks can open
// every page a lower rank can.
type Role int

const (
	RoleInvalid   Role = 0
	RoleCustomer  Role = 1
	RoleInventory Role = 2
	RoleReception Role = 3
	RoleOwner     Role = 4
)

type roleInfo struct {
	name    string
	display string
	landing string
	color   string
}

var roles = map[Role]roleInfo{
	RoleCustomer:  {"customer", "Customer", "price-view.html", "#27ae60"},
	RoleInventory: {"inventory", "Inventory Manager", "add-items.html", "#f39c12"},
	RoleReception: {"reception", "Reception", "reception.html", "#3498db"},
	RoleOwner:     {"owner", "Owner", "owner.html", "#e74c3c"},
}

// DefaultLandingPage is where anonymous or unrecognised users go.
const DefaultLandingPage = "index.html"

// ParseRole maps a stored role name to a Role, ignoring case and
// surrounding whitespace. Unknown names give RoleInvalid.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, info := range roles {
		if info.name == s {
			return r
		}
	}
	return RoleInvalid
}

// AllRoles lists the valid roles from lowest to highest rank.
func AllRoles() []Role {
	return []Role{RoleCustomer, RoleInventory, RoleReception, RoleOwner}
}

func (r Role) String() string {
	if info, ok := roles[r]; ok {
		return info.name
	}
	return ""
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// Rank returns the numeric rank, 0 for an invalid role.
func (r Role) Rank() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// AtLeast reports whether r ranks at or above required. Invalid roles on
// either side never satisfy the check.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && required.Valid() && r >= required
}

// LandingPage is the page a user of this role starts on.
func (r Role) LandingPage() string {
	if info, ok := roles[r]; ok {
		return info.landing
	}
	return DefaultLandingPage
}

// DisplayName is the human label shown next to the username.
func (r Role) DisplayName() string {
	if info, ok := roles[r]; ok {
		return info.display
	}
	return "Unknown"
}

// Color is the badge color used for the role.
func (r Role) Color() string {
	if info, ok := roles[r]; ok {
		return info.color
	}
	return "#95a5a6"
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*r = Role(i)
		return nil
	}
	*r = ParseRole(str)
	return nil
}
