package request

// LoginRequest represents a login request. Field checks happen in the auth
// service so both fields are reported together.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessRequest asks whether the current user may open a page.
type AccessRequest struct {
	Role string `form:"role" binding:"required"`
}
