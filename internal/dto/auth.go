package dto

// ── Auth DTOs ──

// LoginRequest administrator sign-in
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	AccessToken string            `json:"accessToken"`
	TokenType   string            `json:"tokenType"`
	ExpiresIn   int               `json:"expiresIn"` // seconds
	User        AdminUserResponse `json:"user"`
}

// AdminUserResponse is a sanitized admin account.
type AdminUserResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// RoleCheckResponse answers GET /auth/role.
type RoleCheckResponse struct {
	UserID  string `json:"userId"`
	Role    string `json:"role"`
	HasRole bool   `json:"hasRole"`
}
