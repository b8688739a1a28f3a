package auth

import "github.com/luestilo/estilo-backend/internal/users"

// LoginRequest captures the credentials sent to the login endpoint. The field
// is called username for OAuth2 password-flow compatibility but carries the
// user's email.
type LoginRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains the payload required to create an operator account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterResponse exposes the created user without credentials.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}
