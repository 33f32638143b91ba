package auth

// RegisterRequest is the body accepted by the registration endpoint.
type RegisterRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Position string `json:"position" validate:"required"`
}

// TokenRequest carries the OAuth2 password-form credentials.
type TokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// StatusResponse is the acknowledgement returned by mutating endpoints.
type StatusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// TokenResponse follows the OAuth2 token response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

const TokenTypeBearer = "Bearer"
