package identity

// TokenRequest carries the shared API key.
type TokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
