package i

import "time"

// Authenticator exchanges a client API key for an access token.
type Authenticator interface {
	Issue(apiKey string) (string, error)
}

// Tokenizer signs claims into bearer tokens and checks them again.
type Tokenizer interface {
	// Generate signs claims into a token that expires after ttl.
	Generate(claims map[string]interface{}, ttl time.Duration) (string, error)

	// Decode returns the claims of a valid, unexpired token.
	Decode(token string) (map[string]interface{}, error)
}
