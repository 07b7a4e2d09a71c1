package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-sim/service/i"
)

const tokenLifetime = 24 * time.Hour

var ErrInvalidAPIKey = errors.New("invalid api key")

// Auth trades the shared API key for a bearer token.
type Auth struct {
	apiKey    string
	tokenizer i.Tokenizer
}

func NewAuthService(apiKey string, tokenizer i.Tokenizer) (*Auth, error) {
	if apiKey == "" {
		return nil, errors.New("api key must not be empty")
	}
	return &Auth{apiKey: apiKey, tokenizer: tokenizer}, nil
}

func (a *Auth) Issue(apiKey string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.apiKey)) != 1 {
		return "", ErrInvalidAPIKey
	}

	return a.tokenizer.Generate(map[string]interface{}{
		"scope": "episodes",
	}, tokenLifetime)
}
