package utils

import (
	"encoding/json"
	"strings"
	"time"

	"crosspost/models"
)

type TokenValidator struct{}

func NewTokenValidator() *TokenValidator {
	return &TokenValidator{}
}

// IsTokenExpired checks if a token is expired or will expire within a buffer time.
func (t *TokenValidator) IsTokenExpired(cred *models.PlatformCredentials) bool {
	if cred.ExpiresAt == nil {
		// No expiration recorded; assume the token is valid.
		return false
	}
	// Consider expired if less than 5 minutes remaining.
	buffer := 5 * time.Minute
	return time.Now().Add(buffer).After(*cred.ExpiresAt)
}

// GetFacebookErrorCode extracts the error code from a Facebook API response.
func (t *TokenValidator) GetFacebookErrorCode(body []byte) int {
	var fbError struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	json.Unmarshal(body, &fbError)
	return fbError.Error.Code
}

// IsFacebookTokenExpiredError checks if the error is due to token expiration.
// Facebook error codes: 190 invalid OAuth token, 192 invalid token signature,
// 467 throttling (token-related only when the message mentions tokens).
func (t *TokenValidator) IsFacebookTokenExpiredError(body []byte) bool {
	var fbError struct {
		Error struct {
			Code    int    `json:"code"`
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	json.Unmarshal(body, &fbError)

	return fbError.Error.Code == 190 || fbError.Error.Code == 192 ||
		(fbError.Error.Code == 467 && strings.Contains(fbError.Error.Message, "token"))
}
