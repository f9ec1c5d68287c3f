package auth

import "errors"

// Common authentication service errors
var (
	// ErrMissingToken indicates a bearer token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMalformedToken indicates a token that verified correctly but is
	// missing the required user claim
	ErrMalformedToken = errors.New("authentication token is missing required claims")
)
