// Package idgen generates short, URL-safe correlation ids that tag every
// request the client sends, so server logs can be matched to client logs.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix is prepended to every request id.
var RequestPrefix = "zd-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// RequestID returns a new request id using RequestPrefix.
func RequestID() (string, error) {
	return WithPrefix(RequestPrefix)
}

// WithPrefix returns a new id with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
