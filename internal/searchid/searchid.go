package searchid

import (
	"github.com/google/uuid"
	"github.com/jxskiss/base62"
)

// New returns a random v4 UUID encoded in base62, safe to put in a URL query.
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return base62.EncodeToString(id[:]), nil
}
