package uibuilder

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewItemID generates an opaque unique item identifier.
//
// It prefers a cryptographically sourced random UUID. If UUID generation
// fails (exhausted entropy source), it falls back to a timestamp +
// random-suffix composite. The fallback never fails and is unique with
// overwhelming probability within a session.
//
// Returns:
//   - string: A new item id
func NewItemID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}

	return fallbackItemID()
}

// fallbackItemID composes an id from the current time and a random
// suffix, e.g. "m1x2c3k9-4f8a0b2c1d".
func fallbackItemID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strconv.FormatUint(rand.Uint64(), 36)

	return ts + "-" + suffix
}
