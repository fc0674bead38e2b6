// Package id generates the public identifiers for offers, applications and
// loans. Invoices use UUIDs instead because they are shared with the external
// payment collaborator.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

const rawLen = 16

// NewID32 returns exactly 32 lowercase hex characters, no separators or
// prefixes. The format is load-bearing: the HTTP layer validates incoming ids
// against it.
func NewID32() string {
	b := make([]byte, rawLen)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
