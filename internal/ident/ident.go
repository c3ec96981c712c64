// Package ident generates record identifiers.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	ClaimPrefix         = "CLM"
	MissingPersonPrefix = "MP"
	SurvivorPrefix      = "SV"
	DisasterPrefix      = "DIS"
)

// short returns prefix followed by the first 8 upper-case hex digits of a random UUID.
func short(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(hex[:8])
}

// NewClaimID returns an id such as "CLM1A2B3C4D".
func NewClaimID() string { return short(ClaimPrefix) }

// NewMissingPersonID returns an id such as "MP1A2B3C4D".
func NewMissingPersonID() string { return short(MissingPersonPrefix) }

// NewSurvivorID returns an id such as "SV1A2B3C4D".
func NewSurvivorID() string { return short(SurvivorPrefix) }

// NewDisasterID returns an id such as "DIS1A2B3C4D".
func NewDisasterID() string { return short(DisasterPrefix) }

// NewID returns a random UUID string for matches, events, and evidence.
func NewID() string { return uuid.NewString() }

// PairKey returns a stable key for an unordered-by-role match pair. The same
// missing person and survivor always yield the same key.
func PairKey(missingPersonID, survivorID string) string {
	sum := sha256.Sum256([]byte(missingPersonID + "\x00" + survivorID))
	return "pair:" + hex.EncodeToString(sum[:12])
}
