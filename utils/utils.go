package utils

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// NormalizeIdentity приводит идентификатор зрителя (email) к каноническому виду.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// HashIdentity returns the hex blake2b-256 digest of the normalized identity.
// Persisted vote markers store only this digest.
func HashIdentity(identity string) string {
	sum := blake2b.Sum256([]byte(NormalizeIdentity(identity)))
	return hex.EncodeToString(sum[:])
}

// VoteMarkerKey is the storage key of a vote marker, one per (tournament, voter).
func VoteMarkerKey(tournamentID int64, identity string) string {
	return "votes/" + strconv.FormatInt(tournamentID, 10) + "/" + HashIdentity(identity)
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}
