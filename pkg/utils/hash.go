package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSeed returns the commitment for a server seed. The hash is handed out
// before a seeded race, the seed itself after it, so players can verify the
// race was not rigged.
func HashSeed(arg string) string {
	hasher := sha256.New()
	hasher.Write([]byte(arg))
	return hex.EncodeToString(hasher.Sum(nil))
}
