package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const ownerSegmentLength = 24

// OwnerSegment is the per-user directory in object keys. It is stable for a user
// id and never reveals it.
func OwnerSegment(userID string) string {
	sum := sha256.Sum256([]byte("owner:" + strings.TrimSpace(userID)))
	return hex.EncodeToString(sum[:])[:ownerSegmentLength]
}
