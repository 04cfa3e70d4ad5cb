package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix allows the
// encoding to change without colliding with old values.
const (
	DomainCriteria = "elementq/criteria/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CriteriaFingerprint hashes a set of criteria. Two criterion sets that
// differ only in map iteration order or Unicode normalization produce the
// same fingerprint.
func CriteriaFingerprint(criteria IRObject) (string, error) {
	canonical, err := marshalCanonical(criteria)
	if err != nil {
		return "", fmt.Errorf("CriteriaFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCriteria, canonical), nil
}
