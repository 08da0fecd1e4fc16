package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Digest map keys in the estimate response.
const (
	DigestQuantities  = "quantities_json_sha256"
	DigestPolicy      = "policy_yaml_sha256"
	DigestUnitCosts   = "unit_costs_csv_sha256"
	DigestVendorCosts = "vendor_quotes_csv_sha256"
)

// SHA256Hex returns the lower-case hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON renders v with stable key order so byte-identical
// inputs always digest identically. encoding/json sorts map keys, so a
// marshal through an untyped value is canonical.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing: %w", err)
	}
	var untyped any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		return nil, fmt.Errorf("canonicalizing: %w", err)
	}
	return json.Marshal(untyped)
}

// DigestJSON is the SHA-256 of the canonical JSON rendering of v.
func DigestJSON(v any) (string, error) {
	canon, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return SHA256Hex(canon), nil
}
