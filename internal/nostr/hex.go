package nostr

import "encoding/hex"

// ToHex encodes b as a lowercase hex string, two characters per byte.
// encoding/hex uses a single package-level digit table, so there is no
// per-call allocation beyond the output string.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a hex string produced by ToHex (or any valid hex input,
// upper or lower case).
func FromHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
