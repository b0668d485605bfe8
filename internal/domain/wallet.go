package domain

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidWallet reports whether addr is a 20-byte hex address with 0x prefix.
func IsValidWallet(addr string) bool {
	return walletPattern.MatchString(addr)
}

// NormalizeWallet validates addr and returns its lowercase form, which is the
// only form stored and used as a POAP cache key.
func NormalizeWallet(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !IsValidWallet(addr) {
		return "", ErrInvalidWallet
	}
	return strings.ToLower(addr), nil
}

// ChecksumWallet returns the EIP-55 mixed-case form of a valid address.
func ChecksumWallet(addr string) (string, error) {
	lower, err := NormalizeWallet(addr)
	if err != nil {
		return "", err
	}
	hexPart := lower[2:]

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(hexPart))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, len(hexPart))
	for i := 0; i < len(hexPart); i++ {
		c := hexPart[i]
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}
