package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateAddress validates a Bitcoin address string for safety and plausibility.
// It does not verify the checksum; full validation happens server-side at the
// Esplora endpoint. The rules here reject inputs that could be used for path
// traversal or injection when the address is interpolated into URLs and cache keys.
//
// Validation rules:
//   - No empty addresses
//   - Length between 14 and 90 characters (covers P2PKH through bech32m)
//   - Base58/bech32 alphabet only (alphanumeric, no whitespace or punctuation)
func ValidateAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidAddress, "address cannot be empty")
	}

	if len(addr) < 14 || len(addr) > 90 {
		return New(ErrCodeInvalidAddress, "address length %d out of range [14, 90]", len(addr))
	}

	for _, r := range addr {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return New(ErrCodeInvalidAddress, "address contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateAmount validates a monetary amount supplied by a caller.
// Layout components assume non-negative finite amounts; this is the single
// enforcement point at ingestion.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return New(ErrCodeInvalidAmount, "amount must be a finite number")
	}
	if amount < 0 {
		return New(ErrCodeInvalidAmount, "amount cannot be negative: %g", amount)
	}
	return nil
}

// ValidatePath validates a file path supplied on the command line or API.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "path contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
