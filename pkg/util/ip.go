package util

import (
	"fmt"
	"strconv"
	"strings"
)

const maxASN = 4294967295 // 4-byte ASN range

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int64) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}

// ParseASN parses a decimal AS number, accepting an optional "AS" prefix.
func ParseASN(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "AS")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid AS number %q", s)
	}
	if err := ValidateASN(n); err != nil {
		return 0, err
	}
	return uint32(n), nil
}
