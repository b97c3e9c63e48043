package voucher

import (
	"regexp"
	"strings"
)

const (
	CodeSuffixLength = 8
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var codePattern = regexp.MustCompile(`^[A-Z]+-[0-9]{4}-[A-Z0-9]{8}$`)

// Code is the human-facing voucher identifier, e.g. EXP-2025-AB12CD34.
// It is always held in normalized (upper-case, trimmed) form.
type Code struct {
	value string
}

func NewCode(raw string) (Code, error) {
	s := NormalizeCode(raw)
	if !codePattern.MatchString(s) {
		return Code{}, ErrInvalidCode
	}
	return Code{value: s}, nil
}

// NormalizeCode makes lookups case-insensitive and whitespace tolerant.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func (c Code) String() string {
	return c.value
}

func (c Code) IsZero() bool {
	return c.value == ""
}
