package token

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation limits for token parameters.
const (
	MaxDecimals   = 18
	MaxSymbolLen  = 8
	MaxNameLen    = 64
	MinTipPercent = 1
	MaxTipPercent = 25
)

var (
	symbolRe = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)
	// One rule for display names everywhere: alphanumeric plus spaces.
	nameRe = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)
)

// NormalizeSymbol uppercases a symbol at input time so every downstream
// comparison (including tip targeting) is unambiguous.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateSymbol checks an already-normalized symbol.
func ValidateSymbol(s string) error {
	if !symbolRe.MatchString(s) {
		return fmt.Errorf("symbol must be 1-%d uppercase alphanumeric characters, got %q", MaxSymbolLen, s)
	}
	return nil
}

// ValidateName checks a display name. Empty is allowed (it defaults to the
// symbol when encoded). Non-empty names must be alphanumeric plus spaces,
// at most MaxNameLen characters, with no leading or trailing space.
func ValidateName(s string) error {
	if s == "" {
		return nil
	}
	if len(s) > MaxNameLen {
		return fmt.Errorf("name must be at most %d characters, got %d", MaxNameLen, len(s))
	}
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("name must not have leading or trailing spaces")
	}
	if !nameRe.MatchString(s) {
		return fmt.Errorf("name may only contain letters, digits, and spaces")
	}
	return nil
}

// ValidateDecimals checks the decimal count.
func ValidateDecimals(d uint8) error {
	if d > MaxDecimals {
		return fmt.Errorf("decimals must be in [0, %d], got %d", MaxDecimals, d)
	}
	return nil
}

// ValidateTipPercent checks a tip percentage (only meaningful when tipping
// is enabled).
func ValidateTipPercent(pct uint8) error {
	if pct < MinTipPercent || pct > MaxTipPercent {
		return fmt.Errorf("tip percentage must be in [%d, %d], got %d", MinTipPercent, MaxTipPercent, pct)
	}
	return nil
}
