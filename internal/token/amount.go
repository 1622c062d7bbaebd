package token

import (
	"fmt"
	"math/big"
	"strings"
)

var pow10 = func() []*big.Int {
	p := make([]*big.Int, 19)
	p[0] = big.NewInt(1)
	for i := 1; i < len(p); i++ {
		p[i] = new(big.Int).Mul(p[i-1], big.NewInt(10))
	}
	return p
}()

// ParseAmount converts a decimal string into base units:
// floor(value × 10^decimals). Truncation, never rounding — fractional
// digits beyond the token's precision are dropped so floating-point noise
// can never over-issue.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount must be positive")
	}
	if int(decimals) >= len(pow10) {
		return nil, fmt.Errorf("decimals %d out of range", decimals)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}

	// Truncate excess fractional digits (floor semantics).
	if len(frac) > int(decimals) {
		frac = frac[:decimals]
	}

	w, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	base := new(big.Int).Mul(w, pow10[decimals])

	if frac != "" {
		f, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
		// Scale the fraction up to the full precision.
		f.Mul(f, pow10[int(decimals)-len(frac)])
		base.Add(base, f)
	}

	if base.Sign() == 0 {
		return nil, fmt.Errorf("amount truncates to zero at %d decimals", decimals)
	}
	return base, nil
}

// FormatAmount renders base units as a decimal string with exactly
// `decimals` fractional digits.
func FormatAmount(base *big.Int, decimals uint8) string {
	if decimals == 0 {
		return base.String()
	}
	q, r := new(big.Int).QuoRem(base, pow10[decimals], new(big.Int))
	return fmt.Sprintf("%s.%0*s", q.String(), decimals, r.String())
}

// TipAmount computes floor(totalBaseUnits × pct / 100).
func TipAmount(totalBaseUnits *big.Int, pct uint8) *big.Int {
	t := new(big.Int).Mul(totalBaseUnits, big.NewInt(int64(pct)))
	return t.Div(t, big.NewInt(100))
}
