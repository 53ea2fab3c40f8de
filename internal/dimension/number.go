package dimension

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// parseNumber converts a trimmed token using browser number coercion rules.
// An empty token is zero. Infinity is only recognised as "Infinity" with an
// optional sign, and 0x, 0o and 0b prefixes select an unsigned integer base.
func parseNumber(token string) (float64, bool) {
	switch token {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(token) > 2 && token[0] == '0' {
		if base := radix(token[1]); base != 0 {
			return parseRadix(token[2:], base)
		}
	}

	// ParseFloat also accepts inf, infinity and nan in any case.
	lower := strings.ToLower(token)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		// Out of range values saturate to zero or infinity.
		if !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
	}
	return value, true
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func parseRadix(digits string, base int) (float64, bool) {
	if digits == "" {
		return 0, false
	}
	value := 0.0
	for i := 0; i < len(digits); i++ {
		d, ok := digitValue(digits[i])
		if !ok || d >= base {
			return 0, false
		}
		value = value*float64(base) + float64(d)
	}
	return value, true
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// formatNumber renders v the way a browser prints a number: shortest round
// trip digits, exponent notation outside [1e-6, 1e21).
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + exp
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
