package fasteval

// siSuffixes maps the SI-style numeric suffix letters to their multiplier,
// per spec.md §4.1.
var siSuffixes = map[byte]float64{
	'n': 1e-9,
	'µ': 1e-6, // handled specially: this is a 2-byte UTF-8 rune, see readConstLit
	'u': 1e-6,
	'm': 1e-3,
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'G': 1e9,
	'T': 1e12,
	'p': 1e-12,
}

// isIdentStartByte reports whether b can start an identifier: ASCII letter
// or underscore.
func isIdentStartByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

// isIdentByte reports whether b can continue an identifier: ASCII letter,
// digit, or underscore.
func isIdentByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// maxIdentBytes bounds identifier length per spec.md §6.
const maxIdentBytes = 32

// maxPrintStringBytes bounds print()'s quoted string arguments per
// spec.md §3/§6.
const maxPrintStringBytes = 256

// boolToF64 maps a Go bool onto the 0.0/1.0 convention used throughout the
// comparison, equality, and logical operators.
func boolToF64(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// rustMin and rustMax implement min()/max()'s runtime (non-folded)
// semantics: NaN is treated as "absent" rather than contagious, matching
// the reference's f64::min/f64::max rather than Go's math.Min/math.Max
// (which propagate NaN). Only the constant-folding path in the compiler
// uses plain comparisons instead, per the reference's own inconsistency
// between its compile-time fold and its runtime evaluator.
func rustMin(a, b float64) float64 {
	if isNaNf(a) {
		return b
	}
	if isNaNf(b) {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func rustMax(a, b float64) float64 {
	if isNaNf(a) {
		return b
	}
	if isNaNf(b) {
		return a
	}
	if a > b {
		return a
	}
	return b
}

func isNaNf(f float64) bool { return f != f }

// unescapePrintString processes \n and \t escapes in a print() string
// literal body (quotes already stripped).
func unescapePrintString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				out = append(out, '\n')
				i++
				continue
			case 't':
				out = append(out, '\t')
				i++
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
