// Package format turns free-text keystrokes into the masked display strings
// used for Brazilian personal data fields.
//
// Masks are derived values: they are always regenerable from the digits, and
// every mask function normalizes its input first, so feeding a masked string
// back in yields the same result.
package format

import "strings"

// Maximum digit counts per field.
const (
	CPFDigits       = 11
	CEPDigits       = 8
	BirthDateDigits = 8
	PhoneMaxDigits  = 11
)

// OnlyDigits removes every character that is not an ASCII decimal digit.
func OnlyDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// group describes one run of digits and the separator written before it.
type group struct {
	width  int
	prefix string
}

// applyMask normalizes, truncates to limit and writes each group only once it
// holds at least one digit, so a trailing bare separator never appears.
func applyMask(value string, limit int, groups []group) string {
	digits := truncate(OnlyDigits(value), limit)
	var b strings.Builder
	pos := 0
	for _, g := range groups {
		if pos >= len(digits) {
			break
		}
		end := min(pos+g.width, len(digits))
		b.WriteString(g.prefix)
		b.WriteString(digits[pos:end])
		pos = end
	}
	return b.String()
}

func truncate(digits string, limit int) string {
	if len(digits) > limit {
		return digits[:limit]
	}
	return digits
}

var (
	cpfGroups       = []group{{3, ""}, {3, "."}, {3, "."}, {2, "-"}}
	cepGroups       = []group{{5, ""}, {3, "-"}}
	birthDateGroups = []group{{2, ""}, {2, "/"}, {4, "/"}}
	landlineGroups  = []group{{2, "("}, {4, ") "}, {4, "-"}}
	mobileGroups    = []group{{2, "("}, {5, ") "}, {4, "-"}}
)

// MaskCPF renders up to 11 digits as NNN.NNN.NNN-NN.
func MaskCPF(value string) string {
	return applyMask(value, CPFDigits, cpfGroups)
}

// MaskCEP renders up to 8 digits as NNNNN-NNN.
func MaskCEP(value string) string {
	return applyMask(value, CEPDigits, cepGroups)
}

// MaskBirthDate renders up to 8 digits as DD/MM/YYYY.
func MaskBirthDate(value string) string {
	return applyMask(value, BirthDateDigits, birthDateGroups)
}

// MaskPhone renders an area code followed by the subscriber number:
// (AA) NNNN-NNNN for landlines and (AA) NNNNN-NNNN once an eleventh digit
// turns it into a mobile number. While typing, the shorter layout is used.
func MaskPhone(value string) string {
	digits := truncate(OnlyDigits(value), PhoneMaxDigits)
	if len(digits) == PhoneMaxDigits {
		return applyMask(digits, PhoneMaxDigits, mobileGroups)
	}
	return applyMask(digits, PhoneMaxDigits-1, landlineGroups)
}
