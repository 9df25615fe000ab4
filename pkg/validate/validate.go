// Package validate holds pure predicates for Brazilian personal data fields.
// Every predicate returns false for malformed input and never panics.
package validate

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"simohu/pkg/format"
)

// MinBirthYear is the earliest accepted birth year.
const MinBirthYear = 1900

var birthDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// IsValidCPF checks length, rejects repeated-digit sequences and verifies both
// mod-11 check digits.
func IsValidCPF(raw string) bool {
	cpf := format.OnlyDigits(raw)
	if len(cpf) != format.CPFDigits {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == len(cpf) {
		return false
	}
	d1 := cpfCheckDigit(cpf[:9], 10)
	d2 := cpfCheckDigit(cpf[:10], 11)
	return int(cpf[9]-'0') == d1 && int(cpf[10]-'0') == d2
}

// cpfCheckDigit weights base from factor down to 2.
func cpfCheckDigit(base string, factor int) int {
	total := 0
	for i := 0; i < len(base); i++ {
		total += int(base[i]-'0') * (factor - i)
	}
	rem := total % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

// IsValidBirthDate validates a DD/MM/YYYY date against the current year.
func IsValidBirthDate(ddmmyyyy string) bool {
	return IsValidBirthDateAt(ddmmyyyy, time.Now())
}

// IsValidBirthDateAt validates a DD/MM/YYYY date with the year capped at now's year.
func IsValidBirthDateAt(ddmmyyyy string, now time.Time) bool {
	m := birthDatePattern.FindStringSubmatch(ddmmyyyy)
	if m == nil {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < MinBirthYear || year > now.Year() {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= DaysIn(time.Month(month), year)
}

// DaysIn returns the number of days in month for year. Day zero of the next
// month normalizes to the last day of this one.
func DaysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseBirthDate converts a valid DD/MM/YYYY string into a date.
func ParseBirthDate(ddmmyyyy string, now time.Time) (time.Time, bool) {
	if !IsValidBirthDateAt(ddmmyyyy, now) {
		return time.Time{}, false
	}
	t, err := time.Parse("02/01/2006", ddmmyyyy)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Accepted phone lengths: a mobile number without area code, a landline with
// area code, and a mobile number with area code.
const (
	PhoneLocalMobileDigits = 9
	PhoneLandlineDigits    = 10
	PhoneMobileDigits      = 11
)

// IsValidPhone accepts 9, 10 or 11 digits after normalization.
func IsValidPhone(raw string) bool {
	switch len(format.OnlyDigits(raw)) {
	case PhoneLocalMobileDigits, PhoneLandlineDigits, PhoneMobileDigits:
		return true
	}
	return false
}

// IsValidCEP requires exactly eight digits.
func IsValidCEP(raw string) bool {
	return len(format.OnlyDigits(raw)) == format.CEPDigits
}

// IsValidEmail accepts a bare address with a dotted domain.
func IsValidEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.HasPrefix(domain, ".")
}

var stateCodes = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
	"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
	"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
	"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
}

// Password length bounds shared by the client form and the portal. The upper
// bound is bcrypt's input limit, in bytes.
const (
	PasswordMinLength = 6
	PasswordMaxBytes  = 72
)

// IsValidPassword checks the password length: at least PasswordMinLength
// characters and at most PasswordMaxBytes bytes.
func IsValidPassword(s string) bool {
	return utf8.RuneCountInString(s) >= PasswordMinLength && len(s) <= PasswordMaxBytes
}

// IsValidStateCode checks a two-letter federative unit code, case-insensitively.
func IsValidStateCode(s string) bool {
	return stateCodes[strings.ToUpper(s)]
}
