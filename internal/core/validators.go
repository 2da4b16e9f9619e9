package core

// validators.go holds one predicate per record field.
//
// Every predicate is total: Missing and Unsupported values are invalid, and
// no input makes a predicate panic or return an error. Predicates that need
// reference data are built as closures over the read-only reference tables.

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JonMunkholm/bizcheck/internal/reference"
)

// Predicate reports whether a raw value is valid for one field.
type Predicate func(Value) bool

// phoneDigitsLen is the length of a US phone number with area code.
const phoneDigitsLen = 10

var (
	// nameBlocklist holds placeholder names seen in exports, compared lowercased.
	nameBlocklist = map[string]struct{}{"none": {}, "null": {}, " ": {}}

	// phoneRegex accepts (123) 456-7890 with optional parentheses, dashes and
	// whitespace between the three groups. Anchored at the start only.
	phoneRegex = regexp.MustCompile(`^\(*\s*([0-9]{3})\s*\)*-*\s*-*([0-9]{3})\s*-*\s*([0-9]{4})`)

	headcountRegex        = regexp.MustCompile(`^[0-9]+ to [0-9]+`)
	headcountSpecialCases = []string{"over 1,000"}

	// revenueRegex is matched against the lowercased value.
	revenueRegex        = regexp.MustCompile(`^\$*([0-9.]*,*[0-9]+) to \$*([0-9.]+) million`)
	revenueSpecialCases = []string{"less than $500,000", "over $1 billion", "over $500 million"}
)

func validName(v Value) bool {
	s, ok := v.AsText()
	if !ok {
		return false
	}
	_, blocked := nameBlocklist[strings.ToLower(s)]
	return !blocked
}

// validAddress requires a leading house number, as US street addresses have.
func validAddress(v Value) bool {
	s, ok := v.AsText()
	if !ok || s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func validTimeInBusiness(v Value) bool {
	s, ok := v.AsText()
	return ok && strings.Contains(s, "year")
}

func validPhone(v Value) bool {
	var s string
	switch v.Kind() {
	case KindText:
		s, _ = v.AsText()
	case KindInteger:
		n, _ := v.AsInteger()
		if n < 0 {
			return false
		}
		s = strconv.FormatInt(n, 10)
	default:
		return false
	}

	if !reference.IsDigits(s) {
		m := phoneRegex.FindStringSubmatch(s)
		if m == nil {
			return false
		}
		s = m[1] + m[2] + m[3]
	}
	return len(s) == phoneDigitsLen
}

func validHeadcount(v Value) bool {
	s, ok := v.AsText()
	if !ok {
		return false
	}
	if headcountRegex.MatchString(s) {
		return true
	}
	return isSpecialCase(s, headcountSpecialCases)
}

func validRevenue(v Value) bool {
	s, ok := v.AsText()
	if !ok {
		return false
	}
	if revenueRegex.MatchString(strings.ToLower(s)) {
		return true
	}
	return isSpecialCase(s, revenueSpecialCases)
}

func isSpecialCase(s string, cases []string) bool {
	lower := strings.ToLower(s)
	for _, c := range cases {
		if lower == c {
			return true
		}
	}
	return false
}

func cityRule(geo *reference.GeoReference) Predicate {
	return func(v Value) bool {
		s, ok := v.AsText()
		return ok && geo.HasCity(s)
	}
}

func stateRule(geo *reference.GeoReference) Predicate {
	return func(v Value) bool {
		s, ok := v.AsText()
		return ok && geo.HasState(s)
	}
}

// zipRule checks the 5-digit format and, when strict, membership in the
// reference. Format-only mode is for batches from regions outside the reference.
func zipRule(geo *reference.GeoReference, strict bool) Predicate {
	return func(v Value) bool {
		zip, ok := zipText(v)
		if !ok {
			return false
		}
		return !strict || geo.HasZip(zip)
	}
}

func categoryCodeRule(codes *reference.CategoryCodes) Predicate {
	return func(v Value) bool {
		var s string
		switch v.Kind() {
		case KindText:
			s, _ = v.AsText()
		case KindInteger:
			n, _ := v.AsInteger()
			s = strconv.FormatInt(n, 10)
		default:
			return false
		}
		return codes.MatchPrefix(s)
	}
}

// zipText returns the 5-character zip held by v. Integers lost their leading
// zeros on the way in and are padded back; text must already be 5 digits.
func zipText(v Value) (string, bool) {
	switch v.Kind() {
	case KindInteger:
		n, _ := v.AsInteger()
		return reference.PadZip(n)
	case KindText:
		s, _ := v.AsText()
		if len(s) != reference.ZipWidth || !reference.IsDigits(s) {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}
