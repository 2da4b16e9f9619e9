package reference

// naics.go loads the NAICS category-code reference.
//
// The source table lists one code per row in column 1, after a two-row
// header. Sector rows may be ranges such as "31-33"; those expand to every
// code in the range and the range token itself is not kept.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	// CodePrefixLen is how many leading characters of a candidate code are considered.
	CodePrefixLen = 6

	// MinCodeLen is the shortest truncation that is looked up.
	MinCodeLen = 3

	naicsHeaderRows = 2
	naicsCodeColumn = 1
)

// ErrMalformedRange is returned for a range token that is not "NN-NN".
var ErrMalformedRange = errors.New("malformed category code range")

var rangeRegex = regexp.MustCompile(`^([0-9]{2})-([0-9]{2})$`)

// CategoryCodes is the read-only set of valid NAICS codes.
type CategoryCodes struct {
	codes map[string]struct{}
}

// NewCategoryCodes builds the code set, expanding range tokens.
func NewCategoryCodes(tokens []string) (*CategoryCodes, error) {
	c := &CategoryCodes{codes: make(map[string]struct{}, len(tokens))}

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !strings.Contains(tok, "-") {
			c.codes[tok] = struct{}{}
			continue
		}

		low, high, err := parseRange(tok)
		if err != nil {
			return nil, err
		}
		for n := low; n <= high; n++ {
			c.codes[strconv.Itoa(n)] = struct{}{}
		}
	}

	return c, nil
}

func parseRange(tok string) (int, int, error) {
	m := rangeRegex.FindStringSubmatch(tok)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedRange, tok)
	}
	low, _ := strconv.Atoi(m[1])
	high, _ := strconv.Atoi(m[2])
	if low > high {
		return 0, 0, fmt.Errorf("%w: %q runs backwards", ErrMalformedRange, tok)
	}
	return low, high, nil
}

// Len returns the number of codes in the set.
func (c *CategoryCodes) Len() int { return len(c.codes) }

// Contains reports whether code is stored exactly.
func (c *CategoryCodes) Contains(code string) bool {
	_, ok := c.codes[code]
	return ok
}

// MatchPrefix reports whether code, cut to CodePrefixLen characters, or any
// right-truncation of it no shorter than MinCodeLen, is a stored code.
func (c *CategoryCodes) MatchPrefix(code string) bool {
	if len(code) > CodePrefixLen {
		code = code[:CodePrefixLen]
	}
	for n := len(code); n >= MinCodeLen; n-- {
		if _, ok := c.codes[code[:n]]; ok {
			return true
		}
	}
	return false
}

// ParseNAICS reads the raw code tokens from a NAICS code table.
func ParseNAICS(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var tokens []string
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read category codes: %w", err)
		}
		if row < naicsHeaderRows || len(rec) <= naicsCodeColumn {
			continue
		}
		if tok := strings.TrimSpace(rec[naicsCodeColumn]); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	return tokens, nil
}
