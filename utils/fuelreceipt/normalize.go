package fuelreceipt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)

	// whole words built from digits, separators and the letters OCR confuses
	// with digits, optionally glued to the currency prefix ("RP9O.OOO")
	reNumericToken = regexp.MustCompile(`\b(?:RP)?[0-9OB][0-9OB.,]*\b`)
	// biodiesel blend labels (B30, B35) are words, not numbers
	reBiodieselGrade = regexp.MustCompile(`^B\d{2}$`)

	reMoneyDecimals = regexp.MustCompile(`[.,](\d{1,2})$`)

	digitConfusion = strings.NewReplacer("O", "0", "B", "8")
)

// NormalizeText upper-cases the recognized text, collapses whitespace, drops
// empty lines and repairs O/0 and B/8 confusion inside numeric tokens only.
func NormalizeText(text string) []string {
	text = reCRLF.ReplaceAllString(text, "\n")
	text = reTabs.ReplaceAllString(text, " ")
	text = strings.ToUpper(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(reMultiSpace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		lines = append(lines, repairNumericTokens(line))
	}
	return lines
}

func repairNumericTokens(line string) string {
	return reNumericToken.ReplaceAllStringFunc(line, func(tok string) string {
		prefix := ""
		if strings.HasPrefix(tok, "RP") {
			prefix, tok = "RP", tok[2:]
		}
		if !strings.ContainsAny(tok, "0123456789") || reBiodieselGrade.MatchString(tok) {
			return prefix + tok
		}
		return prefix + digitConfusion.Replace(tok)
	})
}

// NormalizeNumber converts a quantity written with Indonesian separators into
// a float. A comma is always the decimal separator. Without a comma, a single
// dot after a leading segment below 100 is a decimal point (liters are printed
// "15.5" on some pumps), while a dot after a larger segment, or several dots,
// group thousands.
func NormalizeNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !onlyNumberRunes(s) {
		return 0, false
	}

	switch dots := strings.Count(s, "."); {
	case strings.Contains(s, ","):
		if strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dots == 1:
		lead := s[:strings.Index(s, ".")]
		if lead != "" {
			v, err := strconv.ParseFloat(lead, 64)
			if err != nil {
				return 0, false
			}
			if v >= 100 {
				s = strings.ReplaceAll(s, ".", "")
			}
		}
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	return finiteNonNegative(s)
}

// ParseMoney converts a rupiah amount. A trailing separator followed by one
// or two digits is the fractional part; every other separator groups
// thousands, so "90.000", "90,000" and "90.000,00" all mean 90000.
func ParseMoney(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !onlyNumberRunes(s) {
		return 0, false
	}

	intPart, frac := s, ""
	if m := reMoneyDecimals.FindStringSubmatchIndex(s); m != nil {
		intPart, frac = s[:m[0]], s[m[2]:m[3]]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, intPart)
	if digits == "" {
		return 0, false
	}
	if frac != "" {
		digits += "." + frac
	}

	return finiteNonNegative(digits)
}

func onlyNumberRunes(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

func finiteNonNegative(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
