package fuelreceipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fueltrack/receipt-ocr/dto"
)

var (
	reStandaloneL   = regexp.MustCompile(`\bL\b`)
	reDecimalNumber = regexp.MustCompile(`\d+(?:[.,]\d+)+`)
	reMoneyToken    = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`)
	reCurrency      = regexp.MustCompile(`(?:^|[^A-Z])RP`)
	// "RP 13.500/L", "13.500 / LITER"
	rePerLiterPrice = regexp.MustCompile(`(?:RP\s*)?\d[\d.,]*\s*/\s*L`)

	reDateDMY = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	reDateYMD = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	reTime    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)

	reStationCode = regexp.MustCompile(`\b(\d{2})\.(\d{4,5})\b`)
)

// Most specific first: PERTAMAX is a substring of PERTAMAX TURBO.
var fuelTypePatterns = []struct {
	re   *regexp.Regexp
	fuel dto.FuelType
}{
	{regexp.MustCompile(`PERTAMAX\s*TURBO`), dto.FuelPertamaxTurbo},
	{regexp.MustCompile(`PERTAMAX`), dto.FuelPertamax},
	{regexp.MustCompile(`PERTALITE`), dto.FuelPertalite},
	{regexp.MustCompile(`DEXLITE`), dto.FuelDexlite},
	{regexp.MustCompile(`(?:BIO\s*)?SOLAR`), dto.FuelSolar},
}

var totalKeywords = []string{"TOTAL", "RUPIAH", "BAYAR"}

// isUnitPriceLine reports whether the line labels a price per liter.
func isUnitPriceLine(line string) bool {
	return strings.Contains(line, "@") || strings.Contains(line, "/L") || strings.Contains(line, "HARGA")
}

// isPerLiterLabel is narrower than isUnitPriceLine: retail receipts also
// print item prices as "2 @ 18.900".
func isPerLiterLabel(line string) bool {
	return strings.Contains(line, "/L") || strings.Contains(line, "HARGA")
}

// volumeSegment is the part of a line that may hold a quantity. Pump
// receipts combine both on one line ("6,667 L @ 13.500"), so the price
// after "@" and any "13.500/L" amount are cut away.
func volumeSegment(line string) string {
	if i := strings.Index(line, "@"); i >= 0 {
		line = line[:i]
	}
	return rePerLiterPrice.ReplaceAllString(line, " ")
}

// priceSegment is the part of a unit-price line that holds the price.
func priceSegment(line string) string {
	if i := strings.Index(line, "@"); i >= 0 {
		return line[i+1:]
	}
	if m := rePerLiterPrice.FindString(line); m != "" {
		return m
	}
	return line
}

// isVolumeLine expects a volumeSegment; a "/L" still present there is a
// price label such as "RP/LITER".
func isVolumeLine(line string) bool {
	if strings.Contains(line, "HARGA") || strings.Contains(line, "/L") {
		return false
	}
	return strings.Contains(line, "LITER") ||
		strings.Contains(line, "VOL") ||
		strings.Contains(line, "(L)") ||
		reStandaloneL.MatchString(line)
}

// detectVolume extracts the first decimal-formatted quantity of a volume line.
func detectVolume(line string, maxLiters float64) (float64, bool) {
	segment := volumeSegment(line)
	if !isVolumeLine(segment) {
		return 0, false
	}
	raw := reDecimalNumber.FindString(segment)
	if raw == "" {
		return 0, false
	}
	v, ok := NormalizeNumber(raw)
	if !ok || v <= 0 || (maxLiters > 0 && v > maxLiters) {
		return 0, false
	}
	return v, true
}

// firstMoneyInRange returns the first rupiah amount on the line within [lo, hi].
func firstMoneyInRange(line string, lo, hi float64) (float64, bool) {
	for _, tok := range reMoneyToken.FindAllString(line, -1) {
		v, ok := ParseMoney(tok)
		if ok && v >= lo && v <= hi {
			return v, true
		}
	}
	return 0, false
}

// detectPricePerLiter matches lines labelled with "@", "/L" or "HARGA".
func detectPricePerLiter(line string, lo, hi float64) (float64, bool) {
	if !isUnitPriceLine(line) {
		return 0, false
	}
	return firstMoneyInRange(priceSegment(line), lo, hi)
}

// isBareTotalLine is a total keyword whose amount was printed on the next line.
func isBareTotalLine(line string) bool {
	return containsAny(line, totalKeywords) && !reMoneyToken.MatchString(line)
}

// detectTotal looks for keyword lines first, taking the amount from the
// following line when the keyword stands alone, and only then for lines
// that merely carry the currency prefix, skipping unit-price lines.
func detectTotal(lines []string, lo, hi float64) (float64, bool) {
	for i, line := range lines {
		if !containsAny(line, totalKeywords) {
			continue
		}
		if v, ok := firstMoneyInRange(line, lo, hi); ok {
			return v, true
		}
		if isBareTotalLine(line) && i+1 < len(lines) && !isUnitPriceLine(lines[i+1]) {
			if v, ok := firstMoneyInRange(lines[i+1], lo, hi); ok {
				return v, true
			}
		}
	}
	for _, line := range lines {
		if !reCurrency.MatchString(line) || isUnitPriceLine(line) {
			continue
		}
		if v, ok := firstMoneyInRange(line, lo, hi); ok {
			return v, true
		}
	}
	return 0, false
}

func detectFuelType(fullText string) (dto.FuelType, bool) {
	for _, p := range fuelTypePatterns {
		if p.re.MatchString(fullText) {
			return p.fuel, true
		}
	}
	return "", false
}

// detectDate reads a day-first or year-first date; the four digit group
// decides which. A clock time on the same line is kept.
func detectDate(line string, loc *time.Location) (time.Time, bool) {
	type candidate struct {
		at               int
		year, month, day string
		end              int
	}
	var found []candidate
	if m := reDateDMY.FindStringSubmatchIndex(line); m != nil {
		found = append(found, candidate{at: m[0], end: m[1], day: line[m[2]:m[3]], month: line[m[4]:m[5]], year: line[m[6]:m[7]]})
	}
	if m := reDateYMD.FindStringSubmatchIndex(line); m != nil {
		found = append(found, candidate{at: m[0], end: m[1], year: line[m[2]:m[3]], month: line[m[4]:m[5]], day: line[m[6]:m[7]]})
	}
	if len(found) == 2 && found[1].at < found[0].at {
		found[0], found[1] = found[1], found[0]
	}

	for _, c := range found {
		y, _ := strconv.Atoi(c.year)
		mo, _ := strconv.Atoi(c.month)
		d, _ := strconv.Atoi(c.day)
		if y < 2000 || y > 2099 || mo < 1 || mo > 12 || d < 1 {
			continue
		}

		hh, mm, ss := clockAfter(line[c.end:])
		t := time.Date(y, time.Month(mo), d, hh, mm, ss, 0, loc)
		if t.Day() != d || t.Month() != time.Month(mo) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func clockAfter(rest string) (int, int, int) {
	m := reTime.FindStringSubmatch(rest)
	if m == nil {
		return 0, 0, 0
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	if hh > 23 || mm > 59 || ss > 59 {
		return 0, 0, 0
	}
	return hh, mm, ss
}

func detectStationCode(line string, prefixes []string) (string, bool) {
	for _, m := range reStationCode.FindAllStringSubmatch(line, -1) {
		for _, p := range prefixes {
			if m[1] == p {
				return m[0], true
			}
		}
	}
	return "", false
}

func containsAny(line string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}
