package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fueltrack/receipt-ocr/dto"
)

var (
	labelColor   = color.New(color.FgCyan)
	missingColor = color.New(color.FgHiBlack)
	derivedColor = color.New(color.FgYellow)
)

func printReceipt(w io.Writer, data dto.ExtractedReceiptData) {
	derived := map[string]bool{}
	for _, f := range data.Backfilled {
		derived[f] = true
	}

	row := func(label, value string, isDerived bool) {
		switch {
		case value == "":
			value = missingColor.Sprint("-")
		case isDerived:
			value += derivedColor.Sprint(" (calculated)")
		}
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprintf("%-16s", label+":"), value)
	}

	fuel := ""
	if data.FuelType != nil {
		fuel = string(*data.FuelType)
	}
	date := ""
	if data.TransactionDate != nil {
		date = data.TransactionDate.Format("2006-01-02 15:04 MST")
	}

	row("Fuel", fuel, false)
	row("Volume", formatFloat(data.VolumeLiters, "%.3f L"), false)
	row("Price/Liter", formatRupiah(data.PricePerLiter), derived[dto.FieldPricePerLiter])
	row("Total", formatRupiah(data.TotalPrice), derived[dto.FieldTotalPrice])
	row("Date", date, false)
	row("Station", data.StationCode, false)
	row("Confidence", confidenceLabel(data.Confidence), false)
}

func confidenceLabel(c int) string {
	s := fmt.Sprintf("%d%%", c)
	switch {
	case c >= 80:
		return color.GreenString(s)
	case c >= 50:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func formatFloat(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}

// formatRupiah prints whole rupiah with dot thousands separators.
func formatRupiah(v *float64) string {
	if v == nil {
		return ""
	}
	digits := fmt.Sprintf("%.0f", *v)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return "Rp " + strings.Join(groups, ".")
}
