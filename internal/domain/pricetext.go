package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumericRe   = regexp.MustCompile(`[^0-9,.]`)
	decimalCommaRe = regexp.MustCompile(`,[0-9]{1,2}$`)
)

// ParseError reports a raw price string that could not be turned into a number.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse price from %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("could not parse price from %q", e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NormalizePrice converts a scraped price string of unknown locale into a float.
//
// Everything except digits, commas and periods is dropped first. When both
// separators are present the rightmost one is the decimal separator. A lone
// comma is a decimal separator only when it is followed by one or two trailing
// digits ("12,5", "1,25"); otherwise commas are thousands separators, so
// "1,234" reads as 1234.
func NormalizePrice(raw string) (float64, error) {
	cleaned := nonNumericRe.ReplaceAllString(raw, "")
	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		if decimalCommaRe.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	if cleaned == "" {
		return 0, &ParseError{Raw: raw}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Raw: raw, Err: err}
	}
	return v, nil
}

// currencySymbols is scanned in order; the first symbol present wins.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

// ResolveCurrency infers a currency code from symbols in raw, falling back to def.
func ResolveCurrency(raw, def string) string {
	for _, c := range currencySymbols {
		if strings.Contains(raw, c.symbol) {
			return c.code
		}
	}
	return def
}
