package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// isoNumericCodes maps ISO 4217 alpha codes to their numeric codes as the
// gateways expect them on the wire.
var isoNumericCodes = map[string]string{
	"TRY": "949",
	"USD": "840",
	"EUR": "978",
	"GBP": "826",
	"JPY": "392",
	"RUB": "643",
}

// defaultCurrencyCode is returned for unrecognized alpha codes. The
// fallback is intentional: both gateway families are TRY-domestic and
// reject unknown numeric codes on their own side.
const defaultCurrencyCode = "949"

// FormatMajor renders a minor-unit amount as a major-unit decimal string
// with exactly two fraction digits, e.g. 12345 -> "123.45". This is the
// NestPay-style representation.
func FormatMajor(amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", NewInvalidAmountError(amountMinor)
	}
	return fmt.Sprintf("%d.%02d", amountMinor/100, amountMinor%100), nil
}

// FormatMinor renders a minor-unit amount as its raw integer string,
// e.g. 29000000 -> "29000000". The VPOS family takes minor units
// unconverted; do not unify this with FormatMajor.
func FormatMinor(amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", NewInvalidAmountError(amountMinor)
	}
	return strconv.FormatInt(amountMinor, 10), nil
}

// NumericCurrencyCode maps an ISO alpha currency code to its numeric code,
// case-insensitively. Unrecognized codes fall back to "949" (TRY).
func NumericCurrencyCode(alpha string) string {
	if code, ok := isoNumericCodes[strings.ToUpper(strings.TrimSpace(alpha))]; ok {
		return code
	}
	return defaultCurrencyCode
}
