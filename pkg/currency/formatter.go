package currency

import (
	"fmt"
	"math"
	"strings"
)

// Currencies priced without minor units.
var zeroDecimal = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// Format renders an amount as "USD 1,234.50". Zero-decimal currencies are rounded to whole units.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	negative := amount < 0
	if negative {
		amount = -amount
	}

	var formatted string
	if zeroDecimal[code] {
		formatted = addThousandsSeparator(fmt.Sprintf("%.0f", math.Round(amount)), ".")
	} else {
		cents := math.Round(amount * 100)
		whole := fmt.Sprintf("%.0f", math.Floor(cents/100))
		frac := int(math.Mod(cents, 100))
		formatted = fmt.Sprintf("%s.%02d", addThousandsSeparator(whole, ","), frac)
	}

	result := formatted
	if code != "" {
		result = code + " " + formatted
	}
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
