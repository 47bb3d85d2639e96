package types

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatOptionSymbol renders "<UNDERLYING> <strike> CE|PE", e.g. "NIFTY 25800 CE".
func FormatOptionSymbol(underlying string, strike float64, t OptionType) string {
	return fmt.Sprintf("%s %s %s", underlying, strconv.FormatFloat(strike, 'f', -1, 64), t.Code())
}

// ParseOptionSymbol is the inverse of FormatOptionSymbol. The underlying may
// itself contain spaces; strike and leg are always the last two fields.
func ParseOptionSymbol(symbol string) (underlying string, strike float64, t OptionType, err error) {
	fields := strings.Fields(symbol)
	if len(fields) < 3 {
		return "", 0, "", fmt.Errorf("option symbol %q: want <underlying> <strike> CE|PE", symbol)
	}
	n := len(fields)
	switch strings.ToUpper(fields[n-1]) {
	case "CE":
		t = OptionCall
	case "PE":
		t = OptionPut
	default:
		return "", 0, "", fmt.Errorf("option symbol %q: unknown leg %q", symbol, fields[n-1])
	}
	strike, err = strconv.ParseFloat(fields[n-2], 64)
	if err != nil || strike <= 0 {
		return "", 0, "", fmt.Errorf("option symbol %q: bad strike %q", symbol, fields[n-2])
	}
	return strings.Join(fields[:n-2], " "), strike, t, nil
}
